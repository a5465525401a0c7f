package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/quickie/internal/errors"
)

// tokenLength is the random byte length of a generated create token.
const tokenLength = 32

// AccessTokenService issues and verifies the bearer token that gates secret creation.
// Only the Argon2id hash is ever configured on the server.
type AccessTokenService interface {
	// GenerateToken returns a new random token together with its hash.
	GenerateToken() (plainToken string, hashedToken string, err error)

	// HashToken hashes a plain token.
	HashToken(plainToken string) (string, error)

	// CompareToken reports whether plainToken matches hashedToken in constant time.
	CompareToken(plainToken, hashedToken string) bool
}

type accessTokenService struct {
	hasher *pwdhash.PasswordHasher
	keys   KeyGenerator
}

// NewAccessTokenService creates an AccessTokenService backed by Argon2id.
func NewAccessTokenService(keys KeyGenerator) AccessTokenService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// unreachable with a built-in policy
		panic(err)
	}

	return &accessTokenService{
		hasher: hasher,
		keys:   keys,
	}
}

func (s *accessTokenService) GenerateToken() (string, string, error) {
	plainToken, err := s.keys.Generate(tokenLength, tokenLength)
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate token")
	}

	hashedToken, err := s.HashToken(plainToken)
	if err != nil {
		return "", "", err
	}
	return plainToken, hashedToken, nil
}

func (s *accessTokenService) HashToken(plainToken string) (string, error) {
	hashedToken, err := s.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash token")
	}
	return hashedToken, nil
}

func (s *accessTokenService) CompareToken(plainToken, hashedToken string) bool {
	ok, err := s.hasher.Verify([]byte(plainToken), hashedToken)
	if err != nil {
		return false
	}
	return ok
}
