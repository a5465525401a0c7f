package domain

import (
	"errors"

	apperrors "github.com/allisson/quickie/internal/errors"
)

// Caller-visible outcomes.
var (
	// ErrSecretUnavailable is the single outcome returned for absent, expired, already consumed,
	// wrong password and corrupted records. The concrete cause is joined to it so logs and
	// metrics can tell them apart, but handlers only ever check this sentinel.
	ErrSecretUnavailable = apperrors.Wrap(apperrors.ErrNotFound, "secret not found or password invalid")

	// ErrEmptySecret indicates an empty plaintext was submitted.
	ErrEmptySecret = apperrors.Wrap(apperrors.ErrInvalidInput, "secret cannot be empty")

	// ErrSecretTooLarge indicates the plaintext exceeds the configured maximum size.
	ErrSecretTooLarge = apperrors.Wrap(apperrors.ErrInvalidInput, "secret is too large")

	// ErrInvalidExpiry indicates the expiry is negative or above the configured maximum.
	ErrInvalidExpiry = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid expiry")

	// ErrInvalidBundle indicates a client-supplied bundle has wrong field lengths or encoding.
	ErrInvalidBundle = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid encrypted bundle")

	// ErrInvalidID indicates an identifier outside the URL-safe base64 alphabet.
	ErrInvalidID = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid secret identifier")

	// ErrInvalidReference indicates a reference string that cannot be split into id and password.
	ErrInvalidReference = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid secret reference")

	// ErrInvalidConfig indicates an inconsistent vault policy.
	ErrInvalidConfig = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid vault configuration")
)

// Internal causes joined to ErrSecretUnavailable.
var (
	// ErrRecordNotFound indicates the store holds no live record for the identifier.
	ErrRecordNotFound = errors.New("record not found")

	// ErrAlreadyConsumed indicates another caller deleted the record first.
	ErrAlreadyConsumed = errors.New("record already consumed")

	// ErrDecryptionFailed indicates the authentication tag did not verify (wrong password or tampering).
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrMalformedBundle indicates a stored record that cannot be decoded.
	ErrMalformedBundle = errors.New("malformed stored bundle")
)

// Environment failures. These abort the operation and are never retried.
var (
	// ErrEntropyUnavailable indicates the CSPRNG failed to produce bytes.
	ErrEntropyUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "secure random source unavailable")

	// ErrIDAllocationFailed indicates every identifier candidate collided.
	ErrIDAllocationFailed = apperrors.Wrap(apperrors.ErrUnavailable, "could not allocate identifier")
)
