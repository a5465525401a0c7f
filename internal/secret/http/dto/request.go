// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/hex"

	validation "github.com/jellydator/validation"

	secretDomain "github.com/allisson/quickie/internal/secret/domain"
	customValidation "github.com/allisson/quickie/internal/validation"
)

// CreateSecretRequest contains the plaintext to protect. An empty password asks the server
// to generate one; it is then returned once in the response.
type CreateSecretRequest struct {
	Secret      string `json:"secret"`
	Password    string `json:"password,omitempty"`
	ExpiryHours *int   `json:"expiry_hours,omitempty"`
}

// Validate checks if the create secret request is valid.
func (r *CreateSecretRequest) Validate(maxExpiryHours int) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Secret, validation.Required, customValidation.NotBlank),
		validation.Field(&r.ExpiryHours, validation.NilOrNotEmpty, validation.Min(1), validation.Max(maxExpiryHours)),
	)
}

// RevealSecretRequest carries the password used to decrypt a stored secret.
type RevealSecretRequest struct {
	Password string `json:"password"`
}

// Validate checks if the reveal request is valid.
func (r *RevealSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password, validation.Required),
	)
}

// RevealReferenceRequest carries a whole "id&password" reference, as handed out on create.
type RevealReferenceRequest struct {
	Reference string `json:"reference"`
}

// Validate checks if the reveal by reference request is valid.
func (r *RevealReferenceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reference, validation.Required, customValidation.NotBlank),
	)
}

// StoreBundleRequest carries a bundle the browser already encrypted. Fields are hex encoded.
type StoreBundleRequest struct {
	Text        string `json:"text"`
	Nonce       string `json:"nonce"`
	Salt        string `json:"salt"`
	ExpiryHours *int   `json:"expiry_hours,omitempty"`
}

// Validate checks encoding and fixed field lengths.
func (r *StoreBundleRequest) Validate(maxExpiryHours, nonceLength, saltLength int) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required, customValidation.Hex),
		validation.Field(&r.Nonce, validation.Required, customValidation.Hex, customValidation.HexLength(nonceLength)),
		validation.Field(&r.Salt, validation.Required, customValidation.Hex, customValidation.HexLength(saltLength)),
		validation.Field(&r.ExpiryHours, validation.NilOrNotEmpty, validation.Min(1), validation.Max(maxExpiryHours)),
	)
}

// ToBundle decodes the hex fields. Call Validate first.
func (r *StoreBundleRequest) ToBundle() (*secretDomain.Bundle, error) {
	ciphertext, err := hex.DecodeString(r.Text)
	if err != nil {
		return nil, err
	}
	nonce, err := hex.DecodeString(r.Nonce)
	if err != nil {
		return nil, err
	}
	salt, err := hex.DecodeString(r.Salt)
	if err != nil {
		return nil, err
	}
	return &secretDomain.Bundle{Ciphertext: ciphertext, Nonce: nonce, Salt: salt}, nil
}
