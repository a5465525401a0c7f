// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	secretDomain "github.com/allisson/quickie/internal/secret/domain"
)

// CreateSecretResponse is returned once, right after a secret is stored.
// SECURITY: Password is only present when the server generated it and is never shown again.
type CreateSecretResponse struct {
	ID        string    `json:"id"`
	Password  string    `json:"password,omitempty"`
	Reference string    `json:"reference"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapReferenceToCreateResponse converts a vault reference to an API response.
func MapReferenceToCreateResponse(
	ref *secretDomain.Reference,
	appURL string,
	expiresAt time.Time,
) CreateSecretResponse {
	return CreateSecretResponse{
		ID:        ref.ID,
		Password:  ref.Password,
		Reference: ref.String(),
		URL:       ref.URL(appURL),
		ExpiresAt: expiresAt,
	}
}

// StoreBundleResponse is returned after a client-encrypted bundle is stored.
type StoreBundleResponse struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapIDToStoreBundleResponse builds the response for a stored bundle. The password never
// reached the server, so the reference holds the identifier only.
func MapIDToStoreBundleResponse(id, appURL string, expiresAt time.Time) StoreBundleResponse {
	ref := secretDomain.Reference{ID: id}
	return StoreBundleResponse{
		ID:        id,
		Reference: ref.String(),
		URL:       ref.URL(appURL),
		ExpiresAt: expiresAt,
	}
}

// RevealSecretResponse carries the decrypted secret.
// SECURITY: Must be transmitted over HTTPS in production.
type RevealSecretResponse struct {
	Secret string `json:"secret"`
}

// PassphraseResponse carries a generated word-list passphrase.
type PassphraseResponse struct {
	Passphrase string `json:"passphrase"`
	Words      int    `json:"words"`
}

// ExpiryPresetsResponse lists the expiry choices offered to clients.
type ExpiryPresetsResponse struct {
	Presets      []secretDomain.ExpiryPreset `json:"presets"`
	DefaultHours int                         `json:"default_hours"`
	MaxHours     int                         `json:"max_hours"`
}

// MapExpiryPresets keeps the presets allowed by maxHours.
func MapExpiryPresets(presets []secretDomain.ExpiryPreset, defaultHours, maxHours int) ExpiryPresetsResponse {
	allowed := make([]secretDomain.ExpiryPreset, 0, len(presets))
	for _, p := range presets {
		if p.Hours <= maxHours {
			allowed = append(allowed, p)
		}
	}
	return ExpiryPresetsResponse{
		Presets:      allowed,
		DefaultHours: defaultHours,
		MaxHours:     maxHours,
	}
}
