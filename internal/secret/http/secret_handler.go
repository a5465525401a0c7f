// Package http provides HTTP handlers for one-time secrets.
// Plaintext secrets are encrypted on arrival and destroyed on their first successful reveal.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/quickie/internal/httputil"
	secretDomain "github.com/allisson/quickie/internal/secret/domain"
	"github.com/allisson/quickie/internal/secret/http/dto"
	secretService "github.com/allisson/quickie/internal/secret/service"
	secretUseCase "github.com/allisson/quickie/internal/secret/usecase"
	customValidation "github.com/allisson/quickie/internal/validation"
)

// HandlerConfig holds the policy values the handlers need to validate and render responses.
type HandlerConfig struct {
	AppURL             string
	DefaultExpiryHours int
	MaxExpiryHours     int
	NonceLength        int
	SaltLength         int
	PassphraseWords    int
}

// SecretHandler handles HTTP requests for one-time secrets.
type SecretHandler struct {
	vault       secretUseCase.Vault
	passphrases *secretService.PassphraseGenerator
	cfg         HandlerConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(
	vault secretUseCase.Vault,
	passphrases *secretService.PassphraseGenerator,
	cfg HandlerConfig,
	logger *slog.Logger,
) *SecretHandler {
	return &SecretHandler{
		vault:       vault,
		passphrases: passphrases,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

func (h *SecretHandler) expiryOrDefault(hours *int) int {
	if hours == nil {
		return h.cfg.DefaultExpiryHours
	}
	return *hours
}

func (h *SecretHandler) expiresAt(hours int) time.Time {
	return h.now().UTC().Add(time.Duration(hours) * time.Hour).Truncate(time.Second)
}

// CreateHandler encrypts and stores a secret.
// POST /v1/secrets - Returns 201 Created with the reference and share URL.
func (h *SecretHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateSecretRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(h.cfg.MaxExpiryHours); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	hours := h.expiryOrDefault(req.ExpiryHours)
	var password []byte
	if req.Password != "" {
		password = []byte(req.Password)
	}

	ref, err := h.vault.Store(c.Request.Context(), []byte(req.Secret), hours, password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusCreated, dto.MapReferenceToCreateResponse(ref, h.cfg.AppURL, h.expiresAt(hours)))
}

// RevealHandler decrypts a secret and destroys it.
// POST /v1/secrets/:id/reveal - Returns 200 OK with the plaintext, or 404 for any failure
// (absent, expired, consumed, wrong password).
// SECURITY: Plaintext is zeroed after the response is written.
func (h *SecretHandler) RevealHandler(c *gin.Context) {
	id := c.Param("id")

	var req dto.RevealSecretRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext, err := h.vault.Retrieve(c.Request.Context(), id, []byte(req.Password))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer secretDomain.Zero(plaintext)

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.RevealSecretResponse{Secret: string(plaintext)})
}

// RevealReferenceHandler decrypts a secret addressed by its full reference and destroys it.
// POST /v1/reveal - Same responses as RevealHandler. A reference without a password is a 422.
func (h *SecretHandler) RevealReferenceHandler(c *gin.Context) {
	var req dto.RevealReferenceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ref, err := secretDomain.ParseReference(req.Reference)
	if err == nil && ref.Password == "" {
		err = secretDomain.ErrInvalidReference
	}
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	plaintext, err := h.vault.Retrieve(c.Request.Context(), ref.ID, []byte(ref.Password))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer secretDomain.Zero(plaintext)

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.RevealSecretResponse{Secret: string(plaintext)})
}

// StoreBundleHandler stores a bundle the browser already encrypted.
// POST /v1/bundles - Returns 201 Created with the identifier and share URL.
func (h *SecretHandler) StoreBundleHandler(c *gin.Context) {
	var req dto.StoreBundleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(h.cfg.MaxExpiryHours, h.cfg.NonceLength, h.cfg.SaltLength); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	bundle, err := req.ToBundle()
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid bundle: %w", err), h.logger)
		return
	}

	hours := h.expiryOrDefault(req.ExpiryHours)
	id, err := h.vault.StoreEncrypted(c.Request.Context(), bundle, hours)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIDToStoreBundleResponse(id, h.cfg.AppURL, h.expiresAt(hours)))
}

// GetBundleHandler returns a stored bundle and burns it.
// GET /v1/bundles/:id - Returns 200 OK with {text, nonce, salt}. The client decrypts locally.
func (h *SecretHandler) GetBundleHandler(c *gin.Context) {
	bundle, err := h.vault.RetrieveEncrypted(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, bundle)
}

// PassphraseHandler suggests a word-list password.
// GET /v1/passphrase?words=N - Returns 200 OK with the passphrase.
func (h *SecretHandler) PassphraseHandler(c *gin.Context) {
	words := h.cfg.PassphraseWords
	if raw := c.Query("words"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(
				c,
				fmt.Errorf("invalid words parameter: must be an integer"),
				h.logger,
			)
			return
		}
		words = parsed
	}

	passphrase, err := h.passphrases.Generate(words)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.PassphraseResponse{Passphrase: passphrase, Words: words})
}

// ExpiryPresetsHandler lists the expiry choices.
// GET /v1/expiry-presets
func (h *SecretHandler) ExpiryPresetsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MapExpiryPresets(
		secretDomain.ExpiryPresets,
		h.cfg.DefaultExpiryHours,
		h.cfg.MaxExpiryHours,
	))
}
