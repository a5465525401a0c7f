// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/quickie/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorClass is the client-facing rendering of one error kind. An empty message means the
// error text itself is safe to return.
type errorClass struct {
	status  int
	code    string
	message string
}

// unavailableSecretMessage is shared by every not-found cause: a missing, expired, consumed
// and wrong-password secret must look the same to the client.
const unavailableSecretMessage = "The secret does not exist, has expired, or the password is invalid"

var (
	internalClass = errorClass{
		status:  http.StatusInternalServerError,
		code:    "internal_error",
		message: "An internal error occurred",
	}

	errorClasses = map[error]errorClass{
		apperrors.ErrNotFound:     {http.StatusNotFound, "not_found", unavailableSecretMessage},
		apperrors.ErrConflict:     {http.StatusConflict, "conflict", "A conflict occurred with existing data"},
		apperrors.ErrInvalidInput: {http.StatusUnprocessableEntity, "invalid_input", ""},
		apperrors.ErrUnauthorized: {http.StatusUnauthorized, "unauthorized", "Authentication is required"},
		apperrors.ErrForbidden: {
			http.StatusForbidden, "forbidden", "You don't have permission to access this resource",
		},
		apperrors.ErrTooManyRequests: {http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests"},
		apperrors.ErrUnavailable: {
			http.StatusServiceUnavailable, "unavailable", "The service is temporarily unavailable",
		},
	}
)

func classify(err error) errorClass {
	if class, ok := errorClasses[apperrors.KindOf(err)]; ok {
		return class
	}
	return internalClass
}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON body. Unclassified
// errors become a 500 without details; the full chain only goes to the log.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	class := classify(err)
	message := class.message
	if message == "" {
		message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if class.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "request failed",
			slog.Int("status_code", class.status),
			slog.String("error_code", class.code),
			slog.Any("error", err),
		)
	}

	c.JSON(class.status, ErrorResponse{Error: class.code, Message: message})
}

// HandleBadRequestGin writes a 400 for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	rejectRequest(c, http.StatusBadRequest, "bad_request", "bad request", err, logger)
}

// HandleValidationErrorGin writes a 422 for request bodies that parse but fail validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	rejectRequest(c, http.StatusUnprocessableEntity, "validation_error", "validation failed", err, logger)
}

func rejectRequest(c *gin.Context, status int, code, logMessage string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn(logMessage, slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}
