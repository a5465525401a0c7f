package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/quickie/internal/errors"
	"github.com/allisson/quickie/internal/httputil"
	secretService "github.com/allisson/quickie/internal/secret/service"
)

// CreateTokenMiddleware gates secret creation behind a shared bearer token.
//
// The server only knows the Argon2id hash of the token (hashedToken). An empty hash leaves
// creation open. Reveal endpoints are never gated: the password is the capability there.
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer")
//
// Error handling:
//   - Missing, malformed or non-matching token → 401 Unauthorized
func CreateTokenMiddleware(
	tokens secretService.AccessTokenService,
	hashedToken string,
	logger *slog.Logger,
) gin.HandlerFunc {
	if hashedToken == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("create token rejected: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("create token rejected: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainToken == "" || !tokens.CompareToken(plainToken, hashedToken) {
			logger.Debug("create token rejected: invalid token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
