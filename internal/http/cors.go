package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// createCORSMiddleware returns nil when CORS is disabled or no configured origin survives
// normalization. Only the share page needs cross-origin access, so credentials stay off and
// only GET and POST are allowed.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins, rejected := parseOrigins(allowOriginsStr)
	for _, origin := range rejected {
		logger.Warn("ignoring invalid CORS origin", slog.String("origin", origin))
	}
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))
	return cors.New(corsConfig(origins))
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           corsMaxAge,
	}
}

// parseOrigins splits a comma-separated list into normalized origins (lowercase scheme and
// host, no trailing slash, duplicates dropped). Entries that are not http(s) origins without
// a path are returned in rejected.
func parseOrigins(originsStr string) (origins, rejected []string) {
	seen := make(map[string]struct{})
	for _, part := range strings.Split(originsStr, ",") {
		raw := strings.TrimSpace(part)
		if raw == "" {
			continue
		}

		origin, ok := normalizeOrigin(raw)
		if !ok {
			rejected = append(rejected, raw)
			continue
		}
		if _, dup := seen[origin]; dup {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins, rejected
}

func normalizeOrigin(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	if u.Host == "" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return "", false
	}
	return scheme + "://" + strings.ToLower(u.Host), true
}
