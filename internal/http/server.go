// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/quickie/internal/metrics"
	secretHTTP "github.com/allisson/quickie/internal/secret/http"
	secretService "github.com/allisson/quickie/internal/secret/service"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig holds the values SetupRouter needs beyond the handlers.
type RouterConfig struct {
	GinMode          string
	CORSEnabled      bool
	CORSAllowOrigins string

	CreateTokenHash string

	RevealRateLimitEnabled bool
	RevealRateLimitRPS     float64
	RevealRateLimitBurst   int

	MetricsNamespace string
}

// Server serves the secret API.
type Server struct {
	*listener
	store  Pinger
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a new HTTP server. store backs the readiness probe.
func NewServer(
	store Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		listener: newListener("http server", host, port, logger),
		store:    store,
		logger:   logger,
	}
}

// SetupRouter builds the gin engine with every route.
//
// ctx bounds background goroutines started by middleware (limiter janitors).
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg RouterConfig,
	secretHandler *secretHTTP.SecretHandler,
	tokens secretService.AccessTokenService,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			metricsProvider.MeterProvider(),
			cfg.MetricsNamespace,
			"/health",
			"/ready",
		))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	createGuard := secretHTTP.CreateTokenMiddleware(tokens, cfg.CreateTokenHash, s.logger)
	revealGuard := func(c *gin.Context) { c.Next() }
	if cfg.RevealRateLimitEnabled {
		revealGuard = secretHTTP.RevealRateLimitMiddleware(
			ctx,
			cfg.RevealRateLimitRPS,
			cfg.RevealRateLimitBurst,
			s.logger,
		)
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/secrets", createGuard, secretHandler.CreateHandler)
		v1.POST("/secrets/:id/reveal", revealGuard, secretHandler.RevealHandler)
		v1.POST("/reveal", revealGuard, secretHandler.RevealReferenceHandler)
		v1.POST("/bundles", createGuard, secretHandler.StoreBundleHandler)
		v1.GET("/bundles/:id", revealGuard, secretHandler.GetBundleHandler)
		v1.GET("/passphrase", secretHandler.PassphraseHandler)
		v1.GET("/expiry-presets", secretHandler.ExpiryPresetsHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. SetupRouter must run first.
func (s *Server) Start(_ context.Context) error {
	if s.router == nil {
		return errors.New("router not initialized, call SetupRouter first")
	}
	return s.serve(s.router)
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the store answers a ping within two seconds.
func (s *Server) readinessHandler(c *gin.Context) {
	storeStatus := "ok"
	if s.store == nil {
		storeStatus = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			storeStatus = "error"
		}
	}

	if storeStatus != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"store": storeStatus},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"store": storeStatus},
	})
}
