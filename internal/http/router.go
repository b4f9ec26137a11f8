// Package httpapi wires the HTTP transport (Gin) to the session machinery,
// middleware pipeline, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging, panic recovery,
// metrics, admission control, CORS, security headers, and session state.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery →
//     normalizer) so every failure path produces exactly one envelope
//   - Admission control ahead of session and auth work, so abusive clients
//     never reach the expensive stages
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/globetrotter-app/go-trip-gateway/internal/apperr"
	"github.com/globetrotter-app/go-trip-gateway/internal/collab"
	"github.com/globetrotter-app/go-trip-gateway/internal/config"
	"github.com/globetrotter-app/go-trip-gateway/internal/http/handlers"
	"github.com/globetrotter-app/go-trip-gateway/internal/http/middleware"
	"github.com/globetrotter-app/go-trip-gateway/internal/services"
	"github.com/globetrotter-app/go-trip-gateway/internal/session"
)

// Deps carries the injected collaborators the router binds together.
type Deps struct {
	Auth     *services.AuthService
	Sessions session.Store
	Collab   collab.Registry
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs with email scrubbing
//  4. Metrics: observes the status after every later stage has written
//  5. gzip: must wrap Recovery and the normalizer, whose bodies are
//     written on chain unwind and have to reach a still-open compressor
//  6. Recovery: capture panics after logger
//  7. ErrorNormalizer: one envelope per failed request
//  8. SecurityHeaders: posture even on short-circuited replies
//  9. WindowLimiter over /api, optional AuthGuard over /api/auth
//  10. CORS (allowlist + credentials, cookies require exact origins)
//  11. Session: every surviving request gets its session state
//  12. Body size limit ahead of any JSON decoding
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorNormalizer())

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Admission control covers the API surface only; health and metrics
	// probes stay reachable for orchestrators.
	wl := middleware.NewWindowLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max)
	r.Use(wl.Handler("/api/", middleware.KeyByClientIP()))
	r.Use(middleware.NewAuthGuard(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst, "/api/auth").Handler())

	// Session cookies require echoing exact origins; wildcard origins cannot
	// carry credentials.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	codec := session.NewCodec(cfg.Session.Secret)
	r.Use(middleware.Session(deps.Sessions, codec, deps.Auth, cfg.Session))

	r.Use(limitBody(cfg.BodyLimit))

	// Fallback: unmatched paths go through the normalizer like any failure.
	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperr.NotFound(""))
		c.Abort()
	})

	// Liveness; reachable even when storage is down.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "Server is running",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": cfg.Environment,
		})
	})

	h := handlers.NewAuthHandlers(deps.Auth, deps.Sessions)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)

		deps.Collab.Apply(api)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader. Requests exceeding the cap cause downstream body
// reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
