// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic router setup; services are constructed by the caller
//   - Static artwork (generated and placeholder) served next to the API
package httpapi

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/rehab-rewards-backend/docs" // registers the OpenAPI document
	"github.com/tbourn/rehab-rewards-backend/internal/assets"
	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/http/handlers"
	"github.com/tbourn/rehab-rewards-backend/internal/http/middleware"
)

const (
	generatedPrefix   = "/" + assets.KeyPrefix
	placeholderPrefix = "/" + assets.PlaceholderPrefix
	analyzeVideoPath  = "/analyze-video"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), CORS and security
// headers, bearer authentication, idempotency and rate limiting, the health,
// metrics, docs and static artwork endpoints, and then mounts the public API
// under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured logs with query/header redaction
//  4. Recovery: capture panics after logger
//  5. Body size limiter (larger cap for video analysis)
//  6. Metrics
//  7. CORS and Security headers
//  8. gzip (static artwork and JSON lists)
//  9. AuthOptional: resolve the bearer principal, if any
//  10. Idempotency (keyed by principal, so after auth)
//  11. Rate limiter (per account/IP)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, deps handlers.Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Body size limits
	r.Use(limitBody(cfg.MaxBodyBytes, map[string]int64{
		strings.TrimRight(cfg.APIBasePath, "/") + analyzeVideoPath: cfg.MaxVideoBytes,
	}))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", middleware.HeaderIdempotentReplay, "Retry-After"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps
		// <img> tags pointing at generated artwork and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:     cfg.Security.EnableHSTS,
		HSTSMaxAge:     cfg.Security.HSTSMaxAge,
		NoStore:        true,
		EnablePolicy:   true,
		PublicPrefixes: []string{generatedPrefix + "/", placeholderPrefix + "/"},
	}))

	// 8) Compression
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 9) Bearer principal
	r.Use(middleware.AuthOptional(cfg.Auth.JWTSecret))

	// 10) Idempotency for unsafe methods carrying Idempotency-Key
	r.Use(middleware.Idempotency(
		middleware.IdempotencyOptions{MaxLen: 200},
		middleware.DBIdempotencyStore{DB: db, TTL: cfg.IdempotencyTTL},
	))

	// 11) Token-bucket rate limiter per account/IP
	rl := middleware.NewRateLimiter("api", cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// Mints and video analysis call paid collaborators; they get a tighter
	// bucket of their own on top of the general one.
	collab := middleware.NewRateLimiter("collaborators", cfg.CollabRPS, cfg.CollabBurst, middleware.KeyByUserOrIP()).Handler()

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Static artwork. Generated images are only served from disk when the
	// local store is in use; S3 URLs point at the bucket directly.
	if cfg.Assets.Store == "local" {
		r.Static(generatedPrefix, filepath.Join(cfg.Assets.Dir, assets.KeyPrefix))
	}
	r.StaticFS(placeholderPrefix, http.FS(assets.Placeholders()))

	h := handlers.New(deps)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Auth
		api.POST("/auth/signup", h.Signup)
		api.POST("/auth/signin", h.Signin)

		// NFTs
		nft := api.Group("/nft", collab)
		nft.POST("/generate-image", h.GenerateImage)
		nft.POST("/generate-and-mint", h.GenerateAndMint)
		nft.POST("/mint-signed", middleware.RequireRole(domain.RolePatient), h.MintSigned)

		// Video analysis
		api.POST(analyzeVideoPath, collab, h.AnalyzeVideo)

		// Dashboard
		api.GET("/exercises", h.ListExercises)
		api.POST("/routines", middleware.RequireRole(domain.RoleDoctor), h.CreateRoutine)
		api.POST("/completions", middleware.RequireAuth(), h.RecordCompletion)
		patients := api.Group("/patients/:id", middleware.RequireAuth())
		patients.GET("/routines", h.ListRoutines)
		patients.GET("/progress", h.Progress)
		patients.GET("/nfts", h.ListNFTs)
	}
}

// limitBody returns a Gin middleware that caps the request body size to
// maxBytes using http.MaxBytesReader, or to the per-path cap in overrides.
// Requests exceeding the cap will cause downstream body reads to error.
func limitBody(maxBytes int64, overrides map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if n, ok := overrides[strings.TrimRight(c.Request.URL.Path, "/")]; ok {
			limit = n
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
