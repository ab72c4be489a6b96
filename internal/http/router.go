// Package httpapi wires the HTTP transport (Gin) to the lead pipeline, the
// reviews proxy, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging/redaction, panic
// recovery, metrics, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Throttling per lead route, with one limiter and namespaced identifiers
//   - All stateful collaborators injectable for tests
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/hvac-site-backend/docs"
	"github.com/tbourn/hvac-site-backend/internal/config"
	"github.com/tbourn/hvac-site-backend/internal/http/handlers"
	"github.com/tbourn/hvac-site-backend/internal/http/middleware"
	"github.com/tbourn/hvac-site-backend/internal/mailer"
	"github.com/tbourn/hvac-site-backend/internal/ratelimit"
	"github.com/tbourn/hvac-site-backend/internal/repo"
	"github.com/tbourn/hvac-site-backend/internal/services"
	"github.com/tbourn/hvac-site-backend/internal/validation"
)

// maxBodyBytes caps request bodies. Lead forms are a few hundred bytes.
const maxBodyBytes = 64 << 10

// emergencyPrefix namespaces emergency quota away from the contact form.
const emergencyPrefix = "emergency-"

// Deps carries the collaborators RegisterRoutes cannot build from config.
type Deps struct {
	// DB backs the review cache and idempotency records. Required.
	DB *gorm.DB
	// Sender delivers lead emails. Nil uses mailer.Disabled.
	Sender mailer.Sender
	// Pager pages on-call for emergencies. Nil disables paging.
	Pager services.Pager
	// Limiter throttles lead submissions. Nil builds one from cfg.RateLimit.
	Limiter *ratelimit.Limiter
	// Reviews serves GET /reviews. Nil builds a ReviewsService from cfg.Reviews.
	Reviews handlers.ReviewsService
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: health and metrics, optional Swagger UI, and the public API under
// cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and Security headers
//
// Each lead route then runs its own chain:
//
//	Recovery(route text) → IdempotencyValidator → RateLimit → handler
//
// so a replayed submission is recognized before it could consume quota.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) error {
	if deps.DB == nil {
		return errors.New("httpapi: DB is required")
	}
	r.HandleMethodNotAllowed = true

	msgs := handlers.NewMessages(cfg.Business.Phone)

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery(msgs.ContactUnexpected))

	// 5) Global body size limit
	r.Use(limitBody(maxBodyBytes))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture and security headers
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		NoStoreUnsafe: true,
		EnablePolicy:  true,
		ExposeHeaders: exposedHeaders,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: handlers ← services ← mailer/repo/db
	lim := deps.Limiter
	if lim == nil {
		var err error
		lim, err = ratelimit.New(ratelimit.Config{
			Window:      cfg.RateLimit.Window,
			MaxRequests: cfg.RateLimit.MaxRequests,
		}, ratelimit.WithSweepEvery(cfg.RateLimit.SweepEvery))
		if err != nil {
			return fmt.Errorf("httpapi: rate limiter: %w", err)
		}
	}

	sender := deps.Sender
	if sender == nil {
		sender = mailer.Disabled{}
	}
	dispatcher := services.NewDispatcher(sender, mailer.NewComposer(mailer.Business{
		Name:     cfg.Business.Name,
		Phone:    cfg.Business.Phone,
		Email:    cfg.Business.Email,
		Address:  cfg.Business.Address,
		Website:  cfg.Business.Website,
		Location: cfg.Business.Location(),
	}, cfg.Mail.To))
	dispatcher.Pager = deps.Pager
	if cfg.Mail.DispatchTimeout > 0 {
		dispatcher.Timeout = cfg.Mail.DispatchTimeout
	}

	var vopts []validation.Option
	if cfg.ServiceCatalogStrict {
		vopts = append(vopts, validation.WithServiceCatalog(cfg.Business.Services))
	}

	reviews := deps.Reviews
	if reviews == nil {
		reviews = services.NewReviewsService(deps.DB, services.GormReviewRepo{},
			cfg.Reviews.APIKey, cfg.Reviews.PlaceID, cfg.Reviews.TTL)
	}

	h := handlers.New(validation.New(vopts...), dispatcher, reviews, handlers.Options{
		Phone:          cfg.Business.Phone,
		DB:             deps.DB,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	lookup := idempotencyLookup(deps.DB)
	idemOpts := middleware.IdempotencyOptions{MaxLen: 200}
	contactKey := middleware.KeyByForwardedFor("")
	emergencyKey := middleware.KeyByForwardedFor(emergencyPrefix)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Contact form
		api.POST("/contact",
			middleware.Recovery(msgs.ContactUnexpected),
			middleware.IdempotencyValidator(idemOpts, contactKey, lookup),
			middleware.RateLimit(lim, contactKey, msgs.ContactThrottled),
			h.PostContact,
		)
		api.GET("/contact", h.ContactStatus)

		// Emergency requests
		api.POST("/emergency",
			middleware.Recovery(msgs.EmergencyUnexpected),
			middleware.IdempotencyValidator(idemOpts, emergencyKey, lookup),
			middleware.RateLimit(lim, emergencyKey, msgs.EmergencyThrottled),
			h.PostEmergency,
		)
		api.GET("/emergency", h.EmergencyStatus)

		// Reviews
		api.GET("/reviews", gzip.Gzip(gzip.DefaultCompression), h.GetReviews)
	}
	return nil
}

// exposedHeaders are readable by the site's JavaScript across origins.
var exposedHeaders = []string{"X-Request-ID", "Retry-After", middleware.HeaderIdempotencyReplayed}

// corsMiddleware returns the CORS chain. With no allowlist every origin is
// accepted without credentials; otherwise allowed origins are echoed.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true // AllowCredentials must stay false
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// idempotencyLookup reports whether a live record exists. Misses are not
// errors.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, scope, clientID, key string, now time.Time) (bool, error) {
		_, err := repo.GetIdempotency(ctx, db, scope, clientID, key, now)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, repo.ErrNotFound):
			return false, nil
		default:
			return false, err
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
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
