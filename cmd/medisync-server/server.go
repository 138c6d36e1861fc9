package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/medisync/medisync/internal/config"
	"github.com/medisync/medisync/internal/domain/dashboard"
	"github.com/medisync/medisync/internal/domain/identity"
	"github.com/medisync/medisync/internal/domain/medication"
	"github.com/medisync/medisync/internal/domain/patient"
	"github.com/medisync/medisync/internal/domain/treatment"
	"github.com/medisync/medisync/internal/platform/audittrail"
	"github.com/medisync/medisync/internal/platform/auth"
	"github.com/medisync/medisync/internal/platform/blobstore"
	"github.com/medisync/medisync/internal/platform/middleware"
	"github.com/medisync/medisync/internal/store"
)

const version = "1.0.0"

// newServer wires the record store and photo store into an echo server with
// the full middleware chain.
func newServer(cfg *config.Config, logger zerolog.Logger, records *store.Store, photos blobstore.BlobStore, revoked *auth.TokenRevocationStore) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		store.NewCollector(records),
	)
	httpMetrics := middleware.NewHTTPMetrics(reg)

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.UploadLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	e.Use(httpMetrics.Middleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	sessions := auth.NewSessionManager(auth.SessionConfig{
		Secret:       []byte(cfg.SessionSecret),
		TTL:          cfg.SessionTTL,
		SecureCookie: cfg.IsProduction(),
	}, revoked)

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	trail := audittrail.New(audittrail.DefaultCapacity)
	api := e.Group("/api",
		auth.RequireSession(sessions),
		middleware.RateLimit(rateLimitCfg),
		middleware.Audit(logger, trail),
		middleware.RequestTimeout(cfg.RequestTimeout),
	)

	hasher := auth.BcryptHasher{Cost: cfg.BcryptCost}
	identity.NewHandler(identity.NewService(records, hasher), sessions).RegisterRoutes(api)
	patient.NewHandler(patient.NewService(records)).RegisterRoutes(api)
	medication.NewHandler(medication.NewService(records, records.Horizon())).RegisterRoutes(api)
	treatment.NewHandler(treatment.NewService(records, records)).RegisterRoutes(api)
	blobstore.NewHandler(photos, "/api/treatments/photos/", logger).RegisterRoutes(api)
	dashboard.NewHandler(dashboard.NewService(records, records.Horizon())).RegisterRoutes(api)
	audittrail.NewHandler(trail).RegisterRoutes(api)

	return e
}
