package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"academy/internal/catalog"
	"academy/internal/domain"
	"academy/internal/http/handlers"
	httpapi "academy/internal/http/httpapi"
	"academy/internal/infra"
	"academy/internal/infra/credentials"
	"academy/internal/infra/geoip"
	"academy/internal/middleware"
	"academy/internal/store"
	"academy/internal/tutor"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres is optional: it backs the catalog and the stored tutor key.
	src := catalog.Source{Path: cfg.CatalogPath, Logger: logger}
	creds := credentials.Chain{credentials.Static{credentials.ProviderGemini: cfg.GeminiAPIKey}}
	dbpool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case errors.Is(err, infra.ErrNoDatabase):
		logger.Info().Msg("no DATABASE_URL; running in memory")
	case err != nil:
		logger.Warn().Err(err).Msg("database unavailable; running in memory")
	default:
		defer dbpool.Close()
		runner := infra.NewSQLRunner(dbpool, logger)
		src.Repo = catalog.NewRepository(runner)
		creds = append(creds, credentials.NewStore(runner))
	}
	courses := catalog.Load(ctx, src)

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer geo.Close()

	app := handlers.NewApp(handlers.Options{
		Logger: logger,
		Reducer: &store.Reducer{
			Admins:            domain.NewAdminAllowlist(cfg.AdminEmails...),
			GuardAdminActions: cfg.EnforceAdmin,
		},
		Catalog: courses,
		TutorFactory: &tutor.GeminiFactory{
			Credentials: creds,
			BaseURL:     cfg.GeminiBaseURL,
			Model:       cfg.GeminiModel,
			Logger:      &logger,
		},
		TutorTimeout: cfg.HTTPWriteTimeout,
		MaxSessions:  cfg.MaxSessions,
	})

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		SessionStore:    middleware.NewSessionStore(cfg.SessionSecret, !cfg.IsDevelopment()),
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   geo.Lookup(),
		TutorRatePerMin: cfg.TutorRatePerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Int("courses", len(courses)).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := app.Sessions.Prune(handlers.DefaultSessionIdle, handlers.DefaultFreshIdle); n > 0 {
					logger.Debug().Int("sessions", n).Msg("pruned idle sessions")
				}
			}
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
