package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/institute-cms/internal/api"
	"github.com/institute-cms/internal/cache"
	"github.com/institute-cms/internal/config"
	"github.com/institute-cms/internal/database"
	"github.com/institute-cms/internal/repository"
	"github.com/institute-cms/internal/service"
	"github.com/institute-cms/internal/session"
	"github.com/institute-cms/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting institute CMS server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.NewWithOptions(os.Stdout, cfg.Log.Level, cfg.Log.Format == "pretty")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Published content cache and token denylist
	store, err := cache.New(&cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to cache")
	}
	defer store.Close()

	repos := repository.New(db)

	services, err := service.NewServices(repos, store, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	// Editor sessions are evicted after SESSION_IDLE_TIMEOUT
	sessions := session.NewStore(services.Content, cfg.Session, log)
	go sessions.StartJanitor(context.Background(), cfg.Session.SweepInterval)

	router := api.NewRouter(services, sessions, cfg, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	sessions.StopJanitor()
	if n := sessions.Len(); n > 0 {
		log.Warn().Int("sessions", n).Msg("Discarding open editor sessions")
	}

	log.Info().Msg("Server exited gracefully")
}
