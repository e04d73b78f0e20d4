package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/darwin-trader/internal/config"
	"github.com/aristath/darwin-trader/internal/database"
	"github.com/aristath/darwin-trader/internal/ledger"
	"github.com/aristath/darwin-trader/internal/modules/darwin"
	"github.com/aristath/darwin-trader/internal/modules/execution"
	"github.com/aristath/darwin-trader/internal/modules/overlay"
	"github.com/aristath/darwin-trader/internal/scheduler"
	"github.com/aristath/darwin-trader/internal/server"
	"github.com/aristath/darwin-trader/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; bare exit is all we can do
		panic(err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Darwin Trader")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Engine configuration: defaults plus optional YAML overrides
	engineConfig := darwin.NewConfigStore(log)
	if err := engineConfig.LoadOverrides(cfg.EngineOverridePath); err != nil {
		log.Fatal().Err(err).Msg("Failed to load engine overrides")
	}

	// Core engine wiring
	store := darwin.NewStore(engineConfig, log)
	repo := ledger.NewRepository(db.Conn(), log)
	controller := overlay.NewController(store, engineConfig, repo, overlay.NewDriftSource(), log)
	resolver := execution.NewResolver(engineConfig, log)

	// Seed the overlay from whatever the ledger already holds
	if err := controller.RebalanceFromSource(); err != nil {
		log.Warn().Err(err).Msg("Initial rebalance failed, serving fallback governance")
	}

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if err := sched.AddJob(cfg.RebalanceSchedule, scheduler.NewRebalanceJob(controller, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register rebalance job")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:              cfg.Port,
		Log:               log,
		DevMode:           cfg.DevMode,
		DarwinHandlers:    darwin.NewHandlers(store, engineConfig, log),
		OverlayHandlers:   overlay.NewHandlers(controller, log),
		ExecutionHandlers: execution.NewHandlers(resolver, controller, log),
		LedgerHandlers:    ledger.NewHandlers(repo, controller, log),
		Controller:        controller,
		Ledger:            repo,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
