package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rsheldon/tradelog/internal/auth"
	"github.com/rsheldon/tradelog/internal/config"
	"github.com/rsheldon/tradelog/internal/database"
	"github.com/rsheldon/tradelog/internal/modules/accounts"
	"github.com/rsheldon/tradelog/internal/modules/analytics"
	"github.com/rsheldon/tradelog/internal/modules/audit"
	"github.com/rsheldon/tradelog/internal/modules/journals"
	"github.com/rsheldon/tradelog/internal/modules/ohlc"
	"github.com/rsheldon/tradelog/internal/modules/strategies"
	"github.com/rsheldon/tradelog/internal/modules/trades"
	"github.com/rsheldon/tradelog/internal/scheduler"
	"github.com/rsheldon/tradelog/internal/server"
	"github.com/rsheldon/tradelog/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Level: "info", Pretty: true}).
			Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting trade journal service")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Repositories
	accountRepo := accounts.NewRepository(db.Conn(), log)
	tradeRepo := trades.NewRepository(db.Conn(), log)
	journalRepo := journals.NewRepository(db.Conn(), log)
	strategyRepo := strategies.NewRepository(db.Conn(), log)
	ohlcRepo := ohlc.NewRepository(db.Conn(), log)
	auditRepo := audit.NewRepository(db.Conn(), log)

	// Services
	auditor := audit.NewRecorder(auditRepo, log)
	tradeService := trades.NewService(tradeRepo, log)
	analyticsService := analytics.NewService(tradeService, accountRepo, cfg.StatsCacheTTL, log)

	// Scheduler and background jobs
	sched := scheduler.New(log)
	if err := sched.AddJob("@hourly", trades.NewMetricsHealJob(tradeRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register heal job")
	}
	if err := sched.AddJob("@daily", audit.NewPruneJob(auditRepo, cfg.AuditRetentionDays, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register prune job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		Config:   cfg,
		Verifier: auth.NewVerifier(cfg.JWTSecret),
		Modules: []server.RouteRegistrar{
			accounts.NewHandlers(accountRepo, auditor, log),
			trades.NewHandlers(tradeService, auditor, analyticsService, log),
			journals.NewHandlers(journalRepo, auditor, log),
			strategies.NewHandlers(strategyRepo, auditor, log),
			ohlc.NewHandlers(ohlcRepo, tradeService, log),
			analytics.NewHandlers(analyticsService, log),
			audit.NewHandlers(auditRepo, log),
		},
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
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
