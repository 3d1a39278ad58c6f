package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/rinkstats/hockey-stats-service/internal/config"
	"github.com/rinkstats/hockey-stats-service/internal/handler"
	"github.com/rinkstats/hockey-stats-service/internal/logger"
	"github.com/rinkstats/hockey-stats-service/internal/metrics"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rinkstats/hockey-stats-service/internal/repository/postgres"
	"github.com/rinkstats/hockey-stats-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load application config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		log.Fatalf("❌ Postgres connection failed: %v", err)
	}
	defer repo.Close()

	pool := repo.Pool()
	teams := postgres.NewTeamRepository(pool)
	players := postgres.NewPlayerRepository(pool)
	games := postgres.NewGameRepository(pool)
	events := postgres.NewEventRepository(pool)
	atomicStats := postgres.NewGameStatRepository(pool)
	aggregates := postgres.NewPlayerStatRepository(pool)
	txManager := postgres.NewTxManager(pool)
	pinger := postgres.NewPinger(pool)

	m := metrics.New()

	resolver := service.NewPlusMinusResolver(players, games)
	recorder := service.NewRecorder(atomicStats, players, resolver, m, appLogger)
	aggregator := service.NewAggregator(atomicStats, aggregates, txManager, m, appLogger)

	teamSvc := service.NewTeamService(teams, appLogger)
	playerSvc := service.NewPlayerService(players, teams, aggregates, appLogger)
	gameSvc := service.NewGameService(games, teams, appLogger)
	eventSvc := service.NewEventService(events, games, recorder, txManager, appLogger)
	reprocessor := service.NewReprocessor(
		events, atomicStats, players, recorder, aggregator, txManager,
		cfg.Pipeline.MaxWorkers, time.Duration(cfg.Pipeline.UnitTimeout)*time.Second,
		m, appLogger,
	)
	consistency := service.NewConsistencyReporter(events, atomicStats, aggregates, m, appLogger)

	engine := gin.New()
	engine.Use(gin.Recovery())
	handler.Register(engine, pinger, teamSvc, playerSvc, gameSvc, eventSvc, reprocessor, consistency)

	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}
	metricsServer := metrics.NewServer(cfg.Server.MetricsPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info().Int("port", cfg.Server.Port).Msg("🚀 API server started")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		appLogger.Info().Int("port", cfg.Server.MetricsPort).Msg("📈 Metrics server started")
		return metricsServer.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error().Err(err).Msg("API server shutdown failed")
		}
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Fatal().Err(err).Msg("service exited with error")
	}
	appLogger.Info().Msg("service stopped")
}
