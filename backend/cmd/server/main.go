package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamgraph/backend/internal/analysis"
	"teamgraph/backend/internal/graph"
	"teamgraph/backend/pkg/config"
	"teamgraph/backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting analytics API server...")

	ctx := context.Background()
	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer driver.Close(context.Background())

	graphRepo := graph.NewRepository(driver)
	if err := graphRepo.EnsureConstraints(ctx); err != nil {
		log.Warn("Failed to ensure graph constraints", zap.Error(err))
	}

	analyzer := analysis.NewAnalyzer(analysis.Options{
		LabelIterations:  cfg.LabelIterations,
		TSNESteps:        cfg.TSNESteps,
		Perplexity:       cfg.TSNEPerplexity,
		AdjustmentFactor: cfg.LayoutAdjustmentFactor,
		Seed:             cfg.AnalysisSeed,
	}, log)
	svc := analysis.NewService(graphRepo, analyzer)

	router := newRouter(svc, log, cfg.IsProduction())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
