package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doomsday-orchestrator/api/rest/routes"
	"doomsday-orchestrator/config"
	"doomsday-orchestrator/core/engine"
	"doomsday-orchestrator/core/guestbook"
	"doomsday-orchestrator/core/orchestrator"
	"doomsday-orchestrator/core/storage"
	"doomsday-orchestrator/core/storage/dynamo"
	"doomsday-orchestrator/core/storage/memory"
	"doomsday-orchestrator/core/storage/postgres"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	pres, err := config.LoadPresentation(cfg.PresentationPath)
	if err != nil {
		logger.Fatal("Failed to load presentation config", zap.Error(err))
	}

	// Initialize store backend
	jobStore, gbStore, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer cleanup()
	logger.Info("Store initialized", zap.String("backend", cfg.StoreBackend))

	// Initialize analysis engine
	var eng engine.Engine
	if cfg.BedrockAgentID != "" {
		eng, err = engine.NewBedrock(ctx, cfg.AWSRegion, cfg.BedrockAgentID, cfg.BedrockAgentAliasID)
		if err != nil {
			logger.Fatal("Failed to initialize Bedrock engine", zap.Error(err))
		}
		logger.Info("Bedrock engine initialized", zap.String("agent_id", cfg.BedrockAgentID))
	} else {
		eng = engine.NewScripted(3 * time.Second)
		logger.Info("No Bedrock agent configured, using scripted engine")
	}

	// Initialize orchestrator and guestbook manager
	orch := orchestrator.New(jobStore, eng, orchestrator.Options{
		RejectResubmit:  cfg.RejectResubmit,
		AnalysisTimeout: cfg.AnalysisTimeout,
	}, logger)
	manager := guestbook.NewManager(gbStore, pres.ReactionEmojis, logger)

	// Setup routes
	r := mux.NewRouter()
	routes.SetupRoutes(r, orch, manager, logger)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

func buildStores(ctx context.Context, cfg *config.Config) (storage.JobStore, storage.GuestbookStore, func(), error) {
	switch cfg.StoreBackend {
	case "dynamo":
		store, err := dynamo.New(ctx, cfg.AWSRegion, dynamo.Tables{
			Jobs:           cfg.JobsTable,
			Guestbook:      cfg.GuestbookTable,
			GuestbookIndex: cfg.GuestbookIndex,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, func() {}, nil
	case "postgres":
		store, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		return store, store, func() { store.Close() }, nil
	case "memory":
		store := memory.New()
		return store, store, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
