package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"applyflow/internal/api/routes"
	"applyflow/internal/browser"
	"applyflow/internal/config"
	"applyflow/internal/engine"
	"applyflow/internal/llm"
	"applyflow/internal/logging"
	"applyflow/internal/ratelimit"
	"applyflow/internal/schemacache"
	"applyflow/internal/tasks"

	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting application engine")

	// Initialize LLM manager
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Fatal("Failed to start LLM manager", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize browser manager
	browserManager := browser.NewManager(cfg)
	if err := browserManager.Start(); err != nil {
		logger.Fatal("Failed to start browser", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize schema cache
	schemaCache, err := schemacache.NewStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize schema cache", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Wire the application engine
	limiter := ratelimit.NewHostLimiter(cfg)
	confirmer := engine.NewPendingConfirmer()
	analyzer := engine.NewAnalyzer(llmManager, schemaCache)
	generator := engine.NewGenerator(llmManager)
	sessions := engine.SessionFunc(func() (engine.Surface, error) {
		return browserManager.NewSession()
	})
	applicator := engine.NewApplicator(cfg, sessions, analyzer, generator, confirmer, limiter)

	// Initialize background task manager
	taskManager := tasks.NewManager(cfg)
	ctx := context.Background()
	if err := taskManager.Start(ctx); err != nil {
		logger.Fatal("Failed to start task manager", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, &routes.Dependencies{
		Config:         cfg,
		LLMManager:     llmManager,
		BrowserManager: browserManager,
		TaskManager:    taskManager,
		Applicator:     applicator,
		Confirmer:      confirmer,
		SchemaCache:    schemaCache,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop task manager first so in-flight applications finish or abort
		logger.Info("Stopping background task manager...")
		if err := taskManager.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping task manager", map[string]interface{}{
				"error": err.Error(),
			})
		}

		limiter.Stop()

		logger.Info("Stopping browser...")
		if err := browserManager.Close(); err != nil {
			logger.Error("Error stopping browser", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Stopping LLM manager...")
		if err := llmManager.Stop(); err != nil {
			logger.Error("Error stopping LLM manager", map[string]interface{}{
				"error": err.Error(),
			})
		}

		if err := schemaCache.Close(); err != nil {
			logger.Error("Error closing schema cache", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address": address,
	})

	if err := e.Start(address); err != nil {
		logger.Fatal("Server failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
