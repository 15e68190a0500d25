package routes

import (
	"applyflow/internal/api/handlers"
	"applyflow/internal/api/middleware"
	"applyflow/internal/browser"
	"applyflow/internal/config"
	"applyflow/internal/engine"
	"applyflow/internal/llm"
	"applyflow/internal/schemacache"
	"applyflow/internal/tasks"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// Dependencies holds everything the HTTP layer needs to serve requests.
type Dependencies struct {
	Config         *config.Config
	LLMManager     *llm.Manager
	BrowserManager *browser.Manager
	TaskManager    *tasks.Manager
	Applicator     *engine.Applicator
	Confirmer      *engine.PendingConfirmer
	SchemaCache    schemacache.Store
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, deps *Dependencies) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.TimeoutConfig(deps.Config.Server.ReadTimeout))

	// Health check endpoints
	e.GET("/health", handlers.HealthHandler(deps.LLMManager, deps.BrowserManager, deps.TaskManager))
	e.GET("/health/ready", handlers.ReadinessHandler(deps.BrowserManager, deps.TaskManager))
	e.GET("/health/live", handlers.LivenessHandler())
	e.GET("/status", handlers.StatusHandler(deps.LLMManager, deps.TaskManager))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.POST("/apply", handlers.ApplyHandler(deps.TaskManager, deps.Applicator))
		v1.GET("/apply/:processId", handlers.ApplyStatusHandler(deps.TaskManager))

		v1.GET("/confirmations", handlers.PendingConfirmationsHandler(deps.Confirmer))
		v1.POST("/confirmations/:processId", handlers.ResolveConfirmationHandler(deps.Confirmer))

		v1.GET("/report/last", handlers.LastReportHandler(deps.Applicator))

		v1.DELETE("/cache/:site", handlers.ClearCacheHandler(deps.SchemaCache))
	}
}
