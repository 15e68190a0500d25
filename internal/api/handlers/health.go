package handlers

import (
	"net/http"
	"time"

	"applyflow/internal/browser"
	"applyflow/internal/llm"
	"applyflow/internal/tasks"
	"applyflow/pkg/models"
	"applyflow/pkg/utils"

	"github.com/labstack/echo/v4"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthHandler reports overall service health along with per-component checks.
func HealthHandler(llmManager *llm.Manager, browserManager *browser.Manager, taskManager *tasks.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := make(map[string]string)
		status := "healthy"

		if llmManager.IsHealthy() {
			checks["llm"] = "healthy"
		} else {
			checks["llm"] = "unhealthy"
			status = "degraded"
		}

		if browserManager.IsHealthy() {
			checks["browser"] = "healthy"
		} else {
			checks["browser"] = "unhealthy"
			status = "degraded"
		}

		if taskManager.IsHealthy() {
			checks["tasks"] = "healthy"
		} else {
			checks["tasks"] = "unhealthy"
			status = "degraded"
		}

		httpStatus := http.StatusOK
		if status != "healthy" {
			httpStatus = http.StatusServiceUnavailable
		}

		return c.JSON(httpStatus, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// ReadinessHandler reports whether the service can accept application work.
func ReadinessHandler(browserManager *browser.Manager, taskManager *tasks.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !browserManager.IsHealthy() || !taskManager.IsHealthy() {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
			})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status": "ready",
		})
	}
}

// LivenessHandler reports whether the process is alive.
func LivenessHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "alive",
		})
	}
}

// StatusHandler returns detailed runtime information for debugging.
func StatusHandler(llmManager *llm.Manager, taskManager *tasks.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		taskResults, err := taskManager.ListTasks(c.Request().Context())
		if err != nil {
			taskResults = nil
		}
		activeStatuses := []string{string(tasks.TaskStatusAccepted), string(tasks.TaskStatusProcessing)}
		active := 0
		for _, result := range taskResults {
			if utils.Contains(activeStatuses, string(result.Status)) {
				active++
			}
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":       "running",
			"version":      version,
			"uptime":       utils.FormatDuration(time.Since(startTime)),
			"llm_provider": llmManager.GetProviderName(),
			"llm_healthy":  llmManager.IsHealthy(),
			"tasks": map[string]interface{}{
				"total":  len(taskResults),
				"active": active,
			},
			"timestamp": time.Now(),
		})
	}
}
