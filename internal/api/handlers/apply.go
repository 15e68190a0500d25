package handlers

import (
	"net/http"

	"applyflow/internal/engine"
	"applyflow/internal/logging"
	"applyflow/internal/tasks"
	"applyflow/pkg/models"
	"applyflow/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ApplyHandler accepts an application request and queues it for background
// processing. The response carries the process ID used to poll for status and
// to resolve the submission confirmation.
func ApplyHandler(taskManager *tasks.Manager, applicator *engine.Applicator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := getRequestID(c)
		logger := logging.GetGlobalLogger()

		var req models.ApplyRequest
		if err := c.Bind(&req); err != nil {
			logger.Warn("Failed to bind apply request", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"invalid_request", "Invalid request format", requestID))
		}

		if err := validate.Struct(&req); err != nil {
			logger.Warn("Apply request validation failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"validation_failed", err.Error(), requestID))
		}

		processID := utils.GenerateRequestID()

		if err := taskManager.SubmitApplyTask(c.Request().Context(), processID, &req, applicator); err != nil {
			logger.Error("Failed to submit apply task", map[string]interface{}{
				"request_id": requestID,
				"process_id": processID,
				"url":        req.URL,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusServiceUnavailable, models.CreateAsyncErrorResponse(
				"queue_full", "Task queue is full, try again later", processID))
		}

		logger.Info("Application task accepted", map[string]interface{}{
			"request_id": requestID,
			"process_id": processID,
			"url":        req.URL,
		})

		return c.JSON(http.StatusAccepted, models.CreateAsyncApplyResponse(processID))
	}
}

// ApplyStatusHandler returns the current state of a background application task.
func ApplyStatusHandler(taskManager *tasks.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := getRequestID(c)
		processID := c.Param("processId")

		result, err := taskManager.GetTaskResult(c.Request().Context(), processID)
		if err != nil {
			return c.JSON(http.StatusNotFound, models.CreateAsyncErrorResponse(
				"task_not_found", "No task found for process ID", requestID))
		}

		response := models.AsyncTaskStatusResponse{
			ProcessID:      result.ProcessID,
			Status:         models.AsyncStatus(result.Status),
			Error:          result.Error,
			CreatedAt:      result.CreatedAt,
			CompletedAt:    result.CompletedAt,
			ProcessingTime: result.ProcessingTime,
			Metadata:       result.Metadata,
		}

		if data, ok := result.Data.(*tasks.ApplyTaskData); ok && data.Outcome != nil {
			response.Data = &models.AsyncApplyCompletionData{
				Outcome: data.Outcome,
				UsedLLM: true,
			}
		}

		return c.JSON(http.StatusOK, response)
	}
}

// getRequestID retrieves the request ID set by the validation middleware.
func getRequestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok {
		return id
	}
	return utils.GenerateRequestID()
}
