package handlers

import (
	"net/http"
	"time"

	"applyflow/internal/engine"
	"applyflow/internal/logging"
	"applyflow/pkg/models"

	"github.com/labstack/echo/v4"
)

// PendingConfirmationsHandler lists applications waiting on a submission decision.
func PendingConfirmationsHandler(confirmer *engine.PendingConfirmer) echo.HandlerFunc {
	return func(c echo.Context) error {
		pending := confirmer.List()
		return c.JSON(http.StatusOK, models.PendingConfirmationListResponse{
			Success: true,
			Pending: pending,
			Count:   len(pending),
		})
	}
}

// ResolveConfirmationHandler records the reviewer's decision for a pending
// submission. The blocked application task resumes as soon as the decision
// is delivered.
func ResolveConfirmationHandler(confirmer *engine.PendingConfirmer) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := getRequestID(c)
		processID := c.Param("processId")
		logger := logging.GetGlobalLogger()

		var req models.ConfirmRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := confirmer.Resolve(processID, req.Confirm); err != nil {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "confirmation_not_found",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Submission decision recorded", map[string]interface{}{
			"request_id": requestID,
			"process_id": processID,
			"confirmed":  req.Confirm,
		})

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":    true,
			"process_id": processID,
			"confirmed":  req.Confirm,
		})
	}
}
