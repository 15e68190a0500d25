package handlers

import (
	"net/http"
	"time"

	"applyflow/internal/engine"
	"applyflow/pkg/models"

	"github.com/labstack/echo/v4"
)

// LastReportHandler returns the outcome of the most recently finished
// application run, including its per-field fill report.
func LastReportHandler(applicator *engine.Applicator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := getRequestID(c)

		outcome := applicator.LastOutcome()
		if outcome == nil {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "no_report",
				Message:   "No application has completed yet",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, models.ApplyResponse{
			Success:        outcome.Status == models.ApplySubmitted,
			Outcome:        outcome,
			ProcessingTime: outcome.Duration,
			RequestID:      requestID,
		})
	}
}
