package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"applyflow/internal/logging"
	"applyflow/internal/schemacache"
	"applyflow/pkg/models"

	"github.com/labstack/echo/v4"
)

// ClearCacheHandler drops the cached form schema for a site so the next
// application against it re-derives the structure from the live page.
func ClearCacheHandler(cache schemacache.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := getRequestID(c)
		siteKey := strings.ToLower(strings.TrimSpace(c.Param("site")))
		logger := logging.GetGlobalLogger()

		if siteKey == "" {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_site",
				Message:   "Site key is required",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := cache.Clear(c.Request().Context(), siteKey); err != nil {
			logger.Error("Failed to clear cached schema", map[string]interface{}{
				"request_id": requestID,
				"site_key":   siteKey,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "cache_error",
				Message:   "Failed to clear cached schema",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Cached schema cleared", map[string]interface{}{
			"request_id": requestID,
			"site_key":   siteKey,
		})

		return c.JSON(http.StatusOK, models.CacheClearResponse{
			Success: true,
			SiteKey: siteKey,
			Message: fmt.Sprintf("Cached schema for %s cleared", siteKey),
		})
	}
}
