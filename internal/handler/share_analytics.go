package handler

import (
	"GoDrop/internal/service"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the admin share-access analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs an AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// ListAccessLogs returns recent share access logs.
func (h *AnalyticsHandler) ListAccessLogs(c *gin.Context) {
	limit := parsePositiveInt(c.Query("limit"), 50)
	shareID := strings.TrimSpace(c.Query("share_id"))

	items, err := h.analytics.ListShareAccessLogs(c.Request.Context(), shareID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetAccessStats returns grouped access stats over a trailing window.
func (h *AnalyticsHandler) GetAccessStats(c *gin.Context) {
	days := parsePositiveInt(c.Query("days"), 30)

	stats, err := h.analytics.GetShareAccessStats(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": stats})
}
