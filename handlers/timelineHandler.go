package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onyangohw/hardware_backend/models"
)

func PaginateTimelineHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		var eventType *models.TimelineEventType
		if raw := strQuery(c, "event_type"); raw != nil {
			et := models.TimelineEventType(*raw)
			eventType = &et
		}
		conn, err := models.PaginateTimeline(c.Request.Context(), limit, after,
			intQuery(c, "unit_id"), eventType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func PaginateActivityLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		conn, err := models.PaginateActivityLog(c.Request.Context(), limit, after,
			strQuery(c, "reference_type"), intQuery(c, "reference_id"),
			intQuery(c, "user_id"), strQuery(c, "action_type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}
