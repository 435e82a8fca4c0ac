package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onyangohw/hardware_backend/models"
)

func PaginateQuotesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		var status *models.QuoteStatus
		if raw := strQuery(c, "status"); raw != nil {
			s := models.QuoteStatus(*raw)
			status = &s
		}
		fromDate, ok := dateQuery(c, "date_from")
		if !ok {
			return
		}
		toDate, ok := dateQuery(c, "date_to")
		if !ok {
			return
		}
		conn, err := models.PaginateQuote(c.Request.Context(), limit, after,
			intQuery(c, "customer_id"), status, fromDate, toDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func CreateQuoteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		var input models.NewQuote
		if !bindJSON(c, &input) {
			return
		}
		quote, err := models.CreateQuote(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, quote)
	}
}

func GetQuoteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		quote, err := models.GetQuote(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

func UpdateQuoteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewQuote
		if !bindJSON(c, &input) {
			return
		}
		quote, err := models.UpdateQuote(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

type changeQuoteStatusRequest struct {
	Status models.QuoteStatus `json:"status" binding:"required"`
}

func ChangeQuoteStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req changeQuoteStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		quote, err := models.ChangeQuoteStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

func DeleteQuoteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		quote, err := models.DeleteQuote(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}
