package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onyangohw/hardware_backend/models"
)

func PaginateExpensesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		var category *models.ExpenseCategory
		if raw := strQuery(c, "category"); raw != nil {
			ec := models.ExpenseCategory(*raw)
			category = &ec
		}
		fromDate, ok := dateQuery(c, "date_from")
		if !ok {
			return
		}
		toDate, ok := dateQuery(c, "date_to")
		if !ok {
			return
		}
		conn, err := models.PaginateExpense(c.Request.Context(), limit, after,
			intQuery(c, "unit_id"), category, fromDate, toDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func CreateExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		var input models.NewExpense
		if !bindJSON(c, &input) {
			return
		}
		expense, err := models.CreateExpense(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, expense)
	}
}

func GetExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		expense, err := models.GetExpense(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, expense)
	}
}

func UpdateExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewExpense
		if !bindJSON(c, &input) {
			return
		}
		expense, err := models.UpdateExpense(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, expense)
	}
}

func DeleteExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		expense, err := models.DeleteExpense(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, expense)
	}
}
