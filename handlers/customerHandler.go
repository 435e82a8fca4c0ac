package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onyangohw/hardware_backend/models"
)

func PaginateCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		var customerType *models.CustomerType
		if raw := strQuery(c, "customer_type"); raw != nil {
			ct := models.CustomerType(*raw)
			customerType = &ct
		}
		conn, err := models.PaginateCustomer(c.Request.Context(), limit, after,
			strQuery(c, "name"), strQuery(c, "phone"), customerType, boolQuery(c, "is_blacklisted"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func CreateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		var input models.NewCustomer
		if !bindJSON(c, &input) {
			return
		}
		customer, err := models.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

func GetCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func UpdateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewCustomer
		if !bindJSON(c, &input) {
			return
		}
		customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func DeleteCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		customer, err := models.DeleteCustomer(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}
