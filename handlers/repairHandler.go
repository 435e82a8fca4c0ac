package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onyangohw/hardware_backend/models"
)

func PaginateRepairJobsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		var status *models.RepairJobStatus
		if raw := strQuery(c, "status"); raw != nil {
			s := models.RepairJobStatus(*raw)
			status = &s
		}
		var priority *models.RepairPriority
		if raw := strQuery(c, "priority"); raw != nil {
			p := models.RepairPriority(*raw)
			priority = &p
		}
		fromDate, ok := dateQuery(c, "date_from")
		if !ok {
			return
		}
		toDate, ok := dateQuery(c, "date_to")
		if !ok {
			return
		}
		conn, err := models.PaginateRepairJob(c.Request.Context(), limit, after,
			intQuery(c, "customer_id"), status, priority, intQuery(c, "assigned_to"), fromDate, toDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func CreateRepairJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		var input models.NewRepairJob
		if !bindJSON(c, &input) {
			return
		}
		job, err := models.CreateRepairJob(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, job)
	}
}

func GetRepairJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		job, err := models.GetRepairJob(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "repair job not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func UpdateRepairJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewRepairJob
		if !bindJSON(c, &input) {
			return
		}
		job, err := models.UpdateRepairJob(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func CompleteRepairJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, workshopRoles...) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		job, err := models.CompleteRepairJob(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func CollectRepairJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, workshopRoles...) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		job, err := models.CollectRepairJob(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func DeleteRepairJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		job, err := models.DeleteRepairJob(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func GetRepairJobInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		invoice, err := models.GetRepairInvoiceByJob(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "repair invoice not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func CreateRepairPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, workshopRoles...) {
			return
		}
		var input models.NewRepairPayment
		if !bindJSON(c, &input) {
			return
		}
		payment, err := models.CreateRepairPayment(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, payment)
	}
}

func PaginateRepairPaymentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		fromDate, ok := dateQuery(c, "date_from")
		if !ok {
			return
		}
		toDate, ok := dateQuery(c, "date_to")
		if !ok {
			return
		}
		conn, err := models.PaginateRepairPayment(c.Request.Context(), limit, after,
			intQuery(c, "invoice_id"), fromDate, toDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func GetRepairPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		payment, err := models.GetRepairPayment(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "repair payment not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}
