package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onyangohw/hardware_backend/models"
)

func PaginatePurchaseOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		var status *models.PurchaseOrderStatus
		if raw := strQuery(c, "status"); raw != nil {
			s := models.PurchaseOrderStatus(*raw)
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
		conn, err := models.PaginatePurchaseOrder(c.Request.Context(), limit, after,
			intQuery(c, "supplier_id"), status, fromDate, toDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func CreatePurchaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager, models.UserRoleStorekeeper) {
			return
		}
		var input models.NewPurchaseOrder
		if !bindJSON(c, &input) {
			return
		}
		order, err := models.CreatePurchaseOrder(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func GetPurchaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		order, err := models.GetPurchaseOrder(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "purchase order not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func UpdatePurchaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager, models.UserRoleStorekeeper) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewPurchaseOrder
		if !bindJSON(c, &input) {
			return
		}
		order, err := models.UpdatePurchaseOrder(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func SendPurchaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager, models.UserRoleStorekeeper) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		order, err := models.SendPurchaseOrder(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func ClosePurchaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager, models.UserRoleStorekeeper) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		order, err := models.ClosePurchaseOrder(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func DeletePurchaseOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		order, err := models.DeletePurchaseOrder(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

type receiveGoodsRequest struct {
	PurchaseOrderId int `json:"purchase_order_id" binding:"required"`
	models.NewGoodsReceipt
}

func ReceiveGoodsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager, models.UserRoleStorekeeper) {
			return
		}
		var req receiveGoodsRequest
		if !bindJSON(c, &req) {
			return
		}
		receipt, err := models.ReceiveGoods(c.Request.Context(), req.PurchaseOrderId, &req.NewGoodsReceipt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, receipt)
	}
}

func PaginateGoodsReceiptsHandler() gin.HandlerFunc {
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
		conn, err := models.PaginateGoodsReceipt(c.Request.Context(), limit, after,
			intQuery(c, "purchase_order_id"), fromDate, toDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func GetGoodsReceiptHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		receipt, err := models.GetGoodsReceipt(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "goods receipt not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, receipt)
	}
}
