package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/workflow"
)

func PaginateMaterialRequestsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		var status *models.MaterialRequestStatus
		if raw := strQuery(c, "status"); raw != nil {
			s := models.MaterialRequestStatus(*raw)
			status = &s
		}
		conn, err := models.PaginateMaterialRequest(c.Request.Context(), limit, after,
			status, intQuery(c, "repair_job_id"), intQuery(c, "requested_by"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func CreateMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		var input models.NewMaterialRequest
		if !bindJSON(c, &input) {
			return
		}
		request, err := models.CreateMaterialRequest(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, request)
	}
}

func GetMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		request, err := models.GetMaterialRequest(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "material request not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

// Approved requests route through the reconciling update so the confirmed
// transfer order and shop stock stay in step with the edited lines.
func UpdateMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewMaterialRequest
		if !bindJSON(c, &input) {
			return
		}
		request, err := models.UpdateMaterialRequest(c.Request.Context(), id, &input)
		if errors.Is(err, models.ErrMaterialRequestApproved) {
			if !requireRoles(c, shopFinanceRoles...) {
				return
			}
			request, err = workflow.UpdateApprovedMaterialRequest(c.Request.Context(), id, &input)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

func DeleteMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		request, err := models.DeleteMaterialRequest(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

func SubmitMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		request, err := workflow.SubmitMaterialRequest(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

func ResubmitMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		request, err := workflow.ResubmitMaterialRequest(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

func ApproveMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, shopFinanceRoles...) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		approval, err := workflow.ApproveMaterialRequest(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, approval)
	}
}

type rejectMaterialRequestRequest struct {
	Reason string `json:"reason"`
}

func RejectMaterialRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, shopFinanceRoles...) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req rejectMaterialRequestRequest
		// reason is optional, an empty body rejects without one
		_ = c.ShouldBindJSON(&req)
		request, err := workflow.RejectMaterialRequest(c.Request.Context(), id, req.Reason)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

func PaginateTransferOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		limit, after := pageParams(c)
		var status *models.TransferOrderStatus
		if raw := strQuery(c, "status"); raw != nil {
			s := models.TransferOrderStatus(*raw)
			status = &s
		}
		var tab *models.TransferTab
		if raw := strQuery(c, "tab"); raw != nil {
			t := models.TransferTab(*raw)
			tab = &t
		}
		fromDate, ok := dateQuery(c, "date_from")
		if !ok {
			return
		}
		toDate, ok := dateQuery(c, "date_to")
		if !ok {
			return
		}
		conn, err := models.PaginateTransferOrder(c.Request.Context(), limit, after,
			status, tab, fromDate, toDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func GetTransferOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		order, err := models.GetTransferOrder(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "transfer order not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func PayTransferOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, workshopRoles...) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input workflow.NewTransferPayment
		if !bindJSON(c, &input) {
			return
		}
		result, err := workflow.PayTransferOrder(c.Request.Context(), id, &input,
			c.GetHeader("Idempotency-Key"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func PaginateTransferSettlementsHandler() gin.HandlerFunc {
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
		conn, err := models.PaginateTransferSettlement(c.Request.Context(), limit, after,
			intQuery(c, "transfer_order_id"), boolQuery(c, "cleared"), fromDate, toDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func GetTransferSettlementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		settlement, err := models.GetTransferSettlement(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "transfer settlement not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, settlement)
	}
}

func ClearTransferSettlementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, shopFinanceRoles...) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		result, err := workflow.ClearTransferSettlement(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
