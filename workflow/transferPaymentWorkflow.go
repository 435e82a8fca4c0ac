package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

type NewTransferPayment struct {
	Amount decimal.Decimal      `json:"amount" binding:"required"`
	Method models.PaymentMethod `json:"method"`
	Notes  string               `json:"notes"`
}

type TransferPaymentResult struct {
	Message       string                     `json:"message"`
	SettlementId  int                        `json:"settlement_id"`
	SettledAmount decimal.Decimal            `json:"settled_amount"`
	Outstanding   decimal.Decimal            `json:"outstanding"`
	Status        models.TransferOrderStatus `json:"status"`
}

type TransferClearResult struct {
	Message   string     `json:"message"`
	Cleared   bool       `json:"cleared"`
	ClearedAt *time.Time `json:"cleared_at"`
}

const payTransferHandler = "PayTransferOrder"

// PayTransferOrder records a workshop payment against a transfer. The linked
// repair job's own invoice must be fully paid first, and the amount can never
// push the settled sum past the total. A client Idempotency-Key makes retries
// safe.
func PayTransferOrder(ctx context.Context, id int, input *NewTransferPayment, idempotencyKey string) (*TransferPaymentResult, error) {

	ctx, span := startSpan(ctx, "workflow.PayTransferOrder")
	defer span.End()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	order, err := models.GetTransferOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.TransferOrderStatusDraft {
		return nil, errors.New("draft transfer cannot be paid")
	}
	outstanding := order.Outstanding()
	if outstanding.IsZero() {
		return nil, errors.New("transfer is already fully settled")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}
	if input.Amount.GreaterThan(outstanding) {
		return nil, fmt.Errorf("amount exceeds the outstanding balance of %s", outstanding.String())
	}
	method := input.Method
	if method == "" {
		method = models.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, errors.New("invalid payment method")
	}

	// materials may only be paid once the customer paid the job itself
	if order.MaterialRequestId != nil {
		request, err := models.GetMaterialRequest(ctx, *order.MaterialRequestId)
		if err != nil {
			return nil, err
		}
		if request.RepairJobId != nil {
			invoice, err := models.GetRepairInvoiceByJob(ctx, *request.RepairJobId)
			if err != nil {
				return nil, err
			}
			if invoice.PaymentStatus != models.RepairInvoiceStatusPaid {
				return nil, errors.New("repair invoice must be fully paid before settling materials")
			}
		}
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	// best-effort cross-instance lock; the advisory lock below is authoritative
	release, err := utils.BusinessLock(ctx, businessId, "posting", "workflow", "PayTransferOrder")
	if err != nil {
		return nil, err
	}
	defer release()

	db := config.GetDB()
	tx := db.Begin()

	if err := AcquireBusinessPostingLock(tx, businessId); err != nil {
		tx.Rollback()
		return nil, err
	}
	defer ReleaseBusinessPostingLock(tx, businessId)

	if idempotencyKey != "" {
		skip, err := BeginIdempotency(tx, businessId, payTransferHandler, idempotencyKey)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if skip {
			tx.Rollback()
			return &TransferPaymentResult{
				Message:       "Payment already recorded.",
				SettledAmount: order.SettledAmount,
				Outstanding:   outstanding,
				Status:        order.Status,
			}, nil
		}
	}

	settlement := models.TransferSettlement{
		BusinessId:      businessId,
		TransferOrderId: order.ID,
		Amount:          input.Amount,
		SettlementDate:  time.Now().UTC(),
		Method:          method,
		SettledBy:       userId,
		Notes:           input.Notes,
		Cleared:         utils.NewFalse(),
	}
	if err := tx.WithContext(ctx).Create(&settlement).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	settledSum, err := utils.SumColumn(tx.WithContext(ctx).Model(&models.TransferSettlement{}).
		Where("business_id = ? AND transfer_order_id = ?", businessId, order.ID), "amount")
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	// recheck against the in-transaction sum, the snapshot above may be stale
	if settledSum.GreaterThan(order.TotalAmount) {
		tx.Rollback()
		remaining := order.TotalAmount.Sub(settledSum.Sub(input.Amount))
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		return nil, fmt.Errorf("amount exceeds the outstanding balance of %s", remaining.String())
	}
	newStatus := models.DeriveTransferStatus(settledSum, order.TotalAmount)
	err = tx.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"SettledAmount": settledSum,
		"Status":        newStatus,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("Payment of %s against transfer %s", input.Amount.String(), order.TransferNumber)
	if err := models.CreateTimelineEvent(tx.WithContext(ctx), order.ToUnitId, models.TimelineEventTypeTransferPaid, settlement.ID, "TransferSettlement", description); err != nil {
		tx.Rollback()
		return nil, err
	}

	if idempotencyKey != "" {
		if err := MarkIdempotencySucceeded(tx, businessId, payTransferHandler, idempotencyKey); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	newOutstanding := order.TotalAmount.Sub(settledSum)
	if newOutstanding.IsNegative() {
		newOutstanding = decimal.Zero
	}
	return &TransferPaymentResult{
		Message:       "Payment recorded.",
		SettlementId:  settlement.ID,
		SettledAmount: settledSum,
		Outstanding:   newOutstanding,
		Status:        newStatus,
	}, nil
}

// ClearTransferSettlement is the shop cashier's one-way confirmation that
// the cash arrived. Clearing twice is a harmless no-op.
func ClearTransferSettlement(ctx context.Context, id int) (*TransferClearResult, error) {

	ctx, span := startSpan(ctx, "workflow.ClearTransferSettlement")
	defer span.End()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	settlement, err := models.GetTransferSettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement.IsCleared() {
		return &TransferClearResult{
			Message:   "Already cleared.",
			Cleared:   true,
			ClearedAt: settlement.ClearedAt,
		}, nil
	}

	order, err := models.GetTransferOrder(ctx, settlement.TransferOrderId)
	if err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	now := time.Now().UTC()

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&models.TransferSettlement{}).
		Where("business_id = ? AND id = ?", businessId, id).
		Updates(map[string]interface{}{
			"Cleared":   true,
			"ClearedAt": now,
			"ClearedBy": userId,
		}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("Settlement of %s cleared for transfer %s", settlement.Amount.String(), order.TransferNumber)
	if err := models.CreateTimelineEvent(tx.WithContext(ctx), order.FromUnitId, models.TimelineEventTypeSettlementClear, settlement.ID, "TransferSettlement", description); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &TransferClearResult{
		Message:   "Settlement cleared.",
		Cleared:   true,
		ClearedAt: &now,
	}, nil
}
