package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

// RepairPayment is an append-only receipt against a repair invoice.
// The materials portion is never settled automatically from here; the
// workshop cashier records transfer payments explicitly.
type RepairPayment struct {
	ID               int             `gorm:"primary_key" json:"id"`
	BusinessId       string          `gorm:"index;not null" json:"business_id"`
	InvoiceId        int             `gorm:"index;not null" json:"invoice_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Method           PaymentMethod   `gorm:"size:20;not null;default:cash" json:"method"`
	PaymentDate      time.Time       `gorm:"not null" json:"payment_date"`
	ReceivedBy       int             `gorm:"index" json:"received_by"`
	Notes            string          `gorm:"type:text" json:"notes"`
	MaterialsSettled *bool           `gorm:"default:false" json:"materials_settled"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRepairPayment struct {
	InvoiceId int             `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    PaymentMethod   `json:"method"`
	Notes     string          `json:"notes"`
}

type RepairPaymentsEdge Edge[RepairPayment]

type RepairPaymentsConnection struct {
	PageInfo *PageInfo             `json:"pageInfo"`
	Edges    []*RepairPaymentsEdge `json:"edges"`
}

func (obj RepairPayment) GetId() int {
	return obj.ID
}

func (obj RepairPayment) GetCursor() string {
	return obj.PaymentDate.String()
}

// CreateRepairPayment appends a receipt and re-derives the invoice paid
// amount and status from the payment sum.
func CreateRepairPayment(ctx context.Context, input *NewRepairPayment) (*RepairPayment, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}
	method := input.Method
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.Valid() {
		return nil, errors.New("invalid payment method")
	}

	invoice, err := utils.FetchModel[RepairInvoice](ctx, businessId, input.InvoiceId)
	if err != nil {
		return nil, err
	}
	if input.Amount.GreaterThan(invoice.Outstanding()) {
		return nil, fmt.Errorf("amount exceeds remaining balance of %s", invoice.Outstanding().String())
	}

	job, err := utils.FetchModel[RepairJob](ctx, businessId, invoice.RepairJobId)
	if err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	payment := RepairPayment{
		BusinessId:       businessId,
		InvoiceId:        invoice.ID,
		Amount:           input.Amount,
		Method:           method,
		PaymentDate:      time.Now().UTC(),
		ReceivedBy:       userId,
		Notes:            input.Notes,
		MaterialsSettled: utils.NewFalse(),
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	paidSum, err := utils.SumColumn(tx.WithContext(ctx).Model(&RepairPayment{}).
		Where("business_id = ? AND invoice_id = ?", businessId, invoice.ID), "amount")
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	err = tx.WithContext(ctx).Model(&RepairInvoice{}).
		Where("business_id = ? AND id = ?", businessId, invoice.ID).
		Updates(map[string]interface{}{
			"PaidAmount":    paidSum,
			"PaymentStatus": DeriveRepairInvoiceStatus(paidSum, invoice.TotalAmount),
		}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("Repair payment of %s for job %s", input.Amount.String(), job.JobNumber)
	if err := createTimelineEvent(tx.WithContext(ctx), job.UnitId, TimelineEventTypeInvoicePayment, payment.ID, "RepairPayment", description); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func GetRepairPayment(ctx context.Context, id int) (*RepairPayment, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[RepairPayment](ctx, businessId, id)
}

func PaginateRepairPayment(ctx context.Context, limit *int, after *string, invoiceId *int, fromDate *MyDateString, toDate *MyDateString) (*RepairPaymentsConnection, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)

	business, err := GetBusiness(ctx)
	if err != nil {
		return nil, errors.New("business id is required")
	}
	if err := fromDate.StartOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}
	if err := toDate.EndOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}

	if invoiceId != nil && *invoiceId > 0 {
		dbCtx.Where("invoice_id = ?", *invoiceId)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("payment_date BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[RepairPayment](dbCtx, *limit, after, "payment_date", "<")
	if err != nil {
		return nil, err
	}
	var repairPaymentsConnection RepairPaymentsConnection
	repairPaymentsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		repairPaymentsEdge := RepairPaymentsEdge(edge)
		repairPaymentsConnection.Edges = append(repairPaymentsConnection.Edges, &repairPaymentsEdge)
	}

	return &repairPaymentsConnection, err
}
