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

// Payment is an append-only ledger row against a sale.
// Negative amounts record refund reversals.
type Payment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BusinessId  string          `gorm:"index;not null" json:"business_id"`
	UnitId      int             `gorm:"index" json:"unit_id"`
	SaleId      *int            `gorm:"index" json:"sale_id"`
	CustomerId  *int            `gorm:"index" json:"customer_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Method      PaymentMethod   `gorm:"size:20;not null;default:cash" json:"method"`
	Reference   string          `gorm:"size:255" json:"reference"`
	Notes       string          `gorm:"type:text" json:"notes"`
	UserId      int             `gorm:"index" json:"user_id"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPayment struct {
	SaleId    *int            `json:"sale_id"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

type PaymentsEdge Edge[Payment]

type PaymentsConnection struct {
	PageInfo *PageInfo       `json:"pageInfo"`
	Edges    []*PaymentsEdge `json:"edges"`
}

func (obj Payment) GetId() int {
	return obj.ID
}

func (obj Payment) GetCursor() string {
	return obj.PaymentDate.String()
}

func GetPayment(ctx context.Context, id int) (*Payment, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Payment](ctx, businessId, id)
}

func PaginatePayment(ctx context.Context, limit *int, after *string, saleId *int, customerId *int, method *PaymentMethod, fromDate *MyDateString, toDate *MyDateString) (*PaymentsConnection, error) {

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

	if saleId != nil && *saleId > 0 {
		dbCtx.Where("sale_id = ?", *saleId)
	}
	if customerId != nil && *customerId > 0 {
		dbCtx.Where("customer_id = ?", *customerId)
	}
	if method != nil && *method != "" {
		dbCtx.Where("method = ?", *method)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("payment_date BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Payment](dbCtx, *limit, after, "payment_date", "<")
	if err != nil {
		return nil, err
	}
	var paymentsConnection PaymentsConnection
	paymentsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		paymentsEdge := PaymentsEdge(edge)
		paymentsConnection.Edges = append(paymentsConnection.Edges, &paymentsEdge)
	}

	return &paymentsConnection, err
}

// PayLoan records a repayment against an open loan sale.
// The running paid amount is always recomputed from the payments sum,
// never incremented in place.
func PayLoan(ctx context.Context, saleId int, input *NewPayment) (*Sale, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	sale, err := utils.FetchModel[Sale](ctx, businessId, saleId)
	if err != nil {
		return nil, err
	}
	if sale.IsLoan == nil || !*sale.IsLoan {
		return nil, errors.New("sale is not a loan")
	}
	if sale.Status == SaleStatusRefunded || sale.Status == SaleStatusCancelled {
		return nil, fmt.Errorf("sale is %s", sale.Status)
	}

	remaining := sale.Outstanding()
	if !input.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}
	if input.Amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("amount exceeds remaining balance of %s", remaining.String())
	}

	method := input.Method
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.Valid() {
		return nil, errors.New("invalid payment method")
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	tx := db.Begin()

	payment := Payment{
		BusinessId:  businessId,
		UnitId:      sale.UnitId,
		SaleId:      &sale.ID,
		CustomerId:  sale.CustomerId,
		Amount:      input.Amount,
		Method:      method,
		Reference:   input.Reference,
		Notes:       input.Notes,
		UserId:      userId,
		PaymentDate: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// recompute from the ledger
	paidSum, err := utils.SumColumn(
		tx.WithContext(ctx).Model(&Payment{}).Where("business_id = ? AND sale_id = ?", businessId, sale.ID),
		"amount")
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	newStatus := DerivePaymentStatus(paidSum, sale.FinalAmount)
	err = tx.WithContext(ctx).Model(&Sale{ID: sale.ID, BusinessId: businessId}).Updates(map[string]interface{}{
		"PaidAmount":    paidSum,
		"PaymentStatus": newStatus,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("Loan payment of %s received for sale %s", input.Amount.String(), sale.SaleNumber)
	if err := createTimelineEvent(tx.WithContext(ctx), sale.UnitId, TimelineEventTypeLoanPayment, sale.ID, "sales", description); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	sale.PaidAmount = paidSum
	sale.PaymentStatus = newStatus
	return sale, nil
}
