package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Sale struct {
	ID                int               `gorm:"primary_key" json:"id"`
	BusinessId        string            `gorm:"index;not null" json:"business_id"`
	UnitId            int               `gorm:"index;not null" json:"unit_id"`
	SaleNumber        string            `gorm:"size:255;not null" json:"sale_number"`
	SequenceNo        decimal.Decimal   `gorm:"type:decimal(15);not null" json:"sequence_no"`
	CustomerId        *int              `gorm:"index" json:"customer_id"`
	UserId            int               `gorm:"index;not null" json:"user_id"`
	SaleDate          time.Time         `gorm:"not null" json:"sale_date"`
	Status            SaleStatus        `gorm:"size:20;not null;default:confirmed" json:"status"`
	PaymentStatus     PaymentStatus     `gorm:"size:20;not null;default:not_paid" json:"payment_status"`
	FulfillmentStatus FulfillmentStatus `gorm:"size:20;not null;default:pending" json:"fulfillment_status"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	DiscountAmount    decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	FinalAmount       decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"final_amount"`
	PaidAmount        decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	IsLoan            *bool             `gorm:"not null;default:false" json:"is_loan"`
	Notes             string            `gorm:"type:text" json:"notes"`
	Items             []SaleItem        `json:"items"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type SaleItem struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"index;not null" json:"business_id"`
	SaleId     int             `gorm:"index;not null" json:"sale_id"`
	ProductId  int             `gorm:"index;not null" json:"product_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type SalesEdge Edge[Sale]

type SalesConnection struct {
	PageInfo *PageInfo    `json:"pageInfo"`
	Edges    []*SalesEdge `json:"edges"`
}

func (obj Sale) GetId() int {
	return obj.ID
}

func (obj Sale) GetCursor() string {
	return obj.SaleDate.String()
}

func (obj Sale) GetBusinessId() string {
	return obj.BusinessId
}

// Outstanding is what the customer still owes on this sale.
func (obj Sale) Outstanding() decimal.Decimal {
	outstanding := obj.FinalAmount.Sub(obj.PaidAmount)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// DerivePaymentStatus computes the status from amounts alone.
// paid only counts when something was actually owed.
func DerivePaymentStatus(paid decimal.Decimal, final decimal.Decimal) PaymentStatus {
	if paid.GreaterThanOrEqual(final) && final.IsPositive() {
		return PaymentStatusPaid
	}
	if paid.IsPositive() && paid.LessThan(final) {
		return PaymentStatusPartial
	}
	return PaymentStatusNotPaid
}

func GetSale(ctx context.Context, id int) (*Sale, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Sale](ctx, businessId, id, "Items")
}

func PaginateSale(ctx context.Context, limit *int, after *string, customerId *int, unitId *int, status *SaleStatus, paymentStatus *PaymentStatus, isLoan *bool, fromDate *MyDateString, toDate *MyDateString) (*SalesConnection, error) {

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

	if customerId != nil && *customerId > 0 {
		dbCtx.Where("customer_id = ?", *customerId)
	}
	if unitId != nil && *unitId > 0 {
		dbCtx.Where("unit_id = ?", *unitId)
	}
	if status != nil && *status != "" {
		dbCtx.Where("status = ?", *status)
	}
	if paymentStatus != nil && *paymentStatus != "" {
		dbCtx.Where("payment_status = ?", *paymentStatus)
	}
	if isLoan != nil {
		dbCtx.Where("is_loan = ?", *isLoan)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("sale_date BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Sale](dbCtx, *limit, after, "sale_date", "<")
	if err != nil {
		return nil, err
	}
	var salesConnection SalesConnection
	salesConnection.PageInfo = pageInfo
	for _, edge := range edges {
		salesEdge := SalesEdge(edge)
		salesConnection.Edges = append(salesConnection.Edges, &salesEdge)
	}

	return &salesConnection, err
}

// MarkSaleChecked flags the order as picked and verified at the counter.
func MarkSaleChecked(ctx context.Context, id int) (*Sale, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	sale, err := utils.FetchModel[Sale](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if sale.Status == SaleStatusCancelled || sale.Status == SaleStatusRefunded {
		return nil, fmt.Errorf("sale is %s and cannot be checked", sale.Status)
	}
	if sale.FulfillmentStatus == FulfillmentStatusChecked {
		return sale, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&sale).
		UpdateColumn("fulfillment_status", FulfillmentStatusChecked).Error; err != nil {
		return nil, err
	}
	sale.FulfillmentStatus = FulfillmentStatusChecked
	return sale, nil
}

type LoanSummary struct {
	LoanCount        int64           `json:"loan_count"`
	TotalLoaned      decimal.Decimal `json:"total_loaned"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

// GetLoanSummary aggregates over all open loan sales.
func GetLoanSummary(ctx context.Context) (*LoanSummary, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&Sale{}).
			Where("business_id = ? AND is_loan = ? AND status != ?", businessId, true, SaleStatusRefunded)
	}

	var summary LoanSummary
	if err := base().Count(&summary.LoanCount).Error; err != nil {
		return nil, err
	}
	var err error
	if summary.TotalLoaned, err = utils.SumColumn(base(), "final_amount"); err != nil {
		return nil, err
	}
	if summary.TotalPaid, err = utils.SumColumn(base(), "paid_amount"); err != nil {
		return nil, err
	}
	summary.TotalOutstanding = summary.TotalLoaned.Sub(summary.TotalPaid)
	return &summary, nil
}
