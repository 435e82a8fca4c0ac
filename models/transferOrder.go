package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

// TransferOrder is the money side of a shop-to-workshop stock move. The
// line prices are snapshots taken at approval and never change afterwards.
type TransferOrder struct {
	ID                int                  `gorm:"primary_key" json:"id"`
	BusinessId        string               `gorm:"index;not null" json:"business_id"`
	TransferNumber    string               `gorm:"size:255;not null" json:"transfer_number"`
	SequenceNo        decimal.Decimal      `gorm:"type:decimal(15);not null" json:"sequence_no"`
	MaterialRequestId *int                 `gorm:"uniqueIndex" json:"material_request_id"`
	FromUnitId        int                  `gorm:"index" json:"from_unit_id"`
	ToUnitId          int                  `gorm:"index" json:"to_unit_id"`
	Status            TransferOrderStatus  `gorm:"size:24;not null;default:draft" json:"status"`
	TransferDate      time.Time            `gorm:"not null" json:"transfer_date"`
	DueDate           *time.Time           `json:"due_date"`
	TotalAmount       decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	SettledAmount     decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"settled_amount"`
	ConfirmedBy       *int                 `gorm:"index" json:"confirmed_by"`
	ConfirmedAt       *time.Time           `json:"confirmed_at"`
	Lines             []TransferOrderLine  `gorm:"foreignKey:TransferOrderId" json:"lines"`
	Settlements       []TransferSettlement `gorm:"foreignKey:TransferOrderId" json:"settlements"`
	CreatedAt         time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type TransferOrderLine struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"index;not null" json:"business_id"`
	TransferOrderId int             `gorm:"index;not null" json:"transfer_order_id"`
	ProductId       int             `gorm:"index;not null" json:"product_id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	TransferPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"transfer_price"`
}

type TransferOrdersEdge Edge[TransferOrder]

type TransferOrdersConnection struct {
	PageInfo *PageInfo             `json:"pageInfo"`
	Edges    []*TransferOrdersEdge `json:"edges"`
}

func (obj TransferOrder) GetId() int {
	return obj.ID
}

func (obj TransferOrder) GetCursor() string {
	return obj.TransferDate.String()
}

// Outstanding is total minus settled, clamped at zero.
func (obj TransferOrder) Outstanding() decimal.Decimal {
	outstanding := obj.TotalAmount.Sub(obj.SettledAmount)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// DeriveTransferStatus maps the settled sum onto the order status.
// A fresh order stays confirmed until money moves.
func DeriveTransferStatus(settled decimal.Decimal, total decimal.Decimal) TransferOrderStatus {
	if settled.GreaterThanOrEqual(total) && total.IsPositive() {
		return TransferOrderStatusClosed
	}
	if settled.IsPositive() {
		return TransferOrderStatusPartiallySettled
	}
	return TransferOrderStatusConfirmed
}

// ClassifyTransferTab buckets an order for the settlement screens.
func ClassifyTransferTab(outstanding decimal.Decimal, hasUncleared bool) TransferTab {
	if outstanding.IsPositive() {
		return TransferTabPendingPayment
	}
	if hasUncleared {
		return TransferTabPendingClearance
	}
	return TransferTabClosedCleared
}

// Tab classifies the order from its loaded settlements.
func (obj TransferOrder) Tab() TransferTab {
	hasUncleared := false
	for _, settlement := range obj.Settlements {
		if settlement.Cleared == nil || !*settlement.Cleared {
			hasUncleared = true
			break
		}
	}
	return ClassifyTransferTab(obj.Outstanding(), hasUncleared)
}

func GetTransferOrder(ctx context.Context, id int) (*TransferOrder, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[TransferOrder](ctx, businessId, id, "Lines", "Settlements")
}

// GetTransferOrderByRequest follows the one-to-one link from a material request.
func GetTransferOrderByRequest(ctx context.Context, materialRequestId int) (*TransferOrder, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var order TransferOrder
	err := db.WithContext(ctx).
		Preload("Lines").Preload("Settlements").
		Where("business_id = ? AND material_request_id = ?", businessId, materialRequestId).
		Take(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func PaginateTransferOrder(ctx context.Context, limit *int, after *string, status *TransferOrderStatus, tab *TransferTab, fromDate *MyDateString, toDate *MyDateString) (*TransferOrdersConnection, error) {

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

	if status != nil && *status != "" {
		dbCtx.Where("status = ?", *status)
	}
	if tab != nil && *tab != "" {
		switch *tab {
		case TransferTabPendingPayment:
			dbCtx.Where("settled_amount < total_amount")
		case TransferTabPendingClearance:
			dbCtx.Where("settled_amount >= total_amount").
				Where("EXISTS (SELECT 1 FROM transfer_settlements ts WHERE ts.transfer_order_id = transfer_orders.id AND ts.cleared = ?)", false)
		case TransferTabClosedCleared:
			dbCtx.Where("settled_amount >= total_amount").
				Where("NOT EXISTS (SELECT 1 FROM transfer_settlements ts WHERE ts.transfer_order_id = transfer_orders.id AND ts.cleared = ?)", false)
		}
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("transfer_date BETWEEN ? AND ?", fromDate, toDate)
	}
	dbCtx = dbCtx.Preload("Lines").Preload("Settlements")

	edges, pageInfo, err := FetchPageCompositeCursor[TransferOrder](dbCtx, *limit, after, "transfer_date", "<")
	if err != nil {
		return nil, err
	}
	var transferOrdersConnection TransferOrdersConnection
	transferOrdersConnection.PageInfo = pageInfo
	for _, edge := range edges {
		transferOrdersEdge := TransferOrdersEdge(edge)
		transferOrdersConnection.Edges = append(transferOrdersConnection.Edges, &transferOrdersEdge)
	}

	return &transferOrdersConnection, err
}
