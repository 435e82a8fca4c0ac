package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

// TransferSettlement is an append-only payment from the workshop against
// a transfer order. Clearing is the shop cashier's one-way confirmation
// that the cash was received and reconciled.
type TransferSettlement struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"index;not null" json:"business_id"`
	TransferOrderId int             `gorm:"index;not null" json:"transfer_order_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	SettlementDate  time.Time       `gorm:"not null" json:"settlement_date"`
	Method          PaymentMethod   `gorm:"size:20;not null;default:cash" json:"method"`
	SettledBy       int             `gorm:"index" json:"settled_by"`
	Notes           string          `gorm:"type:text" json:"notes"`
	Cleared         *bool           `gorm:"default:false" json:"cleared"`
	ClearedAt       *time.Time      `json:"cleared_at"`
	ClearedBy       *int            `gorm:"index" json:"cleared_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type TransferSettlementsEdge Edge[TransferSettlement]

type TransferSettlementsConnection struct {
	PageInfo *PageInfo                  `json:"pageInfo"`
	Edges    []*TransferSettlementsEdge `json:"edges"`
}

func (obj TransferSettlement) GetId() int {
	return obj.ID
}

func (obj TransferSettlement) GetCursor() string {
	return obj.SettlementDate.String()
}

func (obj TransferSettlement) IsCleared() bool {
	return obj.Cleared != nil && *obj.Cleared
}

func GetTransferSettlement(ctx context.Context, id int) (*TransferSettlement, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[TransferSettlement](ctx, businessId, id)
}

func PaginateTransferSettlement(ctx context.Context, limit *int, after *string, transferOrderId *int, cleared *bool, fromDate *MyDateString, toDate *MyDateString) (*TransferSettlementsConnection, error) {

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

	if transferOrderId != nil && *transferOrderId > 0 {
		dbCtx.Where("transfer_order_id = ?", *transferOrderId)
	}
	if cleared != nil {
		dbCtx.Where("cleared = ?", *cleared)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("settlement_date BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[TransferSettlement](dbCtx, *limit, after, "settlement_date", "<")
	if err != nil {
		return nil, err
	}
	var transferSettlementsConnection TransferSettlementsConnection
	transferSettlementsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		transferSettlementsEdge := TransferSettlementsEdge(edge)
		transferSettlementsConnection.Edges = append(transferSettlementsConnection.Edges, &transferSettlementsEdge)
	}

	return &transferSettlementsConnection, err
}
