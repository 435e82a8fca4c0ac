package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockEntry is an append-only ledger row. Quantity is the signed delta
// applied to the product's cached quantity; the ledger is the source of truth.
type StockEntry struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	UnitId        int             `gorm:"index;not null" json:"unit_id"`
	ProductId     int             `gorm:"index;not null" json:"product_id"`
	EntryType     StockEntryType  `gorm:"size:20;not null" json:"entry_type"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	ReferenceType string          `gorm:"size:255" json:"reference_type"`
	ReferenceId   int             `gorm:"index" json:"reference_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	UserId        int             `gorm:"index" json:"user_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type StockEntriesEdge Edge[StockEntry]

type StockEntriesConnection struct {
	PageInfo *PageInfo           `json:"pageInfo"`
	Edges    []*StockEntriesEdge `json:"edges"`
}

func (obj StockEntry) GetId() int {
	return obj.ID
}

func (obj StockEntry) GetCursor() string {
	return obj.CreatedAt.String()
}

// CreateStockEntry writes a ledger row inside the caller's transaction.
func CreateStockEntry(tx *gorm.DB, entry *StockEntry) error {
	return createStockEntry(tx, entry)
}

// createStockEntry writes the ledger row and moves the product's cached
// quantity by the same delta, inside the caller's transaction.
func createStockEntry(tx *gorm.DB, entry *StockEntry) error {

	if !entry.EntryType.Valid() {
		return errors.New("invalid stock entry type")
	}
	if entry.Quantity.IsZero() {
		return errors.New("stock entry quantity must not be zero")
	}

	ctx := tx.Statement.Context
	if entry.UserId == 0 {
		if userId, ok := utils.GetUserIdFromContext(ctx); ok {
			entry.UserId = userId
		}
	}

	if err := tx.Create(entry).Error; err != nil {
		return err
	}

	result := tx.Model(&Product{}).
		Where("business_id = ? AND id = ?", entry.BusinessId, entry.ProductId).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", entry.Quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("product not found")
	}
	return nil
}

func GetStockEntry(ctx context.Context, id int) (*StockEntry, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[StockEntry](ctx, businessId, id)
}

func PaginateStockEntry(ctx context.Context, limit *int, after *string, productId *int, unitId *int, entryType *StockEntryType, fromDate *MyDateString, toDate *MyDateString) (*StockEntriesConnection, error) {

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

	if productId != nil && *productId > 0 {
		dbCtx.Where("product_id = ?", *productId)
	}
	if unitId != nil && *unitId > 0 {
		dbCtx.Where("unit_id = ?", *unitId)
	}
	if entryType != nil && *entryType != "" {
		dbCtx.Where("entry_type = ?", *entryType)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("created_at BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[StockEntry](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var stockEntriesConnection StockEntriesConnection
	stockEntriesConnection.PageInfo = pageInfo
	for _, edge := range edges {
		stockEntriesEdge := StockEntriesEdge(edge)
		stockEntriesConnection.Edges = append(stockEntriesConnection.Edges, &stockEntriesEdge)
	}

	return &stockEntriesConnection, err
}
