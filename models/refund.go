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

type Refund struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"index;not null" json:"business_id"`
	UnitId     int             `gorm:"index" json:"unit_id"`
	SaleId     int             `gorm:"uniqueIndex;not null" json:"sale_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Reason     string          `gorm:"type:text" json:"reason"`
	UserId     int             `gorm:"index" json:"user_id"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewRefund struct {
	Reason string `json:"reason"`
}

type RefundsEdge Edge[Refund]

type RefundsConnection struct {
	PageInfo *PageInfo      `json:"pageInfo"`
	Edges    []*RefundsEdge `json:"edges"`
}

func (obj Refund) GetId() int {
	return obj.ID
}

func (obj Refund) GetCursor() string {
	return obj.CreatedAt.String()
}

// RefundSale reverses a sale in full: one refund per sale, a negative
// payment row for whatever was paid, and the items restocked.
func RefundSale(ctx context.Context, saleId int, input *NewRefund) (*Refund, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	sale, err := utils.FetchModel[Sale](ctx, businessId, saleId, "Items")
	if err != nil {
		return nil, err
	}
	if sale.Status == SaleStatusRefunded {
		return nil, errors.New("sale already refunded")
	}
	if sale.Status == SaleStatusCancelled {
		return nil, errors.New("sale is cancelled")
	}

	count, err := utils.ResourceCountWhere[Refund](ctx, businessId, "sale_id = ?", saleId)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("sale already refunded")
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	tx := db.Begin()

	refund := Refund{
		BusinessId: businessId,
		UnitId:     sale.UnitId,
		SaleId:     sale.ID,
		Amount:     sale.PaidAmount,
		Reason:     input.Reason,
		UserId:     userId,
	}
	if err := tx.WithContext(ctx).Create(&refund).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// reverse the cash if any was taken
	if sale.PaidAmount.IsPositive() {
		payment := Payment{
			BusinessId:  businessId,
			UnitId:      sale.UnitId,
			SaleId:      &sale.ID,
			CustomerId:  sale.CustomerId,
			Amount:      sale.PaidAmount.Neg(),
			Method:      PaymentMethodInternal,
			Notes:       "refund for sale " + sale.SaleNumber,
			UserId:      userId,
			PaymentDate: time.Now().UTC(),
		}
		if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// items back on the shelf
	for _, item := range sale.Items {
		entry := StockEntry{
			BusinessId:    businessId,
			UnitId:        sale.UnitId,
			ProductId:     item.ProductId,
			EntryType:     StockEntryTypeReturned,
			Quantity:      item.Quantity,
			UnitCost:      item.UnitPrice,
			ReferenceType: "refunds",
			ReferenceId:   refund.ID,
		}
		if err := createStockEntry(tx.WithContext(ctx), &entry); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	err = tx.WithContext(ctx).Model(&Sale{ID: sale.ID, BusinessId: businessId}).Updates(map[string]interface{}{
		"Status":        SaleStatusRefunded,
		"PaymentStatus": PaymentStatusRefunded,
		"PaidAmount":    decimal.Zero,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("Sale %s refunded for %s", sale.SaleNumber, refund.Amount.String())
	if err := createTimelineEvent(tx.WithContext(ctx), sale.UnitId, TimelineEventTypeSaleRefunded, sale.ID, "sales", description); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

func GetRefund(ctx context.Context, id int) (*Refund, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Refund](ctx, businessId, id)
}

func PaginateRefund(ctx context.Context, limit *int, after *string, saleId *int) (*RefundsConnection, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if saleId != nil && *saleId > 0 {
		dbCtx.Where("sale_id = ?", *saleId)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Refund](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var refundsConnection RefundsConnection
	refundsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		refundsEdge := RefundsEdge(edge)
		refundsConnection.Edges = append(refundsConnection.Edges, &refundsEdge)
	}

	return &refundsConnection, err
}
