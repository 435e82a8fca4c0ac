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

type GoodsReceipt struct {
	ID              int                `gorm:"primary_key" json:"id"`
	BusinessId      string             `gorm:"index;not null" json:"business_id"`
	PurchaseOrderId int                `gorm:"index;not null" json:"purchase_order_id"`
	ReceiptNumber   string             `gorm:"size:255;not null" json:"receipt_number"`
	SequenceNo      decimal.Decimal    `gorm:"type:decimal(15);not null" json:"sequence_no"`
	ReceiptDate     time.Time          `gorm:"not null" json:"receipt_date"`
	Notes           string             `gorm:"type:text" json:"notes"`
	UserId          int                `gorm:"index" json:"user_id"`
	Lines           []GoodsReceiptLine `json:"lines"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type GoodsReceiptLine struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	GoodsReceiptId int             `gorm:"index;not null" json:"goods_receipt_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_cost"`
}

type NewGoodsReceiptLine struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

type NewGoodsReceipt struct {
	ReceiptDate *MyDateString         `json:"receipt_date"`
	Notes       string                `json:"notes"`
	Lines       []NewGoodsReceiptLine `json:"lines" binding:"required"`
}

type GoodsReceiptsEdge Edge[GoodsReceipt]

type GoodsReceiptsConnection struct {
	PageInfo *PageInfo            `json:"pageInfo"`
	Edges    []*GoodsReceiptsEdge `json:"edges"`
}

func (obj GoodsReceipt) GetId() int {
	return obj.ID
}

func (obj GoodsReceipt) GetCursor() string {
	return obj.ReceiptDate.String()
}

// ReceiveGoods books a delivery against a purchase order. Quantities add
// to the ordered lines, stock moves in, and the order status follows the
// received totals.
func ReceiveGoods(ctx context.Context, purchaseOrderId int, input *NewGoodsReceipt) (*GoodsReceipt, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if len(input.Lines) == 0 {
		return nil, errors.New("at least one line is required")
	}

	order, err := utils.FetchModel[PurchaseOrder](ctx, businessId, purchaseOrderId, "Lines")
	if err != nil {
		return nil, err
	}
	if order.Status != PurchaseOrderStatusSent && order.Status != PurchaseOrderStatusPartiallyReceived {
		return nil, fmt.Errorf("purchase order is %s and cannot receive goods", order.Status)
	}

	orderLines := map[int]*PurchaseOrderLine{}
	for i := range order.Lines {
		orderLines[order.Lines[i].ProductId] = &order.Lines[i]
	}

	var receiptLines []GoodsReceiptLine
	for _, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return nil, errors.New("line quantity must be positive")
		}
		orderLine, found := orderLines[line.ProductId]
		if !found {
			return nil, errors.New("product is not on this purchase order")
		}
		remaining := orderLine.QuantityOrdered.Sub(orderLine.QuantityReceived)
		if line.Quantity.GreaterThan(remaining) {
			return nil, fmt.Errorf("received quantity for %s exceeds the remaining %s", orderLine.Name, remaining.String())
		}
		receiptLines = append(receiptLines, GoodsReceiptLine{
			BusinessId: businessId,
			ProductId:  line.ProductId,
			Name:       orderLine.Name,
			Quantity:   line.Quantity,
			UnitCost:   orderLine.UnitCost,
		})
	}

	receiptDate := time.Now().UTC()
	if input.ReceiptDate != nil {
		receiptDate = time.Time(*input.ReceiptDate)
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	receipt := GoodsReceipt{
		BusinessId:      businessId,
		PurchaseOrderId: purchaseOrderId,
		ReceiptDate:     receiptDate,
		Notes:           input.Notes,
		UserId:          userId,
		Lines:           receiptLines,
	}

	seqNo, err := utils.GetSequence[GoodsReceipt](ctx, businessId)
	if err != nil {
		return nil, err
	}
	receipt.SequenceNo = decimal.NewFromInt(seqNo)
	receipt.ReceiptNumber = "GRN-" + fmt.Sprint(seqNo)

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&receipt).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, line := range receipt.Lines {
		orderLine := orderLines[line.ProductId]
		newReceived := orderLine.QuantityReceived.Add(line.Quantity)
		err := tx.WithContext(ctx).Model(&PurchaseOrderLine{}).
			Where("business_id = ? AND id = ?", businessId, orderLine.ID).
			UpdateColumn("quantity_received", newReceived).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		orderLine.QuantityReceived = newReceived

		entry := &StockEntry{
			BusinessId:    businessId,
			UnitId:        order.UnitId,
			ProductId:     line.ProductId,
			EntryType:     StockEntryTypeReceived,
			Quantity:      line.Quantity,
			UnitCost:      line.UnitCost,
			ReferenceType: "GoodsReceipt",
			ReferenceId:   receipt.ID,
			Notes:         "receipt against " + order.OrderNumber,
		}
		if err := createStockEntry(tx.WithContext(ctx), entry); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	fullyReceived := true
	for _, orderLine := range order.Lines {
		if orderLine.QuantityReceived.LessThan(orderLine.QuantityOrdered) {
			fullyReceived = false
			break
		}
	}
	newStatus := PurchaseOrderStatusPartiallyReceived
	if fullyReceived {
		newStatus = PurchaseOrderStatusReceived
	}
	err = tx.WithContext(ctx).Model(&PurchaseOrder{}).
		Where("business_id = ? AND id = ?", businessId, purchaseOrderId).
		UpdateColumn("status", newStatus).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("Delivery %s received against %s", receipt.ReceiptNumber, order.OrderNumber)
	if err := createTimelineEvent(tx.WithContext(ctx), order.UnitId, TimelineEventTypeGoodsReceived, receipt.ID, "GoodsReceipt", description); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func GetGoodsReceipt(ctx context.Context, id int) (*GoodsReceipt, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[GoodsReceipt](ctx, businessId, id, "Lines")
}

func PaginateGoodsReceipt(ctx context.Context, limit *int, after *string, purchaseOrderId *int, fromDate *MyDateString, toDate *MyDateString) (*GoodsReceiptsConnection, error) {

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

	if purchaseOrderId != nil && *purchaseOrderId > 0 {
		dbCtx.Where("purchase_order_id = ?", *purchaseOrderId)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("receipt_date BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[GoodsReceipt](dbCtx, *limit, after, "receipt_date", "<")
	if err != nil {
		return nil, err
	}
	var goodsReceiptsConnection GoodsReceiptsConnection
	goodsReceiptsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		goodsReceiptsEdge := GoodsReceiptsEdge(edge)
		goodsReceiptsConnection.Edges = append(goodsReceiptsConnection.Edges, &goodsReceiptsEdge)
	}

	return &goodsReceiptsConnection, err
}
