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

type PurchaseOrder struct {
	ID           int                 `gorm:"primary_key" json:"id"`
	BusinessId   string              `gorm:"index;not null" json:"business_id"`
	UnitId       int                 `gorm:"index" json:"unit_id"`
	OrderNumber  string              `gorm:"size:255;not null" json:"order_number"`
	SequenceNo   decimal.Decimal     `gorm:"type:decimal(15);not null" json:"sequence_no"`
	SupplierId   int                 `gorm:"index;not null" json:"supplier_id"`
	OrderDate    time.Time           `gorm:"not null" json:"order_date"`
	ExpectedDate *time.Time          `json:"expected_date"`
	Status       PurchaseOrderStatus `gorm:"size:30;not null;default:draft" json:"status"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Notes        string              `gorm:"type:text" json:"notes"`
	UserId       int                 `gorm:"index" json:"user_id"`
	Lines        []PurchaseOrderLine `json:"lines"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderLine struct {
	ID               int             `gorm:"primary_key" json:"id"`
	BusinessId       string          `gorm:"index;not null" json:"business_id"`
	PurchaseOrderId  int             `gorm:"index;not null" json:"purchase_order_id"`
	ProductId        int             `gorm:"index;not null" json:"product_id"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	QuantityOrdered  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_received"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_cost"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
}

type NewPurchaseOrderLine struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type NewPurchaseOrder struct {
	SupplierId   int                    `json:"supplier_id" binding:"required"`
	UnitCode     UnitCode               `json:"unit_code"`
	OrderDate    *MyDateString          `json:"order_date"`
	ExpectedDate *MyDateString          `json:"expected_date"`
	Notes        string                 `json:"notes"`
	Lines        []NewPurchaseOrderLine `json:"lines" binding:"required"`
}

type PurchaseOrdersEdge Edge[PurchaseOrder]

type PurchaseOrdersConnection struct {
	PageInfo *PageInfo             `json:"pageInfo"`
	Edges    []*PurchaseOrdersEdge `json:"edges"`
}

func (obj PurchaseOrder) GetId() int {
	return obj.ID
}

func (obj PurchaseOrder) GetCursor() string {
	return obj.OrderDate.String()
}

func (input *NewPurchaseOrder) validate(ctx context.Context, businessId string) error {

	if err := utils.ValidateResourceId[Supplier](ctx, businessId, input.SupplierId); err != nil {
		return errors.New("supplier not found")
	}
	if len(input.Lines) == 0 {
		return errors.New("at least one line is required")
	}
	seen := map[int]bool{}
	for _, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return errors.New("line quantity must be positive")
		}
		if line.UnitCost.IsNegative() {
			return errors.New("unit cost cannot be negative")
		}
		if seen[line.ProductId] {
			return errors.New("duplicate product in order lines")
		}
		seen[line.ProductId] = true
		if err := utils.ValidateResourceId[Product](ctx, businessId, line.ProductId); err != nil {
			return errors.New("product not found")
		}
	}
	return nil
}

func (input *NewPurchaseOrder) buildLines(ctx context.Context, businessId string) ([]PurchaseOrderLine, decimal.Decimal, error) {

	var lines []PurchaseOrderLine
	total := decimal.Zero
	for _, line := range input.Lines {
		product, err := GetProduct(ctx, line.ProductId)
		if err != nil {
			return nil, decimal.Zero, err
		}
		unitCost := line.UnitCost
		if unitCost.IsZero() {
			unitCost = product.BuyingPrice
		}
		amount := unitCost.Mul(line.Quantity)
		total = total.Add(amount)
		lines = append(lines, PurchaseOrderLine{
			BusinessId:      businessId,
			ProductId:       line.ProductId,
			Name:            product.Name,
			QuantityOrdered: line.Quantity,
			UnitCost:        unitCost,
			Amount:          amount,
		})
	}
	return lines, total, nil
}

func CreatePurchaseOrder(ctx context.Context, input *NewPurchaseOrder) (*PurchaseOrder, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	unitCode := input.UnitCode
	if unitCode == "" {
		unitCode = UnitCodeShop
	}
	unit, err := GetUnitByCode(ctx, unitCode)
	if err != nil {
		return nil, err
	}

	lines, total, err := input.buildLines(ctx, businessId)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now().UTC()
	if input.OrderDate != nil {
		orderDate = time.Time(*input.OrderDate)
	}
	var expectedDate *time.Time
	if input.ExpectedDate != nil {
		v := time.Time(*input.ExpectedDate)
		expectedDate = &v
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	order := PurchaseOrder{
		BusinessId:   businessId,
		UnitId:       unit.ID,
		SupplierId:   input.SupplierId,
		OrderDate:    orderDate,
		ExpectedDate: expectedDate,
		Status:       PurchaseOrderStatusDraft,
		TotalAmount:  total,
		Notes:        input.Notes,
		UserId:       userId,
		Lines:        lines,
	}

	seqNo, err := utils.GetSequence[PurchaseOrder](ctx, businessId)
	if err != nil {
		return nil, err
	}
	order.SequenceNo = decimal.NewFromInt(seqNo)
	order.OrderNumber = "PO-" + fmt.Sprint(seqNo)

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func UpdatePurchaseOrder(ctx context.Context, id int, input *NewPurchaseOrder) (*PurchaseOrder, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	before, err := utils.FetchModel[PurchaseOrder](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if before.Status != PurchaseOrderStatusDraft {
		return nil, fmt.Errorf("purchase order is %s and cannot be edited", before.Status)
	}
	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	lines, total, err := input.buildLines(ctx, businessId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Where("purchase_order_id = ?", id).Delete(&PurchaseOrderLine{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range lines {
		lines[i].PurchaseOrderId = id
	}
	if err := tx.WithContext(ctx).Create(&lines).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	update := PurchaseOrder{ID: id, BusinessId: businessId}
	err = tx.WithContext(ctx).Model(&update).Updates(map[string]interface{}{
		"SupplierId":  input.SupplierId,
		"TotalAmount": total,
		"Notes":       input.Notes,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[PurchaseOrder](ctx, businessId, id, "Lines")
}

// SendPurchaseOrder marks a draft order as sent to the supplier.
func SendPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	order, err := utils.FetchModel[PurchaseOrder](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if order.Status != PurchaseOrderStatusDraft {
		return nil, fmt.Errorf("purchase order is %s and cannot be sent", order.Status)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&order).UpdateColumn("status", PurchaseOrderStatusSent).Error; err != nil {
		return nil, err
	}
	order.Status = PurchaseOrderStatusSent
	return order, nil
}

// ClosePurchaseOrder closes an order regardless of whether every line
// was fully received. Short deliveries stay visible on the lines.
func ClosePurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	order, err := utils.FetchModel[PurchaseOrder](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if order.Status == PurchaseOrderStatusDraft {
		return nil, errors.New("draft purchase order cannot be closed")
	}
	if order.Status == PurchaseOrderStatusClosed {
		return order, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&order).UpdateColumn("status", PurchaseOrderStatusClosed).Error; err != nil {
		return nil, err
	}
	order.Status = PurchaseOrderStatusClosed
	return order, nil
}

func DeletePurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[PurchaseOrder](ctx, businessId, id, "Lines")
	if err != nil {
		return nil, err
	}
	if result.Status != PurchaseOrderStatusDraft {
		return nil, fmt.Errorf("purchase order is %s and cannot be deleted", result.Status)
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("purchase_order_id = ?", id).Delete(&PurchaseOrderLine{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[PurchaseOrder](ctx, businessId, id, "Lines")
}

func PaginatePurchaseOrder(ctx context.Context, limit *int, after *string, supplierId *int, status *PurchaseOrderStatus, fromDate *MyDateString, toDate *MyDateString) (*PurchaseOrdersConnection, error) {

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

	if supplierId != nil && *supplierId > 0 {
		dbCtx.Where("supplier_id = ?", *supplierId)
	}
	if status != nil && *status != "" {
		dbCtx.Where("status = ?", *status)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("order_date BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[PurchaseOrder](dbCtx, *limit, after, "order_date", "<")
	if err != nil {
		return nil, err
	}
	var purchaseOrdersConnection PurchaseOrdersConnection
	purchaseOrdersConnection.PageInfo = pageInfo
	for _, edge := range edges {
		purchaseOrdersEdge := PurchaseOrdersEdge(edge)
		purchaseOrdersConnection.Edges = append(purchaseOrdersConnection.Edges, &purchaseOrdersEdge)
	}

	return &purchaseOrdersConnection, err
}
