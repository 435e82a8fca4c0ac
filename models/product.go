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

type Product struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	UnitId         int             `gorm:"index;not null" json:"unit_id"`
	CategoryId     int             `gorm:"index" json:"category_id"`
	Name           string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Sku            string          `gorm:"size:100" json:"sku"`
	Description    string          `gorm:"type:text" json:"description"`
	BuyingPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"buying_price"`
	SellingPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"wholesale_price"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Threshold      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"threshold"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	UnitId         int             `json:"unit_id"`
	CategoryId     int             `json:"category_id"`
	Name           string          `json:"name" binding:"required"`
	Sku            string          `json:"sku"`
	Description    string          `json:"description"`
	BuyingPrice    decimal.Decimal `json:"buying_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	Quantity       decimal.Decimal `json:"quantity"`
	Threshold      decimal.Decimal `json:"threshold"`
}

type ProductsEdge Edge[Product]

type ProductsConnection struct {
	PageInfo *PageInfo       `json:"pageInfo"`
	Edges    []*ProductsEdge `json:"edges"`
}

func (obj Product) GetId() int {
	return obj.ID
}

func (obj Product) GetCursor() string {
	return obj.CreatedAt.String()
}

func (obj Product) GetBusinessId() string {
	return obj.BusinessId
}

// price for the customer, wholesale for contractors/companies when set
func (obj Product) PriceFor(customerType CustomerType) decimal.Decimal {
	if customerType != CustomerTypeIndividual && obj.WholesalePrice.IsPositive() {
		return obj.WholesalePrice
	}
	return obj.SellingPrice
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProduct) validate(ctx context.Context, businessId string, id int) error {

	if input.UnitId > 0 {
		if err := utils.ValidateResourceId[Unit](ctx, businessId, input.UnitId); err != nil {
			return errors.New("unit not found")
		}
	}
	if input.CategoryId > 0 {
		if err := utils.ValidateResourceId[Category](ctx, businessId, input.CategoryId); err != nil {
			return errors.New("category not found")
		}
	}
	if input.BuyingPrice.IsNegative() || input.SellingPrice.IsNegative() || input.WholesalePrice.IsNegative() {
		return errors.New("prices cannot be negative")
	}
	if input.Quantity.IsNegative() {
		return errors.New("quantity cannot be negative")
	}
	if input.Sku != "" {
		if err := utils.ValidateUnique[Product](ctx, businessId, "sku", input.Sku, id); err != nil {
			return errors.New("duplicate sku")
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	// products live in the shop unit unless stated otherwise
	unitId := input.UnitId
	if unitId == 0 {
		shop, err := GetUnitByCode(ctx, UnitCodeShop)
		if err != nil {
			return nil, err
		}
		unitId = shop.ID
	}

	product := Product{
		BusinessId:     businessId,
		UnitId:         unitId,
		CategoryId:     input.CategoryId,
		Name:           input.Name,
		Sku:            input.Sku,
		Description:    input.Description,
		BuyingPrice:    input.BuyingPrice,
		SellingPrice:   input.SellingPrice,
		WholesalePrice: input.WholesalePrice,
		Quantity:       input.Quantity,
		Threshold:      input.Threshold,
		IsActive:       utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// opening quantity as the first ledger entry
	if product.Quantity.IsPositive() {
		entry := StockEntry{
			BusinessId:    businessId,
			UnitId:        unitId,
			ProductId:     product.ID,
			EntryType:     StockEntryTypeAdded,
			Quantity:      product.Quantity,
			UnitCost:      product.BuyingPrice,
			ReferenceType: "products",
			ReferenceId:   product.ID,
			Notes:         "opening stock",
		}
		if err := createStockEntry(tx.WithContext(ctx), &entry); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	beforeUpdate, err := utils.FetchModel[Product](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	// quantity changes only through stock operations
	update := Product{ID: id, BusinessId: businessId, Quantity: beforeUpdate.Quantity}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&update).Updates(map[string]interface{}{
		"CategoryId":     input.CategoryId,
		"Name":           input.Name,
		"Sku":            input.Sku,
		"Description":    input.Description,
		"BuyingPrice":    input.BuyingPrice,
		"SellingPrice":   input.SellingPrice,
		"WholesalePrice": input.WholesalePrice,
		"Threshold":      input.Threshold,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(update); err != nil {
		return nil, err
	}
	return &update, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Product](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[SaleItem](ctx, businessId, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("product has sales and cannot be deleted")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return GetResource[Product](ctx, id)
}

type NewStockChange struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Notes    string          `json:"notes"`
}

// AddProductStock receives new stock into the product's unit.
func AddProductStock(ctx context.Context, id int, input *NewStockChange) (*Product, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if !input.Quantity.IsPositive() {
		return nil, errors.New("quantity must be positive")
	}

	product, err := utils.FetchModel[Product](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	unitCost := input.UnitCost
	if unitCost.IsZero() {
		unitCost = product.BuyingPrice
	}

	db := config.GetDB()
	tx := db.Begin()

	entry := StockEntry{
		BusinessId:    businessId,
		UnitId:        product.UnitId,
		ProductId:     product.ID,
		EntryType:     StockEntryTypeReceived,
		Quantity:      input.Quantity,
		UnitCost:      unitCost,
		ReferenceType: "products",
		ReferenceId:   product.ID,
		Notes:         input.Notes,
	}
	if err := createStockEntry(tx.WithContext(ctx), &entry); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*product); err != nil {
		return nil, err
	}
	return GetProduct(ctx, id)
}

// AdjustProductStock sets a count correction. Quantity is the signed delta.
func AdjustProductStock(ctx context.Context, id int, input *NewStockChange) (*Product, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if input.Quantity.IsZero() {
		return nil, errors.New("quantity must not be zero")
	}

	product, err := utils.FetchModel[Product](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	if input.Quantity.IsNegative() && !config.AllowNegativeStock() {
		if product.Quantity.Add(input.Quantity).IsNegative() {
			return nil, fmt.Errorf("adjustment would take %s below zero stock", product.Name)
		}
	}

	db := config.GetDB()
	tx := db.Begin()

	entry := StockEntry{
		BusinessId:    businessId,
		UnitId:        product.UnitId,
		ProductId:     product.ID,
		EntryType:     StockEntryTypeAdjusted,
		Quantity:      input.Quantity,
		UnitCost:      product.BuyingPrice,
		ReferenceType: "products",
		ReferenceId:   product.ID,
		Notes:         input.Notes,
	}
	if err := createStockEntry(tx.WithContext(ctx), &entry); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*product); err != nil {
		return nil, err
	}
	return GetProduct(ctx, id)
}

func PaginateProduct(ctx context.Context, limit *int, after *string, name *string, categoryId *int, unitId *int, lowStock *bool) (*ProductsConnection, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)

	if name != nil && *name != "" {
		dbCtx.Where("name LIKE ? OR sku LIKE ?", "%"+*name+"%", "%"+*name+"%")
	}
	if categoryId != nil && *categoryId > 0 {
		dbCtx.Where("category_id = ?", *categoryId)
	}
	if unitId != nil && *unitId > 0 {
		dbCtx.Where("unit_id = ?", *unitId)
	}
	if lowStock != nil && *lowStock {
		dbCtx.Where("quantity <= threshold")
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Product](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var productsConnection ProductsConnection
	productsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		productsEdge := ProductsEdge(edge)
		productsConnection.Edges = append(productsConnection.Edges, &productsEdge)
	}

	return &productsConnection, err
}

func ToggleActiveProduct(ctx context.Context, businessId string, id int, isActive bool) (*Product, error) {
	return ToggleActiveModel[Product](ctx, businessId, id, isActive)
}
