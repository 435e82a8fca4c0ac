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

type Quote struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	UnitId         int             `gorm:"index" json:"unit_id"`
	QuoteNumber    string          `gorm:"size:255;not null" json:"quote_number"`
	SequenceNo     decimal.Decimal `gorm:"type:decimal(15);not null" json:"sequence_no"`
	CustomerId     *int            `gorm:"index" json:"customer_id"`
	QuoteDate      time.Time       `gorm:"not null" json:"quote_date"`
	ValidUntil     *time.Time      `json:"valid_until"`
	Status         QuoteStatus     `gorm:"size:20;not null;default:draft" json:"status"`
	VatRate        decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"vat_rate"`
	SubTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Notes          string          `gorm:"type:text" json:"notes"`
	UserId         int             `gorm:"index" json:"user_id"`
	Items          []QuoteItem     `json:"items"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type QuoteItem struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"index;not null" json:"business_id"`
	QuoteId    int             `gorm:"index;not null" json:"quote_id"`
	ProductId  int             `gorm:"index" json:"product_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
}

type NewQuoteItem struct {
	ProductId int             `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type NewQuote struct {
	CustomerId   *int            `json:"customer_id"`
	QuoteDate    *MyDateString   `json:"quote_date"`
	ValidUntil   *MyDateString   `json:"valid_until"`
	VatRate      decimal.Decimal `json:"vat_rate"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountType string          `json:"discount_type"`
	Notes        string          `json:"notes"`
	Items        []NewQuoteItem  `json:"items" binding:"required"`
}

type QuotesEdge Edge[Quote]

type QuotesConnection struct {
	PageInfo *PageInfo     `json:"pageInfo"`
	Edges    []*QuotesEdge `json:"edges"`
}

func (obj Quote) GetId() int {
	return obj.ID
}

func (obj Quote) GetCursor() string {
	return obj.QuoteDate.String()
}

// validate input for both create & update. (id = 0 for create)
func (input *NewQuote) validate(ctx context.Context, businessId string, _ int) error {

	if len(input.Items) == 0 {
		return errors.New("at least one item is required")
	}
	for _, item := range input.Items {
		if !item.Quantity.IsPositive() {
			return errors.New("item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return errors.New("item price cannot be negative")
		}
		if item.ProductId > 0 {
			if err := utils.ValidateResourceId[Product](ctx, businessId, item.ProductId); err != nil {
				return errors.New("product not found")
			}
		}
	}
	if input.VatRate.IsNegative() {
		return errors.New("vat rate cannot be negative")
	}
	if input.CustomerId != nil && *input.CustomerId > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, businessId, *input.CustomerId); err != nil {
			return errors.New("customer not found")
		}
	}
	return nil
}

// build items and totals from the input lines
func (input *NewQuote) buildLines(ctx context.Context, businessId string) ([]QuoteItem, decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {

	var items []QuoteItem
	subTotal := decimal.Zero
	for _, line := range input.Items {
		name := line.Name
		unitPrice := line.UnitPrice
		if line.ProductId > 0 {
			product, err := GetProduct(ctx, line.ProductId)
			if err != nil {
				return nil, decimal.Zero, decimal.Zero, decimal.Zero, err
			}
			if name == "" {
				name = product.Name
			}
			if unitPrice.IsZero() {
				unitPrice = product.SellingPrice
			}
		}
		amount := unitPrice.Mul(line.Quantity)
		subTotal = subTotal.Add(amount)
		items = append(items, QuoteItem{
			BusinessId: businessId,
			ProductId:  line.ProductId,
			Name:       name,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			Amount:     amount,
		})
	}

	discountAmount := utils.CalculateDiscountAmount(subTotal, input.Discount, input.DiscountType)
	taxable := subTotal.Sub(discountAmount)
	taxAmount := utils.CalculateTaxAmount(taxable, input.VatRate, false)

	return items, subTotal, discountAmount, taxAmount, nil
}

func CreateQuote(ctx context.Context, input *NewQuote) (*Quote, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	items, subTotal, discountAmount, taxAmount, err := input.buildLines(ctx, businessId)
	if err != nil {
		return nil, err
	}

	quoteDate := time.Now().UTC()
	if input.QuoteDate != nil {
		quoteDate = time.Time(*input.QuoteDate)
	}
	var validUntil *time.Time
	if input.ValidUntil != nil {
		v := time.Time(*input.ValidUntil)
		validUntil = &v
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	quote := Quote{
		BusinessId:     businessId,
		CustomerId:     input.CustomerId,
		QuoteDate:      quoteDate,
		ValidUntil:     validUntil,
		Status:         QuoteStatusDraft,
		VatRate:        input.VatRate,
		SubTotal:       subTotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		TotalAmount:    subTotal.Sub(discountAmount).Add(taxAmount),
		Notes:          input.Notes,
		UserId:         userId,
		Items:          items,
	}

	seqNo, err := utils.GetSequence[Quote](ctx, businessId)
	if err != nil {
		return nil, err
	}
	quote.SequenceNo = decimal.NewFromInt(seqNo)
	quote.QuoteNumber = "QT-" + fmt.Sprint(seqNo)

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&quote).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func UpdateQuote(ctx context.Context, id int, input *NewQuote) (*Quote, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	before, err := utils.FetchModel[Quote](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if before.Status != QuoteStatusDraft && before.Status != QuoteStatusSent {
		return nil, fmt.Errorf("quote is %s and cannot be edited", before.Status)
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	items, subTotal, discountAmount, taxAmount, err := input.buildLines(ctx, businessId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	// replace the lines wholesale
	if err := tx.WithContext(ctx).Where("quote_id = ?", id).Delete(&QuoteItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range items {
		items[i].QuoteId = id
	}
	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	update := Quote{ID: id, BusinessId: businessId}
	err = tx.WithContext(ctx).Model(&update).Updates(map[string]interface{}{
		"CustomerId":     input.CustomerId,
		"VatRate":        input.VatRate,
		"SubTotal":       subTotal,
		"DiscountAmount": discountAmount,
		"TaxAmount":      taxAmount,
		"TotalAmount":    subTotal.Sub(discountAmount).Add(taxAmount),
		"Notes":          input.Notes,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return utils.FetchModel[Quote](ctx, businessId, id, "Items")
}

// ChangeQuoteStatus moves a quote through draft -> sent -> accepted|rejected.
// Expiry is also set explicitly, there is no background sweeper.
func ChangeQuoteStatus(ctx context.Context, id int, status QuoteStatus) (*Quote, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if !status.Valid() {
		return nil, errors.New("invalid quote status")
	}

	quote, err := utils.FetchModel[Quote](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	allowed := map[QuoteStatus][]QuoteStatus{
		QuoteStatusDraft: {QuoteStatusSent},
		QuoteStatusSent:  {QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired},
	}
	ok = false
	for _, next := range allowed[quote.Status] {
		if next == status {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("cannot move quote from %s to %s", quote.Status, status)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&quote).UpdateColumn("status", status).Error; err != nil {
		return nil, err
	}
	quote.Status = status
	return quote, nil
}

func DeleteQuote(ctx context.Context, id int) (*Quote, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Quote](ctx, businessId, id, "Items")
	if err != nil {
		return nil, err
	}
	if result.Status == QuoteStatusAccepted {
		return nil, errors.New("accepted quote cannot be deleted")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("quote_id = ?", id).Delete(&QuoteItem{}).Error; err != nil {
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

func GetQuote(ctx context.Context, id int) (*Quote, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Quote](ctx, businessId, id, "Items")
}

func PaginateQuote(ctx context.Context, limit *int, after *string, customerId *int, status *QuoteStatus, fromDate *MyDateString, toDate *MyDateString) (*QuotesConnection, error) {

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
	if status != nil && *status != "" {
		dbCtx.Where("status = ?", *status)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("quote_date BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Quote](dbCtx, *limit, after, "quote_date", "<")
	if err != nil {
		return nil, err
	}
	var quotesConnection QuotesConnection
	quotesConnection.PageInfo = pageInfo
	for _, edge := range edges {
		quotesEdge := QuotesEdge(edge)
		quotesConnection.Edges = append(quotesConnection.Edges, &quotesEdge)
	}

	return &quotesConnection, err
}
