package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

func ParseDateString(dateString string, timezone string) (time.Time, error) {

	// Parse the date string into a time.Time object
	localTime, err := time.Parse("2006-01-02T15:04:05", dateString)
	if err != nil {
		fmt.Println("Error parsing date:", err)
		return time.Time{}, err
	}

	if timezone == "" {
		timezone = "Africa/Nairobi"
	}

	// Load the location for the given timezone
	location, err := time.LoadLocation(timezone)
	if err != nil {
		fmt.Println("Error loading location:", err)
		return time.Time{}, err
	}

	// Convert the local time to the specified timezone
	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		localTime.Hour(), localTime.Minute(), localTime.Second(), localTime.Nanosecond(),
		location,
	)

	// Convert the time to UTC
	return localTimeInZone.UTC(), nil
}

// return current stock on hand for the product in its owning unit.
// using transaction to get updated stock values which are not committed yet
func GetProductStock(tx *gorm.DB, ctx context.Context, businessId string, productId int) (decimal.Decimal, error) {
	currentStock := decimal.Zero
	if err := tx.WithContext(ctx).Model(&Product{}).
		Where("business_id = ? AND id = ?", businessId, productId).
		Select("quantity").Scan(&currentStock).Error; err != nil {
		return currentStock, err
	}
	return currentStock, nil
}

// validate whether the product has enough current stock for the outgoing qty
func ValidateProductStock(tx *gorm.DB, ctx context.Context, businessId string, productId int, outQty decimal.Decimal) error {
	currentStock, err := GetProductStock(tx, ctx, businessId, productId)
	if err != nil {
		return err
	}
	if currentStock.LessThan(outQty) {
		return errors.New("input qty is more than the current stock on hand")
	}
	return nil
}

// ShortLine reports one product whose requested qty exceeds stock on hand.
type ShortLine struct {
	ProductId int
	Name      string
	InStock   decimal.Decimal
	Requested decimal.Decimal
}

// ValidateStockForLines checks every requested product against stock on hand
// and returns a single error naming all the short products, not just the first.
func ValidateStockForLines(tx *gorm.DB, ctx context.Context, businessId string, requested map[int]decimal.Decimal) error {
	if len(requested) == 0 {
		return nil
	}

	productIds := make([]int, 0, len(requested))
	for id := range requested {
		productIds = append(productIds, id)
	}

	var products []Product
	if err := tx.WithContext(ctx).
		Where("business_id = ? AND id IN ?", businessId, productIds).
		Order("id").Find(&products).Error; err != nil {
		return err
	}
	if len(products) != len(requested) {
		return errors.New("product not found")
	}

	var short []ShortLine
	for _, product := range products {
		qty := requested[product.ID]
		if product.Quantity.LessThan(qty) {
			short = append(short, ShortLine{
				ProductId: product.ID,
				Name:      product.Name,
				InStock:   product.Quantity,
				Requested: qty,
			})
		}
	}
	if len(short) > 0 {
		return errors.New(FormatShortLines(short))
	}
	return nil
}

// FormatShortLines builds the insufficiency message shown to approvers,
// one clause per short product.
func FormatShortLines(short []ShortLine) string {
	parts := make([]string, 0, len(short))
	for _, line := range short {
		parts = append(parts, fmt.Sprintf("%s (in stock %s, requested %s)",
			line.Name, line.InStock.String(), line.Requested.String()))
	}
	return "Insufficient stock for: " + strings.Join(parts, ", ")
}
