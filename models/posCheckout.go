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

type NewPosCheckoutItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	// zero means use the catalogue price for the customer type
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type NewPosCheckout struct {
	CustomerId     *int                 `json:"customer_id"`
	SaleDate       *MyDateString        `json:"sale_date"`
	Items          []NewPosCheckoutItem `json:"items" binding:"required"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	AmountPaid     decimal.Decimal      `json:"amount_paid"`
	PaymentMethod  PaymentMethod        `json:"payment_method"`
	Notes          string               `json:"notes"`
}

type PosCheckoutResult struct {
	Message       string          `json:"message"`
	SaleId        int             `json:"sale_id"`
	SaleNumber    string          `json:"sale_number"`
	FinalAmount   decimal.Decimal `json:"final_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	IsLoan        bool            `json:"is_loan"`
}

func (input *NewPosCheckout) validate(ctx context.Context, businessId string) error {

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
	}
	if input.DiscountAmount.IsNegative() {
		return errors.New("discount cannot be negative")
	}
	if input.AmountPaid.IsNegative() {
		return errors.New("amount paid cannot be negative")
	}
	if input.PaymentMethod != "" && !input.PaymentMethod.Valid() {
		return errors.New("invalid payment method")
	}
	if input.CustomerId != nil && *input.CustomerId > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, businessId, *input.CustomerId); err != nil {
			return errors.New("customer not found")
		}
	}
	return nil
}

// CompletePosSale runs the whole counter checkout in one transaction:
// price the items, enforce loan gates, deduct stock and take the payment.
func CompletePosSale(ctx context.Context, input *NewPosCheckout) (*PosCheckoutResult, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	shop, err := GetUnitByCode(ctx, UnitCodeShop)
	if err != nil {
		return nil, err
	}

	// customer checks happen before any pricing work
	var customer *Customer
	customerType := CustomerTypeIndividual
	if input.CustomerId != nil && *input.CustomerId > 0 {
		customer, err = GetCustomer(ctx, *input.CustomerId)
		if err != nil {
			return nil, err
		}
		if customer.IsBlacklisted != nil && *customer.IsBlacklisted {
			return nil, errors.New("customer is blacklisted")
		}
		customerType = customer.Type
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	saleDate := time.Now().UTC()
	if input.SaleDate != nil {
		saleDate = time.Time(*input.SaleDate)
	}

	// price the items before the transaction opens, the stock check
	// below runs on the transaction itself
	var saleItems []SaleItem
	totalAmount := decimal.Zero
	for _, item := range input.Items {
		product, err := GetProduct(ctx, item.ProductId)
		if err != nil {
			return nil, err
		}
		unitPrice := item.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.PriceFor(customerType)
		}
		amount := unitPrice.Mul(item.Quantity)
		totalAmount = totalAmount.Add(amount)
		saleItems = append(saleItems, SaleItem{
			BusinessId: businessId,
			ProductId:  product.ID,
			Name:       product.Name,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			Amount:     amount,
		})
	}

	if input.DiscountAmount.GreaterThan(totalAmount) {
		return nil, errors.New("discount exceeds total amount")
	}
	finalAmount := totalAmount.Sub(input.DiscountAmount)

	if input.AmountPaid.GreaterThan(finalAmount) {
		return nil, errors.New("amount paid exceeds the amount due")
	}

	// anything unpaid becomes a loan and needs a customer on record
	isLoan := input.AmountPaid.LessThan(finalAmount)
	if isLoan {
		if customer == nil {
			return nil, errors.New("customer is required for partial or credit sales")
		}
		if config.EnforceCreditLimit() && customer.CreditLimit.IsPositive() {
			outstanding, err := GetCustomerOutstanding(ctx, customer.ID)
			if err != nil {
				return nil, err
			}
			newExposure := outstanding.Add(finalAmount.Sub(input.AmountPaid))
			if newExposure.GreaterThan(customer.CreditLimit) {
				return nil, fmt.Errorf("credit limit of %s exceeded", customer.CreditLimit.String())
			}
		}
	}

	paymentStatus := DerivePaymentStatus(input.AmountPaid, finalAmount)

	seqNo, err := utils.GetSequence[Sale](ctx, businessId)
	if err != nil {
		return nil, err
	}

	// the lock serializes stock checks against concurrent postings,
	// the transaction holds everything after this point
	release, err := utils.BusinessLock(ctx, businessId, "posting", "models", "CompletePosSale")
	if err != nil {
		return nil, err
	}
	defer release()

	db := config.GetDB()
	tx := db.Begin()

	// stock check across all lines, every short product named at once
	requested := make(map[int]decimal.Decimal, len(input.Items))
	for _, item := range input.Items {
		requested[item.ProductId] = requested[item.ProductId].Add(item.Quantity)
	}
	if !config.AllowNegativeStock() {
		if err := ValidateStockForLines(tx, ctx, businessId, requested); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	sale := Sale{
		BusinessId:        businessId,
		UnitId:            shop.ID,
		CustomerId:        input.CustomerId,
		UserId:            userId,
		SaleDate:          saleDate,
		Status:            SaleStatusConfirmed,
		PaymentStatus:     paymentStatus,
		FulfillmentStatus: FulfillmentStatusPending,
		TotalAmount:       totalAmount,
		DiscountAmount:    input.DiscountAmount,
		FinalAmount:       finalAmount,
		PaidAmount:        input.AmountPaid,
		IsLoan:            &isLoan,
		Notes:             input.Notes,
		Items:             saleItems,
	}
	sale.SequenceNo = decimal.NewFromInt(seqNo)
	sale.SaleNumber = "SALE-" + fmt.Sprint(seqNo)

	if err := tx.WithContext(ctx).Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// deduct stock, one ledger row per line
	for _, item := range sale.Items {
		entry := StockEntry{
			BusinessId:    businessId,
			UnitId:        shop.ID,
			ProductId:     item.ProductId,
			EntryType:     StockEntryTypeSold,
			Quantity:      item.Quantity.Neg(),
			UnitCost:      item.UnitPrice,
			ReferenceType: "sales",
			ReferenceId:   sale.ID,
			UserId:        userId,
		}
		if err := createStockEntry(tx.WithContext(ctx), &entry); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if input.AmountPaid.IsPositive() {
		method := input.PaymentMethod
		if method == "" {
			method = PaymentMethodCash
		}
		payment := Payment{
			BusinessId:  businessId,
			UnitId:      shop.ID,
			SaleId:      &sale.ID,
			CustomerId:  input.CustomerId,
			Amount:      input.AmountPaid,
			Method:      method,
			UserId:      userId,
			PaymentDate: saleDate,
		}
		if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	description := fmt.Sprintf("Sale %s completed for %s", sale.SaleNumber, finalAmount.String())
	if err := createTimelineEvent(tx.WithContext(ctx), shop.ID, TimelineEventTypeSaleCompleted, sale.ID, "sales", description); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &PosCheckoutResult{
		Message:       "Order placed successfully.",
		SaleId:        sale.ID,
		SaleNumber:    sale.SaleNumber,
		FinalAmount:   finalAmount,
		PaidAmount:    input.AmountPaid,
		PaymentStatus: paymentStatus,
		IsLoan:        isLoan,
	}, nil
}
