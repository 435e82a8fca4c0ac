package models_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func seedProduct(t *testing.T, ctx context.Context, name string, qty string, price string) *models.Product {
	t.Helper()

	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         name,
		BuyingPrice:  dec("700"),
		SellingPrice: dec(price),
		Quantity:     dec(qty),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestCompletePosSale_FullPayment(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product := seedProduct(t, ctx, "Claw Hammer", "10", "1500")

	result, err := models.CompletePosSale(ctx, &models.NewPosCheckout{
		Items: []models.NewPosCheckoutItem{
			{ProductId: product.ID, Quantity: dec("3")},
		},
		AmountPaid: dec("4500"),
	})
	if err != nil {
		t.Fatalf("complete sale: %v", err)
	}

	if !strings.HasPrefix(result.SaleNumber, "SALE-") {
		t.Fatalf("sale number = %q", result.SaleNumber)
	}
	if result.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("payment status = %s", result.PaymentStatus)
	}
	if result.IsLoan {
		t.Fatal("fully paid sale flagged as loan")
	}
	if !result.FinalAmount.Equal(dec("4500")) {
		t.Fatalf("final amount = %s", result.FinalAmount)
	}

	sale, err := models.GetSale(ctx, result.SaleId)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if sale.Status != models.SaleStatusConfirmed {
		t.Fatalf("sale status = %s", sale.Status)
	}

	// stock drawn down through the ledger
	fresh, err := models.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !fresh.Quantity.Equal(dec("7")) {
		t.Fatalf("quantity after sale = %s, want 7", fresh.Quantity)
	}
}

func TestCompletePosSale_InsufficientStock(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product := seedProduct(t, ctx, "Pipe Wrench", "2", "8000")

	_, err := models.CompletePosSale(ctx, &models.NewPosCheckout{
		Items: []models.NewPosCheckoutItem{
			{ProductId: product.ID, Quantity: dec("5")},
		},
		AmountPaid: dec("40000"),
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if !strings.Contains(err.Error(), "Pipe Wrench") {
		t.Fatalf("error should name the short product: %v", err)
	}
}

func TestCompletePosSale_LoanRequiresCustomer(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product := seedProduct(t, ctx, "Angle Grinder", "5", "90000")

	_, err := models.CompletePosSale(ctx, &models.NewPosCheckout{
		Items: []models.NewPosCheckoutItem{
			{ProductId: product.ID, Quantity: dec("1")},
		},
		AmountPaid: dec("50000"),
	})
	if err == nil || err.Error() != "customer is required for partial or credit sales" {
		t.Fatalf("err = %v", err)
	}
}

func TestCompletePosSale_BlacklistedCustomer(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product := seedProduct(t, ctx, "Bolt Cutter", "5", "25000")
	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:          "Bad Debtor",
		IsBlacklisted: utils.NewTrue(),
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	_, err = models.CompletePosSale(ctx, &models.NewPosCheckout{
		CustomerId: &customer.ID,
		Items: []models.NewPosCheckoutItem{
			{ProductId: product.ID, Quantity: dec("1")},
		},
		AmountPaid: dec("25000"),
	})
	if err == nil || err.Error() != "customer is blacklisted" {
		t.Fatalf("err = %v", err)
	}
}

func TestCompletePosSale_OverpaymentRejected(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product := seedProduct(t, ctx, "Tape Measure", "5", "3000")

	_, err := models.CompletePosSale(ctx, &models.NewPosCheckout{
		Items: []models.NewPosCheckoutItem{
			{ProductId: product.ID, Quantity: dec("1")},
		},
		AmountPaid: dec("5000"),
	})
	if err == nil || err.Error() != "amount paid exceeds the amount due" {
		t.Fatalf("err = %v", err)
	}
}

func TestPayLoan(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product := seedProduct(t, ctx, "Welding Machine", "3", "400000")
	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "Site Foreman"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	result, err := models.CompletePosSale(ctx, &models.NewPosCheckout{
		CustomerId: &customer.ID,
		Items: []models.NewPosCheckoutItem{
			{ProductId: product.ID, Quantity: dec("1")},
		},
		AmountPaid: dec("100000"),
	})
	if err != nil {
		t.Fatalf("complete sale: %v", err)
	}
	if !result.IsLoan {
		t.Fatal("partial payment should open a loan")
	}
	if result.PaymentStatus != models.PaymentStatusPartial {
		t.Fatalf("payment status = %s", result.PaymentStatus)
	}

	// overpaying the balance is refused
	_, err = models.PayLoan(ctx, result.SaleId, &models.NewPayment{Amount: dec("350000")})
	if err == nil {
		t.Fatal("expected overpayment error")
	}

	sale, err := models.PayLoan(ctx, result.SaleId, &models.NewPayment{Amount: dec("300000")})
	if err != nil {
		t.Fatalf("pay loan: %v", err)
	}
	if sale.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("payment status after settle = %s", sale.PaymentStatus)
	}
	if !sale.PaidAmount.Equal(dec("400000")) {
		t.Fatalf("paid amount = %s", sale.PaidAmount)
	}

	// nothing left to pay
	_, err = models.PayLoan(ctx, result.SaleId, &models.NewPayment{Amount: dec("1")})
	if err == nil {
		t.Fatal("expected error paying a settled loan")
	}
}

func TestRefundSale(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product := seedProduct(t, ctx, "Circular Saw", "4", "150000")

	result, err := models.CompletePosSale(ctx, &models.NewPosCheckout{
		Items: []models.NewPosCheckoutItem{
			{ProductId: product.ID, Quantity: dec("2")},
		},
		AmountPaid: dec("300000"),
	})
	if err != nil {
		t.Fatalf("complete sale: %v", err)
	}

	refund, err := models.RefundSale(ctx, result.SaleId, &models.NewRefund{Reason: "faulty batch"})
	if err != nil {
		t.Fatalf("refund sale: %v", err)
	}
	if !refund.Amount.Equal(dec("300000")) {
		t.Fatalf("refund amount = %s", refund.Amount)
	}

	sale, err := models.GetSale(ctx, result.SaleId)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if sale.Status != models.SaleStatusRefunded {
		t.Fatalf("sale status = %s", sale.Status)
	}
	if sale.PaymentStatus != models.PaymentStatusRefunded {
		t.Fatalf("payment status = %s", sale.PaymentStatus)
	}

	// items back on the shelf
	fresh, err := models.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !fresh.Quantity.Equal(dec("4")) {
		t.Fatalf("quantity after refund = %s, want 4", fresh.Quantity)
	}

	_, err = models.RefundSale(ctx, result.SaleId, &models.NewRefund{})
	if err == nil {
		t.Fatal("expected error refunding twice")
	}
}
