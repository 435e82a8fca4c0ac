package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestDerivePaymentStatus(t *testing.T) {
	cases := []struct {
		paid, final string
		want        PaymentStatus
	}{
		{"0", "1000", PaymentStatusNotPaid},
		{"400", "1000", PaymentStatusPartial},
		{"1000", "1000", PaymentStatusPaid},
		{"1200", "1000", PaymentStatusPaid},
		{"0", "0", PaymentStatusNotPaid},
	}
	for _, c := range cases {
		got := DerivePaymentStatus(d(c.paid), d(c.final))
		if got != c.want {
			t.Fatalf("DerivePaymentStatus(%s, %s) = %s, want %s", c.paid, c.final, got, c.want)
		}
	}
}

func TestDeriveRepairInvoiceStatus(t *testing.T) {
	cases := []struct {
		paid, total string
		want        RepairInvoiceStatus
	}{
		{"0", "5000", RepairInvoiceStatusUnpaid},
		{"2500", "5000", RepairInvoiceStatusPartial},
		{"5000", "5000", RepairInvoiceStatusPaid},
		// a zero-total invoice is never "paid"
		{"0", "0", RepairInvoiceStatusUnpaid},
	}
	for _, c := range cases {
		got := DeriveRepairInvoiceStatus(d(c.paid), d(c.total))
		if got != c.want {
			t.Fatalf("DeriveRepairInvoiceStatus(%s, %s) = %s, want %s", c.paid, c.total, got, c.want)
		}
	}
}

func TestCalcRepairInvoiceTotals_FixedPrice(t *testing.T) {
	fixed := d("10000")
	labour, total := CalcRepairInvoiceTotals(&fixed, d("999"), d("3000"), d("500"))
	if !total.Equal(d("10500")) {
		t.Fatalf("total = %s, want 10500", total)
	}
	// labour is the remainder after parts and tax
	if !labour.Equal(d("7000")) {
		t.Fatalf("labour = %s, want 7000", labour)
	}

	// parts exceeding the fixed price clamp labour at zero
	labour, total = CalcRepairInvoiceTotals(&fixed, d("0"), d("12000"), d("0"))
	if !labour.IsZero() {
		t.Fatalf("labour = %s, want 0", labour)
	}
	if !total.Equal(d("10000")) {
		t.Fatalf("total = %s, want 10000", total)
	}
}

func TestCalcRepairInvoiceTotals_Itemized(t *testing.T) {
	labour, total := CalcRepairInvoiceTotals(nil, d("4000"), d("2500"), d("650"))
	if !labour.Equal(d("4000")) {
		t.Fatalf("labour = %s, want 4000", labour)
	}
	if !total.Equal(d("7150")) {
		t.Fatalf("total = %s, want 7150", total)
	}
}

func TestDeriveTransferStatus(t *testing.T) {
	cases := []struct {
		settled, total string
		want           TransferOrderStatus
	}{
		{"0", "8000", TransferOrderStatusConfirmed},
		{"3000", "8000", TransferOrderStatusPartiallySettled},
		{"8000", "8000", TransferOrderStatusClosed},
		{"9000", "8000", TransferOrderStatusClosed},
	}
	for _, c := range cases {
		got := DeriveTransferStatus(d(c.settled), d(c.total))
		if got != c.want {
			t.Fatalf("DeriveTransferStatus(%s, %s) = %s, want %s", c.settled, c.total, got, c.want)
		}
	}
}

func TestClassifyTransferTab(t *testing.T) {
	if got := ClassifyTransferTab(d("100"), false); got != TransferTabPendingPayment {
		t.Fatalf("outstanding balance should sit in the pending-payment tab, got %s", got)
	}
	if got := ClassifyTransferTab(d("0"), true); got != TransferTabPendingClearance {
		t.Fatalf("settled but uncleared should sit in the pending-clearance tab, got %s", got)
	}
	if got := ClassifyTransferTab(d("0"), false); got != TransferTabClosedCleared {
		t.Fatalf("settled and cleared should sit in the closed tab, got %s", got)
	}
}

func TestCompositeCursorRoundTrip(t *testing.T) {
	cursor := EncodeCompositeCursor("2026-03-14 09:00:00", 42)
	dateTime, id := DecodeCompositeCursor(&cursor)
	if dateTime != "2026-03-14 09:00:00" {
		t.Fatalf("dateTime = %q", dateTime)
	}
	if id != 42 {
		t.Fatalf("id = %d, want 42", id)
	}

	// nil cursor decodes to zero values
	dateTime, id = DecodeCompositeCursor(nil)
	if dateTime != "" || id != 0 {
		t.Fatalf("nil cursor decoded to %q, %d", dateTime, id)
	}
}
