package config

import (
	"os"
	"strings"
)

// AllowNegativeStock disables the stock-availability checks on POS checkout
// and material request approval. Stock entries are still written, so the
// ledger records the resulting negative balance.
//
// Set via env:
// - ALLOW_NEGATIVE_STOCK=true
func AllowNegativeStock() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_NEGATIVE_STOCK")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// EnforceCreditLimit gates credit sales on the customer's credit limit.
// Enabled unless explicitly turned off.
//
// Set via env:
// - ENFORCE_CREDIT_LIMIT=false
func EnforceCreditLimit() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ENFORCE_CREDIT_LIMIT")))
	if v == "" {
		return true
	}
	return !(v == "0" || v == "false" || v == "no" || v == "n")
}
