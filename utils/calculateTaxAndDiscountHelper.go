package utils

import (
	"github.com/shopspring/decimal"
)

// CalculateTaxAmount derives the tax portion of an amount for a percentage rate.
func CalculateTaxAmount(totalAmount decimal.Decimal, taxRate decimal.Decimal, isTaxInclusive bool) decimal.Decimal {
	var taxAmount decimal.Decimal
	if isTaxInclusive {
		// Tax-inclusive: (totalAmount / (100 + taxRate)) * taxRate
		taxAmount = totalAmount.DivRound(taxRate.Add(decimal.NewFromFloat(100)), 4).Mul(taxRate)
	} else {
		// Tax-exclusive: (totalAmount / 100) * taxRate
		taxAmount = totalAmount.DivRound(decimal.NewFromFloat(100), 4).Mul(taxRate)
	}

	return taxAmount
}

// discountType "P" means percentage, anything else is a flat amount.
func CalculateDiscountAmount(subTotal decimal.Decimal, discount decimal.Decimal, discountType string) decimal.Decimal {

	var discountAmount decimal.Decimal

	decimalOneHundred := decimal.NewFromFloat(100)

	if discount.GreaterThan(decimal.NewFromFloat(0.0)) {
		if discountType == "P" {
			discountAmount = subTotal.Mul(discount).DivRound(decimalOneHundred, 4)
		} else {
			discountAmount = discount
		}
	} else {
		discountAmount = decimal.NewFromFloat(0.0)
	}

	return discountAmount
}
