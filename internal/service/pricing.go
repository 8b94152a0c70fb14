package service

import (
	"math"

	"tech-kart/internal/model"
)

// RoundMoney rounds an amount to the currency's minor-unit precision
// (2 decimal places).
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// MinorUnits converts a rounded amount to the gateway's minor-unit
// convention (e.g. 1180.00 INR -> 118000 paise).
func MinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}

// PriceCart computes the cart totals from resolved lines and the store-wide
// tax/shipping configuration. The subtotal is rounded once after summation,
// not per line; the total is the sum of the three already-rounded components
// and is never re-rounded, so it always matches what the customer sees.
func PriceCart(lines []model.ResolvedLine, tax model.TaxConfig, shipping model.ShippingConfig) (model.CartTotals, error) {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}
	subtotal = RoundMoney(subtotal)

	// A zero or negative cart must never reach payment.
	if subtotal <= 0 {
		return model.CartTotals{}, model.ErrEmptyCartTotal
	}

	var taxAmount float64
	if tax.Enabled {
		taxAmount = RoundMoney(subtotal * tax.RatePercent / 100)
	}

	var shippingAmount float64
	if shipping.Enabled {
		shippingAmount = RoundMoney(shipping.FlatAmount)
	}

	return model.CartTotals{
		Subtotal: subtotal,
		Tax:      taxAmount,
		Shipping: shippingAmount,
		Total:    subtotal + taxAmount + shippingAmount,
	}, nil
}
