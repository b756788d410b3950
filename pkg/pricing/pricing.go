// Package pricing computes effective prices and validates requested quantities.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// MaxLineQuantity caps the quantity a single cart line can hold.
const MaxLineQuantity = math.MaxInt32

var hundred = decimal.NewFromInt(100)

// Stock is the available quantity for a line. Limited is false when the
// product carries no stock ceiling.
type Stock struct {
	Limited   bool
	Available int
}

func Unlimited() Stock {
	return Stock{}
}

func Limited(n int) Stock {
	return Stock{Limited: true, Available: n}
}

// Ptr returns the available count, or nil when unlimited.
func (s Stock) Ptr() *int {
	if !s.Limited {
		return nil
	}
	n := s.Available
	return &n
}

// PriceItem returns unitPrice * (1 - discountPercent/100), rounded to cents.
// The discount is clamped to [0, 100].
func PriceItem(unitPrice, discountPercent float64) float64 {
	pct := decimal.NewFromFloat(discountPercent)
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	price, _ := decimal.NewFromFloat(unitPrice).Mul(factor).Round(2).Float64()
	return price
}

// LineTotal returns effectivePrice * quantity, rounded to cents.
func LineTotal(effectivePrice float64, quantity int) float64 {
	total, _ := decimal.NewFromFloat(effectivePrice).Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()
	return total
}

// Sum adds amounts exactly and rounds the result to cents.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// ValidateQuantity rejects quantities below 1 or above MaxLineQuantity, then
// quantities above a limited stock.
func ValidateQuantity(requested int, stock Stock) error {
	if requested < 1 {
		return global.InvalidArgument("quantity", "Quantity must be at least 1")
	}
	if requested > MaxLineQuantity {
		return global.InvalidArgument("quantity", "Quantity is too large")
	}
	if stock.Limited && requested > stock.Available {
		return global.InsufficientStock("Requested quantity exceeds available stock")
	}
	return nil
}

// CanMerge reports whether adding more to a line holding current stays
// within MaxLineQuantity.
func CanMerge(current, more int) bool {
	return current >= 0 && more >= 0 && current <= MaxLineQuantity-more
}
