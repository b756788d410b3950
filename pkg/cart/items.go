package cart

import (
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/pricing"
)

// AddItem increments the quantity of the line matching item's key, or appends
// item when no such line exists.
func AddItem(items []models.LineItem, item models.LineItem) []models.LineItem {
	key := item.Key()
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

// LineQuantity returns the quantity held under key, or 0 when absent.
func LineQuantity(items []models.LineItem, key models.LineKey) int {
	for _, it := range items {
		if it.Key() == key {
			return it.Quantity
		}
	}
	return 0
}

// SetItem overwrites the quantity of the line matching key. It reports false
// when the cart holds no such line.
func SetItem(items []models.LineItem, key models.LineKey, quantity int) ([]models.LineItem, bool) {
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity = quantity
			return items, true
		}
	}
	return items, false
}

// RemoveItem drops the line matching key exactly.
func RemoveItem(items []models.LineItem, key models.LineKey) ([]models.LineItem, bool) {
	for i := range items {
		if items[i].Key() == key {
			return append(items[:i:i], items[i+1:]...), true
		}
	}
	return items, false
}

// Totals sums quantities and line totals. Unavailable lines count toward the
// item total but add nothing to the value.
func Totals(lines []models.CartItemView) (totalItems int, totalValue float64) {
	values := make([]float64, 0, len(lines))
	for _, l := range lines {
		totalItems += l.Quantity
		if !l.Unavailable {
			values = append(values, l.LineTotal)
		}
	}
	return totalItems, pricing.Sum(values...)
}
