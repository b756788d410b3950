package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func TestItemMerging(t *testing.T) {
	p := bson.NewObjectID()
	v := bson.NewObjectID()

	items := AddItem(nil, models.LineItem{ProductID: p, Quantity: 1})
	items = AddItem(items, models.LineItem{ProductID: p, VariationID: &v, Quantity: 2})
	items = AddItem(items, models.LineItem{ProductID: p, Quantity: 4})

	assert.Len(t, items, 2)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 2, items[1].Quantity)

	items, ok := SetItem(items, models.LineKey{ProductID: p, VariationID: v}, 7)
	assert.True(t, ok)
	assert.Equal(t, 7, items[1].Quantity)
	assert.Equal(t, 7, LineQuantity(items, models.LineKey{ProductID: p, VariationID: v}))
	assert.Zero(t, LineQuantity(items, models.LineKey{ProductID: bson.NewObjectID()}))

	_, ok = SetItem(items, models.LineKey{ProductID: bson.NewObjectID()}, 1)
	assert.False(t, ok)

	remaining, ok := RemoveItem(items, models.LineKey{ProductID: p})
	assert.True(t, ok)
	assert.Len(t, remaining, 1)
	assert.Equal(t, &v, remaining[0].VariationID)
	assert.Len(t, items, 2, "removal does not modify the input slice")
}

func TestTotals(t *testing.T) {
	lines := []models.CartItemView{
		{Quantity: 2, LineTotal: 19.98},
		{Quantity: 1, LineTotal: 0.1},
		{Quantity: 3, LineTotal: 99, Unavailable: true},
	}
	items, value := Totals(lines)
	assert.Equal(t, 6, items)
	assert.Equal(t, 20.08, value)
}
