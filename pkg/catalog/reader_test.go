package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type productMap map[bson.ObjectID]*models.Product

func (m productMap) FindProductByID(_ context.Context, id bson.ObjectID) (*models.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, global.NotFound("Product not found")
	}
	return p, nil
}

func TestResolve(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	variationID := bson.NewObjectID()
	product := &models.Product{
		ID:           bson.NewObjectID(),
		SellingPrice: 100,
		Variations: []models.Variation{
			{ID: variationID, Color: "red", Size: "M", Price: 120, QuantityAvailable: 5},
		},
		Offer: &models.Offer{
			StartDate:          now.Add(-time.Hour),
			EndDate:            now.Add(time.Hour),
			DiscountPercentage: 20,
			FlashSale:          true,
		},
	}
	reader := NewReader(productMap{product.ID: product}).WithClock(func() time.Time { return now })

	t.Run("base price has no stock ceiling", func(t *testing.T) {
		res, err := reader.Resolve(context.Background(), product.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.UnitPrice)
		assert.False(t, res.Stock.Limited)
		assert.Equal(t, 20.0, res.DiscountPercent)
		assert.True(t, res.FlashSale)
		assert.Equal(t, 80.0, res.EffectivePrice())
	})

	t.Run("variation overrides price and stock", func(t *testing.T) {
		res, err := reader.Resolve(context.Background(), product.ID, &variationID)
		require.NoError(t, err)
		assert.Equal(t, 120.0, res.UnitPrice)
		assert.True(t, res.Stock.Limited)
		assert.Equal(t, 5, res.Stock.Available)
		assert.Equal(t, "red", res.Variation.Color)
	})

	t.Run("unknown variation", func(t *testing.T) {
		missing := bson.NewObjectID()
		_, err := reader.Resolve(context.Background(), product.ID, &missing)
		assert.True(t, global.IsKind(err, global.KindNotFound))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := reader.Resolve(context.Background(), bson.NewObjectID(), nil)
		assert.True(t, global.IsKind(err, global.KindNotFound))
	})
}

func TestOfferWindow(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	product := &models.Product{
		SellingPrice: 100,
		Offer:        &models.Offer{StartDate: t0, EndDate: t1, DiscountPercentage: 20},
	}

	cases := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"before start", t0.Add(-time.Second), 100},
		{"at start", t0, 80},
		{"inside", t0.Add(time.Hour), 80},
		{"at end", t1, 80},
		{"after end", t1.Add(time.Second), 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ResolveProduct(product, nil, tc.at)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.EffectivePrice())
		})
	}

	t.Run("no offer", func(t *testing.T) {
		res, err := ResolveProduct(&models.Product{SellingPrice: 42}, nil, t0)
		require.NoError(t, err)
		assert.Zero(t, res.DiscountPercent)
		assert.Equal(t, 42.0, res.EffectivePrice())
	})
}
