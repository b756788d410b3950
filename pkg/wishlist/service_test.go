package wishlist

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

type memStore struct {
	lists map[bson.ObjectID]*models.Wishlist
}

func (m *memStore) AddWishlistItem(_ context.Context, userID, productID bson.ObjectID, now time.Time) error {
	w, ok := m.lists[userID]
	if !ok {
		w = &models.Wishlist{User: userID, CreatedAt: now}
		m.lists[userID] = w
	}
	for _, it := range w.Items {
		if it.Product == productID {
			return global.Conflict("Product already in wishlist")
		}
	}
	w.Items = append(w.Items, models.WishlistItem{Product: productID, AddedAt: now})
	return nil
}

func (m *memStore) FindWishlist(_ context.Context, userID bson.ObjectID) (*models.Wishlist, error) {
	w, ok := m.lists[userID]
	if !ok {
		return nil, global.NotFound("Wishlist not found")
	}
	return w, nil
}

func (m *memStore) RemoveWishlistItem(_ context.Context, userID, productID bson.ObjectID, _ time.Time) error {
	w, ok := m.lists[userID]
	if !ok {
		return global.NotFound("Product not found in wishlist")
	}
	for i, it := range w.Items {
		if it.Product == productID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			return nil
		}
	}
	return global.NotFound("Product not found in wishlist")
}

func (m *memStore) DeleteWishlist(_ context.Context, userID bson.ObjectID) (int64, error) {
	if _, ok := m.lists[userID]; !ok {
		return 0, nil
	}
	delete(m.lists, userID)
	return 1, nil
}

func (m *memStore) WishlistContains(_ context.Context, userID, productID bson.ObjectID) (bool, error) {
	w, ok := m.lists[userID]
	if !ok {
		return false, nil
	}
	for _, it := range w.Items {
		if it.Product == productID {
			return true, nil
		}
	}
	return false, nil
}

type memProducts map[bson.ObjectID]*models.Product

func (m memProducts) FindProductByID(_ context.Context, id bson.ObjectID) (*models.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, global.NotFound("Product not found")
	}
	return p, nil
}

func (m memProducts) FindProductsByIDs(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.Product, error) {
	out := make(map[bson.ObjectID]*models.Product)
	for _, id := range ids {
		if p, ok := m[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func TestWishlistSetSemantics(t *testing.T) {
	ctx := context.Background()
	lamp := &models.Product{ID: bson.NewObjectID(), Name: "Lamp", SellingPrice: 30}
	rug := &models.Product{ID: bson.NewObjectID(), Name: "Rug", SellingPrice: 90}
	products := memProducts{lamp.ID: lamp, rug.ID: rug}

	clock := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(&memStore{lists: map[bson.ObjectID]*models.Wishlist{}}, products)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	user := bson.NewObjectID()

	entries, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, svc.Add(ctx, user, lamp.ID))
	require.NoError(t, svc.Add(ctx, user, rug.ID))

	err = svc.Add(ctx, user, lamp.ID)
	assert.True(t, global.IsKind(err, global.KindConflict))

	err = svc.Add(ctx, user, bson.NewObjectID())
	assert.True(t, global.IsKind(err, global.KindNotFound))

	entries, err = svc.Get(ctx, user)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Rug", entries[0].Product.Name, "newest first")

	in, err := svc.Check(ctx, user, lamp.ID)
	require.NoError(t, err)
	assert.True(t, in)

	require.NoError(t, svc.Remove(ctx, user, lamp.ID))
	err = svc.Remove(ctx, user, lamp.ID)
	assert.True(t, global.IsKind(err, global.KindNotFound))

	in, err = svc.Check(ctx, user, lamp.ID)
	require.NoError(t, err)
	assert.False(t, in)

	delete(products, rug.ID)
	entries, err = svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, entries, "deleted products are skipped")

	n, err := svc.Clear(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.Clear(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, n)
}
