// Package wishlist keeps each user's set of saved products.
package wishlist

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Store holds wishlists. AddWishlistItem reports Conflict when the product is
// already present; RemoveWishlistItem reports NotFound when it is absent.
type Store interface {
	AddWishlistItem(ctx context.Context, userID, productID bson.ObjectID, now time.Time) error
	FindWishlist(ctx context.Context, userID bson.ObjectID) (*models.Wishlist, error)
	RemoveWishlistItem(ctx context.Context, userID, productID bson.ObjectID, now time.Time) error
	DeleteWishlist(ctx context.Context, userID bson.ObjectID) (int64, error)
	WishlistContains(ctx context.Context, userID, productID bson.ObjectID) (bool, error)
}

type Products interface {
	FindProductByID(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.Product, error)
}

type Service struct {
	store    Store
	products Products
	now      func() time.Time
}

func NewService(store Store, products Products) *Service {
	return &Service{store: store, products: products, now: time.Now}
}

func (s *Service) Add(ctx context.Context, userID, productID bson.ObjectID) error {
	if _, err := s.products.FindProductByID(ctx, productID); err != nil {
		return err
	}
	return s.store.AddWishlistItem(ctx, userID, productID, s.now())
}

// Get returns the wishlist newest first with product summaries. Products
// deleted since they were saved are left out. No wishlist yields an empty list.
func (s *Service) Get(ctx context.Context, userID bson.ObjectID) ([]models.WishlistEntry, error) {
	w, err := s.store.FindWishlist(ctx, userID)
	if global.IsKind(err, global.KindNotFound) {
		return []models.WishlistEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]bson.ObjectID, 0, len(w.Items))
	for _, item := range w.Items {
		ids = append(ids, item.Product)
	}
	products, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.WishlistEntry, 0, len(w.Items))
	for _, item := range w.Items {
		p, ok := products[item.Product]
		if !ok {
			continue
		}
		entries = append(entries, models.WishlistEntry{Product: p.Summary(), AddedAt: item.AddedAt})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AddedAt.After(entries[j].AddedAt)
	})
	return entries, nil
}

func (s *Service) Remove(ctx context.Context, userID, productID bson.ObjectID) error {
	return s.store.RemoveWishlistItem(ctx, userID, productID, s.now())
}

// Clear removes every entry. It succeeds when there is nothing to remove.
func (s *Service) Clear(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return s.store.DeleteWishlist(ctx, userID)
}

func (s *Service) Check(ctx context.Context, userID, productID bson.ObjectID) (bool, error) {
	return s.store.WishlistContains(ctx, userID, productID)
}
