package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	wishlistNotFound     = "Wishlist not found"
	wishlistItemNotFound = "Product not found in wishlist"
	wishlistDuplicate    = "Product already in wishlist"
)

// AddWishlistItem appends product to the user's wishlist in a single write.
// The filter only matches a wishlist that lacks the product, so when it is
// already present the upsert collides with the unique user index and the
// call reports Conflict.
func (s *Store) AddWishlistItem(ctx context.Context, userID, productID bson.ObjectID, now time.Time) error {
	filter := bson.D{
		{Key: "user", Value: userID},
		{Key: "items.product", Value: bson.D{{Key: "$ne", Value: productID}}},
	}
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "items", Value: models.WishlistItem{Product: productID, AddedAt: now}}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}
	_, err := s.Collection(wishlistsCollection).UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	return translate(err, "add wishlist item", wishlistNotFound, wishlistDuplicate)
}

func (s *Store) FindWishlist(ctx context.Context, userID bson.ObjectID) (*models.Wishlist, error) {
	var w models.Wishlist
	err := s.Collection(wishlistsCollection).FindOne(ctx, bson.D{{Key: "user", Value: userID}}).Decode(&w)
	if err != nil {
		return nil, translate(err, "find wishlist", wishlistNotFound, wishlistDuplicate)
	}
	return &w, nil
}

func (s *Store) RemoveWishlistItem(ctx context.Context, userID, productID bson.ObjectID, now time.Time) error {
	filter := bson.D{
		{Key: "user", Value: userID},
		{Key: "items.product", Value: productID},
	}
	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "items", Value: bson.D{{Key: "product", Value: productID}}}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
	}
	res, err := s.Collection(wishlistsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err, "remove wishlist item", wishlistItemNotFound, wishlistDuplicate)
	}
	if res.MatchedCount == 0 {
		return global.NotFound(wishlistItemNotFound)
	}
	return nil
}

// DeleteWishlist removes the user's wishlist and reports how many documents went.
func (s *Store) DeleteWishlist(ctx context.Context, userID bson.ObjectID) (int64, error) {
	res, err := s.Collection(wishlistsCollection).DeleteMany(ctx, bson.D{{Key: "user", Value: userID}})
	if err != nil {
		return 0, translate(err, "clear wishlist", wishlistNotFound, wishlistDuplicate)
	}
	return res.DeletedCount, nil
}

func (s *Store) WishlistContains(ctx context.Context, userID, productID bson.ObjectID) (bool, error) {
	filter := bson.D{
		{Key: "user", Value: userID},
		{Key: "items.product", Value: productID},
	}
	n, err := s.Collection(wishlistsCollection).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "check wishlist", wishlistNotFound, wishlistDuplicate)
	}
	return n > 0, nil
}
