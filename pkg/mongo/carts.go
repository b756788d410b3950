package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	cartNotFound = "Cart not found"
	cartConflict = "Cart was modified concurrently, please retry"
)

func (s *Store) FindCartByUser(ctx context.Context, userID bson.ObjectID) (*models.Cart, error) {
	var c models.Cart
	err := s.Collection(cartsCollection).FindOne(ctx, bson.D{{Key: "userId", Value: userID}}).Decode(&c)
	if err != nil {
		return nil, translate(err, "find cart", cartNotFound, cartConflict)
	}
	return &c, nil
}

// InsertCart creates the user's cart. A concurrent insert for the same user
// loses on the unique userId index and reports Conflict.
func (s *Store) InsertCart(ctx context.Context, cart *models.Cart) error {
	_, err := s.Collection(cartsCollection).InsertOne(ctx, cart)
	return translate(err, "insert cart", cartNotFound, cartConflict)
}

// ReplaceCart writes cart only if the stored version still equals expectedVersion.
func (s *Store) ReplaceCart(ctx context.Context, cart *models.Cart, expectedVersion int64) error {
	filter := bson.D{
		{Key: "userId", Value: cart.UserID},
		{Key: "version", Value: expectedVersion},
	}
	res, err := s.Collection(cartsCollection).ReplaceOne(ctx, filter, cart)
	if err != nil {
		return translate(err, "replace cart", cartNotFound, cartConflict)
	}
	if res.MatchedCount == 0 {
		return global.Conflict(cartConflict)
	}
	return nil
}

func (s *Store) DeleteCartVersion(ctx context.Context, userID bson.ObjectID, expectedVersion int64) error {
	filter := bson.D{
		{Key: "userId", Value: userID},
		{Key: "version", Value: expectedVersion},
	}
	res, err := s.Collection(cartsCollection).DeleteOne(ctx, filter)
	if err != nil {
		return translate(err, "delete cart", cartNotFound, cartConflict)
	}
	if res.DeletedCount == 0 {
		return global.Conflict(cartConflict)
	}
	return nil
}

// DeleteCart removes the user's cart if there is one.
func (s *Store) DeleteCart(ctx context.Context, userID bson.ObjectID) error {
	_, err := s.Collection(cartsCollection).DeleteOne(ctx, bson.D{{Key: "userId", Value: userID}})
	return translate(err, "clear cart", cartNotFound, cartConflict)
}
