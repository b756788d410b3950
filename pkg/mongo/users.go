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
	userNotFound  = "User not found"
	userDuplicate = "User already exists"
)

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	_, err := s.Collection(usersCollection).InsertOne(ctx, u)
	return translate(err, "insert user", userNotFound, userDuplicate)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.Collection(usersCollection).FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&u)
	if err != nil {
		return nil, translate(err, "find user", userNotFound, userDuplicate)
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var u models.User
	err := s.Collection(usersCollection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&u)
	if err != nil {
		return nil, translate(err, "find user", userNotFound, userDuplicate)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	users, err := findAll[models.User](ctx, s.Collection(usersCollection), bson.D{}, opts)
	if err != nil {
		return nil, translate(err, "list users", userNotFound, userDuplicate)
	}
	return users, nil
}

func (s *Store) DeleteUser(ctx context.Context, id bson.ObjectID) error {
	res, err := s.Collection(usersCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translate(err, "delete user", userNotFound, userDuplicate)
	}
	if res.DeletedCount == 0 {
		return global.NotFound(userNotFound)
	}
	return nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id bson.ObjectID, hash string, now time.Time) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "updatedAt", Value: now},
	}}}
	res, err := s.Collection(usersCollection).UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return translate(err, "update password", userNotFound, userDuplicate)
	}
	if res.MatchedCount == 0 {
		return global.NotFound(userNotFound)
	}
	return nil
}
