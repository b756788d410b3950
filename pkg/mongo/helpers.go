package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// translate maps driver errors onto the application taxonomy.
func translate(err error, op, notFound, duplicate string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return global.NotFound(notFound)
	case mongo.IsDuplicateKeyError(err):
		return global.Conflict(duplicate)
	default:
		return global.Upstream(op, err)
	}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
