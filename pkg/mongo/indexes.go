package mongo

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Products
	{
		CollectionName: productsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_sku_unique"),
		},
	},
	// Every variation carries a sku. The filter skips products without variations.
	{
		CollectionName: productsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{{Key: "variations.sku", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("idx_variation_sku_unique").
				SetPartialFilterExpression(bson.D{{Key: "variations.sku", Value: bson.D{{Key: "$exists", Value: true}}}}),
		},
	},
	{
		CollectionName: productsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("idx_slug"),
		},
	},
	{
		CollectionName: productsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "offer.flashSale", Value: 1},
				{Key: "offer.endDate", Value: 1},
			},
			Options: options.Index().SetName("idx_flash_sale"),
		},
	},

	// Carts: one per user
	{
		CollectionName: cartsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_cart_user_unique"),
		},
	},

	// Orders
	{
		CollectionName: ordersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_order_id_unique"),
		},
	},
	{
		CollectionName: ordersCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("idx_user_orders"),
		},
	},
	{
		CollectionName: ordersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "orderStatus", Value: 1}},
			Options: options.Index().SetName("idx_order_status"),
		},
	},

	// Users
	{
		CollectionName: usersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_email_unique"),
		},
	},

	// Wishlists: one per user
	{
		CollectionName: wishlistsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_wishlist_user_unique"),
		},
	},
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	log.Println("Starting index creation...")

	for _, idxConfig := range requiredIndexes {
		collection := s.Collection(idxConfig.CollectionName)

		indexName, err := collection.Indexes().CreateOne(ctx, idxConfig.IndexModel)
		if err != nil {
			log.Printf("Error creating index on collection %s: %v",
				idxConfig.CollectionName, err)
			return err
		}

		log.Printf("Created index '%s' on collection '%s'", indexName, idxConfig.CollectionName)
	}

	log.Println("All indexes created successfully!")
	return nil
}
