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
	productNotFound  = "Product not found"
	productDuplicate = "Product or variation SKU already exists"
)

func (s *Store) InsertProduct(ctx context.Context, p *models.Product) error {
	_, err := s.Collection(productsCollection).InsertOne(ctx, p)
	return translate(err, "insert product", productNotFound, productDuplicate)
}

func (s *Store) FindProductByID(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	var p models.Product
	err := s.Collection(productsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	if err != nil {
		return nil, translate(err, "find product", productNotFound, productDuplicate)
	}
	return &p, nil
}

func (s *Store) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	err := s.Collection(productsCollection).FindOne(ctx, bson.D{{Key: "slug", Value: slug}}).Decode(&p)
	if err != nil {
		return nil, translate(err, "find product by slug", productNotFound, productDuplicate)
	}
	return &p, nil
}

// FindProductsByIDs returns the products that still exist, keyed by id.
func (s *Store) FindProductsByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.Product, error) {
	out := make(map[bson.ObjectID]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}
	products, err := findAll[models.Product](ctx, s.Collection(productsCollection), filter)
	if err != nil {
		return nil, translate(err, "find products", productNotFound, productDuplicate)
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	products, err := findAll[models.Product](ctx, s.Collection(productsCollection), bson.D{}, opts)
	if err != nil {
		return nil, translate(err, "list products", productNotFound, productDuplicate)
	}
	return products, nil
}

// ListFlashSales returns flash-sale products whose offer window contains now.
func (s *Store) ListFlashSales(ctx context.Context, now time.Time) ([]models.Product, error) {
	filter := bson.D{
		{Key: "offer.flashSale", Value: true},
		{Key: "offer.startDate", Value: bson.D{{Key: "$lte", Value: now}}},
		{Key: "offer.endDate", Value: bson.D{{Key: "$gte", Value: now}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "offer.endDate", Value: 1}})
	products, err := findAll[models.Product](ctx, s.Collection(productsCollection), filter, opts)
	if err != nil {
		return nil, translate(err, "list flash sales", productNotFound, productDuplicate)
	}
	return products, nil
}

func (s *Store) ReplaceProduct(ctx context.Context, p *models.Product) error {
	res, err := s.Collection(productsCollection).ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, p)
	if err != nil {
		return translate(err, "replace product", productNotFound, productDuplicate)
	}
	if res.MatchedCount == 0 {
		return global.NotFound(productNotFound)
	}
	return nil
}

// DeleteProduct removes the product and returns what was deleted.
func (s *Store) DeleteProduct(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	var p models.Product
	err := s.Collection(productsCollection).FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	if err != nil {
		return nil, translate(err, "delete product", productNotFound, productDuplicate)
	}
	return &p, nil
}
