package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	orderNotFound  = "Order not found"
	orderDuplicate = "Order ID already exists"
)

func (s *Store) InsertOrder(ctx context.Context, o *models.Order) error {
	_, err := s.Collection(ordersCollection).InsertOne(ctx, o)
	return translate(err, "insert order", orderNotFound, orderDuplicate)
}

func (s *Store) FindOrderByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var o models.Order
	err := s.Collection(ordersCollection).FindOne(ctx, bson.D{{Key: "orderId", Value: orderID}}).Decode(&o)
	if err != nil {
		return nil, translate(err, "find order", orderNotFound, orderDuplicate)
	}
	return &o, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID bson.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	orders, err := findAll[models.Order](ctx, s.Collection(ordersCollection), bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, translate(err, "list orders", orderNotFound, orderDuplicate)
	}
	return orders, nil
}

// UpdateOrderStatus sets the non-empty status fields of upd and returns the
// updated order.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, upd models.UpdateOrderStatusRequest, now time.Time) (*models.Order, error) {
	set := bson.D{{Key: "updatedAt", Value: now}}
	if upd.OrderStatus != "" {
		set = append(set, bson.E{Key: "orderStatus", Value: upd.OrderStatus})
	}
	if upd.RefundStatus != "" {
		set = append(set, bson.E{Key: "refundStatus", Value: upd.RefundStatus})
	}
	if upd.ReturnReason != "" {
		set = append(set, bson.E{Key: "returnReason", Value: upd.ReturnReason})
	}
	if upd.CancellationReason != "" {
		set = append(set, bson.E{Key: "cancellationReason", Value: upd.CancellationReason})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o models.Order
	err := s.Collection(ordersCollection).
		FindOneAndUpdate(ctx, bson.D{{Key: "orderId", Value: orderID}}, bson.D{{Key: "$set", Value: set}}, opts).
		Decode(&o)
	if err != nil {
		return nil, translate(err, "update order status", orderNotFound, orderDuplicate)
	}
	return &o, nil
}
