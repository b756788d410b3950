package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// SummarizeOrders groups orders by status with their count and revenue.
func (s *Store) SummarizeOrders(ctx context.Context) (*models.OrderSummary, error) {
	collection := s.Collection(ordersCollection)

	pipeline := bson.A{
		bson.D{
			{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$orderStatus"},
				{Key: "orderCount", Value: bson.D{{Key: "$sum", Value: 1}}},
				{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total"}}},
				{Key: "avgOrder", Value: bson.D{{Key: "$avg", Value: "$total"}}},
			}},
		},
		bson.D{
			{Key: "$project", Value: bson.D{
				{Key: "orderCount", Value: 1},
				{Key: "revenue", Value: bson.D{{Key: "$round", Value: bson.A{"$revenue", 2}}}},
				{Key: "avgOrder", Value: bson.D{{Key: "$round", Value: bson.A{"$avgOrder", 2}}}},
			}},
		},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err, "summarize orders", orderNotFound, orderDuplicate)
	}
	defer cursor.Close(ctx)

	statuses := []models.StatusSummary{}
	if err := cursor.All(ctx, &statuses); err != nil {
		return nil, translate(err, "summarize orders", orderNotFound, orderDuplicate)
	}

	return BuildSummary(statuses), nil
}

// BuildSummary totals the per-status buckets.
func BuildSummary(statuses []models.StatusSummary) *models.OrderSummary {
	summary := &models.OrderSummary{Statuses: statuses}
	for _, st := range statuses {
		summary.TotalOrders += st.OrderCount
		summary.TotalRevenue += st.Revenue
	}
	return summary
}
