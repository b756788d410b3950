package ai

import (
	"context"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// SalesInsights asks the model to comment on an order summary.
func (c *Client) SalesInsights(ctx context.Context, summary *models.OrderSummary) (string, error) {
	if summary.TotalOrders == 0 {
		return "", &AIError{Message: "no orders to analyze"}
	}
	return c.generateCompletion(ctx, SalesReportSystemPrompt, formatOrderSummary(summary))
}
