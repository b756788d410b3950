package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func TestFormatOrderSummary(t *testing.T) {
	out := formatOrderSummary(&models.OrderSummary{
		TotalOrders:  4,
		TotalRevenue: 400,
		Statuses: []models.StatusSummary{
			{Status: "Paid", OrderCount: 3, Revenue: 300, AvgOrder: 100},
			{Status: "Cancelled", OrderCount: 1, Revenue: 100, AvgOrder: 100},
		},
	})

	assert.Contains(t, out, "Total orders: 4")
	assert.Contains(t, out, "- Paid: 3 orders (75.0%), revenue 300.00, average 100.00")
	assert.Contains(t, out, "- Cancelled: 1 orders (25.0%)")
}

func TestDisabledClient(t *testing.T) {
	var c *Client
	assert.False(t, c.IsEnabled())
	assert.Nil(t, NewClient("", "", ""))

	_, err := c.SalesInsights(context.Background(), &models.OrderSummary{TotalOrders: 1})
	assert.EqualError(t, err, "AI service is not enabled")
}
