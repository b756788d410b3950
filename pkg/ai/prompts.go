package ai

import (
	"fmt"
	"strings"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const SalesReportSystemPrompt = `You are a professional business analyst specializing in e-commerce sales data analysis.
Generate concise, actionable insights from order status data. Focus on:
- Revenue concentration and order throughput
- Cancellation, return and refund rates
- Specific recommendations for the operations team
Keep responses to 2-3 short paragraphs.`

// formatOrderSummary renders the per-status aggregation as plain text.
func formatOrderSummary(summary *models.OrderSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total orders: %d\n", summary.TotalOrders)
	fmt.Fprintf(&b, "Total revenue: %.2f\n", summary.TotalRevenue)
	b.WriteString("By status:\n")
	for _, st := range summary.Statuses {
		share := 0.0
		if summary.TotalOrders > 0 {
			share = float64(st.OrderCount) / float64(summary.TotalOrders) * 100
		}
		fmt.Fprintf(&b, "- %s: %d orders (%.1f%%), revenue %.2f, average %.2f\n",
			st.Status, st.OrderCount, share, st.Revenue, st.AvgOrder)
	}
	return b.String()
}
