// Package orders creates order snapshots and moves them through their status
// lifecycle.
package orders

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const EventOrderCreated = "order.created"

type Store interface {
	InsertOrder(ctx context.Context, o *models.Order) error
	FindOrderByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID bson.ObjectID) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, upd models.UpdateOrderStatusRequest, now time.Time) (*models.Order, error)
	SummarizeOrders(ctx context.Context) (*models.OrderSummary, error)
}

// Publisher sends domain events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type Recorder interface {
	RecordOrderCreated(ctx context.Context, total float64)
}

// Analyst comments on an order summary.
type Analyst interface {
	IsEnabled() bool
	SalesInsights(ctx context.Context, summary *models.OrderSummary) (string, error)
}

type Service struct {
	store   Store
	events  Publisher
	metrics Recorder
	analyst Analyst
	now     func() time.Time
	rand    func() int64
}

// NewService wires the order service. events, metrics and analyst may be nil.
func NewService(store Store, events Publisher, metrics Recorder, analyst Analyst) *Service {
	return &Service{
		store:   store,
		events:  events,
		metrics: metrics,
		analyst: analyst,
		now:     time.Now,
		rand:    func() int64 { return rand.Int63n(10_000_000_000) },
	}
}

// NewOrderID formats an order id as #<unix millis>-<random 0..9999999999>.
func NewOrderID(now time.Time, n int64) string {
	return fmt.Sprintf("#%d-%d", now.UnixMilli(), n)
}

// TotalMismatch reports whether the stored total disagrees with
// subTotal + tax - discount + shippingCharge by more than a cent.
func TotalMismatch(o *models.Order) bool {
	return math.Abs(o.ComputedTotal()-o.Total) >= 0.01
}

// OrderCreatedEvent is the payload published after an order is stored.
type OrderCreatedEvent struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Total     float64   `json:"total"`
	ItemCount int       `json:"itemCount"`
	OrderDate time.Time `json:"orderDate"`
}

// Create stores a Pending order for userID. Totals are kept exactly as sent.
func (s *Service) Create(ctx context.Context, userID bson.ObjectID, req models.CreateOrderRequest) (*models.Order, error) {
	now := s.now()
	order := &models.Order{
		ID:              bson.NewObjectID(),
		OrderID:         NewOrderID(now, s.rand()),
		UserID:          userID,
		Payment:         req.Payment,
		OrderType:       req.OrderType,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		SubTotal:        req.SubTotal,
		Tax:             req.Tax,
		Discount:        req.Discount,
		ShippingCharge:  req.ShippingCharge,
		Total:           req.Total,
		OrderStatus:     models.OrderStatusPending,
		RefundStatus:    models.RefundStatusPending,
		OrderDate:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := models.Validate(order); err != nil {
		return nil, global.InvalidArgument("order", err.Error())
	}
	if TotalMismatch(order) {
		log.Printf("Order %s total %.2f does not match its components (%.2f)", order.OrderID, order.Total, order.ComputedTotal())
	}

	if err := s.store.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(ctx, order.Total)
	}
	if s.events != nil {
		event := OrderCreatedEvent{
			OrderID:   order.OrderID,
			UserID:    order.UserID.Hex(),
			Total:     order.Total,
			ItemCount: order.GetItemCount(),
			OrderDate: order.OrderDate,
		}
		if err := s.events.Publish(ctx, EventOrderCreated, event); err != nil {
			log.Printf("Failed to publish %s for %s: %v", EventOrderCreated, order.OrderID, err)
		}
	}
	return order, nil
}

// normalizeOrderID accepts ids with or without the leading '#'.
func normalizeOrderID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, "#") {
		return id
	}
	return "#" + id
}

// Get returns an order visible to the caller: its owner or an admin.
func (s *Service) Get(ctx context.Context, orderID string, userID bson.ObjectID, isAdmin bool) (*models.Order, error) {
	order, err := s.store.FindOrderByOrderID(ctx, normalizeOrderID(orderID))
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, global.Forbidden("You do not have access to this order")
	}
	return order, nil
}

func (s *Service) ListByUser(ctx context.Context, userID bson.ObjectID) ([]models.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

var (
	orderStatuses = []string{
		models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusDelivered,
		models.OrderStatusCancelled, models.OrderStatusReturned, models.OrderStatusRefunded,
	}
	refundStatuses = []string{
		models.RefundStatusPending, models.RefundStatusProcessed, models.RefundStatusRejected,
	}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// UpdateStatus applies the non-empty fields of upd. Statuses are checked for
// enum membership only; any transition between members is accepted.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, upd models.UpdateOrderStatusRequest) (*models.Order, error) {
	if upd.OrderStatus == "" && upd.RefundStatus == "" && upd.ReturnReason == "" && upd.CancellationReason == "" {
		return nil, global.InvalidArgument("orderStatus", "Nothing to update")
	}
	if upd.OrderStatus != "" && !oneOf(upd.OrderStatus, orderStatuses) {
		return nil, global.InvalidArgument("orderStatus", fmt.Sprintf("Invalid order status %q", upd.OrderStatus))
	}
	if upd.RefundStatus != "" && !oneOf(upd.RefundStatus, refundStatuses) {
		return nil, global.InvalidArgument("refundStatus", fmt.Sprintf("Invalid refund status %q", upd.RefundStatus))
	}
	return s.store.UpdateOrderStatus(ctx, normalizeOrderID(orderID), upd, s.now())
}

// Summary aggregates orders per status. Insights are attached when an
// analyst is configured; its failure leaves them empty.
func (s *Service) Summary(ctx context.Context) (*models.OrderSummary, error) {
	summary, err := s.store.SummarizeOrders(ctx)
	if err != nil {
		return nil, err
	}
	if s.analyst == nil || !s.analyst.IsEnabled() || summary.TotalOrders == 0 {
		return summary, nil
	}
	insights, err := s.analyst.SalesInsights(ctx, summary)
	if err != nil {
		log.Printf("Failed to generate sales insights: %v", err)
		return summary, nil
	}
	summary.Insights = insights
	return summary, nil
}
