package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type memStore struct {
	orders  map[string]*models.Order
	summary *models.OrderSummary
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]*models.Order)}
}

func (m *memStore) InsertOrder(_ context.Context, o *models.Order) error {
	if _, ok := m.orders[o.OrderID]; ok {
		return global.Conflict("Order ID already exists")
	}
	cp := *o
	m.orders[o.OrderID] = &cp
	return nil
}

func (m *memStore) FindOrderByOrderID(_ context.Context, orderID string) (*models.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, global.NotFound("Order not found")
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) ListOrdersByUser(_ context.Context, userID bson.ObjectID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) UpdateOrderStatus(_ context.Context, orderID string, upd models.UpdateOrderStatusRequest, now time.Time) (*models.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, global.NotFound("Order not found")
	}
	if upd.OrderStatus != "" {
		o.OrderStatus = upd.OrderStatus
	}
	if upd.RefundStatus != "" {
		o.RefundStatus = upd.RefundStatus
	}
	if upd.CancellationReason != "" {
		o.CancellationReason = upd.CancellationReason
	}
	o.UpdatedAt = now
	cp := *o
	return &cp, nil
}

func (m *memStore) SummarizeOrders(context.Context) (*models.OrderSummary, error) {
	return m.summary, nil
}

type published struct {
	eventType string
	payload   interface{}
}

type capturePublisher struct {
	events []published
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, published{eventType, payload})
	return nil
}

type countingRecorder struct {
	orders  int
	revenue float64
}

func (c *countingRecorder) RecordOrderCreated(_ context.Context, total float64) {
	c.orders++
	c.revenue += total
}

type fakeAnalyst struct {
	enabled bool
	text    string
	err     error
}

func (f fakeAnalyst) IsEnabled() bool { return f.enabled }

func (f fakeAnalyst) SalesInsights(context.Context, *models.OrderSummary) (string, error) {
	return f.text, f.err
}

func orderRequest() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		Payment:   models.Payment{Method: "card"},
		OrderType: "Delivery",
		Items: []models.OrderItem{
			{ProductID: bson.NewObjectID(), Name: "Shirt", Price: 50, Quantity: 2},
		},
		ShippingAddress: models.Address{
			FullName: "Ada Lovelace",
			Street:   "12 St James's Square",
			City:     "London",
			Country:  "UK",
		},
		SubTotal:       100,
		Tax:            10,
		Discount:       5,
		ShippingCharge: 5,
		Total:          110,
	}
}

func TestNewOrderID(t *testing.T) {
	now := time.UnixMilli(1717171717171)
	assert.Equal(t, "#1717171717171-42", NewOrderID(now, 42))
	assert.Regexp(t, `^#\d+-\d{1,10}$`, NewOrderID(time.Now(), 9999999999))
}

func TestCreateStoresTotalVerbatim(t *testing.T) {
	store := newMemStore()
	events := &capturePublisher{}
	metrics := &countingRecorder{}
	svc := NewService(store, events, metrics, nil)
	user := bson.NewObjectID()

	req := orderRequest()
	req.Total = 999
	order, err := svc.Create(context.Background(), user, req)
	require.NoError(t, err)

	assert.Equal(t, 999.0, order.Total, "mismatched totals are not rejected")
	assert.True(t, TotalMismatch(order))
	assert.Equal(t, models.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, models.RefundStatusPending, order.RefundStatus)
	assert.Equal(t, user, order.UserID)
	assert.Equal(t, 999.0, store.orders[order.OrderID].Total)

	assert.Equal(t, 1, metrics.orders)
	require.Len(t, events.events, 1)
	assert.Equal(t, EventOrderCreated, events.events[0].eventType)
	event := events.events[0].payload.(OrderCreatedEvent)
	assert.Equal(t, order.OrderID, event.OrderID)
	assert.Equal(t, 2, event.ItemCount)
}

func TestTotalMismatch(t *testing.T) {
	o := &models.Order{SubTotal: 100, Tax: 10, Discount: 5, ShippingCharge: 5, Total: 110}
	assert.False(t, TotalMismatch(o))
	o.Total = 110.004
	assert.False(t, TotalMismatch(o))
	o.Total = 111
	assert.True(t, TotalMismatch(o))
}

func TestCreatePublishFailureDoesNotFail(t *testing.T) {
	svc := NewService(newMemStore(), &capturePublisher{err: errors.New("broker down")}, nil, nil)
	_, err := svc.Create(context.Background(), bson.NewObjectID(), orderRequest())
	assert.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil, nil)

	req := orderRequest()
	req.Items = nil
	_, err := svc.Create(context.Background(), bson.NewObjectID(), req)
	assert.True(t, global.IsKind(err, global.KindInvalidArgument))

	req = orderRequest()
	req.OrderType = "Teleport"
	_, err = svc.Create(context.Background(), bson.NewObjectID(), req)
	assert.True(t, global.IsKind(err, global.KindInvalidArgument))
}

func TestGetChecksOwnership(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil, nil)
	owner := bson.NewObjectID()
	ctx := context.Background()

	order, err := svc.Create(ctx, owner, orderRequest())
	require.NoError(t, err)

	got, err := svc.Get(ctx, order.OrderID[1:], owner, false)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, got.OrderID)

	_, err = svc.Get(ctx, order.OrderID, bson.NewObjectID(), false)
	assert.True(t, global.IsKind(err, global.KindForbidden))

	_, err = svc.Get(ctx, order.OrderID, bson.NewObjectID(), true)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, "#1-1", owner, false)
	assert.True(t, global.IsKind(err, global.KindNotFound))
}

func TestUpdateStatus(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, bson.NewObjectID(), orderRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.OrderID, models.UpdateOrderStatusRequest{
		OrderStatus:        models.OrderStatusCancelled,
		CancellationReason: "changed my mind",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.OrderStatus)
	assert.Equal(t, models.RefundStatusPending, updated.RefundStatus)

	_, err = svc.UpdateStatus(ctx, order.OrderID, models.UpdateOrderStatusRequest{OrderStatus: "Shipped"})
	assert.True(t, global.IsKind(err, global.KindInvalidArgument))

	_, err = svc.UpdateStatus(ctx, order.OrderID, models.UpdateOrderStatusRequest{RefundStatus: "Maybe"})
	assert.True(t, global.IsKind(err, global.KindInvalidArgument))

	_, err = svc.UpdateStatus(ctx, order.OrderID, models.UpdateOrderStatusRequest{})
	assert.True(t, global.IsKind(err, global.KindInvalidArgument))

	_, err = svc.UpdateStatus(ctx, "#0-0", models.UpdateOrderStatusRequest{OrderStatus: models.OrderStatusPaid})
	assert.True(t, global.IsKind(err, global.KindNotFound))
}

func TestSummaryInsights(t *testing.T) {
	store := newMemStore()
	store.summary = &models.OrderSummary{TotalOrders: 3, TotalRevenue: 300}
	ctx := context.Background()

	summary, err := NewService(store, nil, nil, fakeAnalyst{enabled: true, text: "Sales are up"}).Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sales are up", summary.Insights)

	store.summary = &models.OrderSummary{TotalOrders: 3}
	summary, err = NewService(store, nil, nil, fakeAnalyst{enabled: true, err: errors.New("quota")}).Summary(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary.Insights)

	store.summary = &models.OrderSummary{TotalOrders: 3}
	summary, err = NewService(store, nil, nil, fakeAnalyst{enabled: false, text: "unused"}).Summary(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary.Insights)
}
