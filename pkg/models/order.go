package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusPaid      = "Paid"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
	OrderStatusReturned  = "Returned"
	OrderStatusRefunded  = "Refunded"

	RefundStatusPending   = "Pending"
	RefundStatusProcessed = "Processed"
	RefundStatusRejected  = "Rejected"
)

// OrderItem is copied from the catalog at checkout and never re-resolved.
type OrderItem struct {
	ProductID   bson.ObjectID  `json:"productId" bson:"productId" validate:"required"`
	VariationID *bson.ObjectID `json:"variationId,omitempty" bson:"variationId,omitempty"`
	Name        string         `json:"name" bson:"name" validate:"required"`
	Image       string         `json:"image,omitempty" bson:"image,omitempty"`
	Color       string         `json:"color,omitempty" bson:"color,omitempty"`
	Size        string         `json:"size,omitempty" bson:"size,omitempty"`
	Price       float64        `json:"price" bson:"price" validate:"gte=0"`
	Quantity    int            `json:"quantity" bson:"quantity" validate:"required,gte=1"`
	SKU         string         `json:"sku,omitempty" bson:"sku,omitempty"`
}

// Address represents shipping or billing address
type Address struct {
	FullName   string `json:"fullName" bson:"fullName" validate:"required"`
	Phone      string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email      string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Street     string `json:"street" bson:"street" validate:"required"`
	City       string `json:"city" bson:"city" validate:"required"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country" bson:"country" validate:"required"`
}

type Payment struct {
	Method        string `json:"method" bson:"method" validate:"required"`
	TransactionID string `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
}

// Order is an immutable snapshot; only status fields change after creation.
type Order struct {
	ID                 bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	OrderID            string        `json:"orderId" bson:"orderId" validate:"required"`
	UserID             bson.ObjectID `json:"userId" bson:"userId" validate:"required"`
	Payment            Payment       `json:"payment" bson:"payment"`
	OrderType          string        `json:"orderType" bson:"orderType" validate:"omitempty,oneof=Delivery Pickup"`
	Items              []OrderItem   `json:"items" bson:"items" validate:"required,min=1,dive"`
	ShippingAddress    Address       `json:"shippingAddress" bson:"shippingAddress"`
	BillingAddress     *Address      `json:"billingAddress,omitempty" bson:"billingAddress,omitempty"`
	SubTotal           float64       `json:"subTotal" bson:"subTotal" validate:"gte=0"`
	Tax                float64       `json:"tax" bson:"tax" validate:"gte=0"`
	Discount           float64       `json:"discount" bson:"discount" validate:"gte=0"`
	ShippingCharge     float64       `json:"shippingCharge" bson:"shippingCharge" validate:"gte=0"`
	Total              float64       `json:"total" bson:"total" validate:"gte=0"`
	OrderStatus        string        `json:"orderStatus" bson:"orderStatus" validate:"required,oneof=Pending Paid Delivered Cancelled Returned Refunded"`
	RefundStatus       string        `json:"refundStatus" bson:"refundStatus" validate:"required,oneof=Pending Processed Rejected"`
	ReturnReason       string        `json:"returnReason,omitempty" bson:"returnReason,omitempty"`
	CancellationReason string        `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	OrderDate          time.Time     `json:"orderDate" bson:"orderDate"`
	CreatedAt          time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// ComputedTotal is subTotal + tax - discount + shippingCharge.
func (o *Order) ComputedTotal() float64 {
	return o.SubTotal + o.Tax - o.Discount + o.ShippingCharge
}

// GetItemCount returns the total number of items in the order
func (o *Order) GetItemCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

type CreateOrderRequest struct {
	Payment         Payment     `json:"payment" binding:"required"`
	OrderType       string      `json:"orderType"`
	Items           []OrderItem `json:"items" binding:"required,min=1"`
	ShippingAddress Address     `json:"shippingAddress" binding:"required"`
	BillingAddress  *Address    `json:"billingAddress"`
	SubTotal        float64     `json:"subTotal"`
	Tax             float64     `json:"tax"`
	Discount        float64     `json:"discount"`
	ShippingCharge  float64     `json:"shippingCharge"`
	Total           float64     `json:"total"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus        string `json:"orderStatus"`
	RefundStatus       string `json:"refundStatus"`
	ReturnReason       string `json:"returnReason"`
	CancellationReason string `json:"cancellationReason"`
}

// StatusSummary is one bucket of the order summary aggregation.
type StatusSummary struct {
	Status     string  `json:"status" bson:"_id"`
	OrderCount int     `json:"orderCount" bson:"orderCount"`
	Revenue    float64 `json:"revenue" bson:"revenue"`
	AvgOrder   float64 `json:"avgOrder" bson:"avgOrder"`
}

type OrderSummary struct {
	Statuses     []StatusSummary `json:"statuses"`
	TotalOrders  int             `json:"totalOrders"`
	TotalRevenue float64         `json:"totalRevenue"`
	Insights     string          `json:"insights,omitempty"`
}
