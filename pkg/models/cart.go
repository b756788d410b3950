package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// LineKey identifies a line item inside a cart. A zero VariationID means none.
type LineKey struct {
	ProductID   bson.ObjectID
	VariationID bson.ObjectID
}

// LineItem stores no price; price is resolved from the catalog on every read.
type LineItem struct {
	ProductID   bson.ObjectID  `json:"productId" bson:"productId"`
	VariationID *bson.ObjectID `json:"variationId,omitempty" bson:"variationId,omitempty"`
	Quantity    int            `json:"quantity" bson:"quantity" validate:"gte=1"`
}

func (li LineItem) Key() LineKey {
	k := LineKey{ProductID: li.ProductID}
	if li.VariationID != nil {
		k.VariationID = *li.VariationID
	}
	return k
}

// Cart is the per-user cart document. TotalItems and TotalValue are derived.
type Cart struct {
	ID         bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID     bson.ObjectID `json:"userId" bson:"userId"`
	Items      []LineItem    `json:"items" bson:"items" validate:"dive"`
	TotalItems int           `json:"totalItems" bson:"totalItems"`
	TotalValue float64       `json:"totalValue" bson:"totalValue"`
	Version    int64         `json:"-" bson:"version"`
	CreatedAt  time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt" bson:"updatedAt"`
}

func (c *Cart) SetTimestamps(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// CartItemView is a line item enriched with the catalog state it resolved to.
type CartItemView struct {
	ProductID       bson.ObjectID  `json:"productId"`
	VariationID     *bson.ObjectID `json:"variationId,omitempty"`
	Quantity        int            `json:"quantity"`
	Name            string         `json:"name,omitempty"`
	SKU             string         `json:"sku,omitempty"`
	Image           string         `json:"image,omitempty"`
	Color           string         `json:"color,omitempty"`
	Size            string         `json:"size,omitempty"`
	UnitPrice       float64        `json:"unitPrice"`
	DiscountPercent float64        `json:"discountPercent"`
	EffectivePrice  float64        `json:"effectivePrice"`
	LineTotal       float64        `json:"lineTotal"`
	AvailableStock  *int           `json:"availableStock"` // nil when unlimited
	FlashSale       bool           `json:"flashSale"`
	Unavailable     bool           `json:"unavailable,omitempty"`
}

type CartView struct {
	UserID     bson.ObjectID  `json:"userId"`
	Items      []CartItemView `json:"items"`
	TotalItems int            `json:"totalItems"`
	TotalValue float64        `json:"totalValue"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type CartItemRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	Quantity    *int   `json:"quantity"`
	VariationID string `json:"variationId"`
}
