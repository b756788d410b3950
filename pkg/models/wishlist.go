package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type WishlistItem struct {
	Product bson.ObjectID `json:"product" bson:"product"`
	AddedAt time.Time     `json:"addedAt" bson:"addedAt"`
}

// Wishlist is one per user; a product appears at most once.
type Wishlist struct {
	ID        bson.ObjectID  `json:"_id" bson:"_id,omitempty"`
	User      bson.ObjectID  `json:"user" bson:"user"`
	Items     []WishlistItem `json:"items" bson:"items"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// WishlistEntry is a wishlist item with its product summary populated.
type WishlistEntry struct {
	Product ProductSummary `json:"product"`
	AddedAt time.Time      `json:"addedAt"`
}

type WishlistRequest struct {
	Product string `json:"product" binding:"required"`
}
