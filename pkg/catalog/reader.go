// Package catalog resolves products and variations to the price, stock and
// discount a cart line should use.
package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/pricing"
)

// ProductFinder loads a product by id. It returns a NotFound error when the
// product does not exist.
type ProductFinder interface {
	FindProductByID(ctx context.Context, id bson.ObjectID) (*models.Product, error)
}

// Resolution is the authoritative catalog state for one (product, variation).
type Resolution struct {
	Product         *models.Product
	Variation       *models.Variation
	UnitPrice       float64
	Stock           pricing.Stock
	DiscountPercent float64
	FlashSale       bool
}

// EffectivePrice applies the active discount to the unit price.
func (r *Resolution) EffectivePrice() float64 {
	return pricing.PriceItem(r.UnitPrice, r.DiscountPercent)
}

type Reader struct {
	products ProductFinder
	now      func() time.Time
}

func NewReader(products ProductFinder) *Reader {
	return &Reader{products: products, now: time.Now}
}

// WithClock replaces the time source used to evaluate offers.
func (r *Reader) WithClock(now func() time.Time) *Reader {
	r.now = now
	return r
}

// Resolve loads productID and resolves it against variationID. A nil
// variationID selects the product's base price with no stock ceiling.
func (r *Reader) Resolve(ctx context.Context, productID bson.ObjectID, variationID *bson.ObjectID) (*Resolution, error) {
	product, err := r.products.FindProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ResolveProduct(product, variationID, r.now())
}

// ResolveProduct resolves an already loaded product at the given instant.
func ResolveProduct(p *models.Product, variationID *bson.ObjectID, now time.Time) (*Resolution, error) {
	res := &Resolution{
		Product:   p,
		UnitPrice: p.SellingPrice,
		Stock:     pricing.Unlimited(),
	}

	if variationID != nil {
		v, ok := p.FindVariation(*variationID)
		if !ok {
			return nil, global.NotFound("Variation not found")
		}
		res.Variation = v
		res.UnitPrice = v.Price
		res.Stock = pricing.Limited(v.QuantityAvailable)
	}

	if p.Offer.ActiveAt(now) {
		res.DiscountPercent = p.Offer.DiscountPercentage
		res.FlashSale = p.Offer.FlashSale
	}
	return res, nil
}
