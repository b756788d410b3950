// Package cart owns the per-user cart document: merging add, update and
// remove requests into line items and recomputing the cart totals.
package cart

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/pricing"
)

// Store persists carts. Writes other than DeleteCart are conditional on the
// version the cart was read at and fail with Conflict when it moved.
type Store interface {
	FindCartByUser(ctx context.Context, userID bson.ObjectID) (*models.Cart, error)
	InsertCart(ctx context.Context, cart *models.Cart) error
	ReplaceCart(ctx context.Context, cart *models.Cart, expectedVersion int64) error
	DeleteCartVersion(ctx context.Context, userID bson.ObjectID, expectedVersion int64) error
	DeleteCart(ctx context.Context, userID bson.ObjectID) error
}

// Resolver is the catalog lookup the cart prices its lines with.
type Resolver interface {
	Resolve(ctx context.Context, productID bson.ObjectID, variationID *bson.ObjectID) (*catalog.Resolution, error)
}

type Recorder interface {
	RecordCartMutation(ctx context.Context, op string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCartMutation(context.Context, string) {}

type Service struct {
	store   Store
	catalog Resolver
	metrics Recorder
	now     func() time.Time
}

func NewService(store Store, resolver Resolver, metrics Recorder) *Service {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service{store: store, catalog: resolver, metrics: metrics, now: time.Now}
}

// ItemInput is a parsed add or update request.
type ItemInput struct {
	ProductID   bson.ObjectID
	VariationID *bson.ObjectID
	Quantity    int
}

func (in ItemInput) key() models.LineKey {
	return models.LineItem{ProductID: in.ProductID, VariationID: in.VariationID}.Key()
}

// DefaultAddQuantity is used when an add request omits the quantity.
const DefaultAddQuantity = 1

// ParseItemInput validates raw identifiers from a request.
func ParseItemInput(productID, variationID string, quantity *int) (ItemInput, error) {
	var in ItemInput
	if productID == "" {
		return in, global.InvalidArgument("productId", "Product ID is required")
	}
	if quantity == nil {
		return in, global.InvalidArgument("quantity", "Quantity is required")
	}
	pid, err := bson.ObjectIDFromHex(productID)
	if err != nil {
		return in, global.InvalidArgument("productId", "Invalid product ID")
	}
	in.ProductID = pid
	in.Quantity = *quantity

	if variationID != "" {
		vid, err := bson.ObjectIDFromHex(variationID)
		if err != nil {
			return in, global.InvalidArgument("variationId", "Invalid variation ID")
		}
		in.VariationID = &vid
	}
	return in, nil
}

// Add merges in into the user's cart, creating the cart when absent. A line
// with the same product and variation has its quantity incremented.
func (s *Service) Add(ctx context.Context, userID bson.ObjectID, in ItemInput) (*models.CartView, error) {
	if in.Quantity < 1 {
		return nil, pricing.ValidateQuantity(in.Quantity, pricing.Unlimited())
	}

	res, err := s.catalog.Resolve(ctx, in.ProductID, in.VariationID)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateQuantity(in.Quantity, res.Stock); err != nil {
		return nil, err
	}

	cart, err := s.store.FindCartByUser(ctx, userID)
	isNew := false
	switch {
	case global.IsKind(err, global.KindNotFound):
		cart = &models.Cart{UserID: userID}
		isNew = true
	case err != nil:
		return nil, err
	}

	if !pricing.CanMerge(LineQuantity(cart.Items, in.key()), in.Quantity) {
		return nil, global.InvalidArgument("quantity", "Quantity is too large")
	}
	cart.Items = AddItem(cart.Items, models.LineItem{
		ProductID:   in.ProductID,
		VariationID: in.VariationID,
		Quantity:    in.Quantity,
	})

	view, err := s.save(ctx, cart, isNew)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCartMutation(ctx, "add")
	return view, nil
}

// Update sets the quantity of an existing line. Unlike Add it overwrites.
func (s *Service) Update(ctx context.Context, userID bson.ObjectID, in ItemInput) (*models.CartView, error) {
	if in.Quantity < 1 {
		return nil, pricing.ValidateQuantity(in.Quantity, pricing.Unlimited())
	}

	cart, err := s.store.FindCartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.catalog.Resolve(ctx, in.ProductID, in.VariationID)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateQuantity(in.Quantity, res.Stock); err != nil {
		return nil, err
	}

	items, ok := SetItem(cart.Items, in.key(), in.Quantity)
	if !ok {
		return nil, global.NotFound("Item not found in cart")
	}
	cart.Items = items

	view, err := s.save(ctx, cart, false)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCartMutation(ctx, "update")
	return view, nil
}

// Remove deletes the line with exactly this product and variation. Removing
// the last line deletes the cart document.
func (s *Service) Remove(ctx context.Context, userID, productID bson.ObjectID, variationID *bson.ObjectID) (*models.CartView, error) {
	cart, err := s.store.FindCartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := models.LineItem{ProductID: productID, VariationID: variationID}.Key()
	items, ok := RemoveItem(cart.Items, key)
	if !ok {
		return nil, global.NotFound("Item not found in cart")
	}

	if len(items) == 0 {
		if err := s.store.DeleteCartVersion(ctx, userID, cart.Version); err != nil {
			return nil, err
		}
		s.metrics.RecordCartMutation(ctx, "remove")
		return emptyView(userID, s.now()), nil
	}

	cart.Items = items
	view, err := s.save(ctx, cart, false)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCartMutation(ctx, "remove")
	return view, nil
}

// Clear deletes the whole cart document. It succeeds when no cart exists.
func (s *Service) Clear(ctx context.Context, userID bson.ObjectID) error {
	if err := s.store.DeleteCart(ctx, userID); err != nil {
		return err
	}
	s.metrics.RecordCartMutation(ctx, "clear")
	return nil
}

// Fetch returns the cart with every line re-priced from the current catalog.
func (s *Service) Fetch(ctx context.Context, userID bson.ObjectID) (*models.CartView, error) {
	cart, err := s.store.FindCartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, cart)
}

// save re-prices the cart, stores the derived totals and writes it.
func (s *Service) save(ctx context.Context, cart *models.Cart, isNew bool) (*models.CartView, error) {
	view, err := s.enrich(ctx, cart)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cart.TotalItems = view.TotalItems
	cart.TotalValue = view.TotalValue
	cart.SetTimestamps(now)

	if isNew {
		cart.ID = bson.NewObjectID()
		cart.Version = 1
		if err := s.store.InsertCart(ctx, cart); err != nil {
			return nil, err
		}
	} else {
		expected := cart.Version
		cart.Version = expected + 1
		if err := s.store.ReplaceCart(ctx, cart, expected); err != nil {
			if global.IsKind(err, global.KindConflict) {
				log.Printf("Cart for user %s changed concurrently (version %d)", cart.UserID.Hex(), expected)
			}
			return nil, err
		}
	}

	view.UpdatedAt = now
	return view, nil
}

// enrich resolves every line against the catalog. Lines whose product or
// variation has disappeared are marked unavailable instead of failing the read.
func (s *Service) enrich(ctx context.Context, cart *models.Cart) (*models.CartView, error) {
	view := &models.CartView{
		UserID:    cart.UserID,
		Items:     make([]models.CartItemView, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}

	for _, item := range cart.Items {
		line := models.CartItemView{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		}

		res, err := s.catalog.Resolve(ctx, item.ProductID, item.VariationID)
		switch {
		case global.IsKind(err, global.KindNotFound):
			line.Unavailable = true
		case err != nil:
			return nil, err
		default:
			fillLine(&line, res)
		}
		view.Items = append(view.Items, line)
	}

	view.TotalItems, view.TotalValue = Totals(view.Items)
	return view, nil
}

func fillLine(line *models.CartItemView, res *catalog.Resolution) {
	line.Name = res.Product.Name
	line.SKU = res.Product.SKU
	if len(res.Product.Images) > 0 {
		line.Image = res.Product.Images[0]
	}
	if res.Variation != nil {
		line.Color = res.Variation.Color
		line.Size = res.Variation.Size
		if res.Variation.SKU != "" {
			line.SKU = res.Variation.SKU
		}
	}
	line.UnitPrice = res.UnitPrice
	line.DiscountPercent = res.DiscountPercent
	line.EffectivePrice = res.EffectivePrice()
	line.LineTotal = pricing.LineTotal(line.EffectivePrice, line.Quantity)
	line.AvailableStock = res.Stock.Ptr()
	line.FlashSale = res.FlashSale
}

func emptyView(userID bson.ObjectID, now time.Time) *models.CartView {
	return &models.CartView{
		UserID:    userID,
		Items:     []models.CartItemView{},
		UpdatedAt: now,
	}
}
