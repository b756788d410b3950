package catalog

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type ProductStore interface {
	ProductFinder
	InsertProduct(ctx context.Context, p *models.Product) error
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListFlashSales(ctx context.Context, now time.Time) ([]models.Product, error)
	ReplaceProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id bson.ObjectID) (*models.Product, error)
}

// ImageRemover deletes stored product images by their public URL.
type ImageRemover interface {
	ObjectFromURL(url string) (string, bool)
	Delete(ctx context.Context, publicID string) error
}

type ViewRecorder interface {
	RecordProductView(ctx context.Context)
}

// Availability is the stock of one variation.
type Availability struct {
	SKU               string `json:"sku"`
	QuantityAvailable int    `json:"quantityAvailable"`
}

// Service manages catalog entries.
type Service struct {
	store   ProductStore
	images  ImageRemover
	metrics ViewRecorder
	now     func() time.Time
}

// NewService builds the catalog service. images and metrics may be nil.
func NewService(store ProductStore, images ImageRemover, metrics ViewRecorder) *Service {
	return &Service{store: store, images: images, metrics: metrics, now: time.Now}
}

func checkProduct(p *models.Product) error {
	if err := models.Validate(p); err != nil {
		return global.InvalidArgument("product", err.Error())
	}
	if p.HasDuplicateVariationSKU() {
		return global.InvalidArgument("variations", "Variation SKUs must be unique within a product")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	product := req.ToProduct()
	if err := checkProduct(product); err != nil {
		return nil, err
	}
	if err := s.store.InsertProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) Get(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	product, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordProductView(ctx)
	}
	return product, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.store.FindProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordProductView(ctx)
	}
	return product, nil
}

// Update applies a partial update and replaces the stored document.
func (s *Service) Update(ctx context.Context, id bson.ObjectID, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(product)
	if err := checkProduct(product); err != nil {
		return nil, err
	}
	if err := s.store.ReplaceProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the product, then its stored images. Image cleanup failures
// are logged only.
func (s *Service) Delete(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	product, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return product, nil
	}
	for _, url := range product.Images {
		publicID, ok := s.images.ObjectFromURL(url)
		if !ok {
			continue
		}
		if err := s.images.Delete(ctx, publicID); err != nil {
			log.Printf("Failed to delete image %s of product %s: %v", publicID, id.Hex(), err)
		}
	}
	return product, nil
}

// Availability reports the variation matching color and size.
func (s *Service) Availability(ctx context.Context, id bson.ObjectID, color, size string) (*Availability, error) {
	product, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v, ok := product.FindVariationByAttrs(color, size)
	if !ok {
		return nil, global.NotFound("Variation not found")
	}
	return &Availability{SKU: v.SKU, QuantityAvailable: v.QuantityAvailable}, nil
}

// FlashSales lists products whose flash sale offer is running now.
func (s *Service) FlashSales(ctx context.Context) ([]models.Product, error) {
	return s.store.ListFlashSales(ctx, s.now())
}
