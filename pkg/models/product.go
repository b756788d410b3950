package models

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const MaxProductImages = 4

// Variation is a purchasable color/size configuration with its own price and stock.
type Variation struct {
	ID                bson.ObjectID `json:"_id" bson:"_id"`
	Color             string        `json:"color" bson:"color"`
	Size              string        `json:"size" bson:"size"`
	Price             float64       `json:"price" bson:"price" validate:"gte=0"`
	QuantityAvailable int           `json:"quantityAvailable" bson:"quantityAvailable" validate:"gte=0"`
	SKU               string        `json:"sku" bson:"sku" validate:"required"`
}

// Offer is a time-bounded percentage discount.
type Offer struct {
	StartDate          time.Time `json:"startDate" bson:"startDate"`
	EndDate            time.Time `json:"endDate" bson:"endDate" validate:"gtefield=StartDate"`
	DiscountPercentage float64   `json:"discountPercentage" bson:"discountPercentage" validate:"gte=0,lte=100"`
	FlashSale          bool      `json:"flashSale" bson:"flashSale"`
}

// ActiveAt reports whether now falls inside [StartDate, EndDate].
func (o *Offer) ActiveAt(now time.Time) bool {
	if o == nil {
		return false
	}
	return !now.Before(o.StartDate) && !now.After(o.EndDate)
}

type CategoryInfo struct {
	Gender      string `json:"gender,omitempty" bson:"gender,omitempty" validate:"omitempty,oneof=men women juniors"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
}

type SEO struct {
	MetaTitle       string `json:"metaTitle,omitempty" bson:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty" bson:"metaDescription,omitempty"`
	MetaKeywords    string `json:"metaKeywords,omitempty" bson:"metaKeywords,omitempty"`
}

type ShippingReturn struct {
	ShippingCharge float64 `json:"shippingCharge" bson:"shippingCharge" validate:"gte=0"`
	ReturnPolicy   string  `json:"returnPolicy,omitempty" bson:"returnPolicy,omitempty"`
}

// Product is a catalog entry. It exclusively owns its variations and offer.
type Product struct {
	ID                  bson.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Name                string         `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Slug                string         `json:"slug" bson:"slug"`
	SKU                 string         `json:"sku" bson:"sku" validate:"required"`
	CategoryInfo        CategoryInfo   `json:"categoryInfo" bson:"categoryInfo"`
	Barcode             string         `json:"barcode,omitempty" bson:"barcode,omitempty" validate:"omitempty,oneof=EAN-13 UPC-A"`
	BuyingPrice         float64        `json:"buyingPrice" bson:"buyingPrice" validate:"gte=0"`
	SellingPrice        float64        `json:"sellingPrice" bson:"sellingPrice" validate:"gte=0"`
	Tax                 string         `json:"tax,omitempty" bson:"tax,omitempty" validate:"omitempty,oneof='No Vat' Vat-5 Vat-10 Vat-20"`
	Status              string         `json:"status" bson:"status" validate:"required,oneof=Active Inactive"`
	CanPurchasable      bool           `json:"canPurchasable" bson:"canPurchasable"`
	ShowStockOut        bool           `json:"showStockOut" bson:"showStockOut"`
	Refundable          bool           `json:"refundable" bson:"refundable"`
	MaxPurchaseQuantity int            `json:"maxPurchaseQuantity,omitempty" bson:"maxPurchaseQuantity,omitempty" validate:"gte=0"`
	LowStockWarning     int            `json:"lowStockWarning,omitempty" bson:"lowStockWarning,omitempty" validate:"gte=0"`
	Unit                string         `json:"unit,omitempty" bson:"unit,omitempty"`
	Weight              float64        `json:"weight,omitempty" bson:"weight,omitempty" validate:"gte=0"`
	Tags                []string       `json:"tags,omitempty" bson:"tags,omitempty"`
	Description         string         `json:"description,omitempty" bson:"description,omitempty" validate:"max=5000"`
	Images              []string       `json:"images" bson:"images" validate:"max=4,dive,url"`
	Variations          []Variation    `json:"variations,omitempty" bson:"variations,omitempty" validate:"dive"`
	Offer               *Offer         `json:"offer,omitempty" bson:"offer,omitempty"`
	SEO                 SEO            `json:"seo" bson:"seo"`
	ShippingReturn      ShippingReturn `json:"shippingReturn" bson:"shippingReturn"`
	CreatedAt           time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// FindVariation looks up a variation by its id within the product.
func (p *Product) FindVariation(id bson.ObjectID) (*Variation, bool) {
	for i := range p.Variations {
		if p.Variations[i].ID == id {
			return &p.Variations[i], true
		}
	}
	return nil, false
}

// FindVariationByAttrs matches color and size case-sensitively, as stored.
func (p *Product) FindVariationByAttrs(color, size string) (*Variation, bool) {
	for i := range p.Variations {
		if p.Variations[i].Color == color && p.Variations[i].Size == size {
			return &p.Variations[i], true
		}
	}
	return nil, false
}

// HasDuplicateVariationSKU reports whether two variations share a sku.
func (p *Product) HasDuplicateVariationSKU() bool {
	seen := make(map[string]struct{}, len(p.Variations))
	for _, v := range p.Variations {
		if v.SKU == "" {
			continue
		}
		if _, ok := seen[v.SKU]; ok {
			return true
		}
		seen[v.SKU] = struct{}{}
	}
	return false
}

// EnsureVariationIDs assigns ids to variations created without one.
func (p *Product) EnsureVariationIDs() {
	for i := range p.Variations {
		if p.Variations[i].ID.IsZero() {
			p.Variations[i].ID = bson.NewObjectID()
		}
	}
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// ProductSummary is the slice of a product embedded in wishlist responses.
type ProductSummary struct {
	ID           bson.ObjectID `json:"_id" bson:"_id"`
	Name         string        `json:"name" bson:"name"`
	SellingPrice float64       `json:"sellingPrice" bson:"sellingPrice"`
	Images       []string      `json:"images" bson:"images"`
	Slug         string        `json:"slug" bson:"slug"`
	Offer        *Offer        `json:"offer,omitempty" bson:"offer,omitempty"`
}

func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		SellingPrice: p.SellingPrice,
		Images:       p.Images,
		Slug:         p.Slug,
		Offer:        p.Offer,
	}
}

type CreateProductRequest struct {
	Name                string         `json:"name" binding:"required,min=2,max=200"`
	SKU                 string         `json:"sku" binding:"required"`
	CategoryInfo        CategoryInfo   `json:"categoryInfo"`
	Barcode             string         `json:"barcode"`
	BuyingPrice         float64        `json:"buyingPrice" binding:"gte=0"`
	SellingPrice        float64        `json:"sellingPrice" binding:"gte=0"`
	Tax                 string         `json:"tax"`
	Status              string         `json:"status"`
	CanPurchasable      *bool          `json:"canPurchasable"`
	ShowStockOut        *bool          `json:"showStockOut"`
	Refundable          *bool          `json:"refundable"`
	MaxPurchaseQuantity int            `json:"maxPurchaseQuantity"`
	LowStockWarning     int            `json:"lowStockWarning"`
	Unit                string         `json:"unit"`
	Weight              float64        `json:"weight"`
	Tags                []string       `json:"tags"`
	Description         string         `json:"description"`
	Images              []string       `json:"images"`
	Variations          []Variation    `json:"variations"`
	Offer               *Offer         `json:"offer"`
	SEO                 SEO            `json:"seo"`
	ShippingReturn      ShippingReturn `json:"shippingReturn"`
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (req *CreateProductRequest) ToProduct() *Product {
	status := req.Status
	if status == "" {
		status = "Active"
	}
	product := &Product{
		ID:                  bson.NewObjectID(),
		Name:                req.Name,
		Slug:                Slugify(req.Name),
		SKU:                 req.SKU,
		CategoryInfo:        req.CategoryInfo,
		Barcode:             req.Barcode,
		BuyingPrice:         req.BuyingPrice,
		SellingPrice:        req.SellingPrice,
		Tax:                 req.Tax,
		Status:              status,
		CanPurchasable:      boolOr(req.CanPurchasable, true),
		ShowStockOut:        boolOr(req.ShowStockOut, true),
		Refundable:          boolOr(req.Refundable, true),
		MaxPurchaseQuantity: req.MaxPurchaseQuantity,
		LowStockWarning:     req.LowStockWarning,
		Unit:                req.Unit,
		Weight:              req.Weight,
		Tags:                req.Tags,
		Description:         req.Description,
		Images:              FilterImageURLs(req.Images),
		Variations:          req.Variations,
		Offer:               req.Offer,
		SEO:                 req.SEO,
		ShippingReturn:      req.ShippingReturn,
	}
	product.EnsureVariationIDs()
	product.SetTimestamps()
	return product
}

// UpdateProductRequest carries a partial update; nil fields are left untouched.
type UpdateProductRequest struct {
	Name                *string         `json:"name"`
	SKU                 *string         `json:"sku"`
	CategoryInfo        *CategoryInfo   `json:"categoryInfo"`
	Barcode             *string         `json:"barcode"`
	BuyingPrice         *float64        `json:"buyingPrice"`
	SellingPrice        *float64        `json:"sellingPrice"`
	Tax                 *string         `json:"tax"`
	Status              *string         `json:"status"`
	CanPurchasable      *bool           `json:"canPurchasable"`
	ShowStockOut        *bool           `json:"showStockOut"`
	Refundable          *bool           `json:"refundable"`
	MaxPurchaseQuantity *int            `json:"maxPurchaseQuantity"`
	LowStockWarning     *int            `json:"lowStockWarning"`
	Unit                *string         `json:"unit"`
	Weight              *float64        `json:"weight"`
	Tags                []string        `json:"tags"`
	Description         *string         `json:"description"`
	Images              []string        `json:"images"`
	Variations          []Variation     `json:"variations"`
	Offer               *Offer          `json:"offer"`
	SEO                 *SEO            `json:"seo"`
	ShippingReturn      *ShippingReturn `json:"shippingReturn"`
}

// Apply merges the request into p.
func (req *UpdateProductRequest) Apply(p *Product) {
	if req.Name != nil {
		p.Name = *req.Name
		p.Slug = Slugify(*req.Name)
	}
	if req.SKU != nil {
		p.SKU = *req.SKU
	}
	if req.CategoryInfo != nil {
		p.CategoryInfo = *req.CategoryInfo
	}
	if req.Barcode != nil {
		p.Barcode = *req.Barcode
	}
	if req.BuyingPrice != nil {
		p.BuyingPrice = *req.BuyingPrice
	}
	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}
	if req.Tax != nil {
		p.Tax = *req.Tax
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.CanPurchasable != nil {
		p.CanPurchasable = *req.CanPurchasable
	}
	if req.ShowStockOut != nil {
		p.ShowStockOut = *req.ShowStockOut
	}
	if req.Refundable != nil {
		p.Refundable = *req.Refundable
	}
	if req.MaxPurchaseQuantity != nil {
		p.MaxPurchaseQuantity = *req.MaxPurchaseQuantity
	}
	if req.LowStockWarning != nil {
		p.LowStockWarning = *req.LowStockWarning
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Weight != nil {
		p.Weight = *req.Weight
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Images != nil {
		p.Images = FilterImageURLs(req.Images)
	}
	if req.Variations != nil {
		p.Variations = req.Variations
		p.EnsureVariationIDs()
	}
	if req.Offer != nil {
		p.Offer = req.Offer
	}
	if req.SEO != nil {
		p.SEO = *req.SEO
	}
	if req.ShippingReturn != nil {
		p.ShippingReturn = *req.ShippingReturn
	}
	p.SetTimestamps()
}

// FilterImageURLs keeps http(s) URLs only, capped at MaxProductImages.
func FilterImageURLs(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if !strings.HasPrefix(img, "http://") && !strings.HasPrefix(img, "https://") {
			continue
		}
		out = append(out, img)
		if len(out) == MaxProductImages {
			break
		}
	}
	return out
}

// Slugify transliterates s to ASCII and joins its words with hyphens.
func Slugify(s string) string {
	return slug.Make(s)
}
