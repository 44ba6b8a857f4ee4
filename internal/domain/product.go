package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID               uuid.UUID
	StoreID          uuid.UUID
	Slug             string
	Name             string
	Description      string
	ShortDescription string
	Category         string
	SKU              string
	Tags             []string
	Pricing          Pricing
	Images           []string
	Attributes       map[string]any
	Ratings          []Rating
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Rating is a single review score attached to a product by the review system.
type Rating struct {
	UserID    uuid.UUID `json:"userId"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Quote returns the canonical price and availability.
func (p *Product) Quote() Quote {
	if p.Pricing == nil {
		return Quote{}
	}
	return p.Pricing.Quote()
}

// HasVariants reports whether the variant list is the price authority.
func (p *Product) HasVariants() bool {
	return p.Pricing != nil && p.Pricing.HasVariants()
}

// Variants returns the variant list, nil for fixed-price products.
func (p *Product) Variants() []Variant {
	if vp, ok := p.Pricing.(VariantPricing); ok {
		return vp.Variants
	}
	return nil
}

// MeanRating is the arithmetic mean of the attached ratings, 0 when unrated.
func (p *Product) MeanRating() float64 {
	if len(p.Ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range p.Ratings {
		sum += r.Rating
	}
	return sum / float64(len(p.Ratings))
}

// ShortDescriptionText prefers the attributes override when one is set.
func (p *Product) ShortDescriptionText() string {
	if s, ok := p.Attributes["shortDescription"].(string); ok && s != "" {
		return s
	}
	return p.ShortDescription
}

type productJSON struct {
	ID               uuid.UUID      `json:"id"`
	StoreID          uuid.UUID      `json:"storeId"`
	Slug             string         `json:"slug"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"shortDescription,omitempty"`
	Category         string         `json:"category"`
	SKU              string         `json:"sku,omitempty"`
	Tags             []string       `json:"tags"`
	HasVariants      bool           `json:"hasVariants"`
	Variants         []Variant      `json:"variants,omitempty"`
	Price            float64        `json:"price"`
	AED              float64        `json:"AED"`
	InStock          bool           `json:"inStock"`
	Images           []string       `json:"images"`
	Attributes       map[string]any `json:"attributes,omitempty"`
	Rating           []Rating       `json:"rating"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// MarshalJSON flattens the pricing union into the storefront wire shape.
func (p Product) MarshalJSON() ([]byte, error) {
	q := p.Quote()
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	ratings := p.Ratings
	if ratings == nil {
		ratings = []Rating{}
	}

	return json.Marshal(productJSON{
		ID:               p.ID,
		StoreID:          p.StoreID,
		Slug:             p.Slug,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescriptionText(),
		Category:         p.Category,
		SKU:              p.SKU,
		Tags:             tags,
		HasVariants:      p.HasVariants(),
		Variants:         p.Variants(),
		Price:            q.Price,
		AED:              q.AED,
		InStock:          q.InStock,
		Images:           images,
		Attributes:       p.Attributes,
		Rating:           ratings,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	})
}

// UnmarshalJSON rebuilds the pricing union. When hasVariants is set the
// flattened price fields are ignored and re-derived from the variants.
func (p *Product) UnmarshalJSON(data []byte) error {
	var w productJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = Product{
		ID:               w.ID,
		StoreID:          w.StoreID,
		Slug:             w.Slug,
		Name:             w.Name,
		Description:      w.Description,
		ShortDescription: w.ShortDescription,
		Category:         w.Category,
		SKU:              w.SKU,
		Tags:             w.Tags,
		Images:           w.Images,
		Attributes:       w.Attributes,
		Ratings:          w.Rating,
		CreatedAt:        w.CreatedAt,
		UpdatedAt:        w.UpdatedAt,
	}
	if w.HasVariants && len(w.Variants) > 0 {
		p.Pricing = VariantPricing{Variants: w.Variants}
	} else {
		p.Pricing = FixedPricing{Price: w.Price, AED: w.AED, InStock: w.InStock}
	}
	return nil
}
