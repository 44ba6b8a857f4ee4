package domain

import "math"

// Quote is the canonical price/availability triple shown for a product.
type Quote struct {
	Price   float64 `json:"price"`
	AED     float64 `json:"AED"`
	InStock bool    `json:"inStock"`
}

// Pricing selects which source is authoritative for a product's Quote.
// It is implemented only by FixedPricing and VariantPricing.
type Pricing interface {
	Quote() Quote
	HasVariants() bool
	isPricing()
}

// FixedPricing is a product priced directly by the merchant.
type FixedPricing struct {
	Price   float64
	AED     float64
	InStock bool
}

func (p FixedPricing) Quote() Quote {
	return Quote{Price: p.Price, AED: p.AED, InStock: p.InStock}
}

func (FixedPricing) HasVariants() bool { return false }
func (FixedPricing) isPricing()        {}

// VariantPricing derives the quote from the variants on every read, so the
// displayed price can never drift from the variant list.
type VariantPricing struct {
	Variants []Variant
}

func (p VariantPricing) Quote() Quote {
	return AggregateVariants(p.Variants)
}

func (VariantPricing) HasVariants() bool { return true }
func (VariantPricing) isPricing()        {}

// AggregateVariants reduces variants to a Quote. Price is the minimum
// parseable price (0 when none parse); AED is the minimum of each variant's
// AED, falling back to that variant's price, and to the computed price when no
// variant yields one. Missing or non-numeric fields never win a minimum.
func AggregateVariants(variants []Variant) Quote {
	price := math.Inf(1)
	aed := math.Inf(1)
	inStock := false

	for _, v := range variants {
		p, hasPrice := v.Price()
		if hasPrice && p < price {
			price = p
		}

		if a, ok := v.AED(); ok {
			if a < aed {
				aed = a
			}
		} else if hasPrice && p < aed {
			aed = p
		}

		if v.Stock() > 0 {
			inStock = true
		}
	}

	if math.IsInf(price, 1) {
		price = 0
	}
	if math.IsInf(aed, 1) {
		aed = price
	}

	return Quote{Price: price, AED: aed, InStock: inStock}
}
