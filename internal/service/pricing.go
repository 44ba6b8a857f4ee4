package service

import (
	"encoding/json"
	"strings"

	"storefront/internal/domain"
)

// positivePrice parses a direct price field. Only finite values above zero
// are accepted.
func positivePrice(field string, v any) (float64, error) {
	if v == nil {
		return 0, domain.NewValidationError(field, field+" is required when hasVariants is false")
	}
	n, ok := domain.ParseNumber(v)
	if !ok {
		return 0, domain.NewValidationError(field, field+" must be a number")
	}
	if n <= 0 {
		return 0, domain.NewValidationError(field, field+" must be greater than zero")
	}
	return n, nil
}

// variantsSent reports whether a variants payload was supplied at all. A
// JSON null counts as absent.
func variantsSent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null"
}

func variantPricing(raw json.RawMessage) (domain.Pricing, error) {
	variants, err := domain.ParseVariants(raw)
	if err != nil {
		return nil, err
	}
	return domain.VariantPricing{Variants: variants}, nil
}

// draftPricing builds the pricing of a new product. Sending variants turns
// variant pricing on.
func draftPricing(d ProductDraft) (domain.Pricing, error) {
	if d.HasVariants || variantsSent(d.Variants) {
		return variantPricing(d.Variants)
	}

	price, err := positivePrice("price", d.Price)
	if err != nil {
		return nil, err
	}
	aed, err := positivePrice("AED", d.AED)
	if err != nil {
		return nil, err
	}

	inStock := true
	if d.InStock != nil {
		inStock = *d.InStock
	}
	return domain.FixedPricing{Price: price, AED: aed, InStock: inStock}, nil
}

// patchPricing applies a patch to the current pricing. Sending variants
// turns variant pricing on. With variants active the direct price fields are
// ignored; the quote is always derived.
func patchPricing(current domain.Pricing, p ProductPatch) (domain.Pricing, error) {
	sent := variantsSent(p.Variants)

	hasVariants := sent || (current != nil && current.HasVariants())
	if p.HasVariants != nil {
		if !*p.HasVariants && sent {
			return nil, domain.NewValidationError("variants", "variants cannot be set when hasVariants is false")
		}
		hasVariants = *p.HasVariants
	}

	if hasVariants {
		if sent {
			return variantPricing(p.Variants)
		}
		if vp, ok := current.(domain.VariantPricing); ok {
			return vp, nil
		}
		return nil, domain.NewValidationError("variants", "variants are required when hasVariants is true")
	}

	fixed, wasFixed := current.(domain.FixedPricing)
	if !wasFixed {
		// Leaving variant pricing: the derived quote must not leak into
		// the direct fields, so both prices are required.
		fixed = domain.FixedPricing{InStock: true}
		if p.Price == nil || p.AED == nil {
			return nil, domain.NewValidationError("price", "price and AED are required when turning variants off")
		}
	}

	if p.Price != nil {
		price, err := positivePrice("price", p.Price)
		if err != nil {
			return nil, err
		}
		fixed.Price = price
	}
	if p.AED != nil {
		aed, err := positivePrice("AED", p.AED)
		if err != nil {
			return nil, err
		}
		fixed.AED = aed
	}
	if p.InStock != nil {
		fixed.InStock = *p.InStock
	}
	return fixed, nil
}
