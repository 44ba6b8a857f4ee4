package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Variant is one priced and stocked configuration of a product. Besides the
// well-known price, AED and stock keys it carries arbitrary attributes
// (size, weight, karat, ...), so it is kept as a loose JSON object.
type Variant map[string]any

const (
	VariantPriceKey = "price"
	VariantAEDKey   = "AED"
	VariantStockKey = "stock"
)

// Price returns the variant price when it parses as a finite number.
func (v Variant) Price() (float64, bool) {
	return finiteNumber(v[VariantPriceKey])
}

// AED returns the AED price when present and finite.
func (v Variant) AED() (float64, bool) {
	return finiteNumber(v[VariantAEDKey])
}

// Stock returns the stock level, 0 when absent or not numeric.
func (v Variant) Stock() float64 {
	n, ok := finiteNumber(v[VariantStockKey])
	if !ok {
		return 0
	}
	return n
}

// ParseVariants decodes a raw variants payload. Anything other than a
// non-empty JSON array of objects is a validation failure.
func ParseVariants(raw json.RawMessage) ([]Variant, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, NewValidationError("variants", "variants are required when hasVariants is true")
	}
	if !strings.HasPrefix(trimmed, "[") {
		return nil, NewValidationError("variants", "variants must be a list")
	}

	var variants []Variant
	if err := json.Unmarshal([]byte(trimmed), &variants); err != nil {
		return nil, NewValidationError("variants", fmt.Sprintf("variants must be a list of objects: %v", err))
	}
	if len(variants) == 0 {
		return nil, NewValidationError("variants", "variants must not be empty")
	}
	for i, v := range variants {
		if v == nil {
			return nil, NewValidationError("variants", fmt.Sprintf("variant %d must be an object", i))
		}
	}
	return variants, nil
}

// ParseNumber parses a loosely typed numeric input (JSON number, numeric
// string) and reports whether it is a finite number.
func ParseNumber(v any) (float64, bool) {
	return finiteNumber(v)
}

func finiteNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
		v = strings.TrimSpace(t)
	}

	n, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
