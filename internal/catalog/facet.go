package catalog

import (
	"cmp"
	"slices"

	"storefront/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortTitleAsc  SortKey = "title-asc"
	SortTitleDesc SortKey = "title-desc"
)

var sortKeys = []SortKey{SortNewest, SortOldest, SortPriceLow, SortPriceHigh, SortRating, SortTitleAsc, SortTitleDesc}

// ParseSortKey validates a sort key coming from a query string.
func ParseSortKey(s string) (SortKey, bool) {
	for _, k := range sortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// PriceRange bounds the canonical price, both ends inclusive.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Filter is the set of facets; every active facet must hold for a product
// to be shown.
type Filter struct {
	Categories []string    `json:"categories"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	MinRating  float64     `json:"minRating"`
	InStock    bool        `json:"inStock"`
}

type facetEntry struct {
	product domain.Product
	quote   domain.Quote
	rating  float64
}

// FilterAndSort returns the visible products in display order. It is a pure
// function of its arguments: the input slice is not modified and equal sort
// keys keep their relative input order.
func FilterAndSort(products []domain.Product, filter Filter, key SortKey) []domain.Product {
	var categories map[string]struct{}
	if len(filter.Categories) > 0 {
		categories = make(map[string]struct{}, len(filter.Categories))
		for _, c := range filter.Categories {
			categories[c] = struct{}{}
		}
	}

	entries := make([]facetEntry, 0, len(products))
	for _, p := range products {
		// A product without a slug cannot be linked to, so it is never shown.
		if p.Slug == "" {
			continue
		}
		if categories != nil {
			if _, ok := categories[p.Category]; !ok {
				continue
			}
		}

		e := facetEntry{product: p, quote: p.Quote(), rating: p.MeanRating()}

		if r := filter.PriceRange; r != nil && (e.quote.Price < r.Min || e.quote.Price > r.Max) {
			continue
		}
		if filter.MinRating > 0 && e.rating < filter.MinRating {
			continue
		}
		if filter.InStock && !e.quote.InStock {
			continue
		}
		entries = append(entries, e)
	}

	if compare := comparator(key); compare != nil {
		slices.SortStableFunc(entries, compare)
	}

	out := make([]domain.Product, len(entries))
	for i, e := range entries {
		out[i] = e.product
	}
	return out
}

func comparator(key SortKey) func(a, b facetEntry) int {
	switch key {
	case SortNewest:
		return func(a, b facetEntry) int { return b.product.CreatedAt.Compare(a.product.CreatedAt) }
	case SortOldest:
		return func(a, b facetEntry) int { return a.product.CreatedAt.Compare(b.product.CreatedAt) }
	case SortPriceLow:
		return func(a, b facetEntry) int { return cmp.Compare(a.quote.Price, b.quote.Price) }
	case SortPriceHigh:
		return func(a, b facetEntry) int { return cmp.Compare(b.quote.Price, a.quote.Price) }
	case SortRating:
		return func(a, b facetEntry) int { return cmp.Compare(b.rating, a.rating) }
	case SortTitleAsc, SortTitleDesc:
		// collate.Collator keeps internal buffers, so one is built per call.
		col := collate.New(language.English)
		if key == SortTitleDesc {
			return func(a, b facetEntry) int { return col.CompareString(b.product.Name, a.product.Name) }
		}
		return func(a, b facetEntry) int { return col.CompareString(a.product.Name, b.product.Name) }
	default:
		return nil
	}
}
