package catalog

import "storefront/internal/domain"

// Aggregate derives the canonical price, AED price and availability of a
// product from its variants. Callers reject empty variant lists upstream.
func Aggregate(variants []domain.Variant) domain.Quote {
	return domain.AggregateVariants(variants)
}
