// Package catalog holds the pure parts of the product catalog: slug
// normalization, variant aggregation, category resolution and the facet
// engine used to browse a catalog snapshot. Nothing here performs I/O.
package catalog

import (
	"regexp"
	"strings"
)

var (
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// Normalize turns free text into a URL-safe slug: lower-cased, every run of
// characters outside [a-z0-9] collapsed to a single "-", and no leading or
// trailing "-". Empty input yields an empty slug.
func Normalize(text string) string {
	slug := strings.ToLower(text)
	slug = nonSlugRun.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
