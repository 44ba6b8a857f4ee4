package catalog

import (
	"strings"

	"storefront/internal/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CategorySlug returns the explicit slug of a category, or the normalized
// name when none was set.
func CategorySlug(c domain.Category) string {
	if c.Slug != "" {
		return c.Slug
	}
	return Normalize(c.Name)
}

// Resolve maps a route slug or free-form name onto a catalog category. An
// explicit slug match (case-insensitive) wins; otherwise the normalized
// category name is compared to the normalized candidate.
func Resolve(candidate string, categories []domain.Category) (*domain.Category, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, false
	}

	for i := range categories {
		if categories[i].Slug != "" && strings.EqualFold(categories[i].Slug, candidate) {
			return &categories[i], true
		}
	}

	normalized := Normalize(candidate)
	if normalized == "" {
		return nil, false
	}
	for i := range categories {
		if Normalize(categories[i].Name) == normalized {
			return &categories[i], true
		}
	}

	return nil, false
}

// ResolvePath resolves a category path such as "jewellery/gold-rings". The
// last segment is resolved; with two segments a child of the resolved parent
// is preferred over an unrelated category of the same name.
func ResolvePath(path string, categories []domain.Category) (*domain.Category, bool) {
	segments := splitPath(path)
	switch len(segments) {
	case 0:
		return nil, false
	case 1:
		return Resolve(segments[0], categories)
	}

	leaf := segments[len(segments)-1]
	parent, ok := Resolve(segments[len(segments)-2], categories)
	if ok {
		var children []domain.Category
		for _, c := range categories {
			if c.ParentID != nil && *c.ParentID == parent.ID {
				children = append(children, c)
			}
		}
		if child, ok := Resolve(leaf, children); ok {
			for i := range categories {
				if categories[i].ID == child.ID {
					return &categories[i], true
				}
			}
		}
	}

	return Resolve(leaf, categories)
}

// Subtree returns the names of a category and, for a root, of its children.
// The browse filter uses it so a root category lists its children's products.
func Subtree(root domain.Category, categories []domain.Category) []string {
	names := []string{root.Name}
	if !root.IsRoot() {
		return names
	}
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID == root.ID {
			names = append(names, c.Name)
		}
	}
	return names
}

// Prettify builds a display label from an unresolved slug: dashes become
// spaces and each word is title-cased. It is only used for headers and
// breadcrumbs, never for filtering.
func Prettify(slug string) string {
	segments := splitPath(slug)
	if len(segments) == 0 {
		return ""
	}
	words := strings.Fields(strings.ReplaceAll(segments[len(segments)-1], "-", " "))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Leaf returns the last segment of a category path.
func Leaf(path string) string {
	segments := splitPath(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}
