package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/imagestore"
)

// ImageMode selects how an update combines submitted images with the
// stored list.
type ImageMode string

const (
	// ImageModeInfer keeps the storefront's historical rule: URL strings
	// alone replace the stored list, any upload appends to it.
	ImageModeInfer   ImageMode = ""
	ImageModeReplace ImageMode = "replace"
	ImageModeAppend  ImageMode = "append"
)

// ParseImageMode accepts "", "infer", "replace" or "append".
func ParseImageMode(s string) (ImageMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "infer":
		return ImageModeInfer, nil
	case "replace":
		return ImageModeReplace, nil
	case "append":
		return ImageModeAppend, nil
	default:
		return "", domain.NewValidationError("imageMode", fmt.Sprintf("unknown image mode %q", s))
	}
}

// ImageInput is the image part of a write: already hosted URLs plus binary
// uploads. A nil URLs slice means no URL list was submitted.
type ImageInput struct {
	URLs    []string
	Uploads []imagestore.Upload
}

func (in ImageInput) empty() bool {
	return in.URLs == nil && len(in.Uploads) == 0
}

// ProductDraft is the input of Create. Price and AED are loosely typed so
// both JSON numbers and form strings are accepted.
type ProductDraft struct {
	Name             string
	Slug             string
	Description      string
	ShortDescription string
	Category         string
	SKU              string
	Tags             []string
	HasVariants      bool
	Variants         json.RawMessage
	Price            any
	AED              any
	InStock          *bool
	Attributes       map[string]any
	Images           ImageInput
}

// ProductPatch is the input of Update. Nil fields are left unchanged.
type ProductPatch struct {
	Name             *string
	Slug             *string
	Description      *string
	ShortDescription *string
	Category         *string
	SKU              *string
	Tags             []string
	HasVariants      *bool
	Variants         json.RawMessage
	Price            any
	AED              any
	InStock          *bool
	Attributes       map[string]any
	Images           ImageInput
	ImageMode        ImageMode
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", domain.NewValidationError(field, field+" is required")
	}
	return value, nil
}

// normalizeTags trims, drops empties and removes duplicates keeping the
// first occurrence.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
