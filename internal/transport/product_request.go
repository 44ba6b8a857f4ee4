package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/imagestore"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/spf13/cast"
)

// ProductRequest is the JSON body of product writes. Every field is
// optional at this level; Create enforces the required ones.
type ProductRequest struct {
	Name             *string         `json:"name" validate:"omitempty,max=200"`
	Slug             *string         `json:"slug" validate:"omitempty,max=200"`
	Description      *string         `json:"description"`
	ShortDescription *string         `json:"shortDescription" validate:"omitempty,max=500"`
	Category         *string         `json:"category" validate:"omitempty,max=100"`
	SKU              *string         `json:"sku" validate:"omitempty,max=64"`
	Tags             []string        `json:"tags" validate:"omitempty,dive,max=50"`
	HasVariants      *bool           `json:"hasVariants"`
	Variants         json.RawMessage `json:"variants"`
	Price            any             `json:"price"`
	AED              any             `json:"AED"`
	InStock          *bool           `json:"inStock"`
	Attributes       map[string]any  `json:"attributes"`
	Images           []string        `json:"images" validate:"omitempty,dive,uri"`
	ImageMode        string          `json:"imageMode" validate:"omitempty,oneof=infer replace append"`
}

// decodeProductRequest reads a JSON or multipart product write. Multipart
// image parts may be files (uploads) or plain values (hosted URLs).
func decodeProductRequest(r *http.Request, maxBytes int64) (*ProductRequest, []imagestore.Upload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return decodeMultipart(r, maxBytes)
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		return nil, nil, err
	}
	return &req, nil, nil
}

func decodeMultipart(r *http.Request, maxBytes int64) (*ProductRequest, []imagestore.Upload, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if isBodyTooLarge(err) {
			return nil, nil, err
		}
		return nil, nil, domain.NewValidationError("", fmt.Sprintf("invalid multipart body: %v", err))
	}
	form := r.MultipartForm

	req := &ProductRequest{
		Name:             formString(form, "name"),
		Slug:             formString(form, "slug"),
		Description:      formString(form, "description"),
		ShortDescription: formString(form, "shortDescription"),
		Category:         formString(form, "category"),
		SKU:              formString(form, "sku"),
		Images:           form.Value["images"],
	}
	if mode := formString(form, "imageMode"); mode != nil {
		req.ImageMode = *mode
	}

	var err error
	if req.HasVariants, err = formBool(form, "hasVariants"); err != nil {
		return nil, nil, err
	}
	if req.InStock, err = formBool(form, "inStock"); err != nil {
		return nil, nil, err
	}
	if v := formString(form, "variants"); v != nil {
		req.Variants = json.RawMessage(*v)
	}
	if v := formString(form, "price"); v != nil && strings.TrimSpace(*v) != "" {
		req.Price = *v
	}
	if v := formString(form, "AED"); v != nil && strings.TrimSpace(*v) != "" {
		req.AED = *v
	}
	if v := formString(form, "attributes"); v != nil && strings.TrimSpace(*v) != "" {
		if err := json.Unmarshal([]byte(*v), &req.Attributes); err != nil {
			return nil, nil, domain.NewValidationError("attributes", "attributes must be a JSON object")
		}
	}
	if values, ok := form.Value["tags"]; ok {
		if req.Tags, err = parseTags(values); err != nil {
			return nil, nil, err
		}
	}

	if err := middleware.ValidateRequest(req); err != nil {
		return nil, nil, err
	}

	uploads, err := readUploads(form.File["images"])
	if err != nil {
		return nil, nil, err
	}
	return req, uploads, nil
}

func formString(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func formBool(form *multipart.Form, key string) (*bool, error) {
	v := formString(form, key)
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	b, err := cast.ToBoolE(strings.TrimSpace(*v))
	if err != nil {
		return nil, domain.NewValidationError(key, key+" must be true or false")
	}
	return &b, nil
}

// parseTags accepts a JSON array, a comma separated list, or repeated
// fields.
func parseTags(values []string) ([]string, error) {
	tags := []string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var list []string
			if err := json.Unmarshal([]byte(v), &list); err != nil {
				return nil, domain.NewValidationError("tags", "tags must be a list of strings")
			}
			tags = append(tags, list...)
			continue
		}
		tags = append(tags, strings.Split(v, ",")...)
	}
	return tags, nil
}

func readUploads(files []*multipart.FileHeader) ([]imagestore.Upload, error) {
	uploads := make([]imagestore.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, imagestore.Upload{Filename: fh.Filename, Data: data})
	}
	return uploads, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Draft converts the request into a create input.
func (req *ProductRequest) Draft(uploads []imagestore.Upload) service.ProductDraft {
	draft := service.ProductDraft{
		Name:             deref(req.Name),
		Slug:             deref(req.Slug),
		Description:      deref(req.Description),
		ShortDescription: deref(req.ShortDescription),
		Category:         deref(req.Category),
		SKU:              deref(req.SKU),
		Tags:             req.Tags,
		Variants:         req.Variants,
		Price:            req.Price,
		AED:              req.AED,
		InStock:          req.InStock,
		Attributes:       req.Attributes,
		Images:           service.ImageInput{URLs: req.Images, Uploads: uploads},
	}
	if req.HasVariants != nil {
		draft.HasVariants = *req.HasVariants
	}
	return draft
}

// Patch converts the request into an update input.
func (req *ProductRequest) Patch(uploads []imagestore.Upload) (service.ProductPatch, error) {
	mode, err := service.ParseImageMode(req.ImageMode)
	if err != nil {
		return service.ProductPatch{}, err
	}
	return service.ProductPatch{
		Name:             req.Name,
		Slug:             req.Slug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Category:         req.Category,
		SKU:              req.SKU,
		Tags:             req.Tags,
		HasVariants:      req.HasVariants,
		Variants:         req.Variants,
		Price:            req.Price,
		AED:              req.AED,
		InStock:          req.InStock,
		Attributes:       req.Attributes,
		Images:           service.ImageInput{URLs: req.Images, Uploads: uploads},
		ImageMode:        mode,
	}, nil
}

// isBodyTooLarge reports whether decoding hit the request size cap.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
