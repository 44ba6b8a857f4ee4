// Package imagestore uploads product images and returns their public URLs.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"storefront/internal/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrEmptyUpload  = errors.New("upload is empty")
	ErrNotAnImage   = errors.New("upload is not an image")
	ErrUnknownStore = errors.New("unknown storage backend")
)

// Upload is one binary image submitted with a product write.
type Upload struct {
	Filename string
	Data     []byte
}

// Store persists an image and returns the URL it is served from.
type Store interface {
	Upload(ctx context.Context, upload Upload) (string, error)
}

// object describes where an upload will be written.
type object struct {
	Name        string
	ContentType string
}

// prepare sniffs the upload and picks an object name. The caller's filename
// is never trusted for the extension.
func prepare(upload Upload, now time.Time) (object, error) {
	if len(upload.Data) == 0 {
		return object{}, ErrEmptyUpload
	}

	mt := mimetype.Detect(upload.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return object{}, fmt.Errorf("%w: %s (%s)", ErrNotAnImage, upload.Filename, mt.String())
	}

	name := path.Join(
		"products",
		now.UTC().Format("2006/01"),
		uuid.NewString()+mt.Extension(),
	)
	return object{Name: name, ContentType: mt.String()}, nil
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.CredentialsFile, cfg.PublicBaseURL)
	case "local", "":
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Backend)
	}
}
