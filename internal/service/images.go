package service

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/internal/imagestore"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// uploadAll sends uploads to the image store concurrently. A failed upload
// is logged and skipped; the returned URLs keep the submission order of the
// uploads that succeeded.
func (s *catalogService) uploadAll(ctx context.Context, uploads []imagestore.Upload) []string {
	if len(uploads) == 0 {
		return nil
	}

	urls := make([]string, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.UploadConcurrency)

	for i, upload := range uploads {
		g.Go(func() error {
			started := time.Now()
			url, err := s.images.Upload(gctx, upload)
			s.metrics.ObserveUpload(err == nil, started)
			if err != nil {
				s.logger.Warn("Image upload failed, continuing without it",
					zap.String("filename", upload.Filename),
					zap.Int("size", len(upload.Data)),
					zap.Error(err),
				)
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(urls))
	for _, url := range urls {
		if url != "" {
			out = append(out, url)
		}
	}
	return out
}

// imagePlan is the image list of a write before uploads run. Uploaded URLs
// are appended after base.
type imagePlan struct {
	base    []string
	uploads []imagestore.Upload
	keep    bool
}

// planCreate puts the supplied URL strings first, uploads after them.
func planCreate(in ImageInput) (imagePlan, error) {
	plan := imagePlan{base: cleanURLs(in.URLs), uploads: in.Uploads}
	if len(plan.base) == 0 && len(plan.uploads) == 0 {
		return imagePlan{}, domain.NewValidationError("images", "at least one image is required")
	}
	return plan, nil
}

// planUpdate combines the submitted images with the stored ones according
// to mode.
func planUpdate(current []string, in ImageInput, mode ImageMode) (imagePlan, error) {
	switch mode {
	case ImageModeReplace:
		if in.empty() {
			return imagePlan{keep: true}, nil
		}
		plan := imagePlan{base: cleanURLs(in.URLs), uploads: in.Uploads}
		if len(plan.base) == 0 && len(plan.uploads) == 0 {
			return imagePlan{}, domain.NewValidationError("images", "a product must keep at least one image")
		}
		return plan, nil

	case ImageModeAppend:
		if in.empty() {
			return imagePlan{keep: true}, nil
		}
		base := append(append([]string{}, current...), cleanURLs(in.URLs)...)
		return imagePlan{base: base, uploads: in.Uploads}, nil

	default:
		if len(in.Uploads) > 0 {
			return imagePlan{base: append([]string{}, current...), uploads: in.Uploads}, nil
		}
		if in.URLs == nil {
			return imagePlan{keep: true}, nil
		}
		base := cleanURLs(in.URLs)
		if len(base) == 0 {
			return imagePlan{}, domain.NewValidationError("images", "a product must keep at least one image")
		}
		return imagePlan{base: base}, nil
	}
}
