package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/imagestore"
	"storefront/internal/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func goldRingDraft() ProductDraft {
	return ProductDraft{
		Name:        "Gold Ring",
		Description: "18k band",
		Category:    "Rings",
		HasVariants: true,
		Variants:    json.RawMessage(`[{"price": 500, "stock": 0}, {"price": 450, "AED": 460, "stock": 3, "size": "M"}]`),
		Images:      ImageInput{URLs: []string{"https://x/ring.jpg"}},
	}
}

func fixedDraft(name string) ProductDraft {
	return ProductDraft{
		Name:        name,
		Description: "plain",
		Category:    "Chains",
		Price:       120.0,
		AED:         "440",
		Images:      ImageInput{URLs: []string{"https://x/1.jpg", "https://x/2.jpg"}},
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("VariantsWithoutFlagCreateVariantProduct", func(t *testing.T) {
		env := newTestEnv()
		draft := goldRingDraft()
		draft.HasVariants = false

		p, err := env.service.Create(ctx, env.identity, draft)
		require.NoError(t, err)
		require.True(t, p.HasVariants())
		require.Equal(t, domain.Quote{Price: 450, AED: 460, InStock: true}, p.Quote())
	})

	t.Run("VariantProductDerivesQuote", func(t *testing.T) {
		env := newTestEnv()

		p, err := env.service.Create(ctx, env.identity, goldRingDraft())
		require.NoError(t, err)
		require.Equal(t, "gold-ring", p.Slug)
		require.True(t, p.HasVariants())
		require.Equal(t, domain.Quote{Price: 450, AED: 460, InStock: true}, p.Quote())
		require.Equal(t, env.identity.StoreID, p.StoreID)
		require.False(t, p.CreatedAt.IsZero())
		require.Equal(t, p.CreatedAt, p.UpdatedAt)

		stored, err := env.products.FindBySlug(ctx, "gold-ring")
		require.NoError(t, err)
		require.Equal(t, p.ID, stored.ID)
	})

	t.Run("SameNameConflicts", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.service.Create(ctx, env.identity, goldRingDraft())
		require.NoError(t, err)

		draft := goldRingDraft()
		draft.Name = "GOLD ring!"
		_, err = env.service.Create(ctx, env.identity, draft)

		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, "gold-ring", conflict.Slug)
		require.Equal(t, 1, env.products.count())
		require.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Writes.WithLabelValues("create", metrics.OutcomeConflict)))
	})

	t.Run("UniqueIndexViolationIsConflict", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.service.Create(ctx, env.identity, goldRingDraft())
		require.NoError(t, err)

		env.products.skipSlugIndex = true
		_, err = env.service.Create(ctx, env.identity, goldRingDraft())

		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("ExplicitSlugIsNormalized", func(t *testing.T) {
		env := newTestEnv()
		draft := fixedDraft("Silver Chain")
		draft.Slug = "  Silver   Chain -- 50cm "

		p, err := env.service.Create(ctx, env.identity, draft)
		require.NoError(t, err)
		require.Equal(t, "silver-chain-50cm", p.Slug)
	})

	t.Run("FixedPricingDefaultsInStock", func(t *testing.T) {
		env := newTestEnv()

		p, err := env.service.Create(ctx, env.identity, fixedDraft("Silver Chain"))
		require.NoError(t, err)
		require.Equal(t, domain.Quote{Price: 120, AED: 440, InStock: true}, p.Quote())
		require.False(t, p.HasVariants())
	})

	t.Run("URLsPrecedeUploadsInSubmissionOrder", func(t *testing.T) {
		env := newTestEnv()
		draft := fixedDraft("Pearl Earrings")
		draft.Images = ImageInput{
			URLs:    []string{"https://x/hosted.jpg", " "},
			Uploads: []imagestore.Upload{upload("a.png"), upload("broken.png"), upload("b.png"), upload("c.png")},
		}

		p, err := env.service.Create(ctx, env.identity, draft)
		require.NoError(t, err)
		require.Equal(t, []string{
			"https://x/hosted.jpg",
			"https://cdn.test/a.png",
			"https://cdn.test/b.png",
			"https://cdn.test/c.png",
		}, p.Images)
		require.Equal(t, 4, env.images.uploads())
		require.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Uploads.WithLabelValues("failed")))
	})

	t.Run("AllUploadsFailingIsUpstream", func(t *testing.T) {
		env := newTestEnv()
		draft := fixedDraft("Pearl Earrings")
		draft.Images = ImageInput{Uploads: []imagestore.Upload{upload("broken-1.png"), upload("broken-2.png")}}

		_, err := env.service.Create(ctx, env.identity, draft)

		var upstream *domain.UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.Zero(t, env.products.count())
	})

	t.Run("CallerWithoutStore", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.service.Create(ctx, domain.Identity{UserID: uuid.New()}, goldRingDraft())

		var authz *domain.AuthorizationError
		require.ErrorAs(t, err, &authz)
		require.Zero(t, env.products.count())
	})

	t.Run("PersistenceFailureIsUpstream", func(t *testing.T) {
		env := newTestEnv()
		env.products.failWith = errors.New("connection reset")

		_, err := env.service.Create(ctx, env.identity, goldRingDraft())

		var upstream *domain.UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.Equal(t, "insert product", upstream.Op)
	})
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		field string
		edit  func(d *ProductDraft)
	}{
		{"MissingName", "name", func(d *ProductDraft) { d.Name = "  " }},
		{"MissingDescription", "description", func(d *ProductDraft) { d.Description = "" }},
		{"MissingCategory", "category", func(d *ProductDraft) { d.Category = "" }},
		{"NoImages", "images", func(d *ProductDraft) { d.Images = ImageInput{URLs: []string{""}} }},
		{"SlugOfPunctuation", "slug", func(d *ProductDraft) { d.Name = "!!!" }},
		{"VariantsNotAList", "variants", func(d *ProductDraft) { d.Variants = json.RawMessage(`{"price": 1}`) }},
		{"VariantsEmpty", "variants", func(d *ProductDraft) { d.Variants = json.RawMessage(`[]`) }},
		{"VariantsMissing", "variants", func(d *ProductDraft) { d.Variants = nil }},
		{"PriceMissing", "price", func(d *ProductDraft) { d.HasVariants, d.Variants = false, nil; d.AED = 10.0 }},
		{"PriceNotNumeric", "price", func(d *ProductDraft) { d.HasVariants, d.Variants = false, nil; d.Price = "abc"; d.AED = 10.0 }},
		{"PriceNotPositive", "price", func(d *ProductDraft) { d.HasVariants, d.Variants = false, nil; d.Price = 0.0; d.AED = 10.0 }},
		{"AEDMissing", "AED", func(d *ProductDraft) { d.HasVariants, d.Variants = false, nil; d.Price = 10.0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			draft := goldRingDraft()
			draft.Images.Uploads = []imagestore.Upload{upload("a.png")}
			tc.edit(&draft)

			_, err := env.service.Create(ctx, env.identity, draft)

			var validation *domain.ValidationError
			require.ErrorAs(t, err, &validation)
			require.Equal(t, tc.field, validation.Field)
			require.Zero(t, env.products.count(), "validation failures never persist")
			require.Zero(t, env.images.uploads(), "validation runs before uploads")
		})
	}
}
