package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestProductJSONShape(t *testing.T) {
	p := Product{
		ID:       uuid.New(),
		Slug:     "gold-ring",
		Name:     "Gold Ring",
		Category: "Rings",
		Pricing: VariantPricing{Variants: []Variant{
			{"size": "7", "price": 300.0, "stock": 0.0},
			{"size": "8", "price": 250.0, "AED": 920.0, "stock": 1.0},
		}},
		Attributes: map[string]any{"shortDescription": "18k band"},
		CreatedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(b, &wire))
	require.Equal(t, true, wire["hasVariants"])
	require.Equal(t, 250.0, wire["price"])
	require.Equal(t, 920.0, wire["AED"])
	require.Equal(t, true, wire["inStock"])
	require.Equal(t, "18k band", wire["shortDescription"])
	require.Equal(t, []any{}, wire["tags"])
	require.Equal(t, []any{}, wire["images"])
	require.Equal(t, []any{}, wire["rating"])

	var back Product
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, back.HasVariants())
	require.Equal(t, p.Quote(), back.Quote())
	require.Equal(t, p.Slug, back.Slug)
}

func TestProductUnmarshalIgnoresStalePriceWithVariants(t *testing.T) {
	raw := `{"slug":"x","hasVariants":true,"price":1,"AED":1,"inStock":false,"variants":[{"price":40,"stock":5}]}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Equal(t, Quote{Price: 40, AED: 40, InStock: true}, p.Quote())
}

func TestProductFixedPricingJSON(t *testing.T) {
	p := Product{Pricing: FixedPricing{Price: 10, AED: 36.7, InStock: false}}

	b, err := json.Marshal(p)
	require.NoError(t, err)
	require.NotContains(t, string(b), `"variants"`)

	var back Product
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, FixedPricing{Price: 10, AED: 36.7, InStock: false}, back.Pricing)
}

func TestMeanRating(t *testing.T) {
	var p Product
	require.Zero(t, p.MeanRating())

	p.Ratings = []Rating{{Rating: 5}, {Rating: 4}, {Rating: 3}}
	require.InDelta(t, 4.0, p.MeanRating(), 1e-9)
}

func TestNilPricingQuotesZero(t *testing.T) {
	var p Product
	require.Equal(t, Quote{}, p.Quote())
	require.False(t, p.HasVariants())
	require.Nil(t, p.Variants())
}
