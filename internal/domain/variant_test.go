package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVariants(t *testing.T) {
	t.Run("accepts a list of objects", func(t *testing.T) {
		variants, err := ParseVariants(json.RawMessage(`[{"size":"S","price":"12.5","stock":2},{"size":"M","price":15}]`))
		require.NoError(t, err)
		require.Len(t, variants, 2)

		price, ok := variants[0].Price()
		require.True(t, ok)
		require.Equal(t, 12.5, price)
		require.Equal(t, 2.0, variants[0].Stock())
		require.Equal(t, 0.0, variants[1].Stock())
	})

	rejected := []struct {
		name string
		raw  string
	}{
		{"missing", ``},
		{"null", `null`},
		{"object", `{"price":1}`},
		{"empty list", `[]`},
		{"list of numbers", `[1,2]`},
		{"null element", `[{"price":1},null]`},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVariants(json.RawMessage(tt.raw))

			var validation *ValidationError
			require.True(t, errors.As(err, &validation))
			require.Equal(t, "variants", validation.Field)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{12.5, 12.5, true},
		{"  40 ", 40, true},
		{json.Number("7.25"), 7.25, true},
		{3, 3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"1e400", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		require.Equal(t, tt.ok, ok, "input %#v", tt.in)
		require.Equal(t, tt.want, got, "input %#v", tt.in)
	}
}
