package catalog

import (
	"testing"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	jewelleryID := uuid.New()
	watchesID := uuid.New()
	categories := []domain.Category{
		{ID: jewelleryID, Name: "Jewellery"},
		{ID: uuid.New(), Name: "Gold Jewellery", ParentID: &jewelleryID},
		{ID: uuid.New(), Name: "Rings", Slug: "Ring-Collection", ParentID: &jewelleryID},
		{ID: watchesID, Name: "Watches"},
		{ID: uuid.New(), Name: "Straps", ParentID: &watchesID},
		{ID: uuid.New(), Name: "Straps", Slug: "jewellery-straps", ParentID: &jewelleryID},
	}

	t.Run("FallsBackToNormalizedName", func(t *testing.T) {
		c, ok := Resolve("gold-jewellery", categories)
		require.True(t, ok)
		require.Equal(t, "Gold Jewellery", c.Name)
	})

	t.Run("ExplicitSlugIsCaseInsensitive", func(t *testing.T) {
		c, ok := Resolve("ring-collection", categories)
		require.True(t, ok)
		require.Equal(t, "Rings", c.Name)
	})

	t.Run("FreeFormName", func(t *testing.T) {
		c, ok := Resolve("  GOLD jewellery ", categories)
		require.True(t, ok)
		require.Equal(t, "Gold Jewellery", c.Name)
	})

	t.Run("NoMatch", func(t *testing.T) {
		_, ok := Resolve("silver-coins", categories)
		require.False(t, ok)
		_, ok = Resolve("", categories)
		require.False(t, ok)
		_, ok = Resolve("---", categories)
		require.False(t, ok)
	})

	t.Run("PathPrefersChildOfParent", func(t *testing.T) {
		c, ok := ResolvePath("watches/straps", categories)
		require.True(t, ok)
		require.Equal(t, watchesID, *c.ParentID)

		c, ok = ResolvePath("/jewellery/straps/", categories)
		require.True(t, ok)
		require.Equal(t, jewelleryID, *c.ParentID)
	})

	t.Run("PathWithUnknownParentResolvesLeaf", func(t *testing.T) {
		c, ok := ResolvePath("unknown/gold-jewellery", categories)
		require.True(t, ok)
		require.Equal(t, "Gold Jewellery", c.Name)
	})

	t.Run("SubtreeOfRootIncludesChildren", func(t *testing.T) {
		require.ElementsMatch(t,
			[]string{"Jewellery", "Gold Jewellery", "Rings", "Straps"},
			Subtree(categories[0], categories))
		require.Equal(t, []string{"Gold Jewellery"}, Subtree(categories[1], categories))
	})

	t.Run("CategorySlugDerivedFromName", func(t *testing.T) {
		require.Equal(t, "gold-jewellery", CategorySlug(categories[1]))
		require.Equal(t, "Ring-Collection", CategorySlug(categories[2]))
	})
}

func TestPrettify(t *testing.T) {
	require.Equal(t, "Gold Jewellery", Prettify("gold-jewellery"))
	require.Equal(t, "Rose Gold Rings", Prettify("jewellery/rose-gold--rings"))
	require.Equal(t, "", Prettify(""))
}

func TestLeaf(t *testing.T) {
	require.Equal(t, "gold-rings", Leaf("/jewellery/gold-rings/"))
	require.Equal(t, "rings", Leaf("rings"))
	require.Equal(t, "", Leaf(" / "))
}
