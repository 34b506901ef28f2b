package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitPrice_Fixed(t *testing.T) {
	p := Fixed(decimal.RequireFromString("50000"))
	assert.True(t, p.UnitPrice().Equal(decimal.RequireFromString("50000")))
}

func TestUnitPrice_RangeUsesFloor(t *testing.T) {
	p := Range(decimal.RequireFromString("20000"), decimal.RequireFromString("80000"))
	assert.True(t, p.UnitPrice().Equal(decimal.RequireFromString("20000")),
		"range-priced entities must charge the range minimum")
}

func TestUnitPrice_PerUnit(t *testing.T) {
	p := PerUnit(decimal.RequireFromString("500"))
	assert.True(t, p.UnitPrice().Equal(decimal.RequireFromString("500")))
}

func TestRegistry_CoversAllCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 12)

	for _, c := range cats {
		schema, err := SchemaFor(c)
		require.NoError(t, err, "category %s", c)
		assert.Equal(t, c, schema.Category)
		assert.NotEmpty(t, schema.Table)
		assert.NotEmpty(t, schema.DisplayName)
	}
}

func TestRegistry_PriceKinds(t *testing.T) {
	for category, want := range map[Category]PriceKind{
		CategoryVenue:      PriceFixed,
		CategoryBridalWear: PriceRange,
		CategoryGroomWear:  PriceRange,
		CategoryCatering:   PricePerUnit,
		CategoryDJ:         PriceFixed,
	} {
		schema, err := SchemaFor(category)
		require.NoError(t, err)
		assert.Equal(t, want, schema.PriceKind, "category %s", category)
	}
}

func TestSchemaFor_UnknownCategory(t *testing.T) {
	_, err := SchemaFor("spaceship")

	var icErr *InvalidCategoryError
	require.ErrorAs(t, err, &icErr)
	assert.Equal(t, "spaceship", icErr.Category)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("wedding_cake")
	require.NoError(t, err)
	assert.Equal(t, CategoryWeddingCake, c)

	_, err = ParseCategory("")
	var icErr *InvalidCategoryError
	require.ErrorAs(t, err, &icErr)
}

func TestVendorSnapshot(t *testing.T) {
	e := Entity{
		Vendor: &Vendor{ID: uuid.New(), Name: "Lotus Events", Email: "lotus@example.com"},
	}
	name, email := e.VendorSnapshot()
	assert.Equal(t, "Lotus Events", name)
	assert.Equal(t, "lotus@example.com", email)
}

func TestVendorSnapshot_MissingVendor(t *testing.T) {
	e := Entity{}
	name, email := e.VendorSnapshot()
	assert.Equal(t, "Unknown Vendor", name)
	assert.Empty(t, email)
}

func TestReferenceString(t *testing.T) {
	ref := Reference{Category: CategoryVenue, ID: 42}
	assert.Equal(t, "venue#42", ref.String())
}
