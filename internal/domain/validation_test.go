package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCategory(t *testing.T) {
	cat, err := ValidateCategory("  Narzędzia ", "ręczne")
	require.NoError(t, err)
	assert.Equal(t, "Narzędzia", cat.Name)
	assert.Equal(t, "ręczne", cat.Description)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := ValidateCategory(name, "")
		assert.ErrorIs(t, err, ErrEmptyName, "name %q", name)
		assert.True(t, IsValidation(err))
	}

	for _, name := range []string{"a\r\nb", "Farby\tolejne", "x\u0085y"} {
		_, err := ValidateCategory(name, "")
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
		assert.True(t, IsValidation(err))
	}
}

func TestValidateProduct(t *testing.T) {
	known := []int{1, 2, 7}

	testCases := []struct {
		name          string
		productName   string
		quantity      int
		price         float64
		categoryID    int
		expectedErr   error
		expectedField string
	}{
		{name: "Valid product", productName: "Widget", quantity: 10, price: 2.5, categoryID: 1},
		{name: "Zero quantity and price are allowed", productName: "Sample", quantity: 0, price: 0, categoryID: 7},
		{name: "Blank name", productName: "  ", quantity: 1, price: 1, categoryID: 1, expectedErr: ErrEmptyName, expectedField: "name"},
		{name: "Negative quantity", productName: "Widget", quantity: -1, price: 1, categoryID: 1, expectedErr: ErrNegativeValue, expectedField: "quantity"},
		{name: "Quantity at the column limit", productName: "Widget", quantity: MaxQuantity, price: 1, categoryID: 1},
		{name: "Quantity past the column limit", productName: "Widget", quantity: 3_000_000_000, price: 1, categoryID: 1, expectedErr: ErrQuantityOverflow, expectedField: "quantity"},
		{name: "Name with line break", productName: "a\r\nb", quantity: 1, price: 1, categoryID: 1, expectedErr: ErrInvalidName, expectedField: "name"},
		{name: "Name with NUL", productName: "a\x00b", quantity: 1, price: 1, categoryID: 1, expectedErr: ErrInvalidName, expectedField: "name"},
		{name: "Negative price", productName: "Widget", quantity: 1, price: -0.01, categoryID: 1, expectedErr: ErrNegativeValue, expectedField: "price"},
		{name: "NaN price", productName: "Widget", quantity: 1, price: math.NaN(), categoryID: 1, expectedErr: ErrNegativeValue, expectedField: "price"},
		{name: "Unknown category", productName: "Widget", quantity: 1, price: 1, categoryID: 3, expectedErr: ErrUnknownCategory, expectedField: "category_id"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ValidateProduct(tc.productName, tc.quantity, tc.price, tc.categoryID, known)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tc.expectedField, ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.quantity, p.Quantity)
			assert.Equal(t, tc.categoryID, p.CategoryID)
		})
	}
}

func TestValidateProduct_CategoryMembership(t *testing.T) {
	known := []int{2, 4, 6, 8}
	for id := -2; id <= 10; id++ {
		_, err := ValidateProduct("Widget", 1, 1, id, known)
		member := id == 2 || id == 4 || id == 6 || id == 8
		if member {
			assert.NoError(t, err, "id %d", id)
		} else {
			assert.ErrorIs(t, err, ErrUnknownCategory, "id %d", id)
		}
	}

	_, err := ValidateProduct("Widget", 1, 1, 1, nil)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestPatches(t *testing.T) {
	name := " Gwoździe "
	qty := 12
	p := ProductPatch{Name: &name, Quantity: &qty}.Apply(Product{ID: 4, Name: "x", Quantity: 1, Price: 3, CategoryID: 2})
	assert.Equal(t, Product{ID: 4, Name: "Gwoździe", Quantity: 12, Price: 3, CategoryID: 2}, p)
	assert.True(t, ProductPatch{}.IsEmpty())

	desc := "opis"
	c := CategoryPatch{Description: &desc}.Apply(Category{ID: 1, Name: "A"})
	assert.Equal(t, Category{ID: 1, Name: "A", Description: "opis"}, c)
	assert.False(t, CategoryPatch{Description: &desc}.IsEmpty())
}

func TestCategoryLookup(t *testing.T) {
	lookup := NewCategoryLookup([]Category{{ID: 1, Name: "Narzędzia"}, {ID: 3, Name: "Farby"}})

	name, ok := lookup.Name(3)
	assert.True(t, ok)
	assert.Equal(t, "Farby", name)

	_, ok = lookup.Name(2)
	assert.False(t, ok)
	assert.ElementsMatch(t, []int{1, 3}, lookup.IDs())
}
