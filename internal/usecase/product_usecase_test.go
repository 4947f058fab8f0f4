package usecase

import (
	"context"
	"testing"

	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductUseCase_CreateValidation(t *testing.T) {
	f := newFixture(t)
	uc := NewProductUseCase(f.products, f.cats, quietLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		product domain.Product
		want    error
	}{
		{"Blank name", domain.Product{Name: " ", CategoryID: f.tools.ID}, domain.ErrEmptyName},
		{"Negative quantity", domain.Product{Name: "A", Quantity: -1, CategoryID: f.tools.ID}, domain.ErrNegativeValue},
		{"Negative price", domain.Product{Name: "A", Price: -0.01, CategoryID: f.tools.ID}, domain.ErrNegativeValue},
		{"Unknown category", domain.Product{Name: "A", CategoryID: 999}, domain.ErrUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.product
			_, err := uc.CreateProduct(ctx, &p)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := f.products.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3, "rejected products must not be stored")

	created, err := uc.CreateProduct(ctx, &domain.Product{Name: " Wiertarka ", Quantity: 1, Price: 199, CategoryID: f.tools.ID})
	require.NoError(t, err)
	assert.Equal(t, "Wiertarka", created.Name)
}

func TestProductUseCase_GetJoinsCategory(t *testing.T) {
	f := newFixture(t)
	uc := NewProductUseCase(f.products, f.cats, quietLogger())

	view, err := uc.GetProductByID(context.Background(), f.glue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Farby", view.CategoryName)
	assert.Equal(t, 20.0, view.StockValue)

	_, err = uc.GetProductByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_Update(t *testing.T) {
	f := newFixture(t)
	uc := NewProductUseCase(f.products, f.cats, quietLogger())
	ctx := context.Background()

	updated, err := uc.UpdateProduct(ctx, f.hammer.ID, domain.ProductPatch{Price: ptr(12.5), CategoryID: ptr(f.paint.ID)})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.Price)
	assert.Equal(t, f.paint.ID, updated.CategoryID)

	_, err = uc.UpdateProduct(ctx, f.hammer.ID, domain.ProductPatch{CategoryID: ptr(999)})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	_, err = uc.UpdateProduct(ctx, f.hammer.ID, domain.ProductPatch{Quantity: ptr(-2)})
	assert.ErrorIs(t, err, domain.ErrNegativeValue)

	unchanged, err := uc.UpdateProduct(ctx, f.hammer.ID, domain.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, 12.5, unchanged.Price)
}

func TestProductUseCase_Delete(t *testing.T) {
	f := newFixture(t)
	uc := NewProductUseCase(f.products, f.cats, quietLogger())
	ctx := context.Background()

	require.NoError(t, uc.DeleteProduct(ctx, f.brush.ID))
	assert.ErrorIs(t, uc.DeleteProduct(ctx, f.brush.ID), domain.ErrNotFound)
	assert.True(t, domain.IsValidation(uc.DeleteProduct(ctx, -1)))
}

func TestProductUseCase_List(t *testing.T) {
	f := newFixture(t)
	uc := NewProductUseCase(f.products, f.cats, quietLogger())
	ctx := context.Background()

	names := func(page *ProductPage) []string {
		out := []string{}
		for _, item := range page.Items {
			out = append(out, item.Name)
		}
		return out
	}

	tests := []struct {
		name      string
		query     ProductQuery
		wantNames []string
		wantTotal int
	}{
		{"Default sort by name", ProductQuery{}, []string{"Klej", "Młotek", "Pędzel"}, 3},
		{"Value descending", ProductQuery{Sort: "value", Descending: true}, []string{"Młotek", "Klej", "Pędzel"}, 3},
		{"Search is case-insensitive", ProductQuery{Search: "KLE"}, []string{"Klej"}, 1},
		{"Category filter", ProductQuery{CategoryID: ptr(f.paint.ID), Sort: "quantity"}, []string{"Pędzel", "Klej"}, 2},
		{"Paging", ProductQuery{Limit: 1, Offset: 1}, []string{"Młotek"}, 3},
		{"Offset past end", ProductQuery{Offset: 10}, []string{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := uc.ListProducts(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, names(page))
			assert.Equal(t, tt.wantTotal, page.Total)
		})
	}

	_, err := uc.ListProducts(ctx, ProductQuery{Sort: "colour"})
	assert.True(t, domain.IsValidation(err))
}

func TestProductUseCase_ListToleratesDanglingCategory(t *testing.T) {
	f := newFixture(t)
	uc := NewProductUseCase(f.products, staleCategories{f.cats}, quietLogger())

	page, err := uc.ListProducts(context.Background(), ProductQuery{})
	require.NoError(t, err)
	for _, item := range page.Items {
		assert.Equal(t, report.UnknownCategory, item.CategoryName)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, DefaultPageSize, 0},
		{-5, -1, DefaultPageSize, 0},
		{500, 3, MaxPageSize, 3},
		{25, 10, 25, 10},
	}
	for _, tt := range tests {
		limit, offset := clampPage(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.wantOffset, offset)
	}
}

// staleCategories reports no categories, as if every referenced row had vanished.
type staleCategories struct {
	domain.CategoryRepository
}

func (staleCategories) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{}, nil
}
