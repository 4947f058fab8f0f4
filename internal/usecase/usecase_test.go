package usecase

import (
	"context"
	"io"
	"testing"

	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fixture struct {
	store    *repository.MemoryStore
	tools    *domain.Category
	paint    *domain.Category
	hammer   *domain.Product
	glue     *domain.Product
	brush    *domain.Product
	products domain.ProductRepository
	cats     domain.CategoryRepository
}

// newFixture seeds two categories and three products:
// Młotek 3 x 10 (tools), Klej 8 x 2.5 (paint), Pędzel 0 x 4 (paint).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore(quietLogger())
	f := &fixture{store: store, products: store.Products(), cats: store.Categories()}

	var err error
	f.tools, err = f.cats.CreateCategory(ctx, &domain.Category{Name: "Narzędzia"})
	require.NoError(t, err)
	f.paint, err = f.cats.CreateCategory(ctx, &domain.Category{Name: "Farby"})
	require.NoError(t, err)

	f.hammer, err = f.products.CreateProduct(ctx, &domain.Product{Name: "Młotek", Quantity: 3, Price: 10, CategoryID: f.tools.ID})
	require.NoError(t, err)
	f.glue, err = f.products.CreateProduct(ctx, &domain.Product{Name: "Klej", Quantity: 8, Price: 2.5, CategoryID: f.paint.ID})
	require.NoError(t, err)
	f.brush, err = f.products.CreateProduct(ctx, &domain.Product{Name: "Pędzel", Quantity: 0, Price: 4, CategoryID: f.paint.ID})
	require.NoError(t, err)
	return f
}

func ptr[T any](v T) *T { return &v }
