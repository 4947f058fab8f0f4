package repository

import (
	"context"
	"io"
	"sync"
	"testing"

	"inventory_ledger/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seedMemory(t *testing.T) (*MemoryStore, *domain.Category, *domain.Product) {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore(quietLogger())
	cat, err := store.Categories().CreateCategory(ctx, &domain.Category{Name: "Narzędzia"})
	require.NoError(t, err)
	prod, err := store.Products().CreateProduct(ctx, &domain.Product{Name: "Młotek", Quantity: 3, Price: 10, CategoryID: cat.ID})
	require.NoError(t, err)
	return store, cat, prod
}

func TestMemoryStore_CategoryCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(quietLogger())
	cats := store.Categories()

	created, err := cats.CreateCategory(ctx, &domain.Category{Name: "A", Description: "first"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	name := "B"
	updated, err := cats.UpdateCategory(ctx, created.ID, domain.CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, "first", updated.Description)

	list, err := cats.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, cats.DeleteCategory(ctx, created.ID))
	_, err = cats.GetCategoryByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, cats.DeleteCategory(ctx, created.ID), domain.ErrNotFound)
}

func TestMemoryStore_DeleteReferencedCategory(t *testing.T) {
	store, cat, prod := seedMemory(t)
	ctx := context.Background()

	err := store.Categories().DeleteCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, domain.ErrReferentialConstraint)

	require.NoError(t, store.Products().DeleteProduct(ctx, prod.ID))
	assert.NoError(t, store.Categories().DeleteCategory(ctx, cat.ID))
}

func TestMemoryStore_ProductConstraints(t *testing.T) {
	store, _, prod := seedMemory(t)
	ctx := context.Background()
	products := store.Products()

	_, err := products.CreateProduct(ctx, &domain.Product{Name: "X", CategoryID: 99})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	negative := -1
	_, err = products.UpdateProduct(ctx, prod.ID, domain.ProductPatch{Quantity: &negative})
	assert.ErrorIs(t, err, domain.ErrNegativeValue)

	current, err := products.GetProductByID(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Quantity, "failed update must not persist")

	_, err = products.UpdateProduct(ctx, 42, domain.ProductPatch{Quantity: &negative})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_SetQuantityIfUnchanged(t *testing.T) {
	store, _, prod := seedMemory(t)
	ctx := context.Background()
	products := store.Products()

	updated, err := products.SetQuantityIfUnchanged(ctx, prod.ID, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Quantity)

	_, err = products.SetQuantityIfUnchanged(ctx, prod.ID, 3, 1)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = products.SetQuantityIfUnchanged(ctx, 404, 0, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_ConcurrentCompareAndSet(t *testing.T) {
	store, _, prod := seedMemory(t)
	ctx := context.Background()
	products := store.Products()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := products.SetQuantityIfUnchanged(ctx, prod.ID, 3, 0); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Products().ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
