package domain

import "context"

// ProductRepository is the store boundary for the `produkty` collection.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id int) (*Product, error)
	UpdateProduct(ctx context.Context, id int, patch ProductPatch) (*Product, error)
	DeleteProduct(ctx context.Context, id int) error
	ListProducts(ctx context.Context) ([]Product, error)

	// SetQuantityIfUnchanged writes newQuantity only while the stored quantity still
	// equals expected. It returns ErrConflict when another writer got there first.
	SetQuantityIfUnchanged(ctx context.Context, id, expected, newQuantity int) (*Product, error)
}
