package domain

import "context"

// CategoryRepository is the store boundary for the `kategorie` collection.
// DeleteCategory fails with ErrReferentialConstraint while products still reference
// the category; implementations never cascade.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id int) (*Category, error)
	UpdateCategory(ctx context.Context, id int, patch CategoryPatch) (*Category, error)
	DeleteCategory(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]Category, error)
}
