package usecase

import (
	"context"
	"fmt"

	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/report"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ProductQuery selects, orders and pages the product list.
type ProductQuery struct {
	Search     string
	CategoryID *int
	Sort       string
	Descending bool
	Limit      int
	Offset     int
}

// ProductPage is one page of the joined product list. Total counts the matches before
// paging.
type ProductPage struct {
	Items  []domain.ProductView `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

type ProductUseCase interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int) (*domain.ProductView, error)
	UpdateProduct(ctx context.Context, id int, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int) error
	ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error)
}

type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		log:          logger,
	}
}

func (uc *productUseCase) lookup(ctx context.Context) (domain.CategoryLookup, error) {
	categories, err := uc.categoryRepo.ListCategories(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load categories: %v", err)
		return nil, fmt.Errorf("could not load categories: %w", err)
	}
	return domain.NewCategoryLookup(categories), nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	lookup, err := uc.lookup(ctx)
	if err != nil {
		return nil, err
	}
	valid, err := domain.ValidateProduct(product.Name, product.Quantity, product.Price, product.CategoryID, lookup.IDs())
	if err != nil {
		uc.log.Warnf("Use Case: Rejected product '%s': %v", product.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to create product '%s'", valid.Name)
	createdProduct, err := uc.productRepo.CreateProduct(ctx, &valid)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", valid.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %d", createdProduct.Name, createdProduct.ID)
	return createdProduct, nil
}

func (uc *productUseCase) GetProductByID(ctx context.Context, id int) (*domain.ProductView, error) {
	if err := validateID("product id", id); err != nil {
		uc.log.Warnf("Use Case: Attempted to get product with invalid ID: %d", id)
		return nil, err
	}

	product, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %d: %v", id, err)
		return nil, err
	}
	lookup, err := uc.lookup(ctx)
	if err != nil {
		return nil, err
	}
	view := report.Join([]domain.Product{*product}, lookup)[0]
	return &view, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id int, patch domain.ProductPatch) (*domain.Product, error) {
	if err := validateID("product id", id); err != nil {
		uc.log.Warnf("Use Case: Attempted update with invalid product ID: %d", id)
		return nil, err
	}

	current, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Product ID %d not found for update: %v", id, err)
		return nil, err
	}
	if patch.IsEmpty() {
		uc.log.Infof("Use Case: Update for product ID %d carries no fields", id)
		return current, nil
	}

	merged := patch.Apply(*current)
	// An untouched category id is kept even when it no longer resolves.
	known := []int{merged.CategoryID}
	if patch.CategoryID != nil {
		lookup, err := uc.lookup(ctx)
		if err != nil {
			return nil, err
		}
		known = lookup.IDs()
	}
	valid, err := domain.ValidateProduct(merged.Name, merged.Quantity, merged.Price, merged.CategoryID, known)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected update for product ID %d: %v", id, err)
		return nil, err
	}
	if patch.Name != nil {
		patch.Name = &valid.Name
	}

	uc.log.Infof("Use Case: Attempting partial update for product ID %d", id)
	updatedProduct, err := uc.productRepo.UpdateProduct(ctx, id, patch)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed partial update for product ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product updated successfully for ID %d", updatedProduct.ID)
	return updatedProduct, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int) error {
	if err := validateID("product id", id); err != nil {
		uc.log.Warnf("Use Case: Attempted delete with invalid product ID: %d", id)
		return err
	}
	uc.log.Infof("Use Case: Attempting to delete product ID %d", id)
	if err := uc.productRepo.DeleteProduct(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete product ID %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Product deleted successfully for ID %d", id)
	return nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	field, err := report.ParseSortField(query.Sort)
	if err != nil {
		return nil, &domain.ValidationError{Field: "sort", Err: err}
	}
	limit, offset := clampPage(query.Limit, query.Offset)

	products, err := uc.productRepo.ListProducts(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, fmt.Errorf("could not retrieve products: %w", err)
	}
	lookup, err := uc.lookup(ctx)
	if err != nil {
		return nil, err
	}

	matched := report.Search(products, query.Search)
	if query.CategoryID != nil {
		filtered := matched[:0:0]
		for _, p := range matched {
			if p.CategoryID == *query.CategoryID {
				filtered = append(filtered, p)
			}
		}
		matched = filtered
	}
	matched = report.SortBy(matched, field, query.Descending)

	total := len(matched)
	start := min(offset, total)
	end := min(start+limit, total)

	uc.log.Infof("Use Case: Retrieved %d of %d products (limit: %d, offset: %d)", end-start, total, limit, offset)
	return &ProductPage{
		Items:  report.Join(matched[start:end], lookup),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
