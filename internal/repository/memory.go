package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"inventory_ledger/internal/domain"

	"github.com/sirupsen/logrus"
)

// MemoryStore keeps categories and products in process memory. It enforces the same
// constraints the postgres schema does: foreign keys, restrict-delete and non-negative
// quantity and price.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[int]domain.Category
	products   map[int]domain.Product
	nextCatID  int
	nextProdID int
	log        *logrus.Logger
}

func NewMemoryStore(logger *logrus.Logger) *MemoryStore {
	return &MemoryStore{
		categories: make(map[int]domain.Category),
		products:   make(map[int]domain.Product),
		nextCatID:  1,
		nextProdID: 1,
		log:        logger,
	}
}

// Categories returns the store as a domain.CategoryRepository.
func (s *MemoryStore) Categories() domain.CategoryRepository { return memoryCategories{s} }

// Products returns the store as a domain.ProductRepository.
func (s *MemoryStore) Products() domain.ProductRepository { return memoryProducts{s} }

type memoryCategories struct{ s *MemoryStore }

type memoryProducts struct{ s *MemoryStore }

func (r memoryCategories) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *category
	c.ID = s.nextCatID
	s.nextCatID++
	s.categories[c.ID] = c
	s.log.Infof("Category created successfully with ID: %d, Name: %s", c.ID, c.Name)
	category.ID = c.ID
	return &c, nil
}

func (r memoryCategories) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (r memoryCategories) UpdateCategory(ctx context.Context, id int, patch domain.CategoryPatch) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	c = patch.Apply(c)
	s.categories[id] = c
	s.log.Infof("Category updated successfully with ID: %d", id)
	return &c, nil
}

func (r memoryCategories) DeleteCategory(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	for _, p := range s.products {
		if p.CategoryID == id {
			s.log.Warnf("Refusing to delete category %d: product %d still references it", id, p.ID)
			return fmt.Errorf("could not delete category %d: %w", id, domain.ErrReferentialConstraint)
		}
	}
	delete(s.categories, id)
	s.log.Infof("Category deleted successfully with ID: %d", id)
	return nil
}

func (r memoryCategories) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) checkProduct(p domain.Product) error {
	if p.Quantity < 0 || p.Price < 0 {
		return fmt.Errorf("product %q: %w", p.Name, domain.ErrNegativeValue)
	}
	if _, ok := s.categories[p.CategoryID]; !ok {
		return fmt.Errorf("category %d: %w", p.CategoryID, domain.ErrUnknownCategory)
	}
	return nil
}

func (r memoryProducts) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkProduct(*product); err != nil {
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	p := *product
	p.ID = s.nextProdID
	s.nextProdID++
	s.products[p.ID] = p
	s.log.Infof("Product created successfully with ID: %d, Name: %s", p.ID, p.Name)
	product.ID = p.ID
	return &p, nil
}

func (r memoryProducts) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (r memoryProducts) UpdateProduct(ctx context.Context, id int, patch domain.ProductPatch) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	p = patch.Apply(p)
	if err := s.checkProduct(p); err != nil {
		return nil, fmt.Errorf("could not update product: %w", err)
	}
	s.products[id] = p
	s.log.Infof("Repository: Partial update successful for product ID %d", id)
	return &p, nil
}

func (r memoryProducts) SetQuantityIfUnchanged(ctx context.Context, id, expected, newQuantity int) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	if p.Quantity != expected {
		return nil, fmt.Errorf("product %d quantity changed from %d: %w", id, expected, domain.ErrConflict)
	}
	if newQuantity < 0 {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNegativeValue)
	}
	p.Quantity = newQuantity
	s.products[id] = p
	return &p, nil
}

func (r memoryProducts) DeleteProduct(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	delete(s.products, id)
	s.log.Infof("Product deleted successfully with ID: %d", id)
	return nil
}

func (r memoryProducts) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
