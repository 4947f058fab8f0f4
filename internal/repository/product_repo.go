package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory_ledger/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresProductRepository struct {
	db      *sql.DB
	timeout time.Duration
	log     *logrus.Logger
}

// NewPostgresProductRepository bounds every statement by timeout. A zero timeout leaves the
// caller's context as is.
func NewPostgresProductRepository(db *sql.DB, timeout time.Duration, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:      db,
		timeout: timeout,
		log:     logger,
	}
}

const productColumns = `id, nazwa, liczba, cena, kategoria_id`

func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	if err := s.Scan(&product.ID, &product.Name, &product.Quantity, &product.Price, &product.CategoryID); err != nil {
		return nil, err
	}
	return product, nil
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `
        INSERT INTO produkty (nazwa, liczba, cena, kategoria_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	err := r.db.QueryRowContext(ctx, query, product.Name, product.Quantity, product.Price, product.CategoryID).Scan(&product.ID)
	if err != nil {
		r.log.Errorf("Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}
	r.log.Infof("Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return product, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `SELECT ` + productColumns + ` FROM produkty WHERE id = $1`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}
	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, id int, patch domain.ProductPatch) (*domain.Product, error) {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	if patch.IsEmpty() {
		r.log.Infof("Repository: No fields provided for product update ID %d. Returning current product.", id)
		return r.GetProductByID(ctx, id)
	}

	setClauses := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("nazwa", *patch.Name)
	}
	if patch.Quantity != nil {
		add("liczba", *patch.Quantity)
	}
	if patch.Price != nil {
		add("cena", *patch.Price)
	}
	if patch.CategoryID != nil {
		add("kategoria_id", *patch.CategoryID)
	}
	args = append(args, id)
	query := "UPDATE produkty SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", len(args)) + productColumns

	r.log.Debugf("Repository: Executing partial update query for ID %d: %s with args: %v", id, query, args)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %d not found for update", id)
			return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to execute partial update for product ID %d: %v", id, err)
		return nil, fmt.Errorf("could not update product: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}

	r.log.Infof("Repository: Partial update successful for product ID %d", id)
	return product, nil
}

func (r *postgresProductRepository) SetQuantityIfUnchanged(ctx context.Context, id, expected, newQuantity int) (*domain.Product, error) {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `UPDATE produkty SET liczba = $1 WHERE id = $2 AND liczba = $3 RETURNING ` + productColumns
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, newQuantity, id, expected))
	if err == nil {
		r.log.Infof("Repository: Quantity of product %d changed %d -> %d", id, expected, newQuantity)
		return product, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.log.Errorf("Repository: Conditional quantity update failed for product %d: %v", id, err)
		return nil, fmt.Errorf("could not update product quantity: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}

	// No row matched: either the product is gone or its quantity moved.
	if _, getErr := r.GetProductByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	r.log.Warnf("Repository: Quantity of product %d is no longer %d", id, expected)
	return nil, fmt.Errorf("product %d quantity changed from %d: %w", id, expected, domain.ErrConflict)
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id int) error {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `DELETE FROM produkty WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.log.Errorf("Failed to delete product ID %d: %v", id, err)
		return fmt.Errorf("could not delete product: %w", classifyPQError(err, domain.ErrReferentialConstraint))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting product ID %d: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %d", id)
		return fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	r.log.Infof("Product deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `SELECT ` + productColumns + ` FROM produkty ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list products: %v", err)
		return nil, fmt.Errorf("could not list products: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, *product)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during products list iteration: %v", err)
		return nil, fmt.Errorf("error iterating products: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}
	r.log.Debugf("Retrieved %d products", len(products))
	return products, nil
}
