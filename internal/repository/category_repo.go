package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"inventory_ledger/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db      *sql.DB
	timeout time.Duration
	log     *logrus.Logger
}

// NewPostgresCategoryRepository bounds every statement by timeout. A zero timeout leaves the
// caller's context as is.
func NewPostgresCategoryRepository(db *sql.DB, timeout time.Duration, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:      db,
		timeout: timeout,
		log:     logger,
	}
}

func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `INSERT INTO kategorie (nazwa, opis) VALUES ($1, $2) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Description).Scan(&category.ID)
	if err != nil {
		r.log.Errorf("Failed to create category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}
	r.log.Infof("Category created successfully with ID: %d, Name: %s", category.ID, category.Name)
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `SELECT id, nazwa, opis FROM kategorie WHERE id = $1`
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name, &category.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found", id)
			return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get category by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}
	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(ctx context.Context, id int, patch domain.CategoryPatch) (*domain.Category, error) {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `
        UPDATE kategorie
        SET nazwa = COALESCE($1, nazwa), opis = COALESCE($2, opis)
        WHERE id = $3
        RETURNING id, nazwa, opis`
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, nullString(patch.Name), nullString(patch.Description), id).
		Scan(&category.ID, &category.Name, &category.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found for update", id)
			return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to update category ID %d: %v", id, err)
		return nil, fmt.Errorf("could not update category: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}
	r.log.Infof("Category updated successfully with ID: %d", id)
	return category, nil
}

func (r *postgresCategoryRepository) DeleteCategory(ctx context.Context, id int) error {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `DELETE FROM kategorie WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.log.Warnf("Failed to delete category ID %d: %v", id, err)
		return fmt.Errorf("could not delete category %d: %w", id, classifyPQError(err, domain.ErrReferentialConstraint))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting category ID %d: %v", id, err)
		return fmt.Errorf("could not confirm category deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent category ID %d", id)
		return fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}

	r.log.Infof("Category deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()
	query := `SELECT id, nazwa, opis FROM kategorie ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			r.log.Errorf("Failed to scan category row: %v", err)
			return nil, fmt.Errorf("error scanning category data: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during categories list iteration: %v", err)
		return nil, fmt.Errorf("error iterating categories: %w", classifyPQError(err, domain.ErrUnknownCategory))
	}

	r.log.Debugf("Retrieved %d categories", len(categories))
	return categories, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
