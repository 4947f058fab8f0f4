package usecase

import (
	"context"
	"errors"
	"fmt"

	"inventory_ledger/internal/domain"

	"github.com/sirupsen/logrus"
)

var errInvalidID = errors.New("must be a positive integer")

func validateID(field string, id int) error {
	if id <= 0 {
		return &domain.ValidationError{Field: field, Err: errInvalidID}
	}
	return nil
}

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: repo,
		log:          logger,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	valid, err := domain.ValidateCategory(category.Name, category.Description)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected category '%s': %v", category.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to create category with name '%s'", valid.Name)
	createdCategory, err := uc.categoryRepo.CreateCategory(ctx, &valid)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", valid.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category '%s' created successfully with ID %d", createdCategory.Name, createdCategory.ID)
	return createdCategory, nil
}

func (uc *categoryUseCase) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	if err := validateID("category id", id); err != nil {
		uc.log.Warnf("Use Case: Attempted to get category with invalid ID: %d", id)
		return nil, err
	}

	category, err := uc.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get category ID %d: %v", id, err)
		return nil, err
	}
	return category, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, id int, patch domain.CategoryPatch) (*domain.Category, error) {
	if err := validateID("category id", id); err != nil {
		uc.log.Warnf("Use Case: Attempted update with invalid ID: %d", id)
		return nil, err
	}
	if patch.Name != nil {
		desc := ""
		if patch.Description != nil {
			desc = *patch.Description
		}
		valid, err := domain.ValidateCategory(*patch.Name, desc)
		if err != nil {
			uc.log.Warnf("Use Case: Attempted update for ID %d with empty name", id)
			return nil, err
		}
		patch.Name = &valid.Name
	}

	uc.log.Infof("Use Case: Attempting to update category ID %d", id)
	updatedCategory, err := uc.categoryRepo.UpdateCategory(ctx, id, patch)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update category ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category updated successfully for ID %d", updatedCategory.ID)
	return updatedCategory, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id int) error {
	if err := validateID("category id", id); err != nil {
		uc.log.Warnf("Use Case: Attempted delete with invalid ID: %d", id)
		return err
	}

	uc.log.Infof("Use Case: Attempting to delete category ID %d", id)
	err := uc.categoryRepo.DeleteCategory(ctx, id)
	if errors.Is(err, domain.ErrReferentialConstraint) {
		uc.log.Warnf("Use Case: Category ID %d still has products", id)
		return fmt.Errorf("category %d has products, remove or reassign them first: %w", id, err)
	}
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category ID %d: %v", id, err)
		return err
	}

	uc.log.Infof("Use Case: Category deleted successfully for ID %d", id)
	return nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := uc.categoryRepo.ListCategories(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return nil, fmt.Errorf("could not retrieve categories: %w", err)
	}

	uc.log.Infof("Use Case: Retrieved %d categories", len(categories))
	return categories, nil
}
