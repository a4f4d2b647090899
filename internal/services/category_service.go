package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
)

// CategoryService reads and maintains the three-level category tree
type CategoryService struct {
	repo *repository.Repository
}

func NewCategoryService(repo *repository.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Tree returns active categories with their active subcategories
func (s *CategoryService) Tree(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetCategoryTree(ctx)
}

// ActiveCategories returns the active top-level categories
func (s *CategoryService) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListActiveCategories(ctx)
}

// ValidatePath checks that sub1 belongs to the category and sub2 to sub1.
// sub2 without sub1 is accepted when its parent lies under the category.
func (s *CategoryService) ValidatePath(ctx context.Context, categoryID uint, sub1ID, sub2ID *uint) error {
	if categoryID == 0 {
		return ErrInvalidCategoryPath
	}
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return pathError(err)
	}

	if sub1ID != nil {
		sub1, err := s.repo.GetSubCategory1(ctx, *sub1ID)
		if err != nil {
			return pathError(err)
		}
		if sub1.CategoryID != categoryID {
			return ErrInvalidCategoryPath
		}
	}

	if sub2ID != nil {
		sub2, err := s.repo.GetSubCategory2(ctx, *sub2ID)
		if err != nil {
			return pathError(err)
		}
		if sub1ID != nil && sub2.SubCategory1ID != *sub1ID {
			return ErrInvalidCategoryPath
		}
		if sub2.SubCategory1 == nil || sub2.SubCategory1.CategoryID != categoryID {
			return ErrInvalidCategoryPath
		}
	}
	return nil
}

func pathError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidCategoryPath
	}
	return err
}

// CategoryInput is the admin form for any category level
type CategoryInput struct {
	ParentID    uint
	Name        string
	Description string
	Image       string
	SortOrder   int
}

func (in CategoryInput) name() (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", invalid("name", "required")
	}
	if len([]rune(name)) > 100 {
		return "", invalid("name", "must be at most 100 characters")
	}
	return name, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name, err := in.name()
	if err != nil {
		return nil, err
	}
	c := &models.Category{
		Name:        name,
		Description: in.Description,
		Image:       in.Image,
		IsActive:    true,
		SortOrder:   in.SortOrder,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// CreateSubCategory1 adds a second-level category under in.ParentID
func (s *CategoryService) CreateSubCategory1(ctx context.Context, in CategoryInput) (*models.SubCategory1, error) {
	name, err := in.name()
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCategory(ctx, in.ParentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	sub := &models.SubCategory1{CategoryID: in.ParentID, Name: name, IsActive: true}
	if err := s.repo.CreateSubCategory1(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subcategory: %w", err)
	}
	return sub, nil
}

// CreateSubCategory2 adds a leaf category under in.ParentID
func (s *CategoryService) CreateSubCategory2(ctx context.Context, in CategoryInput) (*models.SubCategory2, error) {
	name, err := in.name()
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetSubCategory1(ctx, in.ParentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	sub := &models.SubCategory2{SubCategory1ID: in.ParentID, Name: name, IsActive: true}
	if err := s.repo.CreateSubCategory2(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subcategory: %w", err)
	}
	return sub, nil
}
