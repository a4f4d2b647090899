package repository

import (
	"context"

	"gorm.io/gorm"

	"reverse-market/internal/models"
)

// GetCategoryTree returns active categories with their active subcategories
func (r *Repository) GetCategoryTree(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("SubCategories", func(q *gorm.DB) *gorm.DB {
			return q.Where("is_active = ?", true).Order("name")
		}).
		Preload("SubCategories.SubCategories", func(q *gorm.DB) *gorm.DB {
			return q.Where("is_active = ?", true).Order("name")
		}).
		Where("is_active = ?", true).
		Order("sort_order").
		Order("name").
		Find(&categories).Error
	return categories, err
}

// ListActiveCategories returns active top-level categories only
func (r *Repository) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("sort_order").Order("name").Find(&categories).Error
	return categories, err
}

func (r *Repository) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *Repository) GetSubCategory1(ctx context.Context, id uint) (*models.SubCategory1, error) {
	var s models.SubCategory1
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// GetSubCategory2 loads a leaf category together with its parent SubCategory1
func (r *Repository) GetSubCategory2(ctx context.Context, id uint) (*models.SubCategory2, error) {
	var s models.SubCategory2
	if err := r.db.WithContext(ctx).Preload("SubCategory1").First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) CreateSubCategory1(ctx context.Context, s *models.SubCategory1) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repository) CreateSubCategory2(ctx context.Context, s *models.SubCategory2) error {
	return r.db.WithContext(ctx).Create(s).Error
}
