package repository

import (
	"context"

	"gorm.io/gorm"

	"reverse-market/internal/models"
)

// CreateUser inserts a new account
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID loads a user without relations
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserWithStoreCategories loads a user and their category specializations
func (r *Repository) GetUserWithStoreCategories(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("StoreCategories", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("StoreCategories.Category").
		Preload("StoreCategories.SubCategory1").
		Preload("StoreCategories.SubCategory2").
		First(&user, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByPhone looks an account up by its login phone number
func (r *Repository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// SaveUser persists every column of user
func (r *Repository) SaveUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("StoreCategories").Save(user).Error
}
