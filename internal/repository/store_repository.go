package repository

import (
	"context"

	"gorm.io/gorm"

	"reverse-market/internal/models"
)

// FindStoresForRequest returns the distinct sellers subscribed to the deepest
// category level the request specifies. Only active, store-approved sellers
// with a phone number are considered.
func (r *Repository) FindStoresForRequest(ctx context.Context, req *models.Request) ([]models.User, error) {
	db := r.db.WithContext(ctx)

	q := db.Model(&models.StoreCategory{}).
		Joins("JOIN users ON users.id = store_categories.user_id").
		Where("users.user_type = ?", models.UserTypeSeller).
		Where("users.is_active = ?", true).
		Where("users.is_store_approved = ?", true).
		Where("users.phone_number IS NOT NULL AND users.phone_number <> ''")

	switch {
	case req.SubCategory2ID != nil:
		q = q.Where("store_categories.sub_category2_id = ?", *req.SubCategory2ID)
	case req.SubCategory1ID != nil:
		leaves := db.Model(&models.SubCategory2{}).
			Select("id").
			Where("sub_category1_id = ?", *req.SubCategory1ID)
		q = q.Where("store_categories.sub_category1_id = ? OR store_categories.sub_category2_id IN (?)",
			*req.SubCategory1ID, leaves)
	default:
		q = q.Where("store_categories.category_id = ?", req.CategoryID)
	}

	var userIDs []uint
	if err := q.Distinct().Pluck("store_categories.user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	var stores []models.User
	if err := db.Where("id IN ?", userIDs).Order("id").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// ReplaceStoreCategories swaps a seller's specializations for the given set
func (r *Repository) ReplaceStoreCategories(ctx context.Context, userID uint, categories []models.StoreCategory) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		if _, err := tx.DeleteStoreCategories(ctx, userID); err != nil {
			return err
		}
		if len(categories) == 0 {
			return nil
		}
		return tx.db.WithContext(ctx).Create(&categories).Error
	})
}

// DeleteStoreCategories removes all of a user's specializations and reports how many went
func (r *Repository) DeleteStoreCategories(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.StoreCategory{})
	return result.RowsAffected, result.Error
}

// GetStoreCategories loads a user's specializations with their category path
func (r *Repository) GetStoreCategories(ctx context.Context, userID uint) ([]models.StoreCategory, error) {
	var categories []models.StoreCategory
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("SubCategory1").
		Preload("SubCategory2").
		Where("user_id = ?", userID).
		Order("id").
		Find(&categories).Error
	return categories, err
}

// earliestSubmission picks the smallest non-null pending_urlN_submitted_at
// without LEAST, which SQLite lacks.
const earliestSubmission = `CASE
	WHEN pending_url1_submitted_at IS NOT NULL
		AND (pending_url2_submitted_at IS NULL OR pending_url1_submitted_at <= pending_url2_submitted_at)
		AND (pending_url3_submitted_at IS NULL OR pending_url1_submitted_at <= pending_url3_submitted_at)
		THEN pending_url1_submitted_at
	WHEN pending_url2_submitted_at IS NOT NULL
		AND (pending_url3_submitted_at IS NULL OR pending_url2_submitted_at <= pending_url3_submitted_at)
		THEN pending_url2_submitted_at
	ELSE pending_url3_submitted_at
END ASC`

// ListSellersWithPendingLinks returns sellers with a link awaiting review,
// oldest submission first
func (r *Repository) ListSellersWithPendingLinks(ctx context.Context, page Page) ([]models.User, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		return q.Where("user_type = ? AND has_pending_url_changes = ?", models.UserTypeSeller, true)
	}

	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.User{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sellers []models.User
	q := scope(r.db.WithContext(ctx)).
		Order(earliestSubmission).
		Order("id ASC")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&sellers).Error; err != nil {
		return nil, 0, err
	}
	return sellers, total, nil
}
