package repository

import (
	"context"

	"gorm.io/gorm"

	"reverse-market/internal/models"
)

// RequestFilter narrows request listings
type RequestFilter struct {
	Status *models.RequestStatus
	UserID *uint
}

func (r *Repository) withRequestRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("User").
		Preload("Category").
		Preload("SubCategory1").
		Preload("SubCategory2")
}

func (f RequestFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	return q
}

// CreateRequest inserts a new request
func (r *Repository) CreateRequest(ctx context.Context, req *models.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetRequestByID loads a request with its user, category path and images
func (r *Repository) GetRequestByID(ctx context.Context, id uint) (*models.Request, error) {
	var req models.Request
	err := r.withRequestRelations(r.db.WithContext(ctx)).
		Preload("Images").
		First(&req, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

// ListRequests returns one page of requests, newest first, and the filtered total
func (r *Repository) ListRequests(ctx context.Context, filter RequestFilter, page Page) ([]models.Request, int64, error) {
	var total int64
	if err := filter.apply(r.db.WithContext(ctx).Model(&models.Request{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.Request
	q := r.withRequestRelations(filter.apply(r.db.WithContext(ctx))).
		Preload("Images").
		Order("created_at DESC").
		Order("id DESC")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// CountRequestsByStatus groups a filtered request set by status
func (r *Repository) CountRequestsByStatus(ctx context.Context, filter RequestFilter) (map[models.RequestStatus]int64, error) {
	var rows []struct {
		Status models.RequestStatus
		Total  int64
	}
	err := filter.apply(r.db.WithContext(ctx).Model(&models.Request{})).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// SaveRequest persists every column of req
func (r *Repository) SaveRequest(ctx context.Context, req *models.Request) error {
	return r.db.WithContext(ctx).Omit("User", "Category", "SubCategory1", "SubCategory2", "Images").Save(req).Error
}

// DeleteRequest removes a request and its images
func (r *Repository) DeleteRequest(ctx context.Context, id uint) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		if err := tx.db.WithContext(ctx).Where("request_id = ?", id).Delete(&models.RequestImage{}).Error; err != nil {
			return err
		}
		result := tx.db.WithContext(ctx).Delete(&models.Request{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
