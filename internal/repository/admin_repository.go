package repository

import (
	"context"

	"reverse-market/internal/models"
)

func (r *Repository) GetAdminByUserID(ctx context.Context, userID uint) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&admin).Error; err != nil {
		return nil, notFound(err)
	}
	return &admin, nil
}

func (r *Repository) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *Repository) CreateAdminLog(ctx context.Context, entry *models.AdminLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListAdminLogs returns admin activity, newest first
func (r *Repository) ListAdminLogs(ctx context.Context, limit, offset int) ([]models.AdminLog, error) {
	var logs []models.AdminLog
	err := r.db.WithContext(ctx).
		Preload("Admin").
		Preload("Admin.User").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
