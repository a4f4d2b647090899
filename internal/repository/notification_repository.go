package repository

import (
	"context"
	"time"

	"reverse-market/internal/models"
)

func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// MarkNotificationDelivery records which external channels reached the user
func (r *Repository) MarkNotificationDelivery(ctx context.Context, id uint, emailSent, whatsAppSent bool) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_sent":    emailSent,
			"whatsapp_sent": whatsAppSent,
		}).Error
}

// ListNotifications returns a user's inbox, newest first
func (r *Repository) ListNotifications(ctx context.Context, userID uint, page Page) ([]models.Notification, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) CountUnreadNotifications(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead marks one of the user's notifications read. Other
// users' notifications are reported as not found.
func (r *Repository) MarkNotificationRead(ctx context.Context, userID, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkAllNotificationsRead(ctx context.Context, userID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}

// DeleteReadNotificationsBefore purges read notifications created before cutoff
func (r *Repository) DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
