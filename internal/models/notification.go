package models

import "time"

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotificationRequestApproved    NotificationType = "RequestApproved"
	NotificationRequestRejected    NotificationType = "RequestRejected"
	NotificationNewRequestForStore NotificationType = "NewRequestForStore"
	NotificationStoreLinkApproved  NotificationType = "StoreLinkApproved"
	NotificationStoreLinkRejected  NotificationType = "StoreLinkRejected"
	NotificationStoreApproved      NotificationType = "StoreApproved"
	NotificationGeneral            NotificationType = "General"
)

// Notification is a message addressed to one user. The row itself is the
// in-app channel; email and WhatsApp delivery are recorded on it.
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UserID       uint             `gorm:"not null;index" json:"user_id"`
	User         *User            `gorm:"foreignKey:UserID" json:"-"`
	Title        string           `gorm:"size:200;not null" json:"title"`
	Message      string           `gorm:"type:text;not null" json:"message"`
	Type         NotificationType `gorm:"size:50;not null;index" json:"type"`
	RequestID    *uint            `gorm:"index" json:"request_id,omitempty"`
	Link         *string          `gorm:"size:500" json:"link,omitempty"`
	IsRead       bool             `gorm:"default:false;index" json:"is_read"`
	ReadAt       *time.Time       `json:"read_at,omitempty"`
	IsFromAdmin  bool             `gorm:"default:false" json:"is_from_admin"`
	AdminID      *uint            `json:"admin_id,omitempty"`
	EmailSent    bool             `gorm:"default:false" json:"email_sent"`
	WhatsAppSent bool             `gorm:"column:whatsapp_sent;default:false" json:"whatsapp_sent"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
