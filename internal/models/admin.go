package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB for PostgreSQL JSON support
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source %T", value)
	}
	return json.Unmarshal(bytes, j)
}

// Admin roles
const (
	AdminRoleSuper     = "SUPER_ADMIN"
	AdminRoleModerator = "MODERATOR"
)

// AdminUser grants a user access to the admin area
type AdminUser struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        string    `gorm:"size:20;not null" json:"role"`
	Permissions JSONB     `gorm:"type:jsonb" json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// AdminLog records admin actions for audit trail
type AdminLog struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AdminID      uint       `gorm:"not null;index" json:"admin_id"`
	Admin        *AdminUser `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Action       string     `gorm:"size:100;not null" json:"action"`
	ResourceType string     `gorm:"size:50" json:"resource_type"`
	ResourceID   *uint      `json:"resource_id"`
	Details      JSONB      `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}
