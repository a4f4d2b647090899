package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the moderation state of a buyer request
type RequestStatus int

const (
	RequestStatusPending   RequestStatus = 1
	RequestStatusApproved  RequestStatus = 2
	RequestStatusRejected  RequestStatus = 3
	RequestStatusPostponed RequestStatus = 4
)

// IsValid reports whether s is one of the four defined states
func (s RequestStatus) IsValid() bool {
	return s >= RequestStatusPending && s <= RequestStatusPostponed
}

func (s RequestStatus) String() string {
	switch s {
	case RequestStatusPending:
		return "Pending"
	case RequestStatusApproved:
		return "Approved"
	case RequestStatusRejected:
		return "Rejected"
	case RequestStatusPostponed:
		return "Postponed"
	default:
		return "Unknown"
	}
}

// Request is a buyer's posted purchase need
type Request struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	UserID         uint                `gorm:"not null;index" json:"user_id"`
	User           *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title          string              `gorm:"size:200;not null" json:"title"`
	Description    string              `gorm:"type:text" json:"description"`
	CategoryID     uint                `gorm:"not null;index" json:"category_id"`
	Category       *Category           `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SubCategory1ID *uint               `gorm:"column:sub_category1_id;index" json:"sub_category1_id,omitempty"`
	SubCategory1   *SubCategory1       `gorm:"foreignKey:SubCategory1ID" json:"sub_category1,omitempty"`
	SubCategory2ID *uint               `gorm:"column:sub_category2_id;index" json:"sub_category2_id,omitempty"`
	SubCategory2   *SubCategory2       `gorm:"foreignKey:SubCategory2ID" json:"sub_category2,omitempty"`
	City           string              `gorm:"size:100" json:"city"`
	District       string              `gorm:"size:100" json:"district"`
	Location       *string             `gorm:"size:255" json:"location,omitempty"`
	MaxBudget      decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"max_budget"`
	Status         RequestStatus       `gorm:"not null;default:1;index" json:"status"`
	AdminNotes     *string             `gorm:"type:text" json:"admin_notes,omitempty"`
	Images         []RequestImage      `gorm:"foreignKey:RequestID" json:"images,omitempty"`
	CreatedAt      time.Time           `gorm:"index" json:"created_at"`
	ApprovedAt     *time.Time          `json:"approved_at,omitempty"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (Request) TableName() string {
	return "requests"
}

// CategoryPath renders the request's loaded category levels
func (r *Request) CategoryPath() string {
	return CategoryPath(r.Category, r.SubCategory1, r.SubCategory2)
}

// RequestImage is an image attached to a request
type RequestImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RequestID uint      `gorm:"not null;index" json:"request_id"`
	ImagePath string    `gorm:"size:500;not null" json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
}

func (RequestImage) TableName() string {
	return "request_images"
}
