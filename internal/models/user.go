package models

import (
	"time"
)

// UserType distinguishes buyers from sellers. It never changes after registration.
type UserType int

const (
	UserTypeBuyer  UserType = 1
	UserTypeSeller UserType = 2
)

func (t UserType) String() string {
	switch t {
	case UserTypeBuyer:
		return "Buyer"
	case UserTypeSeller:
		return "Seller"
	default:
		return "Unknown"
	}
}

// IsValid reports whether t is a known user type
func (t UserType) IsValid() bool {
	return t == UserTypeBuyer || t == UserTypeSeller
}

// PendingURLStatus marks a store link awaiting admin review
const PendingURLStatus = "Pending"

// StoreLinkSlots is the number of website links a store may publish
const StoreLinkSlots = 3

// User represents a buyer or seller account
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PhoneNumber     string     `gorm:"size:20;uniqueIndex;not null" json:"phone_number"`
	Email           *string    `gorm:"size:255" json:"email,omitempty"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	FirstName       string     `gorm:"size:50;not null" json:"first_name"`
	LastName        string     `gorm:"size:50;not null" json:"last_name"`
	DateOfBirth     time.Time  `json:"date_of_birth"`
	Gender          string     `gorm:"size:10;not null" json:"gender"`
	City            string     `gorm:"size:100;not null" json:"city"`
	District        string     `gorm:"size:100;not null" json:"district"`
	Location        *string    `gorm:"size:255" json:"location,omitempty"`
	ProfileImage    *string    `gorm:"size:500" json:"profile_image,omitempty"`
	UserType        UserType   `gorm:"not null;index" json:"user_type"`
	IsPhoneVerified bool       `gorm:"default:false" json:"is_phone_verified"`
	IsEmailVerified bool       `gorm:"default:false" json:"is_email_verified"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`

	// Store properties, sellers only
	StoreName        *string    `gorm:"size:255" json:"store_name,omitempty"`
	StoreDescription *string    `gorm:"size:1000" json:"store_description,omitempty"`
	WebsiteURL1      *string    `gorm:"column:website_url1;size:500" json:"website_url1,omitempty"`
	WebsiteURL2      *string    `gorm:"column:website_url2;size:500" json:"website_url2,omitempty"`
	WebsiteURL3      *string    `gorm:"column:website_url3;size:500" json:"website_url3,omitempty"`
	IsActive         bool       `gorm:"default:true;index" json:"is_active"`
	IsStoreApproved  bool       `gorm:"default:false;index" json:"is_store_approved"`
	StoreApprovedAt  *time.Time `json:"store_approved_at,omitempty"`
	StoreApprovedBy  *uint      `json:"store_approved_by,omitempty"`

	// Links submitted by the seller and not yet reviewed
	PendingWebsiteURL1     *string    `gorm:"column:pending_website_url1;size:500" json:"pending_website_url1,omitempty"`
	PendingWebsiteURL2     *string    `gorm:"column:pending_website_url2;size:500" json:"pending_website_url2,omitempty"`
	PendingWebsiteURL3     *string    `gorm:"column:pending_website_url3;size:500" json:"pending_website_url3,omitempty"`
	PendingURL1Status      *string    `gorm:"column:pending_url1_status;size:20" json:"pending_url1_status,omitempty"`
	PendingURL2Status      *string    `gorm:"column:pending_url2_status;size:20" json:"pending_url2_status,omitempty"`
	PendingURL3Status      *string    `gorm:"column:pending_url3_status;size:20" json:"pending_url3_status,omitempty"`
	PendingURL1SubmittedAt *time.Time `gorm:"column:pending_url1_submitted_at" json:"pending_url1_submitted_at,omitempty"`
	PendingURL2SubmittedAt *time.Time `gorm:"column:pending_url2_submitted_at" json:"pending_url2_submitted_at,omitempty"`
	PendingURL3SubmittedAt *time.Time `gorm:"column:pending_url3_submitted_at" json:"pending_url3_submitted_at,omitempty"`
	HasPendingURLChanges   bool       `gorm:"column:has_pending_url_changes;default:false;index" json:"has_pending_url_changes"`
	URLsLastApprovedAt     *time.Time `gorm:"column:urls_last_approved_at" json:"urls_last_approved_at,omitempty"`

	StoreCategories []StoreCategory `gorm:"foreignKey:UserID" json:"store_categories,omitempty"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// FullName returns "first last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// DisplayName is the store name for sellers that have one, the full name otherwise
func (u *User) DisplayName() string {
	if u.UserType == UserTypeSeller && u.StoreName != nil && *u.StoreName != "" {
		return *u.StoreName
	}
	return u.FullName()
}

// IsSeller reports whether the account is a seller account
func (u *User) IsSeller() bool {
	return u.UserType == UserTypeSeller
}

// LinkSlot gives access to the live and pending columns of one store link.
type LinkSlot struct {
	Number      int
	Live        **string
	Pending     **string
	Status      **string
	SubmittedAt **time.Time
}

// IsPending reports whether the slot holds an unreviewed edit
func (s LinkSlot) IsPending() bool {
	return *s.Status != nil && **s.Status == PendingURLStatus
}

// Submit records value as a pending edit of the slot. Submitting the live
// value again withdraws any pending edit. It reports whether the slot now
// differs from what was pending before.
func (s LinkSlot) Submit(value *string, now time.Time) bool {
	if equalStrings(value, *s.Live) {
		if s.IsPending() {
			s.Clear()
			return true
		}
		return false
	}

	if s.IsPending() && equalStrings(value, *s.Pending) {
		return false
	}

	status := PendingURLStatus
	submitted := now
	*s.Pending = cloneString(value)
	*s.Status = &status
	*s.SubmittedAt = &submitted
	return true
}

// Approve promotes the pending value to the live link
func (s LinkSlot) Approve() {
	*s.Live = cloneString(*s.Pending)
	s.Clear()
}

// Clear drops the pending edit
func (s LinkSlot) Clear() {
	*s.Pending = nil
	*s.Status = nil
	*s.SubmittedAt = nil
}

// Link returns slot n (1..3). It panics on any other n.
func (u *User) Link(n int) LinkSlot {
	switch n {
	case 1:
		return LinkSlot{1, &u.WebsiteURL1, &u.PendingWebsiteURL1, &u.PendingURL1Status, &u.PendingURL1SubmittedAt}
	case 2:
		return LinkSlot{2, &u.WebsiteURL2, &u.PendingWebsiteURL2, &u.PendingURL2Status, &u.PendingURL2SubmittedAt}
	case 3:
		return LinkSlot{3, &u.WebsiteURL3, &u.PendingWebsiteURL3, &u.PendingURL3Status, &u.PendingURL3SubmittedAt}
	}
	panic("models: store link slot out of range")
}

// Links returns all link slots in order
func (u *User) Links() []LinkSlot {
	return []LinkSlot{u.Link(1), u.Link(2), u.Link(3)}
}

// HasAnyPendingURL is computed from the individual slot statuses
func (u *User) HasAnyPendingURL() bool {
	return u.PendingURLsCount() > 0
}

// PendingURLsCount counts slots awaiting review
func (u *User) PendingURLsCount() int {
	count := 0
	for _, slot := range u.Links() {
		if slot.IsPending() {
			count++
		}
	}
	return count
}

// SyncPendingFlag keeps the stored has_pending_url_changes column in line
// with the slot statuses.
func (u *User) SyncPendingFlag() {
	u.HasPendingURLChanges = u.HasAnyPendingURL()
}

// ClearStore wipes every store field, used for buyer accounts
func (u *User) ClearStore() {
	u.StoreName = nil
	u.StoreDescription = nil
	for _, slot := range u.Links() {
		*slot.Live = nil
		slot.Clear()
	}
	u.HasPendingURLChanges = false
}

func equalStrings(a, b *string) bool {
	av, bv := "", ""
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func cloneString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
