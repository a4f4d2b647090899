package services

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrRequestNotFound     = errors.New("request not found")
	ErrInvalidStatus       = errors.New("invalid request status")
	ErrStatusNotToggleable = errors.New("only approved or postponed requests can be toggled")
	ErrInvalidCategoryPath = errors.New("category path is inconsistent")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrForbidden           = errors.New("access denied")
	ErrBuyersOnly          = errors.New("available to buyers only")
	ErrSellersOnly         = errors.New("available to sellers only")

	ErrUserTypeChange     = errors.New("user type cannot be changed")
	ErrBuyerStoreFields   = errors.New("buyers cannot have store fields")
	ErrStoreNameRequired  = errors.New("store name is required")
	ErrInvalidLinkSlot    = errors.New("store link slot must be 1, 2 or 3")
	ErrLinkNotPending     = errors.New("store link has no pending change")
	ErrNoPendingLinks     = errors.New("store has no pending links")
	ErrInvalidImageType   = errors.New("unsupported image type")
	ErrImageTooLarge      = errors.New("image exceeds size limit")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrAccountInactive    = errors.New("account is disabled")
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrAlreadyAdmin       = errors.New("user is already an admin")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
