package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
)

// Actor identifies the admin performing an action
type Actor struct {
	UserID  uint
	AdminID uint
}

// Admin log actions
const (
	ActionUpdateRequestStatus = "UPDATE_REQUEST_STATUS"
	ActionEditRequest         = "EDIT_REQUEST"
	ActionDeleteRequest       = "DELETE_REQUEST"
	ActionToggleRequest       = "TOGGLE_REQUEST"
	ActionApproveLink         = "APPROVE_STORE_LINK"
	ActionRejectLink          = "REJECT_STORE_LINK"
	ActionApproveAllLinks     = "APPROVE_ALL_STORE_LINKS"
	ActionApproveStore        = "APPROVE_STORE"
	ActionToggleUserActive    = "TOGGLE_USER_ACTIVE"
	ActionCreateCategory      = "CREATE_CATEGORY"
	ActionPromoteUser         = "PROMOTE_USER"
)

// Admin log resource types
const (
	ResourceRequest  = "REQUEST"
	ResourceUser     = "USER"
	ResourceCategory = "CATEGORY"
)

// AuditLogger records admin actions
type AuditLogger interface {
	LogAdminAction(ctx context.Context, actor Actor, action, resourceType string, resourceID *uint, details map[string]interface{})
}

type AdminService struct {
	repo *repository.Repository
	log  *zap.Logger
	mu   sync.Mutex
}

func NewAdminService(repo *repository.Repository, log *zap.Logger) *AdminService {
	return &AdminService{
		repo: repo,
		log:  log.Named("admin"),
	}
}

// IsAdmin checks if a user is an admin
func (s *AdminService) IsAdmin(ctx context.Context, userID uint) bool {
	_, err := s.repo.GetAdminByUserID(ctx, userID)
	return err == nil
}

// GetAdminByUserID returns the admin membership of a user
func (s *AdminService) GetAdminByUserID(ctx context.Context, userID uint) (*models.AdminUser, error) {
	return s.repo.GetAdminByUserID(ctx, userID)
}

// PromoteUserToAdmin grants a user admin access with the given role
func (s *AdminService) PromoteUserToAdmin(ctx context.Context, actor Actor, userID uint, role string) (*models.AdminUser, error) {
	if role != models.AdminRoleSuper && role != models.AdminRoleModerator {
		return nil, invalid("role", "must be SUPER_ADMIN or MODERATOR")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.repo.GetAdminByUserID(ctx, userID); err == nil {
		return nil, ErrAlreadyAdmin
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	admin := &models.AdminUser{
		UserID: userID,
		Role:   role,
		Permissions: models.JSONB{
			"manage_requests":   true,
			"manage_stores":     true,
			"manage_categories": role == models.AdminRoleSuper,
			"manage_admins":     role == models.AdminRoleSuper,
		},
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}

	s.LogAdminAction(ctx, actor, ActionPromoteUser, ResourceUser, &userID, map[string]interface{}{
		"role": role,
	})
	s.log.Info("user promoted", zap.Uint("user_id", userID), zap.String("role", role))
	return admin, nil
}

// LogAdminAction writes an audit entry. Failures are logged, never returned.
func (s *AdminService) LogAdminAction(ctx context.Context, actor Actor, action, resourceType string, resourceID *uint, details map[string]interface{}) {
	entry := &models.AdminLog{
		AdminID:      actor.AdminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      models.JSONB(details),
	}
	if err := s.repo.CreateAdminLog(ctx, entry); err != nil {
		s.log.Error("failed to write admin log",
			zap.String("action", action),
			zap.Uint("admin_id", actor.AdminID),
			zap.Error(err))
	}
}

// GetAdminLogs returns admin activity, newest first
func (s *AdminService) GetAdminLogs(ctx context.Context, limit, offset int) ([]models.AdminLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAdminLogs(ctx, limit, offset)
}
