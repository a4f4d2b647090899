package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
)

const pendingStoresPageSize = 20

// StoreLinkService implements admin review of sellers' store links and
// store-level account moderation
type StoreLinkService struct {
	repo          *repository.Repository
	notifications *NotificationService
	audit         AuditLogger
	log           *zap.Logger
}

func NewStoreLinkService(repo *repository.Repository, notifications *NotificationService, audit AuditLogger, log *zap.Logger) *StoreLinkService {
	return &StoreLinkService{
		repo:          repo,
		notifications: notifications,
		audit:         audit,
		log:           log.Named("store_links"),
	}
}

var sellerChannels = Channels{WhatsApp: true, InApp: true}

// PendingStore is a seller with links awaiting review
type PendingStore struct {
	UserID      uint       `json:"user_id"`
	DisplayName string     `json:"display_name"`
	PhoneNumber string     `json:"phone_number"`
	Links       []LinkView `json:"links"`
	Pending     int        `json:"pending"`
}

// PendingStoresPage is one page of the review queue
type PendingStoresPage struct {
	Stores      []PendingStore `json:"stores"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
	Total       int64          `json:"total"`
}

// ListPending returns sellers with pending links, oldest submission first
func (s *StoreLinkService) ListPending(ctx context.Context, page int) (*PendingStoresPage, error) {
	if page < 1 {
		page = 1
	}
	p := repository.Page{Number: page, Size: pendingStoresPageSize}
	sellers, total, err := s.repo.ListSellersWithPendingLinks(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending stores: %w", err)
	}

	stores := make([]PendingStore, 0, len(sellers))
	for i := range sellers {
		u := &sellers[i]
		stores = append(stores, PendingStore{
			UserID:      u.ID,
			DisplayName: u.DisplayName(),
			PhoneNumber: u.PhoneNumber,
			Links:       linkViews(u),
			Pending:     u.PendingURLsCount(),
		})
	}
	return &PendingStoresPage{
		Stores:      stores,
		CurrentPage: page,
		TotalPages:  p.TotalPages(total),
		Total:       total,
	}, nil
}

func (s *StoreLinkService) seller(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsSeller() {
		return nil, ErrSellersOnly
	}
	return user, nil
}

func pendingSlot(user *models.User, slot int) (models.LinkSlot, error) {
	if slot < 1 || slot > models.StoreLinkSlots {
		return models.LinkSlot{}, ErrInvalidLinkSlot
	}
	link := user.Link(slot)
	if !link.IsPending() {
		return models.LinkSlot{}, ErrLinkNotPending
	}
	return link, nil
}

// ApproveLink publishes a pending link
func (s *StoreLinkService) ApproveLink(ctx context.Context, actor Actor, userID uint, slot int) (*models.User, error) {
	user, err := s.seller(ctx, userID)
	if err != nil {
		return nil, err
	}
	link, err := pendingSlot(user, slot)
	if err != nil {
		return nil, err
	}

	value := *link.Pending
	link.Approve()
	now := time.Now()
	user.URLsLastApprovedAt = &now
	user.SyncPendingFlag()

	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to approve link: %w", err)
	}
	s.audit.LogAdminAction(ctx, actor, ActionApproveLink, ResourceUser, &user.ID, map[string]interface{}{
		"slot": slot,
		"url":  derefString(value),
	})

	s.notifySeller(ctx, actor, user, models.NotificationStoreLinkApproved,
		"تمت الموافقة على رابط متجرك ✅",
		fmt.Sprintf("تمت الموافقة على الرابط رقم %d لمتجرك وأصبح ظاهراً للمشترين.", slot))
	return user, nil
}

// RejectLink drops a pending link and keeps the live one
func (s *StoreLinkService) RejectLink(ctx context.Context, actor Actor, userID uint, slot int) (*models.User, error) {
	user, err := s.seller(ctx, userID)
	if err != nil {
		return nil, err
	}
	link, err := pendingSlot(user, slot)
	if err != nil {
		return nil, err
	}

	value := *link.Pending
	link.Clear()
	user.SyncPendingFlag()

	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to reject link: %w", err)
	}
	s.audit.LogAdminAction(ctx, actor, ActionRejectLink, ResourceUser, &user.ID, map[string]interface{}{
		"slot": slot,
		"url":  derefString(value),
	})

	s.notifySeller(ctx, actor, user, models.NotificationStoreLinkRejected,
		"تم رفض رابط متجرك",
		fmt.Sprintf("لم تتم الموافقة على الرابط رقم %d لمتجرك. يمكنك تعديله وإرساله للمراجعة مرة أخرى.", slot))
	return user, nil
}

// ApproveAll publishes every pending link of a seller
func (s *StoreLinkService) ApproveAll(ctx context.Context, actor Actor, userID uint) (*models.User, error) {
	user, err := s.seller(ctx, userID)
	if err != nil {
		return nil, err
	}

	var approved []int
	for _, link := range user.Links() {
		if link.IsPending() {
			link.Approve()
			approved = append(approved, link.Number)
		}
	}
	if len(approved) == 0 {
		return nil, ErrNoPendingLinks
	}

	now := time.Now()
	user.URLsLastApprovedAt = &now
	user.SyncPendingFlag()
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to approve links: %w", err)
	}
	s.audit.LogAdminAction(ctx, actor, ActionApproveAllLinks, ResourceUser, &user.ID, map[string]interface{}{
		"slots": approved,
	})

	s.notifySeller(ctx, actor, user, models.NotificationStoreLinkApproved,
		"تمت الموافقة على روابط متجرك ✅",
		"تمت الموافقة على جميع الروابط الجديدة لمتجرك وأصبحت ظاهرة للمشترين.")
	return user, nil
}

// ApproveStore marks a seller's store as approved
func (s *StoreLinkService) ApproveStore(ctx context.Context, actor Actor, userID uint) (*models.User, error) {
	user, err := s.seller(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	approver := actor.UserID
	user.IsStoreApproved = true
	user.StoreApprovedAt = &now
	user.StoreApprovedBy = &approver
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to approve store: %w", err)
	}
	s.audit.LogAdminAction(ctx, actor, ActionApproveStore, ResourceUser, &user.ID, nil)

	s.notifySeller(ctx, actor, user, models.NotificationStoreApproved,
		"تم اعتماد متجرك 🎉",
		"تم اعتماد متجرك وستصلك الطلبات الجديدة في تخصصك.")
	return user, nil
}

// ToggleUserActive enables or disables an account
func (s *StoreLinkService) ToggleUserActive(ctx context.Context, actor Actor, userID uint) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.IsActive = !user.IsActive
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to toggle user: %w", err)
	}
	s.audit.LogAdminAction(ctx, actor, ActionToggleUserActive, ResourceUser, &user.ID, map[string]interface{}{
		"is_active": user.IsActive,
	})
	s.log.Info("user active flag toggled", zap.Uint("user_id", user.ID), zap.Bool("is_active", user.IsActive))
	return user, nil
}

func (s *StoreLinkService) notifySeller(ctx context.Context, actor Actor, user *models.User, kind models.NotificationType, title, message string) {
	adminUserID := actor.UserID
	_, err := s.notifications.Notify(ctx, NotificationInput{
		UserID:      user.ID,
		Title:       title,
		Message:     message,
		Type:        kind,
		Link:        "/profile/store",
		IsFromAdmin: true,
		AdminID:     &adminUserID,
	}, sellerChannels)
	if err != nil {
		s.log.Error("failed to notify seller",
			zap.Uint("user_id", user.ID),
			zap.String("type", string(kind)),
			zap.Error(err))
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
