package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
)

// EmailSender delivers a plain text email
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// WhatsAppSender delivers a WhatsApp text message
type WhatsAppSender interface {
	Send(ctx context.Context, recipient, text string) error
}

// Channels selects the delivery channels for a notification
type Channels struct {
	Email    bool
	WhatsApp bool
	InApp    bool
}

// AllChannels sends on email, WhatsApp and in-app
var AllChannels = Channels{Email: true, WhatsApp: true, InApp: true}

// NotificationInput describes a notification to create
type NotificationInput struct {
	UserID      uint
	Title       string
	Message     string
	Type        models.NotificationType
	RequestID   *uint
	Link        string
	IsFromAdmin bool
	AdminID     *uint
}

// NotificationService stores notifications and delivers them to external channels
type NotificationService struct {
	repo      *repository.Repository
	email     EmailSender
	whatsapp  WhatsAppSender
	publicURL string
	log       *zap.Logger
}

// NewNotificationService creates the service. A nil sender disables its channel.
func NewNotificationService(repo *repository.Repository, email EmailSender, whatsapp WhatsAppSender, publicURL string, log *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		email:     email,
		whatsapp:  whatsapp,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log.Named("notifications"),
	}
}

// Create persists a notification row
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	n := &models.Notification{
		UserID:      in.UserID,
		Title:       in.Title,
		Message:     in.Message,
		Type:        in.Type,
		RequestID:   in.RequestID,
		IsFromAdmin: in.IsFromAdmin,
		AdminID:     in.AdminID,
	}
	if n.Type == "" {
		n.Type = models.NotificationGeneral
	}
	if in.Link != "" {
		link := in.Link
		n.Link = &link
	}

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// Send delivers n on the selected external channels and records which ones
// succeeded. The stored row is the in-app channel; sending without InApp
// files it as already read. Channel failures are combined into the returned
// error.
func (s *NotificationService) Send(ctx context.Context, n *models.Notification, ch Channels) error {
	user, err := s.repo.GetUserByID(ctx, n.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	var errs error

	if ch.Email && s.email != nil && user.Email != nil && *user.Email != "" {
		if err := s.email.Send(ctx, *user.Email, n.Title, s.render(n)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("email: %w", err))
		} else {
			n.EmailSent = true
		}
	}

	if ch.WhatsApp && s.whatsapp != nil && user.PhoneNumber != "" {
		if err := s.whatsapp.Send(ctx, user.PhoneNumber, s.render(n)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("whatsapp: %w", err))
		} else {
			n.WhatsAppSent = true
		}
	}

	if n.EmailSent || n.WhatsAppSent {
		if err := s.repo.MarkNotificationDelivery(ctx, n.ID, n.EmailSent, n.WhatsAppSent); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record delivery: %w", err))
		}
	}

	if !ch.InApp && !n.IsRead {
		if err := s.repo.MarkNotificationRead(ctx, n.UserID, n.ID, time.Now()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("archive: %w", err))
		} else {
			n.IsRead = true
		}
	}

	if errs != nil {
		s.log.Warn("notification delivery incomplete",
			zap.Uint("notification_id", n.ID),
			zap.Uint("user_id", n.UserID),
			zap.Error(errs))
	}
	return errs
}

// Notify creates a notification and sends it
func (s *NotificationService) Notify(ctx context.Context, in NotificationInput, ch Channels) (*models.Notification, error) {
	n, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return n, s.Send(ctx, n, ch)
}

// render builds the external message body, with the link made absolute
func (s *NotificationService) render(n *models.Notification) string {
	var b strings.Builder
	b.WriteString(n.Title)
	b.WriteString("\n\n")
	b.WriteString(n.Message)
	if n.Link != nil && *n.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(s.AbsoluteURL(*n.Link))
	}
	return b.String()
}

// AbsoluteURL prefixes a site-relative path with the public origin
func (s *NotificationService) AbsoluteURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return s.publicURL + path
}

// Inbox is one page of a user's notifications
type Inbox struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int64                 `json:"unread"`
	CurrentPage   int                   `json:"current_page"`
	TotalPages    int                   `json:"total_pages"`
}

const inboxPageSize = 20

// Inbox lists a user's notifications, newest first
func (s *NotificationService) Inbox(ctx context.Context, userID uint, page int) (*Inbox, error) {
	if page < 1 {
		page = 1
	}
	p := repository.Page{Number: page, Size: inboxPageSize}

	items, total, err := s.repo.ListNotifications(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Inbox{
		Notifications: items,
		Unread:        unread,
		CurrentPage:   page,
		TotalPages:    p.TotalPages(total),
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnreadNotifications(ctx, userID)
}

// MarkRead marks one of the user's notifications read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	err := s.repo.MarkNotificationRead(ctx, userID, id, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("notification %d: %w", id, err)
	}
	return err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID, time.Now())
}

// Cleanup purges read notifications older than retention
func (s *NotificationService) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteReadNotificationsBefore(ctx, time.Now().Add(-retention))
}
