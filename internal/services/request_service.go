package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
)

const adminRequestsPageSize = 20

// FanoutQueue schedules the store fan-out for an approved request
type FanoutQueue interface {
	Enqueue(requestID uint) bool
}

// RequestService implements buyer request submission and admin moderation
type RequestService struct {
	repo       *repository.Repository
	categories *CategoryService
	notifier   *RequestNotifier
	fanout     FanoutQueue
	audit      AuditLogger
	log        *zap.Logger
}

func NewRequestService(repo *repository.Repository, categories *CategoryService, notifier *RequestNotifier, fanout FanoutQueue, audit AuditLogger, log *zap.Logger) *RequestService {
	return &RequestService{
		repo:       repo,
		categories: categories,
		notifier:   notifier,
		fanout:     fanout,
		audit:      audit,
		log:        log.Named("requests"),
	}
}

// RequestPage is one page of the admin request list
type RequestPage struct {
	Requests    []models.Request      `json:"requests"`
	Status      *models.RequestStatus `json:"status,omitempty"`
	CurrentPage int                   `json:"current_page"`
	TotalPages  int                   `json:"total_pages"`
	Total       int64                 `json:"total"`
}

func (s *RequestService) get(ctx context.Context, id uint) (*models.Request, error) {
	req, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// List returns requests newest first, 20 per page, optionally by status
func (s *RequestService) List(ctx context.Context, status *models.RequestStatus, page int) (*RequestPage, error) {
	if page < 1 {
		page = 1
	}
	p := repository.Page{Number: page, Size: adminRequestsPageSize}

	requests, total, err := s.repo.ListRequests(ctx, repository.RequestFilter{Status: status}, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return &RequestPage{
		Requests:    requests,
		Status:      status,
		CurrentPage: page,
		TotalPages:  p.TotalPages(total),
		Total:       total,
	}, nil
}

// All returns every request matching status, newest first
func (s *RequestService) All(ctx context.Context, status *models.RequestStatus) ([]models.Request, error) {
	requests, _, err := s.repo.ListRequests(ctx, repository.RequestFilter{Status: status}, repository.Page{})
	return requests, err
}

// Details loads a request with its user, category path and images
func (s *RequestService) Details(ctx context.Context, id uint) (*models.Request, error) {
	return s.get(ctx, id)
}

// UpdateStatus moves a request to status and notifies the buyer. Approval
// also queues the store fan-out. Notification failures are logged only.
func (s *RequestService) UpdateStatus(ctx context.Context, actor Actor, id uint, status models.RequestStatus, adminNotes *string) (*models.Request, error) {
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	previous := req.Status
	req.Status = status
	req.AdminNotes = normalize(adminNotes)
	if status == models.RequestStatusApproved {
		now := time.Now()
		req.ApprovedAt = &now
	}

	if err := s.repo.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}

	s.audit.LogAdminAction(ctx, actor, ActionUpdateRequestStatus, ResourceRequest, &req.ID, map[string]interface{}{
		"from": previous.String(),
		"to":   status.String(),
	})

	log := s.log.With(zap.Uint("request_id", req.ID), zap.Stringer("status", status))
	switch status {
	case models.RequestStatusApproved:
		if err := s.notifier.NotifyApproved(ctx, req, &actor.UserID); err != nil {
			log.Error("failed to notify buyer about approval", zap.Error(err))
		}
		if s.fanout != nil && !s.fanout.Enqueue(req.ID) {
			log.Error("store fan-out queue is full, stores were not notified")
		}
	case models.RequestStatusRejected:
		if err := s.notifier.NotifyRejected(ctx, req, &actor.UserID); err != nil {
			log.Error("failed to notify buyer about rejection", zap.Error(err))
		}
	}

	log.Info("request status updated", zap.Uint("admin_user_id", actor.UserID))
	return req, nil
}

// RequestEdit holds the admin-editable request fields
type RequestEdit struct {
	Title          string
	Description    string
	CategoryID     uint
	SubCategory1ID *uint
	SubCategory2ID *uint
	City           string
	District       string
	Location       *string
	AdminNotes     *string
}

// Edit updates a request's content after validating its category path
func (s *RequestService) Edit(ctx context.Context, actor Actor, id uint, in RequestEdit) (*models.Request, error) {
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateRequestText(in.Title, in.Description); err != nil {
		return nil, err
	}
	if err := s.categories.ValidatePath(ctx, in.CategoryID, in.SubCategory1ID, in.SubCategory2ID); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(in.Title)
	req.Description = strings.TrimSpace(in.Description)
	req.CategoryID = in.CategoryID
	req.SubCategory1ID = in.SubCategory1ID
	req.SubCategory2ID = in.SubCategory2ID
	req.City = in.City
	req.District = in.District
	req.Location = normalize(in.Location)
	req.AdminNotes = normalize(in.AdminNotes)

	if err := s.repo.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}
	s.audit.LogAdminAction(ctx, actor, ActionEditRequest, ResourceRequest, &req.ID, nil)
	return s.get(ctx, id)
}

// Delete removes a request and its images
func (s *RequestService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.repo.DeleteRequest(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to delete request: %w", err)
	}
	s.audit.LogAdminAction(ctx, actor, ActionDeleteRequest, ResourceRequest, &id, nil)
	return nil
}

// ToggleStatus pauses an approved request or resumes a postponed one.
// Requests in any other state are left unchanged.
func (s *RequestService) ToggleStatus(ctx context.Context, actor Actor, id uint) (*models.Request, error) {
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := req.Status
	switch req.Status {
	case models.RequestStatusApproved:
		req.Status = models.RequestStatusPostponed
	case models.RequestStatusPostponed:
		now := time.Now()
		req.Status = models.RequestStatusApproved
		req.ApprovedAt = &now
	default:
		return req, ErrStatusNotToggleable
	}

	if err := s.repo.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to toggle request status: %w", err)
	}
	s.audit.LogAdminAction(ctx, actor, ActionToggleRequest, ResourceRequest, &req.ID, map[string]interface{}{
		"from": previous.String(),
		"to":   req.Status.String(),
	})
	return req, nil
}

// NewRequest is a buyer's submission
type NewRequest struct {
	Title          string
	Description    string
	CategoryID     uint
	SubCategory1ID *uint
	SubCategory2ID *uint
	City           string
	District       string
	Location       *string
	MaxBudget      *decimal.Decimal
	Images         []string
}

// Create stores a buyer's request as Pending
func (s *RequestService) Create(ctx context.Context, userID uint, in NewRequest) (*models.Request, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.UserType != models.UserTypeBuyer {
		return nil, ErrBuyersOnly
	}

	if err := validateRequestText(in.Title, in.Description); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.City) == "" {
		return nil, invalid("city", "required")
	}
	if strings.TrimSpace(in.District) == "" {
		return nil, invalid("district", "required")
	}
	if in.MaxBudget != nil && in.MaxBudget.IsNegative() {
		return nil, invalid("max_budget", "must not be negative")
	}
	if err := s.categories.ValidatePath(ctx, in.CategoryID, in.SubCategory1ID, in.SubCategory2ID); err != nil {
		return nil, err
	}

	req := &models.Request{
		UserID:         userID,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		CategoryID:     in.CategoryID,
		SubCategory1ID: in.SubCategory1ID,
		SubCategory2ID: in.SubCategory2ID,
		City:           strings.TrimSpace(in.City),
		District:       strings.TrimSpace(in.District),
		Location:       normalize(in.Location),
		Status:         models.RequestStatusPending,
	}
	if in.MaxBudget != nil {
		req.MaxBudget = decimal.NewNullDecimal(in.MaxBudget.Round(2))
	}
	for _, path := range in.Images {
		req.Images = append(req.Images, models.RequestImage{ImagePath: path})
	}

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.log.Info("request submitted", zap.Uint("request_id", req.ID), zap.Uint("user_id", userID))
	return req, nil
}

// View returns a request to a viewer. Approved requests are public; any
// other request is visible to its owner and to admins only.
func (s *RequestService) View(ctx context.Context, viewerID uint, isAdmin bool, id uint) (*models.Request, error) {
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == models.RequestStatusApproved || isAdmin || req.UserID == viewerID {
		return req, nil
	}
	return nil, ErrForbidden
}

func validateRequestText(title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid("title", "required")
	}
	if len([]rune(title)) > 200 {
		return invalid("title", "must be at most 200 characters")
	}
	if strings.TrimSpace(description) == "" {
		return invalid("description", "required")
	}
	return nil
}

// normalize trims s and maps blank values to nil
func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
