package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
)

const (
	myRequestsPageSize  = 10
	maxProfileImageSize = 5 << 20
	profileImageDir     = "profiles"
	// UploadURLPrefix is the public path the upload directory is served under
	UploadURLPrefix = "/uploads"
)

var profileImageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ProfileService implements the self-service account and store pages
type ProfileService struct {
	repo       *repository.Repository
	categories *CategoryService
	uploadDir  string
	log        *zap.Logger
}

func NewProfileService(repo *repository.Repository, categories *CategoryService, uploadDir string, log *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:       repo,
		categories: categories,
		uploadDir:  uploadDir,
		log:        log.Named("profile"),
	}
}

// RequestStats counts a buyer's requests by state
type RequestStats struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}

// StoreCategoryView is a store specialization with its rendered path
type StoreCategoryView struct {
	models.StoreCategory
	FullPath string `json:"full_path"`
}

// ProfileView is the profile page. Requests and Stats are set for buyers only.
type ProfileView struct {
	User            *models.User        `json:"user"`
	StoreCategories []StoreCategoryView `json:"store_categories"`
	Requests        []models.Request    `json:"requests,omitempty"`
	Stats           *RequestStats       `json:"stats,omitempty"`
}

func (s *ProfileService) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.GetUserWithStoreCategories(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func storeCategoryViews(categories []models.StoreCategory) []StoreCategoryView {
	views := make([]StoreCategoryView, 0, len(categories))
	for i := range categories {
		views = append(views, StoreCategoryView{StoreCategory: categories[i], FullPath: categories[i].Path()})
	}
	return views
}

// Index returns the current user's profile
func (s *ProfileService) Index(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:            user,
		StoreCategories: storeCategoryViews(user.StoreCategories),
	}
	if user.UserType != models.UserTypeBuyer {
		return view, nil
	}

	filter := repository.RequestFilter{UserID: &user.ID}
	requests, total, err := s.repo.ListRequests(ctx, filter, repository.Page{})
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	counts, err := s.repo.CountRequestsByStatus(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	view.Requests = requests
	view.Stats = &RequestStats{
		Total:    total,
		Approved: counts[models.RequestStatusApproved],
		Pending:  counts[models.RequestStatusPending],
		Rejected: counts[models.RequestStatusRejected],
	}
	return view, nil
}

// MyRequestsPage is one page of a buyer's own requests
type MyRequestsPage struct {
	Requests    []models.Request `json:"requests"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int              `json:"total_pages"`
}

// MyRequests lists the buyer's requests, newest first, 10 per page
func (s *ProfileService) MyRequests(ctx context.Context, userID uint, page int) (*MyRequestsPage, error) {
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

	if page < 1 {
		page = 1
	}
	p := repository.Page{Number: page, Size: myRequestsPageSize}
	requests, total, err := s.repo.ListRequests(ctx, repository.RequestFilter{UserID: &userID}, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return &MyRequestsPage{
		Requests:    requests,
		CurrentPage: page,
		TotalPages:  p.TotalPages(total),
	}, nil
}

// LinkView shows one store link slot with any edit awaiting review
type LinkView struct {
	Slot        int        `json:"slot"`
	Live        *string    `json:"live,omitempty"`
	Pending     *string    `json:"pending,omitempty"`
	IsPending   bool       `json:"is_pending"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

func linkViews(u *models.User) []LinkView {
	views := make([]LinkView, 0, models.StoreLinkSlots)
	for _, slot := range u.Links() {
		views = append(views, LinkView{
			Slot:        slot.Number,
			Live:        *slot.Live,
			Pending:     *slot.Pending,
			IsPending:   slot.IsPending(),
			SubmittedAt: *slot.SubmittedAt,
		})
	}
	return views
}

// EditForm is the editable view of a profile. UserType is read-only.
type EditForm struct {
	FirstName            string              `json:"first_name"`
	LastName             string              `json:"last_name"`
	Email                *string             `json:"email,omitempty"`
	PhoneNumber          string              `json:"phone_number"`
	ProfileImage         *string             `json:"profile_image,omitempty"`
	City                 string              `json:"city"`
	District             string              `json:"district"`
	Location             *string             `json:"location,omitempty"`
	DateOfBirth          time.Time           `json:"date_of_birth"`
	Gender               string              `json:"gender"`
	UserType             models.UserType     `json:"user_type"`
	StoreName            *string             `json:"store_name,omitempty"`
	StoreDescription     *string             `json:"store_description,omitempty"`
	Links                []LinkView          `json:"links,omitempty"`
	HasPendingURLChanges bool                `json:"has_pending_url_changes"`
	StoreCategories      []StoreCategoryView `json:"store_categories,omitempty"`
	Categories           []models.Category   `json:"categories"`
}

// EditForm returns the profile as an edit form
func (s *ProfileService) EditForm(ctx context.Context, userID uint) (*EditForm, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.ActiveCategories(ctx)
	if err != nil {
		return nil, err
	}

	form := &EditForm{
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		PhoneNumber:  user.PhoneNumber,
		ProfileImage: user.ProfileImage,
		City:         user.City,
		District:     user.District,
		Location:     user.Location,
		DateOfBirth:  user.DateOfBirth,
		Gender:       user.Gender,
		UserType:     user.UserType,
		Categories:   categories,
	}
	if user.IsSeller() {
		form.StoreName = user.StoreName
		form.StoreDescription = user.StoreDescription
		form.Links = linkViews(user)
		form.HasPendingURLChanges = user.HasPendingURLChanges
		form.StoreCategories = storeCategoryViews(user.StoreCategories)
	}
	return form, nil
}

// ProfileEdit is a submitted profile form. PhoneNumber is not editable.
type ProfileEdit struct {
	UserType         models.UserType
	FirstName        string
	LastName         string
	Email            *string
	City             string
	District         string
	Location         *string
	DateOfBirth      time.Time
	Gender           string
	StoreName        *string
	StoreDescription *string
	WebsiteURLs      [models.StoreLinkSlots]*string
}

func (in ProfileEdit) hasStoreFields() bool {
	if !isBlank(in.StoreName) || !isBlank(in.StoreDescription) {
		return true
	}
	for _, u := range in.WebsiteURLs {
		if !isBlank(u) {
			return true
		}
	}
	return false
}

// EditResult reports the saved user and whether links now await review
type EditResult struct {
	User         *models.User
	LinksPending bool
}

// Edit saves the profile form. Buyers may not carry store data. Sellers'
// changed links are held as pending edits until an admin reviews them.
func (s *ProfileService) Edit(ctx context.Context, userID uint, in ProfileEdit) (*EditResult, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	log := s.log.With(zap.Uint("user_id", userID))

	if in.UserType != user.UserType {
		log.Warn("attempt to change account type",
			zap.Stringer("current", user.UserType),
			zap.Stringer("requested", in.UserType))
		return nil, ErrUserTypeChange
	}
	if err := validateBasicProfile(in); err != nil {
		return nil, err
	}

	buyer := user.UserType == models.UserTypeBuyer
	if buyer {
		if in.hasStoreFields() {
			log.Warn("buyer submitted store fields")
			return nil, ErrBuyerStoreFields
		}
		user.ClearStore()
		user.IsStoreApproved = true
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = normalize(in.Email)
	user.City = strings.TrimSpace(in.City)
	user.District = strings.TrimSpace(in.District)
	user.Location = normalize(in.Location)
	user.DateOfBirth = in.DateOfBirth
	user.Gender = in.Gender

	linksPending := false
	if user.IsSeller() {
		if isBlank(in.StoreName) {
			return nil, ErrStoreNameRequired
		}
		if err := validateStore(*in.StoreName, in.StoreDescription, in.WebsiteURLs); err != nil {
			return nil, err
		}
		user.StoreName = normalize(in.StoreName)
		user.StoreDescription = normalize(in.StoreDescription)
		linksPending = submitLinks(user, in.WebsiteURLs, time.Now())
	}

	now := time.Now()
	user.UpdatedAt = &now

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.SaveUser(ctx, user); err != nil {
			return err
		}
		if !buyer {
			return nil
		}
		removed, err := tx.DeleteStoreCategories(ctx, user.ID)
		if err != nil {
			return err
		}
		if removed > 0 {
			log.Warn("removed store categories from buyer account", zap.Int64("count", removed))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if linksPending {
		log.Info("store links submitted for review", zap.Int("pending", user.PendingURLsCount()))
	}
	return &EditResult{User: user, LinksPending: linksPending}, nil
}

// StoreView is the seller's store management page
type StoreView struct {
	StoreName            *string             `json:"store_name,omitempty"`
	StoreDescription     *string             `json:"store_description,omitempty"`
	IsStoreApproved      bool                `json:"is_store_approved"`
	Links                []LinkView          `json:"links"`
	HasPendingURLChanges bool                `json:"has_pending_url_changes"`
	StoreCategories      []StoreCategoryView `json:"store_categories"`
	Categories           []models.Category   `json:"categories"`
}

// ManageStore returns the seller's store data and specializations
func (s *ProfileService) ManageStore(ctx context.Context, userID uint) (*StoreView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsSeller() {
		s.log.Warn("non-seller opened store management", zap.Uint("user_id", userID))
		return nil, ErrSellersOnly
	}
	categories, err := s.categories.ActiveCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &StoreView{
		StoreName:            user.StoreName,
		StoreDescription:     user.StoreDescription,
		IsStoreApproved:      user.IsStoreApproved,
		Links:                linkViews(user),
		HasPendingURLChanges: user.HasPendingURLChanges,
		StoreCategories:      storeCategoryViews(user.StoreCategories),
		Categories:           categories,
	}, nil
}

// StoreUpdate is the submitted store form
type StoreUpdate struct {
	StoreName        string
	StoreDescription *string
	WebsiteURLs      [models.StoreLinkSlots]*string
	// SubCategory2IDs replaces the store's specializations when non-empty
	SubCategory2IDs []uint
}

// UpdateStore saves the seller's store data, holding changed links for review
func (s *ProfileService) UpdateStore(ctx context.Context, userID uint, in StoreUpdate) (*EditResult, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsSeller() {
		s.log.Warn("non-seller attempted store update", zap.Uint("user_id", userID))
		return nil, ErrSellersOnly
	}
	if strings.TrimSpace(in.StoreName) == "" {
		return nil, ErrStoreNameRequired
	}
	if err := validateStore(in.StoreName, in.StoreDescription, in.WebsiteURLs); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.StoreName)
	user.StoreName = &name
	user.StoreDescription = normalize(in.StoreDescription)
	now := time.Now()
	linksPending := submitLinks(user, in.WebsiteURLs, now)
	user.UpdatedAt = &now

	var categories []models.StoreCategory
	if len(in.SubCategory2IDs) > 0 {
		categories, err = s.storeCategoriesFor(ctx, user.ID, in.SubCategory2IDs)
		if err != nil {
			return nil, err
		}
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.SaveUser(ctx, user); err != nil {
			return err
		}
		if len(in.SubCategory2IDs) == 0 {
			return nil
		}
		return tx.ReplaceStoreCategories(ctx, user.ID, categories)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}
	return &EditResult{User: user, LinksPending: linksPending}, nil
}

// storeCategoriesFor derives full category paths from leaf ids, skipping unknown ids
func (s *ProfileService) storeCategoriesFor(ctx context.Context, userID uint, ids []uint) ([]models.StoreCategory, error) {
	seen := make(map[uint]bool, len(ids))
	categories := make([]models.StoreCategory, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		sub2, err := s.repo.GetSubCategory2(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Debug("skipping unknown subcategory", zap.Uint("sub_category2_id", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		if sub2.SubCategory1 == nil {
			continue
		}

		sub1ID, sub2ID := sub2.SubCategory1ID, sub2.ID
		categories = append(categories, models.StoreCategory{
			UserID:         userID,
			CategoryID:     sub2.SubCategory1.CategoryID,
			SubCategory1ID: &sub1ID,
			SubCategory2ID: &sub2ID,
		})
	}
	return categories, nil
}

// UploadProfileImage stores a new profile image and removes the previous one.
// It returns the public path of the stored image.
func (s *ProfileService) UploadProfileImage(ctx context.Context, userID uint, filename string, size int64, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !profileImageTypes[ext] {
		return "", ErrInvalidImageType
	}
	if size > maxProfileImageSize {
		return "", ErrImageTooLarge
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	dir := filepath.Join(s.uploadDir, profileImageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)
	if err := writeLimited(dst, content, maxProfileImageSize); err != nil {
		return "", err
	}

	previous := user.ProfileImage
	publicPath := path.Join(UploadURLPrefix, profileImageDir, name)
	user.ProfileImage = &publicPath
	now := time.Now()
	user.UpdatedAt = &now
	if err := s.repo.SaveUser(ctx, user); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to save profile image: %w", err)
	}

	if previous != nil {
		s.removeUpload(*previous)
	}
	return publicPath, nil
}

func writeLimited(dst string, content io.Reader, limit int64) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(content, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > limit {
		err = ErrImageTooLarge
	}
	if err != nil {
		os.Remove(dst)
		if errors.Is(err, ErrImageTooLarge) {
			return err
		}
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// removeUpload deletes a previously stored upload given its public path
func (s *ProfileService) removeUpload(publicPath string) {
	rel, ok := strings.CutPrefix(publicPath, UploadURLPrefix+"/")
	if !ok || strings.Contains(rel, "..") {
		return
	}
	if err := os.Remove(filepath.Join(s.uploadDir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove previous upload", zap.String("path", publicPath), zap.Error(err))
	}
}

// submitLinks applies the submitted links as pending edits and reports
// whether any link now awaits review as a result
func submitLinks(user *models.User, urls [models.StoreLinkSlots]*string, now time.Time) bool {
	pending := false
	for i, slot := range user.Links() {
		if slot.Submit(normalize(urls[i]), now) && slot.IsPending() {
			pending = true
		}
	}
	user.SyncPendingFlag()
	return pending
}

func validateBasicProfile(in ProfileEdit) error {
	required := []struct{ field, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"city", in.City},
		{"district", in.District},
		{"gender", in.Gender},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field, "required")
		}
	}
	if len([]rune(in.FirstName)) > 50 {
		return invalid("first_name", "must be at most 50 characters")
	}
	if len([]rune(in.LastName)) > 50 {
		return invalid("last_name", "must be at most 50 characters")
	}
	if in.DateOfBirth.IsZero() {
		return invalid("date_of_birth", "required")
	}
	return nil
}

func validateStore(name string, description *string, urls [models.StoreLinkSlots]*string) error {
	if len([]rune(strings.TrimSpace(name))) > 255 {
		return invalid("store_name", "must be at most 255 characters")
	}
	if description != nil && len([]rune(*description)) > 1000 {
		return invalid("store_description", "must be at most 1000 characters")
	}
	for i, raw := range urls {
		if isBlank(raw) {
			continue
		}
		field := fmt.Sprintf("website_url%d", i+1)
		v := strings.TrimSpace(*raw)
		if len(v) > 500 {
			return invalid(field, "must be at most 500 characters")
		}
		if !isWebURL(v) {
			return invalid(field, "must be a valid URL")
		}
	}
	return nil
}

func isWebURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
