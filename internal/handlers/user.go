package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reverse-market/internal/models"
	"reverse-market/internal/services"
)

// ProfileHandler handles the signed-in user's profile and store pages
type ProfileHandler struct {
	profiles *services.ProfileService
	log      *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles *services.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		log:      log.Named("profile"),
	}
}

// GetProfile returns the current user's profile. Buyers also get their
// latest requests and request counts.
// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	view, err := h.profiles.Index(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", view)
}

// GetMyRequests pages through the buyer's own requests
// GET /api/v1/profile/requests?page=
func (h *ProfileHandler) GetMyRequests(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	page, err := h.profiles.MyRequests(c.Request.Context(), userID, pageQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", page)
}

// GetEditForm returns the editable profile fields
// GET /api/v1/profile/edit
func (h *ProfileHandler) GetEditForm(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	form, err := h.profiles.EditForm(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", form)
}

type websiteURLs struct {
	WebsiteURL1 *string `json:"website_url1" binding:"omitempty,url,max=500"`
	WebsiteURL2 *string `json:"website_url2" binding:"omitempty,url,max=500"`
	WebsiteURL3 *string `json:"website_url3" binding:"omitempty,url,max=500"`
}

func (w websiteURLs) slots() [models.StoreLinkSlots]*string {
	return [models.StoreLinkSlots]*string{w.WebsiteURL1, w.WebsiteURL2, w.WebsiteURL3}
}

type editProfileRequest struct {
	UserType         int     `json:"user_type" binding:"required"`
	FirstName        string  `json:"first_name" binding:"required,max=50"`
	LastName         string  `json:"last_name" binding:"required,max=50"`
	Email            *string `json:"email" binding:"omitempty,email,max=255"`
	City             string  `json:"city" binding:"required,max=100"`
	District         string  `json:"district" binding:"required,max=100"`
	Location         *string `json:"location" binding:"omitempty,max=255"`
	DateOfBirth      string  `json:"date_of_birth" binding:"required"`
	Gender           string  `json:"gender" binding:"required,max=10"`
	StoreName        *string `json:"store_name" binding:"omitempty,max=255"`
	StoreDescription *string `json:"store_description" binding:"omitempty,max=1000"`
	websiteURLs
}

// UpdateProfile saves the profile form. Changed store links are held for review.
// PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req editProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.profiles.Edit(c.Request.Context(), userID, services.ProfileEdit{
		UserType:         models.UserType(req.UserType),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		City:             req.City,
		District:         req.District,
		Location:         req.Location,
		DateOfBirth:      dob,
		Gender:           req.Gender,
		StoreName:        req.StoreName,
		StoreDescription: req.StoreDescription,
		WebsiteURLs:      req.slots(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := msgProfileUpdated
	if result.LinksPending {
		message = msgProfileLinksPending
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       message,
		"links_pending": result.LinksPending,
		"data":          result.User,
	})
}

// GetStore returns the seller's store data and specializations
// GET /api/v1/profile/store
func (h *ProfileHandler) GetStore(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	view, err := h.profiles.ManageStore(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", view)
}

type updateStoreRequest struct {
	StoreName        string  `json:"store_name" binding:"max=255"`
	StoreDescription *string `json:"store_description" binding:"omitempty,max=1000"`
	SubCategory2IDs  []uint  `json:"sub_category2_ids"`
	websiteURLs
}

// UpdateStore saves the seller's store data and specializations
// PUT /api/v1/profile/store
func (h *ProfileHandler) UpdateStore(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req updateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.profiles.UpdateStore(c.Request.Context(), userID, services.StoreUpdate{
		StoreName:        req.StoreName,
		StoreDescription: req.StoreDescription,
		WebsiteURLs:      req.slots(),
		SubCategory2IDs:  req.SubCategory2IDs,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := msgStoreUpdated
	if result.LinksPending {
		message = msgStoreLinksPending
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       message,
		"links_pending": result.LinksPending,
		"data":          result.User,
	})
}

// UploadProfileImage replaces the profile image from the "image" form file
// POST /api/v1/profile/image
func (h *ProfileHandler) UploadProfileImage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgImageRequired})
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer file.Close()

	path, err := h.profiles.UploadProfileImage(c.Request.Context(), userID, header.Filename, header.Size, file)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, msgImageUploaded, gin.H{"profile_image": path})
}
