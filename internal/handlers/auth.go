package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reverse-market/internal/auth"
	"reverse-market/internal/models"
	"reverse-market/internal/services"
)

const dateLayout = "2006-01-02"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService  *services.AuthService
	userService  *services.UserService
	adminService *services.AdminService
	log          *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, adminService *services.AdminService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		adminService: adminService,
		log:          log.Named("auth"),
	}
}

type registerRequest struct {
	PhoneNumber string  `json:"phone_number" binding:"required,max=20"`
	Password    string  `json:"password" binding:"required,min=6"`
	FirstName   string  `json:"first_name" binding:"required,max=50"`
	LastName    string  `json:"last_name" binding:"required,max=50"`
	Email       *string `json:"email" binding:"omitempty,email,max=255"`
	DateOfBirth string  `json:"date_of_birth" binding:"required"`
	Gender      string  `json:"gender" binding:"required,max=10"`
	City        string  `json:"city" binding:"required,max=100"`
	District    string  `json:"district" binding:"required,max=100"`
	Location    *string `json:"location" binding:"omitempty,max=255"`
	UserType    int     `json:"user_type" binding:"required,oneof=1 2"`
	StoreName   *string `json:"store_name" binding:"omitempty,max=255"`
}

// Register creates a buyer or seller account and signs it in
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.Registration{
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		DateOfBirth: dob,
		Gender:      req.Gender,
		City:        req.City,
		District:    req.District,
		Location:    req.Location,
		UserType:    models.UserType(req.UserType),
		StoreName:   req.StoreName,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.issueToken(c, http.StatusCreated, user)
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// Login authenticates by phone number and password
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

func (h *AuthHandler) issueToken(c *gin.Context, status int, user *models.User) {
	token, err := auth.GenerateToken(user.ID, user.UserType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(status, gin.H{
		"success": true,
		"data": gin.H{
			"token":      token,
			"expires_in": int(auth.TokenTTL.Seconds()),
			"user":       user,
			"is_admin":   h.adminService.IsAdmin(c.Request.Context(), user.ID),
		},
	})
}

// Logout handles user logout. Tokens are stateless, the client drops it.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "تم تسجيل الخروج بنجاح",
	})
}

// GetMe returns the current authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "", gin.H{
		"user":     user,
		"is_admin": h.adminService.IsAdmin(c.Request.Context(), userID),
	})
}
