package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"reverse-market/internal/services"
)

// RequestHandler serves buyer request submission and viewing
type RequestHandler struct {
	requests     *services.RequestService
	adminService *services.AdminService
	log          *zap.Logger
}

func NewRequestHandler(requests *services.RequestService, adminService *services.AdminService, log *zap.Logger) *RequestHandler {
	return &RequestHandler{
		requests:     requests,
		adminService: adminService,
		log:          log.Named("requests"),
	}
}

type createRequestRequest struct {
	Title          string           `json:"title" binding:"required,max=200"`
	Description    string           `json:"description" binding:"required"`
	CategoryID     uint             `json:"category_id" binding:"required"`
	SubCategory1ID *uint            `json:"sub_category1_id"`
	SubCategory2ID *uint            `json:"sub_category2_id"`
	City           string           `json:"city" binding:"required,max=100"`
	District       string           `json:"district" binding:"required,max=100"`
	Location       *string          `json:"location" binding:"omitempty,max=255"`
	MaxBudget      *decimal.Decimal `json:"max_budget"`
	Images         []string         `json:"images" binding:"max=5,dive,max=500"`
}

// CreateRequest submits a buyer request for moderation
// POST /api/v1/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	created, err := h.requests.Create(c.Request.Context(), userID, services.NewRequest{
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		SubCategory1ID: req.SubCategory1ID,
		SubCategory2ID: req.SubCategory2ID,
		City:           req.City,
		District:       req.District,
		Location:       req.Location,
		MaxBudget:      req.MaxBudget,
		Images:         req.Images,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": msgRequestCreated,
		"data":    created,
	})
}

// GetRequest shows a request. Only approved requests are public.
// GET /api/v1/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	req, err := h.requests.View(ctx, userID, h.adminService.IsAdmin(ctx, userID), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", gin.H{
		"request":       req,
		"category_path": req.CategoryPath(),
	})
}
