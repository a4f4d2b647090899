package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reverse-market/internal/services"
)

// CategoryHandler serves the category tree and its admin maintenance
type CategoryHandler struct {
	categories *services.CategoryService
	audit      services.AuditLogger
	log        *zap.Logger
}

func NewCategoryHandler(categories *services.CategoryService, audit services.AuditLogger, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		audit:      audit,
		log:        log.Named("categories"),
	}
}

// GetTree returns active categories with their active subcategories
// GET /api/v1/categories
func (h *CategoryHandler) GetTree(c *gin.Context) {
	tree, err := h.categories.Tree(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", tree)
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	Image       string `json:"image" binding:"max=500"`
	SortOrder   int    `json:"sort_order"`
}

func (r categoryRequest) input(parentID uint) services.CategoryInput {
	return services.CategoryInput{
		ParentID:    parentID,
		Name:        r.Name,
		Description: r.Description,
		Image:       r.Image,
		SortOrder:   r.SortOrder,
	}
}

// create binds the form, runs fn and records the new category id
func (h *CategoryHandler) create(c *gin.Context, level string, fn func(in services.CategoryInput) (uint, interface{}, error)) {
	var parentID uint
	if c.Param("id") != "" {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		parentID = id
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	id, created, err := fn(req.input(parentID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.audit.LogAdminAction(c.Request.Context(), actor(c), services.ActionCreateCategory, services.ResourceCategory, &id, map[string]interface{}{
		"level":     level,
		"name":      req.Name,
		"parent_id": parentID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": msgCategoryCreated,
		"data":    created,
	})
}

// CreateCategory adds a top-level category
// POST /api/v1/admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	h.create(c, "category", func(in services.CategoryInput) (uint, interface{}, error) {
		cat, err := h.categories.CreateCategory(c.Request.Context(), in)
		if err != nil {
			return 0, nil, err
		}
		return cat.ID, cat, nil
	})
}

// CreateSubCategory1 adds a subcategory under category :id
// POST /api/v1/admin/categories/:id/subcategories
func (h *CategoryHandler) CreateSubCategory1(c *gin.Context) {
	h.create(c, "sub_category1", func(in services.CategoryInput) (uint, interface{}, error) {
		sub, err := h.categories.CreateSubCategory1(c.Request.Context(), in)
		if err != nil {
			return 0, nil, err
		}
		return sub.ID, sub, nil
	})
}

// CreateSubCategory2 adds a leaf under subcategory :id
// POST /api/v1/admin/subcategories/:id/subcategories
func (h *CategoryHandler) CreateSubCategory2(c *gin.Context) {
	h.create(c, "sub_category2", func(in services.CategoryInput) (uint, interface{}, error) {
		sub, err := h.categories.CreateSubCategory2(c.Request.Context(), in)
		if err != nil {
			return 0, nil, err
		}
		return sub.ID, sub, nil
	})
}
