package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reverse-market/internal/models"
	"reverse-market/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminRequestHandler serves request moderation for admins
type AdminRequestHandler struct {
	requests *services.RequestService
	export   *services.ExportService
	log      *zap.Logger
}

func NewAdminRequestHandler(requests *services.RequestService, export *services.ExportService, log *zap.Logger) *AdminRequestHandler {
	return &AdminRequestHandler{
		requests: requests,
		export:   export,
		log:      log.Named("admin_requests"),
	}
}

// ListRequests returns requests newest first, optionally filtered by status
// GET /api/v1/admin/requests?status=&page=
func (h *AdminRequestHandler) ListRequests(c *gin.Context) {
	status, ok := statusQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgInvalidStatus})
		return
	}

	page, err := h.requests.List(c.Request.Context(), status, pageQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", page)
}

// GetRequest returns one request with its buyer, category path and images
// GET /api/v1/admin/requests/:id
func (h *AdminRequestHandler) GetRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	req, err := h.requests.Details(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", gin.H{
		"request":       req,
		"category_path": req.CategoryPath(),
	})
}

type updateStatusRequest struct {
	Status     int     `json:"status"`
	AdminNotes *string `json:"admin_notes" binding:"omitempty,max=2000"`
}

// UpdateStatus approves, rejects, postpones or resets a request
// POST /api/v1/admin/requests/:id/status
func (h *AdminRequestHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	status := models.RequestStatus(req.Status)
	updated, err := h.requests.UpdateStatus(c.Request.Context(), actor(c), id, status, req.AdminNotes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, statusMessage(status), updated)
}

type editRequestRequest struct {
	Title          string  `json:"title" binding:"required,max=200"`
	Description    string  `json:"description" binding:"required"`
	CategoryID     uint    `json:"category_id" binding:"required"`
	SubCategory1ID *uint   `json:"sub_category1_id"`
	SubCategory2ID *uint   `json:"sub_category2_id"`
	City           string  `json:"city" binding:"max=100"`
	District       string  `json:"district" binding:"max=100"`
	Location       *string `json:"location" binding:"omitempty,max=255"`
	AdminNotes     *string `json:"admin_notes" binding:"omitempty,max=2000"`
}

// EditRequest updates a request's content
// PUT /api/v1/admin/requests/:id
func (h *AdminRequestHandler) EditRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req editRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	updated, err := h.requests.Edit(c.Request.Context(), actor(c), id, services.RequestEdit{
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		SubCategory1ID: req.SubCategory1ID,
		SubCategory2ID: req.SubCategory2ID,
		City:           req.City,
		District:       req.District,
		Location:       req.Location,
		AdminNotes:     req.AdminNotes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, msgRequestUpdated, updated)
}

// DeleteRequest removes a request and its images
// DELETE /api/v1/admin/requests/:id
func (h *AdminRequestHandler) DeleteRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.requests.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgRequestDeleted})
}

// ToggleStatus switches a request between approved and postponed
// POST /api/v1/admin/requests/:id/toggle
func (h *AdminRequestHandler) ToggleStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	updated, err := h.requests.ToggleStatus(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := msgRequestActivated
	if updated.Status == models.RequestStatusPostponed {
		message = msgRequestStopped
	}
	respondOK(c, message, updated)
}

// ExportRequests downloads the filtered request list as a spreadsheet
// GET /api/v1/admin/requests/export?status=
func (h *AdminRequestHandler) ExportRequests(c *gin.Context) {
	status, ok := statusQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgInvalidStatus})
		return
	}

	var buf bytes.Buffer
	rows, err := h.export.WriteRequests(c.Request.Context(), status, &buf)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("requests_%s.xlsx", time.Now().Format("20060102_150405"))
	h.log.Info("requests exported", zap.Int("rows", rows), zap.Uint("admin_id", c.GetUint(ctxAdminID)))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
