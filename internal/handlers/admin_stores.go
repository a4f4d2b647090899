package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reverse-market/internal/services"
)

// AdminStoreHandler serves store link moderation and seller account actions
type AdminStoreHandler struct {
	stores *services.StoreLinkService
	log    *zap.Logger
}

func NewAdminStoreHandler(stores *services.StoreLinkService, log *zap.Logger) *AdminStoreHandler {
	return &AdminStoreHandler{
		stores: stores,
		log:    log.Named("admin_stores"),
	}
}

// ListPendingLinks returns sellers with links awaiting review
// GET /api/v1/admin/stores/pending
func (h *AdminStoreHandler) ListPendingLinks(c *gin.Context) {
	page, err := h.stores.ListPending(c.Request.Context(), pageQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", page)
}

func (h *AdminStoreHandler) slotParam(c *gin.Context) (int, bool) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		respondError(c, h.log, services.ErrInvalidLinkSlot)
		return 0, false
	}
	return slot, true
}

// ApproveLink publishes one pending link
// POST /api/v1/admin/stores/:id/links/:slot/approve
func (h *AdminStoreHandler) ApproveLink(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	slot, ok := h.slotParam(c)
	if !ok {
		return
	}

	user, err := h.stores.ApproveLink(c.Request.Context(), actor(c), userID, slot)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, msgLinkApproved, user)
}

// RejectLink discards one pending link
// POST /api/v1/admin/stores/:id/links/:slot/reject
func (h *AdminStoreHandler) RejectLink(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	slot, ok := h.slotParam(c)
	if !ok {
		return
	}

	user, err := h.stores.RejectLink(c.Request.Context(), actor(c), userID, slot)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, msgLinkRejected, user)
}

// ApproveAllLinks publishes every pending link of a seller
// POST /api/v1/admin/stores/:id/links/approve-all
func (h *AdminStoreHandler) ApproveAllLinks(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.stores.ApproveAll(c.Request.Context(), actor(c), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, msgAllLinksApproved, user)
}

// ApproveStore marks a seller's store as approved
// POST /api/v1/admin/stores/:id/approve
func (h *AdminStoreHandler) ApproveStore(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.stores.ApproveStore(c.Request.Context(), actor(c), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, msgStoreApproved, user)
}

// ToggleUserActive enables or disables an account
// POST /api/v1/admin/users/:id/toggle-active
func (h *AdminStoreHandler) ToggleUserActive(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.stores.ToggleUserActive(c.Request.Context(), actor(c), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := msgUserDeactivated
	if user.IsActive {
		message = msgUserActivated
	}
	respondOK(c, message, user)
}
