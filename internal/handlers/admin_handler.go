package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reverse-market/internal/auth"
	"reverse-market/internal/models"
	"reverse-market/internal/services"
)

const (
	ctxAdminID   = "admin_id"
	ctxAdminRole = "admin_role"
)

// AdminHandler guards the admin area and serves admin membership endpoints
type AdminHandler struct {
	adminService *services.AdminService
	log          *zap.Logger
}

func NewAdminHandler(adminService *services.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		log:          log.Named("admin"),
	}
}

// AdminMiddleware checks if user is admin
func (h *AdminHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msgUnauthorized})
			return
		}

		admin, err := h.adminService.GetAdminByUserID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": msgNotAdmin})
			return
		}

		c.Set(ctxAdminID, admin.ID)
		c.Set(ctxAdminRole, admin.Role)
		c.Next()
	}
}

// SuperAdminMiddleware checks if user is super admin
func (h *AdminHandler) SuperAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxAdminRole)
		if !exists || role != models.AdminRoleSuper {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": msgSuperAdminOnly})
			return
		}
		c.Next()
	}
}

// actor identifies the admin performing a request. Only valid behind
// AdminMiddleware.
func actor(c *gin.Context) services.Actor {
	userID, _ := auth.GetUserID(c)
	return services.Actor{
		UserID:  userID,
		AdminID: c.GetUint(ctxAdminID),
	}
}

// GetAdminLogs returns admin activity logs
// GET /api/v1/admin/logs
func (h *AdminHandler) GetAdminLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.adminService.GetAdminLogs(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"limit":   limit,
		"offset":  offset,
	})
}

// PromoteUser grants admin access to a user
// POST /api/v1/admin/users/:id/promote
func (h *AdminHandler) PromoteUser(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required,oneof=SUPER_ADMIN MODERATOR"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	admin, err := h.adminService.PromoteUserToAdmin(c.Request.Context(), actor(c), userID, req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": msgAdminPromoted,
		"data":    admin,
	})
}
