package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reverse-market/internal/auth"
)

// Handlers bundles every route handler
type Handlers struct {
	Auth          *AuthHandler
	Admin         *AdminHandler
	AdminRequests *AdminRequestHandler
	AdminStores   *AdminStoreHandler
	Profile       *ProfileHandler
	Requests      *RequestHandler
	Notifications *NotificationHandler
	Categories    *CategoryHandler
}

// RegisterRoutes mounts the API under /api/v1
func RegisterRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/logout", h.Auth.Logout)
	v1.GET("/categories", h.Categories.GetTree)

	api := v1.Group("")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/auth/me", h.Auth.GetMe)

		api.POST("/requests", h.Requests.CreateRequest)
		api.GET("/requests/:id", h.Requests.GetRequest)

		profile := api.Group("/profile")
		{
			profile.GET("", h.Profile.GetProfile)
			profile.PUT("", h.Profile.UpdateProfile)
			profile.GET("/edit", h.Profile.GetEditForm)
			profile.GET("/requests", h.Profile.GetMyRequests)
			profile.GET("/store", h.Profile.GetStore)
			profile.PUT("/store", h.Profile.UpdateStore)
			profile.POST("/image", h.Profile.UploadProfileImage)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.Notifications.List)
			notifications.GET("/unread-count", h.Notifications.UnreadCount)
			notifications.POST("/read-all", h.Notifications.MarkAllRead)
			notifications.POST("/:id/read", h.Notifications.MarkRead)
		}
	}

	admin := v1.Group("/admin")
	admin.Use(auth.AuthMiddleware(), h.Admin.AdminMiddleware())
	{
		// Request moderation
		admin.GET("/requests", h.AdminRequests.ListRequests)
		admin.GET("/requests/export", h.AdminRequests.ExportRequests)
		admin.GET("/requests/:id", h.AdminRequests.GetRequest)
		admin.PUT("/requests/:id", h.AdminRequests.EditRequest)
		admin.DELETE("/requests/:id", h.AdminRequests.DeleteRequest)
		admin.POST("/requests/:id/status", h.AdminRequests.UpdateStatus)
		admin.POST("/requests/:id/toggle", h.AdminRequests.ToggleStatus)

		// Store links and accounts
		admin.GET("/stores/pending", h.AdminStores.ListPendingLinks)
		admin.POST("/stores/:id/approve", h.AdminStores.ApproveStore)
		admin.POST("/stores/:id/links/approve-all", h.AdminStores.ApproveAllLinks)
		admin.POST("/stores/:id/links/:slot/approve", h.AdminStores.ApproveLink)
		admin.POST("/stores/:id/links/:slot/reject", h.AdminStores.RejectLink)
		admin.POST("/users/:id/toggle-active", h.AdminStores.ToggleUserActive)

		// Categories
		admin.POST("/categories", h.Categories.CreateCategory)
		admin.POST("/categories/:id/subcategories", h.Categories.CreateSubCategory1)
		admin.POST("/subcategories/:id/subcategories", h.Categories.CreateSubCategory2)

		admin.GET("/logs", h.Admin.GetAdminLogs)
		admin.POST("/users/:id/promote", h.Admin.SuperAdminMiddleware(), h.Admin.PromoteUser)
	}
}
