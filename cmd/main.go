package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"reverse-market/internal/auth"
	"reverse-market/internal/config"
	"reverse-market/internal/database"
	"reverse-market/internal/handlers"
	"reverse-market/internal/jobs"
	"reverse-market/internal/logger"
	"reverse-market/internal/mailer"
	"reverse-market/internal/repository"
	"reverse-market/internal/services"
	"reverse-market/internal/whatsapp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	db, err := database.Connect(cfg.GetDSN())
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.AutoMigrate(db, zlog); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}

	repo := repository.NewRepository(db)

	// Outbound channels. A disabled channel stays a nil interface.
	var email services.EmailSender
	if cfg.SMTP.Enabled {
		email = mailer.New(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	var wa services.WhatsAppSender
	if cfg.WhatsApp.Enabled {
		wa = whatsapp.NewClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.APIToken, cfg.WhatsApp.SenderID, cfg.WhatsApp.Lang)
	}
	zlog.Info("notification channels",
		zap.Bool("email", email != nil),
		zap.Bool("whatsapp", wa != nil))

	// Initialize services
	adminService := services.NewAdminService(repo, zlog)
	categoryService := services.NewCategoryService(repo)
	notificationService := services.NewNotificationService(repo, email, wa, cfg.Server.PublicURL, zlog)
	notifier := services.NewRequestNotifier(repo, notificationService, ratelimit.New(cfg.Notifications.StoreSendsPerSecond), zlog)

	fanout := jobs.NewFanoutWorker(notifier, cfg.Notifications.QueueSize, zlog)
	fanout.Start()

	requestService := services.NewRequestService(repo, categoryService, notifier, fanout, adminService, zlog)
	exportService := services.NewExportService(requestService)
	profileService := services.NewProfileService(repo, categoryService, cfg.Server.UploadDir, zlog)
	storeLinkService := services.NewStoreLinkService(repo, notificationService, adminService, zlog)
	authService := services.NewAuthService(repo, zlog)
	userService := services.NewUserService(repo)

	// Purge read notifications past the retention window
	cleanup := jobs.NewNotificationCleanup(
		notificationService,
		time.Duration(cfg.Notifications.CleanupIntervalMins)*time.Minute,
		time.Duration(cfg.Notifications.RetentionDays)*24*time.Hour,
		zlog,
	)
	go cleanup.Start()

	// Set up Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(zlog))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = 8 << 20
	router.Static(services.UploadURLPrefix, cfg.Server.UploadDir)

	handlers.RegisterRoutes(router, &handlers.Handlers{
		Auth:          handlers.NewAuthHandler(authService, userService, adminService, zlog),
		Admin:         handlers.NewAdminHandler(adminService, zlog),
		AdminRequests: handlers.NewAdminRequestHandler(requestService, exportService, zlog),
		AdminStores:   handlers.NewAdminStoreHandler(storeLinkService, zlog),
		Profile:       handlers.NewProfileHandler(profileService, zlog),
		Requests:      handlers.NewRequestHandler(requestService, adminService, zlog),
		Notifications: handlers.NewNotificationHandler(notificationService, zlog),
		Categories:    handlers.NewCategoryHandler(categoryService, adminService, zlog),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	cleanup.Stop()
	if err := fanout.Stop(ctx); err != nil {
		zlog.Warn("store fan-out did not drain before shutdown", zap.Error(err))
	}

	zlog.Info("Server exited")
}

// requestLogger logs each request with zap
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
