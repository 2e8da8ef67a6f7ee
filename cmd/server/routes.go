package main

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luneclub/lune/backend/internal/handlers"
	"github.com/luneclub/lune/backend/internal/middleware"
	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/storage"
	"github.com/luneclub/lune/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	db := models.GetDB()

	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.Server.CORSOrigins))

	// Rate limiter for credential endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	healthHandler := handlers.NewHealthHandler(db, svc.taskQueue)
	r.GET("/health", healthHandler.CheckHealth)

	metricsHandler := handlers.NewMetricsHandler(db, svc.taskQueue)
	r.GET("/metrics", metricsHandler.Metrics)

	// Local uploads are served by the API process; S3 objects are not.
	if local, ok := svc.store.(*storage.LocalStorage); ok && strings.HasPrefix(svc.cfg.Storage.BaseURL, "/") {
		r.Static(svc.cfg.Storage.BaseURL, local.BasePath())
	}

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.RegisterMember)
			auth.POST("/register/cast", svc.authHandler.RegisterCast)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.POST("/logout", svc.authHandler.Logout)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.PUT("/auth/password", svc.authHandler.ChangePassword)

			// Dashboard (all roles)
			dashboardHandler := handlers.NewDashboardHandler(db)
			protected.GET("/dashboard", dashboardHandler.GetStats)

			// Cast directory (all roles)
			castHandler := handlers.NewCastHandler(db)
			protected.GET("/casts", castHandler.Browse)
			protected.GET("/casts/:id", castHandler.Get)

			meetingHandler := handlers.NewMeetingHandler(db)
			bookmarkHandler := handlers.NewBookmarkHandler(db)

			// Member-only routes
			member := protected.Group("", middleware.RoleRequired(models.RoleMember))
			{
				member.POST("/meetings/request", meetingHandler.Request)
				member.GET("/meetings", meetingHandler.ListMine)

				member.POST("/bookmarks", bookmarkHandler.Add)
				member.DELETE("/bookmarks", bookmarkHandler.Remove)
				member.GET("/bookmarks", bookmarkHandler.List)
			}

			// Admin-only routes
			admin := protected.Group("/admin", middleware.AdminRequired(), middleware.AuditLog())
			{
				admin.GET("/meeting-requests", meetingHandler.List)
				admin.GET("/meeting-requests/:id", meetingHandler.Get)
				admin.POST("/meeting-requests/:id/confirm", meetingHandler.Confirm)
				admin.POST("/meeting-requests/:id/complete", meetingHandler.Complete)
				admin.POST("/meeting-requests/:id/cancel", meetingHandler.Cancel)

				memberHandler := handlers.NewMemberHandler(db, svc.uploads, svc.taskQueue)
				admin.GET("/members", memberHandler.List)
				admin.POST("/members", memberHandler.Create)
				admin.GET("/members/:id", memberHandler.Get)
				admin.PUT("/members/:id", memberHandler.Update)
				admin.DELETE("/members/:id", memberHandler.Delete)
				admin.POST("/members/:id/upgrade", memberHandler.Upgrade)
				admin.POST("/members/:id/downgrade", memberHandler.Downgrade)
				admin.POST("/members/:id/approve", memberHandler.Approve)
				admin.POST("/members/:id/toggle-active", memberHandler.ToggleActive)
				admin.POST("/members/:id/toggle-payment", memberHandler.TogglePayment)
				admin.POST("/members/:id/photos", memberHandler.AddPhotos)
				admin.POST("/members/:id/photos/upload", memberHandler.UploadPhoto)
				admin.PUT("/members/:id/photos/order", memberHandler.ReorderPhotos)
				admin.POST("/members/:id/photos/:photoId/verify", memberHandler.VerifyPhoto)
				admin.DELETE("/members/:id/photos/:photoId", memberHandler.DeletePhoto)
				admin.POST("/uploads/temp", memberHandler.TempUpload)

				castAdminHandler := handlers.NewCastAdminHandler(db)
				admin.GET("/casts", castAdminHandler.List)
				admin.POST("/casts/:id/approve", castAdminHandler.Approve)
				admin.POST("/casts/:id/deactivate", castAdminHandler.Deactivate)
				admin.POST("/casts/:id/toggle-featured", castAdminHandler.ToggleFeatured)
				admin.PUT("/casts/:id/tier", castAdminHandler.SetTier)

				adminLogHandler := handlers.NewAdminLogHandler(db)
				admin.GET("/logs", adminLogHandler.List)
				admin.GET("/logs/action-types", adminLogHandler.ActionTypes)

				systemLogHandler := handlers.NewSystemLogHandler(db)
				admin.GET("/system-logs", systemLogHandler.List)
				admin.GET("/system-logs/modules", systemLogHandler.GetModules)
				admin.GET("/system-logs/retention", systemLogHandler.GetRetention)
				admin.PUT("/system-logs/retention", systemLogHandler.SetRetention)
				admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)

				systemConfigHandler := handlers.NewSystemConfigHandler(db)
				admin.GET("/system-config", systemConfigHandler.List)
				admin.PUT("/system-config", systemConfigHandler.Update)
			}
		}
	}
}
