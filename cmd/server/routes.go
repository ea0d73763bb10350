package main

import (
	"github.com/gin-gonic/gin"

	"github.com/ourpaint/ourpainthub/backend/internal/handlers"
	"github.com/ourpaint/ourpainthub/backend/internal/middleware"
	"github.com/ourpaint/ourpainthub/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiters: tight on credential endpoints, looser on uploads
	authLimiter := middleware.NewRateLimiter(5, 10)
	uploadLimiter := middleware.NewRateLimiter(2, 5)

	// Health check
	r.GET("/health", handlers.Health)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Public downloads (site media: images, videos, installers)
		api.GET("/media", svc.contentHandler.ListMedia)
		api.GET("/media/:id/file", svc.contentHandler.DownloadMedia)
		api.GET("/news", svc.contentHandler.ListNews)
		api.GET("/documentation", svc.contentHandler.ListDocumentation)
		api.GET("/documentation/:id", svc.contentHandler.GetDocumentation)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Users & profiles
			protected.GET("/users", svc.userHandler.List)
			protected.GET("/users/:id", svc.userHandler.GetProfile)
			protected.GET("/users/:id/avatar", svc.userHandler.Avatar)
			protected.PATCH("/profile", svc.userHandler.UpdateProfile)

			// Friends
			protected.GET("/friends", svc.friendHandler.List)
			protected.POST("/friends", svc.friendHandler.Add)
			protected.GET("/friends/requests", svc.friendHandler.Incoming)
			protected.GET("/friends/sent", svc.friendHandler.Outgoing)
			protected.POST("/friends/requests/:id", svc.friendHandler.Respond)
			protected.DELETE("/friends/requests/:id", svc.friendHandler.Cancel)
			protected.DELETE("/friends/:id", svc.friendHandler.Remove)

			// Projects
			protected.POST("/projects", uploadLimiter.Middleware(), svc.projectHandler.Create)
			protected.GET("/projects", svc.projectHandler.List)
			protected.PATCH("/projects/:id", uploadLimiter.Middleware(), svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)
			protected.GET("/projects/:id/file", svc.projectHandler.Download)
			protected.GET("/projects/:id/history", svc.projectHandler.History)
			protected.GET("/projects/:id/versions", svc.projectHandler.Versions)
			protected.POST("/projects/:id/share", svc.projectHandler.Share)
			protected.GET("/projects/received", svc.projectHandler.Received)
			protected.DELETE("/projects/received/:id", svc.projectHandler.Unshare)

			// FAQ
			protected.GET("/faq", svc.contentHandler.ListFAQ)
			protected.POST("/faq", svc.contentHandler.AskQuestion)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Roles
			admin.PUT("/users/:id/role", svc.userHandler.SetRole)

			// News
			admin.POST("/news", svc.contentHandler.CreateNews)
			admin.PATCH("/news/:id", svc.contentHandler.UpdateNews)
			admin.DELETE("/news/:id", svc.contentHandler.DeleteNews)

			// Documentation
			admin.POST("/documentation", svc.contentHandler.CreateDocumentation)
			admin.PATCH("/documentation/:id", svc.contentHandler.UpdateDocumentation)
			admin.DELETE("/documentation/:id", svc.contentHandler.DeleteDocumentation)

			// FAQ moderation
			admin.POST("/faq/:id/answer", svc.contentHandler.AnswerQuestion)
			admin.DELETE("/faq/:id", svc.contentHandler.DeleteQuestion)

			// Media
			admin.POST("/media", uploadLimiter.Middleware(), svc.contentHandler.UploadMedia)
			admin.DELETE("/media/:id", svc.contentHandler.DeleteMedia)

			// Logs
			admin.GET("/system-logs", svc.logHandler.List)
			admin.GET("/system-logs/modules", svc.logHandler.Modules)
			admin.GET("/entity-logs", svc.logHandler.EntityLogs)
		}
	}
}
