package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/institute-cms/internal/config"
	"github.com/institute-cms/internal/service"
	"github.com/institute-cms/internal/session"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, sessions *session.Store, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	// Handlers
	authHandler := NewAuthHandler(services, sessions, log)
	contentHandler := NewContentHandler(services, log)
	catalogHandler := NewCatalogHandler(services, log)
	blogHandler := NewBlogHandler(services, log)
	contactHandler := NewContactHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)
	editorHandler := NewEditorHandler(sessions, log)

	requireAdmin := authMiddleware(services.Auth)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services, sessions))

	api := router.Group("/api")
	{
		// Public content and catalog
		api.GET("/content", contentHandler.GetContent)
		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/courses", catalogHandler.ListCourses)
		api.GET("/courses/:slug", catalogHandler.GetCourse)
		api.GET("/learning-paths/:slug", catalogHandler.GetLearningPath)
		api.GET("/blog", blogHandler.ListPublished)
		api.GET("/blog/:slug", blogHandler.GetPublished)
		api.POST("/contact", contactHandler.Submit)

		// Lead export behind HTTP Basic auth
		if cfg.Auth.LeadsUser != "" && cfg.Auth.LeadsPassword != "" {
			api.GET("/leads", gin.BasicAuth(gin.Accounts{cfg.Auth.LeadsUser: cfg.Auth.LeadsPassword}), exportHandler.ExportLeads)
		} else {
			api.GET("/leads", func(c *gin.Context) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lead export is not configured"})
			})
		}

		// Content store
		content := api.Group("/content", requireAdmin)
		{
			content.POST("", contentHandler.SaveContent)
			content.GET("/audit", contentHandler.AuditLogs)
			content.GET("/drift", contentHandler.Drift)
		}

		// Admin
		api.POST("/admin/login", authHandler.Login)
		admin := api.Group("/admin", requireAdmin)
		{
			admin.POST("/logout", authHandler.Logout)
			admin.GET("/verify", authHandler.Verify)
			admin.POST("/force-sync", contentHandler.ForceSync)

			blog := admin.Group("/blog")
			{
				blog.GET("", blogHandler.List)
				blog.POST("", blogHandler.Create)
				blog.GET("/:id", blogHandler.Get)
				blog.PUT("/:id", blogHandler.Update)
				blog.DELETE("/:id", blogHandler.Delete)
			}

			editorHandler.Register(admin.Group("/editor"))
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "institute-cms",
	})
}

// metricsHandler returns record counts and open editing sessions
func metricsHandler(services *service.Services, sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		revisions, _ := services.Content.GetCount(ctx, "revisions")
		auditLogs, _ := services.Content.GetCount(ctx, "audit_logs")
		blogPosts, _ := services.Blog.Count(ctx)
		leads, _ := services.Lead.Count(ctx)

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"revisions":  revisions,
				"audit_logs": auditLogs,
				"blog_posts": blogPosts,
				"leads":      leads,
			},
			"sessions":  sessions.Len(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware allows the configured site and admin origins
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
