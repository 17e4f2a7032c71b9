package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notesapp/notes-api/internal/handler"
	"github.com/notesapp/notes-api/internal/middleware"
)

// Handlers groups the HTTP handlers and middleware the router mounts
type Handlers struct {
	Auth           *handler.AuthHandler
	Notes          *handler.NoteHandler
	Tags           *handler.TagHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    middleware.RateLimiter
}

func SetupRouter(h Handlers, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), requestLogger(logger))
	r.SetTrustedProxies(nil)

	// Public routes
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes (Public)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", middleware.LimitByClientIP(h.RateLimiter, "register", logger), h.Auth.Register)
		authGroup.POST("/login", middleware.LimitByClientIP(h.RateLimiter, "login", logger), h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.RefreshToken)
	}

	// Protected API routes
	api := r.Group("/api/v1")
	api.Use(h.AuthMiddleware.RequireAuth())
	{
		api.POST("/notes", h.Notes.CreateNote)
		api.GET("/notes", h.Notes.ListNotes)
		api.GET("/notes/:id", h.Notes.GetNote)
		api.PUT("/notes/:id", h.Notes.UpdateNote)
		api.DELETE("/notes/:id", h.Notes.DeleteNote)
		api.GET("/tags", h.Tags.ListTags)
	}

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Debug("🌐 [HTTP] Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"request_id", c.GetString(middleware.RequestIDKey),
		)
	}
}
