package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/notesapp/notes-api/internal/auth"
	"github.com/notesapp/notes-api/internal/database/service"
)

// IdentityKey is the gin context key holding the caller's auth.Identity
const IdentityKey = "identity"

// AuthMiddleware handles JWT validation
type AuthMiddleware struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance
func NewAuthMiddleware(service service.AuthService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		service: service,
		logger:  logger,
	}
}

// RequireAuth validates the bearer token and stores the caller's identity in the context
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.logger.Warn("⚠️ [Middleware] Missing Authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			m.logger.Warn("⚠️ [Middleware] Invalid Authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		identity, err := m.service.Authenticate(parts[1])
		if err != nil {
			m.logger.Warn("⚠️ [Middleware] Invalid token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(IdentityKey, identity)
		m.logger.Debug("✅ [Middleware] Token validated", "user_id", identity.UserID)

		c.Next()
	}
}

// IdentityFrom returns the identity set by RequireAuth. Outside an
// authenticated route it returns the zero Identity.
func IdentityFrom(c *gin.Context) auth.Identity {
	value, ok := c.Get(IdentityKey)
	if !ok {
		return auth.Identity{}
	}
	identity, _ := value.(auth.Identity)
	return identity
}
