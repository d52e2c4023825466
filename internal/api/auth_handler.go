package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/institute-cms/internal/auth"
	"github.com/institute-cms/internal/service"
	"github.com/institute-cms/internal/session"
	"github.com/rs/zerolog"
)

// Context keys set by authMiddleware
const (
	claimsKey = "claims"
	tokenKey  = "token"
)

// AuthHandler handles admin login endpoints
type AuthHandler struct {
	services *service.Services
	sessions *session.Store
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, sessions *session.Store, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		sessions: sessions,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /api/admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, claims, err := h.services.Auth.Login(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
			return
		}
		h.log.Error().Err(err).Msg("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": claims.ExpiresAt.Time,
	})
}

// Logout handles POST /api/admin/logout. The editing session of the token is
// discarded along with any uncommitted edits.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, err := h.services.Auth.Logout(c.Request.Context(), c.GetString(tokenKey))
	if err != nil {
		h.log.Error().Err(err).Msg("Logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	h.sessions.Close(claims.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Verify handles GET /api/admin/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	claims := currentClaims(c)
	c.JSON(http.StatusOK, gin.H{
		"valid":     true,
		"user":      claims.Subject,
		"expiresAt": claims.ExpiresAt.Time,
	})
}

// authMiddleware requires a valid, unrevoked bearer token
func authMiddleware(authSvc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := authSvc.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func currentClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(claimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}
