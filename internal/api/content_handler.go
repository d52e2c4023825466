package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/repository"
	"github.com/institute-cms/internal/service"
	"github.com/rs/zerolog"
)

// defaultAuditLimit caps GET /api/content/audit when no limit is given
const defaultAuditLimit = 50

// ContentHandler handles the content store endpoints
type ContentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(services *service.Services, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		services: services,
		log:      log.With().Str("handler", "content").Logger(),
	}
}

// GetContent handles GET /api/content. Admins may pass ?draft=true to read
// the newest revision including drafts.
func (h *ContentHandler) GetContent(c *gin.Context) {
	ctx := c.Request.Context()

	includeDrafts := false
	if c.Query("draft") == "true" {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "drafts require a bearer token"})
			return
		}
		if _, err := h.services.Auth.Verify(ctx, token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		includeDrafts = true
	}

	rev, err := h.services.Content.Load(ctx, includeDrafts)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load content")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content": rev.Content,
		"version": rev.Version,
		"isDraft": rev.IsDraft,
	})
}

// SaveContent handles POST /api/content
func (h *ContentHandler) SaveContent(c *gin.Context) {
	var req models.SaveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	claims := currentClaims(c)
	rev, err := h.services.Content.Save(c.Request.Context(), claims.Subject, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, repository.ErrVersionConflict):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		default:
			h.log.Error().Err(err).Msg("Failed to save content")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save content"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"version": rev.Version,
		"isDraft": rev.IsDraft,
	})
}

// AuditLogs handles GET /api/content/audit?limit=...
func (h *ContentHandler) AuditLogs(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	logs, err := h.services.Content.AuditLogs(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list audit logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}

// Drift handles GET /api/content/drift
func (h *ContentHandler) Drift(c *gin.Context) {
	report, err := h.services.Content.Drift(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute drift report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute drift report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ForceSync handles POST /api/admin/force-sync
func (h *ContentHandler) ForceSync(c *gin.Context) {
	if err := h.services.Content.ForceSync(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("Force sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "force sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
