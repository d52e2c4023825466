package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/institute-cms/internal/config"
	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/service"
	"github.com/rs/zerolog"
)

// allowedAttachments lists the attachment extensions accepted with a contact form
var allowedAttachments = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ContactHandler handles public contact submissions
type ContactHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "contact").Logger(),
	}
}

// Submit handles POST /api/contact
// Accepts a multipart form with an optional "attachment" file
func (h *ContactHandler) Submit(c *gin.Context) {
	var form models.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid form"})
		return
	}

	attachmentPath, ok := h.saveAttachment(c)
	if !ok {
		return
	}

	lead, fieldErrs, err := h.services.Lead.Submit(c.Request.Context(), &form, attachmentPath)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store contact lead")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to submit form"})
		return
	}
	if len(fieldErrs) > 0 {
		if attachmentPath != "" {
			os.Remove(attachmentPath)
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation failed", "errors": fieldErrs})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      lead.ID,
		"message": "Thank you, we will get back to you shortly",
	})
}

// saveAttachment stores the optional upload and returns its path. It writes
// the error response itself and reports false on failure.
func (h *ContactHandler) saveAttachment(c *gin.Context) (string, bool) {
	file, header, err := c.Request.FormFile("attachment")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", true
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid attachment"})
		return "", false
	}
	defer file.Close()

	// Validate file size
	if header.Size > h.cfg.Upload.MaxSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("file too large, max size is %d MB", h.cfg.Upload.MaxSize/(1024*1024)),
		})
		return "", false
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAttachments[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "attachment type not allowed"})
		return "", false
	}

	// Save uploaded file
	uploadDir := h.cfg.Upload.Dir
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		h.log.Error().Err(err).Msg("Failed to create upload directory")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save file"})
		return "", false
	}

	filename := fmt.Sprintf("contact_%s%s", uuid.New().String()[:8], ext)
	filePath := filepath.Join(uploadDir, filename)

	dst, err := os.Create(filePath)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create file")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save file"})
		return "", false
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.log.Error().Err(err).Msg("Failed to copy file")
		os.Remove(filePath)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save file"})
		return "", false
	}

	h.log.Info().
		Str("file", header.Filename).
		Int64("size_bytes", header.Size).
		Msg("Contact attachment stored")

	return filePath, true
}
