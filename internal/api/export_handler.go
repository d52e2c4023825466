package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/institute-cms/internal/service"
	"github.com/rs/zerolog"
)

// ExportHandler handles the lead export endpoint
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// ExportLeads handles GET /api/leads?format=...
// Streams the export directly to the response
func (h *ExportHandler) ExportLeads(c *gin.Context) {
	format := c.Query("format")
	if format == "" {
		format = "json"
	}
	if format != "ndjson" && format != "json" && format != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: json, ndjson, csv"})
		return
	}

	h.log.Info().
		Str("format", format).
		Str("user", c.GetString(gin.AuthUserKey)).
		Msg("Starting lead export")

	if err := h.services.Lead.StreamLeads(c.Request.Context(), c.Writer, format); err != nil {
		h.log.Error().Err(err).Msg("Lead export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
