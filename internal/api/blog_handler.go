package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/service"
	"github.com/institute-cms/internal/validation"
	"github.com/rs/zerolog"
)

// BlogHandler handles blog endpoints
type BlogHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(services *service.Services, log zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		services: services,
		log:      log.With().Str("handler", "blog").Logger(),
	}
}

// List handles GET /api/admin/blog
func (h *BlogHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListPublished handles GET /api/blog
func (h *BlogHandler) ListPublished(c *gin.Context) {
	h.list(c, true)
}

func (h *BlogHandler) list(c *gin.Context, publishedOnly bool) {
	posts, err := h.services.Blog.List(c.Request.Context(), publishedOnly)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list blog posts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list blog posts"})
		return
	}
	if posts == nil {
		posts = []*models.BlogPost{}
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// GetPublished handles GET /api/blog/:slug
func (h *BlogHandler) GetPublished(c *gin.Context) {
	post, err := h.services.Blog.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get blog post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get blog post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// Get handles GET /api/admin/blog/:id
func (h *BlogHandler) Get(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	post, err := h.services.Blog.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to get blog post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get blog post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create handles POST /api/admin/blog
func (h *BlogHandler) Create(c *gin.Context) {
	var in models.BlogPostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, fieldErrs, err := h.services.Blog.Create(c.Request.Context(), &in)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create blog post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create blog post"})
		return
	}
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": fieldErrs})
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Update handles PUT /api/admin/blog/:id
func (h *BlogHandler) Update(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	var in models.BlogPostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, fieldErrs, err := h.services.Blog.Update(c.Request.Context(), id, &in)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to update blog post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update blog post"})
		return
	}
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": fieldErrs})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /api/admin/blog/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	deleted, err := h.services.Blog.Delete(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete blog post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete blog post"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func postID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !validation.IsValidID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return "", false
	}
	return id, true
}
