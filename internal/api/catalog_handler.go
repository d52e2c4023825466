package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/institute-cms/internal/catalog"
	"github.com/institute-cms/internal/content"
	"github.com/institute-cms/internal/service"
	"github.com/rs/zerolog"
)

// CatalogHandler serves the public read projections of the published content
type CatalogHandler struct {
	services *service.Services
	memo     *catalog.Memo
	log      zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(services *service.Services, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		services: services,
		memo:     &catalog.Memo{},
		log:      log.With().Str("handler", "catalog").Logger(),
	}
}

// published loads the published tree and a key identifying its revision
func (h *CatalogHandler) published(c *gin.Context) (content.Tree, string, bool) {
	rev, err := h.services.Content.Load(c.Request.Context(), false)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load content")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load content"})
		return nil, "", false
	}
	tree := content.Tree(rev.Content)
	return tree, fmt.Sprintf("%d@%s", rev.Version, tree.LastModified()), true
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	tree, _, ok := h.published(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": catalog.CategoriesWithCounts(tree)})
}

// ListCourses handles GET /api/courses?q=&category=&featured=&grouped=
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	var filter catalog.Filter
	filter.Query = c.Query("q")
	filter.Category = c.Query("category")
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "featured must be true or false"})
			return
		}
		filter.Featured = &featured
	}

	tree, revision, ok := h.published(c)
	if !ok {
		return
	}

	if c.Query("grouped") == "true" {
		c.JSON(http.StatusOK, gin.H{"groups": h.memo.Grouped(revision, tree)})
		return
	}

	courses := catalog.FilterCourses(catalog.VisibleCourses(tree), filter)
	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"count":   len(courses),
	})
}

// GetCourse handles GET /api/courses/:slug
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	tree, _, ok := h.published(c)
	if !ok {
		return
	}
	course, found := tree.ResolveCourse(c.Param("slug"))
	if !found || !course.Visible {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"course":     course,
		"categories": tree.CourseCategories(course),
	})
}

// GetLearningPath handles GET /api/learning-paths/:slug
func (h *CatalogHandler) GetLearningPath(c *gin.Context) {
	tree, _, ok := h.published(c)
	if !ok {
		return
	}
	view, found := catalog.ResolvedPath(tree, c.Param("slug"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "learning path not found"})
		return
	}
	c.JSON(http.StatusOK, view)
}
