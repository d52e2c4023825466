package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/institute-cms/internal/content"
	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/repository"
	"github.com/institute-cms/internal/session"
	"github.com/institute-cms/internal/validation"
	"github.com/rs/zerolog"
)

// EditorHandler exposes the admin editing session and every content
// operation that runs against it
type EditorHandler struct {
	sessions  *session.Store
	validator *validation.Validator
	log       zerolog.Logger
}

// NewEditorHandler creates a new EditorHandler
func NewEditorHandler(sessions *session.Store, log zerolog.Logger) *EditorHandler {
	return &EditorHandler{
		sessions:  sessions,
		validator: validation.NewValidator(),
		log:       log.With().Str("handler", "editor").Logger(),
	}
}

// Register mounts the editor routes on an authenticated group
func (h *EditorHandler) Register(g *gin.RouterGroup) {
	g.GET("/session", h.GetSession)
	g.DELETE("/session", h.DiscardSession)
	g.POST("/session/update", h.Update)
	g.POST("/session/reset", h.Reset)
	g.POST("/session/commit", h.Commit)
	g.GET("/session/diff", h.Diff)
	g.POST("/session/normalize", h.Normalize)

	g.POST("/courses", h.AddCourse)
	g.PATCH("/courses/:slug", h.SetCourseField)
	g.DELETE("/courses/:slug", h.DeleteCourse)
	g.POST("/courses/:slug/rename", h.RenameCourse)

	g.POST("/categories", h.AddCategory)
	g.POST("/categories/sync-all", h.SyncAllCategories)
	g.PATCH("/categories/:key", h.SetCategoryField)
	g.DELETE("/categories/:key", h.DeleteCategory)
	g.POST("/categories/:key/sync", h.SyncCategoryKey)
	g.POST("/categories/:key/rename", h.RenameCategory)
	g.POST("/categories/:key/courses/:slug", h.AssignCourse)
	g.DELETE("/categories/:key/courses/:slug", h.RemoveCourse)

	g.POST("/paths", h.AddLearningPath)
	g.PATCH("/paths/:key", h.SetLearningPathField)
	g.DELETE("/paths/:key", h.DeleteLearningPath)
	g.POST("/paths/:key/courses", h.AddPathCourse)
	g.POST("/paths/:key/courses/move", h.MovePathCourse)
	g.PUT("/paths/:key/courses/:index", h.SetPathCourse)
	g.DELETE("/paths/:key/courses/:index", h.RemovePathCourse)
}

type fieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

// session opens or returns the caller's editing session
func (h *EditorHandler) session(c *gin.Context) (*session.Session, bool) {
	claims := currentClaims(c)
	s, err := h.sessions.Open(c.Request.Context(), claims.ID, claims.Subject)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to open editing session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load content"})
		return nil, false
	}
	return s, true
}

// respond writes the working tree after an edit
func (h *EditorHandler) respond(c *gin.Context, s *session.Session, tree content.Tree, extra gin.H) {
	body := gin.H{
		"content": tree,
		"version": s.Version(),
		"dirty":   s.Dirty(),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// apply runs op on the caller's session and writes the result
func (h *EditorHandler) apply(c *gin.Context, op session.Op) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	tree, err := s.Apply(op)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s, tree, nil)
}

// fail maps engine and store errors to status codes
func (h *EditorHandler) fail(c *gin.Context, err error) {
	switch {
	case content.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case content.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNoChanges):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("Editor operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

// bindOptional decodes a JSON body, treating an empty body as zero values
func bindOptional(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func indexParam(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return 0, false
	}
	return i, true
}

// GetSession handles GET /session
func (h *EditorHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	changed, _ := s.Changes()
	h.respond(c, s, s.Get(), gin.H{"changedKeys": changed})
}

// DiscardSession handles DELETE /session. The next request reloads the
// newest revision.
func (h *EditorHandler) DiscardSession(c *gin.Context) {
	h.sessions.Close(currentClaims(c).ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Update handles POST /session/update with {path, value}
func (h *EditorHandler) Update(c *gin.Context) {
	var req struct {
		Path  string `json:"path"`
		Value any    `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.Update(req.Path, req.Value)
	})
}

// Reset handles POST /session/reset
func (h *EditorHandler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.Reset(), nil)
}

// Commit handles POST /session/commit with {isDraft}
func (h *EditorHandler) Commit(c *gin.Context) {
	var req struct {
		IsDraft bool `json:"isDraft"`
	}
	if !bindOptional(c, &req) {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	rev, err := s.Commit(c.Request.Context(), req.IsDraft)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"version": rev.Version,
		"isDraft": rev.IsDraft,
	})
}

// Diff handles GET /session/diff
func (h *EditorHandler) Diff(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	changed, summary := s.Changes()
	c.JSON(http.StatusOK, gin.H{"changedKeys": changed, "summary": summary})
}

// Normalize handles POST /session/normalize
func (h *EditorHandler) Normalize(c *gin.Context) {
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.Normalize(), nil
	})
}

// AddCourse handles POST /courses
func (h *EditorHandler) AddCourse(c *gin.Context) {
	var in models.Course
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if errs := h.validator.ValidateCourse(&in); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": errs})
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}
	var added models.Course
	tree, err := s.Apply(func(t content.Tree) (content.Tree, error) {
		next, course, err := t.AddCourse(in)
		added = course
		return next, err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s, tree, gin.H{"course": added})
}

// SetCourseField handles PATCH /courses/:slug with {field, value}
func (h *EditorHandler) SetCourseField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	slug := c.Param("slug")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.SetCourseField(slug, req.Field, req.Value)
	})
}

// DeleteCourse handles DELETE /courses/:slug
func (h *EditorHandler) DeleteCourse(c *gin.Context) {
	slug := c.Param("slug")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.DeleteCourse(slug)
	})
}

// RenameCourse handles POST /courses/:slug/rename with {slug}
func (h *EditorHandler) RenameCourse(c *gin.Context) {
	var req struct {
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	slug := c.Param("slug")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.RenameCourse(slug, req.Slug)
	})
}

// AddCategory handles POST /categories with {name}
func (h *EditorHandler) AddCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	var key string
	tree, err := s.Apply(func(t content.Tree) (content.Tree, error) {
		next, k, err := t.AddCategory(req.Name)
		key = k
		return next, err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s, tree, gin.H{"key": key})
}

// SetCategoryField handles PATCH /categories/:key with {field, value}
func (h *EditorHandler) SetCategoryField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	key := c.Param("key")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.SetCategoryField(key, req.Field, req.Value)
	})
}

// DeleteCategory handles DELETE /categories/:key
func (h *EditorHandler) DeleteCategory(c *gin.Context) {
	key := c.Param("key")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.DeleteCategory(key)
	})
}

// SyncCategoryKey handles POST /categories/:key/sync. Without
// {"confirm": true} it only returns the plan with 428.
func (h *EditorHandler) SyncCategoryKey(c *gin.Context) {
	var req confirmRequest
	if !bindOptional(c, &req) {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	key := c.Param("key")
	plan, err := s.Get().PlanSlugSync(key)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "confirmation required", "plan": plan})
		return
	}
	tree, err := s.Apply(func(t content.Tree) (content.Tree, error) {
		return t.SyncSlugKey(key)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s, tree, gin.H{"plan": plan})
}

// RenameCategory handles POST /categories/:key/rename with {to, confirm}
func (h *EditorHandler) RenameCategory(c *gin.Context) {
	var req struct {
		To      string `json:"to"`
		Confirm bool   `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	key := c.Param("key")
	plan, err := s.Get().PlanCategoryRename(key, req.To)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "confirmation required", "plan": plan})
		return
	}
	tree, err := s.Apply(func(t content.Tree) (content.Tree, error) {
		return t.RenameCategory(key, req.To)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s, tree, gin.H{"plan": plan})
}

// SyncAllCategories handles POST /categories/sync-all. When any key would
// change and {"confirm": true} is absent it only returns the renames with 428.
func (h *EditorHandler) SyncAllCategories(c *gin.Context) {
	var req confirmRequest
	if !bindOptional(c, &req) {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	planned := map[string]string{}
	for from, to := range s.Get().PlanSyncAll() {
		if from != to {
			planned[from] = to
		}
	}
	if len(planned) > 0 && !req.Confirm {
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "confirmation required", "renames": planned})
		return
	}

	var renames map[string]string
	tree, err := s.Apply(func(t content.Tree) (content.Tree, error) {
		next, applied, err := t.SyncAllCategories()
		renames = applied
		return next, err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s, tree, gin.H{"renames": renames})
}

// AssignCourse handles POST /categories/:key/courses/:slug
func (h *EditorHandler) AssignCourse(c *gin.Context) {
	key, slug := c.Param("key"), c.Param("slug")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.AssignCourseToCategory(key, slug)
	})
}

// RemoveCourse handles DELETE /categories/:key/courses/:slug
func (h *EditorHandler) RemoveCourse(c *gin.Context) {
	key, slug := c.Param("key"), c.Param("slug")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.RemoveCourseFromCategory(key, slug)
	})
}

// AddLearningPath handles POST /paths with {title}
func (h *EditorHandler) AddLearningPath(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	var key string
	tree, err := s.Apply(func(t content.Tree) (content.Tree, error) {
		next, k, err := t.AddLearningPath(req.Title)
		key = k
		return next, err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s, tree, gin.H{"key": key})
}

// SetLearningPathField handles PATCH /paths/:key with {field, value}
func (h *EditorHandler) SetLearningPathField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	key := c.Param("key")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.SetLearningPathField(key, req.Field, req.Value)
	})
}

// DeleteLearningPath handles DELETE /paths/:key
func (h *EditorHandler) DeleteLearningPath(c *gin.Context) {
	key := c.Param("key")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.DeleteLearningPath(key)
	})
}

// AddPathCourse handles POST /paths/:key/courses. An empty body appends a
// placeholder slot.
func (h *EditorHandler) AddPathCourse(c *gin.Context) {
	var ref models.PathCourseRef
	if !bindOptional(c, &ref) {
		return
	}
	key := c.Param("key")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.AddPathCourse(key, ref)
	})
}

// MovePathCourse handles POST /paths/:key/courses/move with {from, to}
func (h *EditorHandler) MovePathCourse(c *gin.Context) {
	var req struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}
	key := c.Param("key")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.MovePathCourse(key, *req.From, *req.To)
	})
}

// SetPathCourse handles PUT /paths/:key/courses/:index
func (h *EditorHandler) SetPathCourse(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var ref models.PathCourseRef
	if err := c.ShouldBindJSON(&ref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	key := c.Param("key")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.SetPathCourse(key, index, ref)
	})
}

// RemovePathCourse handles DELETE /paths/:key/courses/:index
func (h *EditorHandler) RemovePathCourse(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	key := c.Param("key")
	h.apply(c, func(t content.Tree) (content.Tree, error) {
		return t.RemovePathCourse(key, index)
	})
}
