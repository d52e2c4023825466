package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/institute-cms/internal/api"
	"github.com/institute-cms/internal/cache"
	"github.com/institute-cms/internal/config"
	"github.com/institute-cms/internal/mocks"
	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/service"
	"github.com/institute-cms/internal/session"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const adminPassword = "correct-horse"

type testServer struct {
	router   *gin.Engine
	services *service.Services
	sessions *session.Store
	leads    *mocks.MockLeadRepository
	blog     *mocks.MockBlogRepository
	cfg      *config.Config
}

func setupTestRouter(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080", AllowedOrigins: []string{"http://localhost:3000"}},
		Redis:  config.RedisConfig{ContentTTL: time.Minute},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-0123456789",
			TokenTTL:          time.Hour,
			AdminUser:         "admin",
			AdminPasswordHash: string(hash),
			LeadsUser:         "leads",
			LeadsPassword:     "leads-pass",
		},
		Session: config.SessionConfig{IdleTimeout: time.Hour},
		Upload: config.UploadConfig{
			Dir:     t.TempDir(),
			MaxSize: 1024 * 1024,
		},
	}

	log := zerolog.Nop()
	repos, _, _, blogRepo, leadRepo := mocks.NewMockRepositories()
	services, err := service.NewServices(repos, cache.NewMemory(), cfg, log)
	if err != nil {
		t.Fatalf("NewServices failed: %v", err)
	}
	sessions := session.NewStore(services.Content, cfg.Session, log)

	return &testServer{
		router:   api.NewRouter(services, sessions, cfg, log),
		services: services,
		sessions: sessions,
		leads:    leadRepo,
		blog:     blogRepo,
		cfg:      cfg,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(t, "POST", "/api/admin/login", "", gin.H{"password": adminPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected login to succeed, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Token == "" {
		t.Fatal("Expected a token")
	}
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON response %q: %v", w.Body.String(), err)
	}
	return response
}

func catalogContent() map[string]any {
	return map[string]any{
		"courses": []any{
			map[string]any{"slug": "aws-sa", "title": "AWS Solutions Architect", "categories": []any{"cloud"}, "featured": true, "order": 1},
			map[string]any{"slug": "rhcsa", "title": "Red Hat RHCSA", "categories": []any{"linux"}, "order": 2},
			map[string]any{"slug": "hidden", "title": "Hidden Course", "visible": false, "order": 3},
		},
		"courseCategories": map[string]any{
			"cloud": map[string]any{"name": "Cloud", "slug": "cloud", "order": 1},
			"linux": map[string]any{"name": "Linux", "slug": "linux", "order": 2},
		},
		"learningPaths": map[string]any{
			"cloud-engineer": map[string]any{
				"title": "Cloud Engineer",
				"courses": []any{
					map[string]any{"courseSlug": "rhcsa", "order": 1},
					map[string]any{"courseSlug": "aws-sa", "order": 2},
					map[string]any{"courseSlug": "retired-course", "order": 3},
				},
			},
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do(t, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "institute-cms" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestRouter(t)
	ctx := context.Background()
	s.services.Content.Save(ctx, "admin", &models.SaveContentRequest{Content: catalogContent()})
	s.leads.Create(ctx, &models.Lead{ID: "l1"})

	w := s.do(t, "GET", "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	db := response["database"].(map[string]interface{})
	if db["revisions"].(float64) != 1 {
		t.Errorf("Expected 1 revision, got %v", db["revisions"])
	}
	if db["leads"].(float64) != 1 {
		t.Errorf("Expected 1 lead, got %v", db["leads"])
	}
	if response["sessions"].(float64) != 0 {
		t.Errorf("Expected 0 sessions, got %v", response["sessions"])
	}
}

func TestAuth_LoginVerifyLogout(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do(t, "POST", "/api/admin/login", "", gin.H{"password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", w.Code)
	}
	w = s.do(t, "POST", "/api/admin/login", "", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing password, got %d", w.Code)
	}

	token := s.login(t)
	w = s.do(t, "GET", "/api/admin/verify", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected verify to succeed, got %d", w.Code)
	}
	if decode(t, w)["user"] != "admin" {
		t.Errorf("Expected user admin, got %v", decode(t, w)["user"])
	}

	// open an editing session, then log out
	s.do(t, "GET", "/api/admin/editor/session", token, nil)
	if s.sessions.Len() != 1 {
		t.Fatalf("Expected 1 open session, got %d", s.sessions.Len())
	}
	w = s.do(t, "POST", "/api/admin/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected logout to succeed, got %d", w.Code)
	}
	if s.sessions.Len() != 0 {
		t.Errorf("Expected logout to close the session, got %d open", s.sessions.Len())
	}

	w = s.do(t, "GET", "/api/admin/verify", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected revoked token to be rejected, got %d", w.Code)
	}
	w = s.do(t, "GET", "/api/admin/verify", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected missing token to be rejected, got %d", w.Code)
	}
}

func TestContent_SaveAndLoad(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do(t, "GET", "/api/content", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if decode(t, w)["version"].(float64) != 0 {
		t.Errorf("Expected version 0 for an empty store")
	}

	w = s.do(t, "POST", "/api/content", "", gin.H{"content": catalogContent()})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	token := s.login(t)
	w = s.do(t, "POST", "/api/content", token, gin.H{"content": catalogContent(), "version": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected save to succeed, got %d: %s", w.Code, w.Body.String())
	}
	response := decode(t, w)
	if response["success"] != true || response["version"].(float64) != 1 {
		t.Errorf("Unexpected save response: %v", response)
	}

	w = s.do(t, "POST", "/api/content", token, gin.H{"content": catalogContent(), "version": 0})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for stale version, got %d", w.Code)
	}

	w = s.do(t, "POST", "/api/content", token, gin.H{"isDraft": true})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without content, got %d", w.Code)
	}

	w = s.do(t, "GET", "/api/content", "", nil)
	response = decode(t, w)
	if response["version"].(float64) != 1 {
		t.Errorf("Expected published version 1, got %v", response["version"])
	}
	content := response["content"].(map[string]interface{})
	if len(content["courses"].([]interface{})) != 3 {
		t.Errorf("Expected 3 courses, got %v", content["courses"])
	}

	w = s.do(t, "GET", "/api/content/audit", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected audit to succeed, got %d", w.Code)
	}
	logs := decode(t, w)["audit_logs"].([]interface{})
	if len(logs) != 1 {
		t.Errorf("Expected 1 audit entry, got %d", len(logs))
	}
}

func TestContent_DraftReadRequiresToken(t *testing.T) {
	s := setupTestRouter(t)
	ctx := context.Background()
	s.services.Content.Save(ctx, "admin", &models.SaveContentRequest{Content: catalogContent()})
	s.services.Content.Save(ctx, "admin", &models.SaveContentRequest{Content: catalogContent(), IsDraft: true})

	w := s.do(t, "GET", "/api/content?draft=true", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for anonymous draft read, got %d", w.Code)
	}

	token := s.login(t)
	w = s.do(t, "GET", "/api/content?draft=true", token, nil)
	response := decode(t, w)
	if response["version"].(float64) != 2 || response["isDraft"] != true {
		t.Errorf("Expected draft version 2, got %v", response)
	}

	w = s.do(t, "GET", "/api/content", "", nil)
	if decode(t, w)["version"].(float64) != 1 {
		t.Error("Expected public read to serve the published version")
	}
}

func TestContent_DriftAndForceSync(t *testing.T) {
	s := setupTestRouter(t)
	ctx := context.Background()
	tree := catalogContent()
	tree["courseCategories"].(map[string]any)["cloud"] = map[string]any{"name": "Cloud", "slug": "cloud-computing"}
	s.services.Content.Save(ctx, "admin", &models.SaveContentRequest{Content: tree})
	token := s.login(t)

	w := s.do(t, "GET", "/api/content/drift", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	response := decode(t, w)
	if len(response["drift"].([]interface{})) != 1 {
		t.Errorf("Expected 1 drift entry, got %v", response["drift"])
	}
	dangling := response["dangling"].([]interface{})
	if len(dangling) != 1 || dangling[0] != "cloud-engineer/retired-course" {
		t.Errorf("Expected dangling cloud-engineer/retired-course, got %v", dangling)
	}

	w = s.do(t, "POST", "/api/admin/force-sync", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected force-sync to succeed, got %d", w.Code)
	}
}

func TestCatalog_PublicReads(t *testing.T) {
	s := setupTestRouter(t)
	s.services.Content.Save(context.Background(), "admin", &models.SaveContentRequest{Content: catalogContent()})

	w := s.do(t, "GET", "/api/courses", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if decode(t, w)["count"].(float64) != 2 {
		t.Errorf("Expected 2 visible courses, got %v", decode(t, w)["count"])
	}

	tests := []struct {
		query string
		want  float64
	}{
		{"?q=red+hat", 1},
		{"?category=cloud", 1},
		{"?featured=true", 1},
		{"?featured=false", 1},
		{"?q=kubernetes", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := s.do(t, "GET", "/api/courses"+tt.query, "", nil)
			if got := decode(t, w)["count"].(float64); got != tt.want {
				t.Errorf("Expected %v courses, got %v", tt.want, got)
			}
		})
	}

	w = s.do(t, "GET", "/api/courses?featured=maybe", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad featured flag, got %d", w.Code)
	}

	w = s.do(t, "GET", "/api/courses?grouped=true", "", nil)
	groups := decode(t, w)["groups"].(map[string]interface{})
	if len(groups["general"].([]interface{})) != 2 {
		t.Errorf("Expected both visible courses in general, got %v", groups["general"])
	}
	// an exact category key wins over vendor keywords
	if len(groups["cloud"].([]interface{})) != 1 || len(groups["linux"].([]interface{})) != 1 {
		t.Errorf("Expected one cloud and one linux course, got %v", groups)
	}
	if _, ok := groups["aws"]; ok {
		t.Errorf("Expected no aws bucket, got %v", groups["aws"])
	}

	w = s.do(t, "GET", "/api/courses/hidden", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected hidden course to be 404, got %d", w.Code)
	}
	w = s.do(t, "GET", "/api/courses/aws-sa", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected course to be found, got %d", w.Code)
	}

	w = s.do(t, "GET", "/api/categories", "", nil)
	categories := decode(t, w)["categories"].([]interface{})
	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(categories))
	}
	first := categories[0].(map[string]interface{})
	if first["key"] != "cloud" || first["courseCount"].(float64) != 1 {
		t.Errorf("Expected cloud with 1 course first, got %v", first)
	}

	w = s.do(t, "GET", "/api/learning-paths/cloud-engineer", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected path to be found, got %d", w.Code)
	}
	steps := decode(t, w)["steps"].([]interface{})
	if len(steps) != 2 {
		t.Errorf("Expected the dangling step to be dropped, got %d steps", len(steps))
	}

	w = s.do(t, "GET", "/api/learning-paths/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestEditor_CategorySyncFlow(t *testing.T) {
	s := setupTestRouter(t)
	token := s.login(t)
	base := "/api/admin/editor"

	w := s.do(t, "POST", base+"/courses", token, gin.H{"title": "Cloud Basics 101!"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected add course to succeed, got %d: %s", w.Code, w.Body.String())
	}
	response := decode(t, w)
	course := response["course"].(map[string]interface{})
	if course["slug"] != "cloud-basics-101" || course["visible"] != true || course["fees"] != "Contact for pricing" {
		t.Errorf("Unexpected course: %v", course)
	}
	if response["dirty"] != true {
		t.Error("Expected session to be dirty")
	}

	w = s.do(t, "POST", base+"/courses", token, gin.H{"title": "Cloud Basics 101"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected duplicate slug to be rejected, got %d", w.Code)
	}

	w = s.do(t, "POST", base+"/categories", token, gin.H{"name": "Cloud"})
	if decode(t, w)["key"] != "cloud" {
		t.Fatalf("Expected key cloud, got %v", decode(t, w)["key"])
	}
	w = s.do(t, "POST", base+"/categories/cloud/courses/cloud-basics-101", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected assign to succeed, got %d", w.Code)
	}
	w = s.do(t, "PATCH", base+"/categories/cloud", token, gin.H{"field": "slug", "value": "cloud-computing"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected slug edit to succeed, got %d", w.Code)
	}

	w = s.do(t, "POST", base+"/categories/cloud/sync", token, nil)
	if w.Code != http.StatusPreconditionRequired {
		t.Fatalf("Expected 428 without confirmation, got %d", w.Code)
	}
	plan := decode(t, w)["plan"].(map[string]interface{})
	if plan["to"] != "cloud-computing" || len(plan["courses"].([]interface{})) != 1 {
		t.Errorf("Unexpected plan: %v", plan)
	}

	w = s.do(t, "POST", base+"/categories/cloud/sync", token, gin.H{"confirm": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected confirmed sync to succeed, got %d: %s", w.Code, w.Body.String())
	}
	content := decode(t, w)["content"].(map[string]interface{})
	cats := content["courseCategories"].(map[string]interface{})
	if _, ok := cats["cloud"]; ok {
		t.Error("Expected old key to be gone")
	}
	if _, ok := cats["cloud-computing"]; !ok {
		t.Error("Expected new key to exist")
	}
	courseCats := content["courses"].([]interface{})[0].(map[string]interface{})["categories"].([]interface{})
	if len(courseCats) != 1 || courseCats[0] != "cloud-computing" {
		t.Errorf("Expected course to reference cloud-computing, got %v", courseCats)
	}

	w = s.do(t, "GET", base+"/session/diff", token, nil)
	changed := decode(t, w)["changedKeys"].([]interface{})
	if len(changed) != 2 {
		t.Errorf("Expected courses and courseCategories changed, got %v", changed)
	}

	w = s.do(t, "POST", base+"/session/commit", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected commit to succeed, got %d: %s", w.Code, w.Body.String())
	}
	if decode(t, w)["version"].(float64) != 1 {
		t.Errorf("Expected version 1, got %v", decode(t, w)["version"])
	}

	w = s.do(t, "POST", base+"/session/commit", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected second commit to report no changes, got %d", w.Code)
	}

	w = s.do(t, "GET", "/api/content", "", nil)
	published := decode(t, w)["content"].(map[string]interface{})
	if _, ok := published["courseCategories"].(map[string]interface{})["cloud-computing"]; !ok {
		t.Error("Expected committed content to be published")
	}
}

func TestEditor_StaleCommitConflicts(t *testing.T) {
	s := setupTestRouter(t)
	token := s.login(t)

	w := s.do(t, "POST", "/api/admin/editor/session/update", token, gin.H{"path": "institute.name", "value": "Acme Institute"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected update to succeed, got %d", w.Code)
	}

	// another admin saves in the meantime
	s.services.Content.Save(context.Background(), "other", &models.SaveContentRequest{Content: catalogContent()})

	w = s.do(t, "POST", "/api/admin/editor/session/commit", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for stale session, got %d", w.Code)
	}

	w = s.do(t, "DELETE", "/api/admin/editor/session", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected discard to succeed, got %d", w.Code)
	}
	w = s.do(t, "GET", "/api/admin/editor/session", token, nil)
	if decode(t, w)["version"].(float64) != 1 {
		t.Errorf("Expected reopened session at version 1, got %v", decode(t, w)["version"])
	}
}

func TestEditor_ErrorMapping(t *testing.T) {
	s := setupTestRouter(t)
	token := s.login(t)
	base := "/api/admin/editor"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"update empty path", "POST", base + "/session/update", gin.H{"path": "", "value": 1}, http.StatusBadRequest},
		{"delete missing course", "DELETE", base + "/courses/nope", nil, http.StatusNotFound},
		{"delete missing category", "DELETE", base + "/categories/nope", nil, http.StatusNotFound},
		{"missing path field", "PATCH", base + "/paths/nope", gin.H{"field": "title", "value": "x"}, http.StatusNotFound},
		{"non-numeric index", "DELETE", base + "/paths/nope/courses/abc", nil, http.StatusBadRequest},
		{"move without indexes", "POST", base + "/paths/nope/courses/move", gin.H{}, http.StatusBadRequest},
		{"add course without title", "POST", base + "/courses", gin.H{"title": ""}, http.StatusBadRequest},
		{"invalid level", "POST", base + "/courses", gin.H{"title": "X", "level": "expert"}, http.StatusBadRequest},
		{"no token", "GET", base + "/session", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := token
			if tt.name == "no token" {
				tok = ""
			}
			w := s.do(t, tt.method, tt.path, tok, tt.body)
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestEditor_LearningPathSlots(t *testing.T) {
	s := setupTestRouter(t)
	s.services.Content.Save(context.Background(), "admin", &models.SaveContentRequest{Content: catalogContent()})
	token := s.login(t)
	base := "/api/admin/editor/paths"

	w := s.do(t, "POST", base, token, gin.H{"title": "DevOps Engineer"})
	if decode(t, w)["key"] != "devops-engineer" {
		t.Fatalf("Expected key devops-engineer, got %v", decode(t, w)["key"])
	}

	s.do(t, "POST", base+"/devops-engineer/courses", token, gin.H{"courseSlug": "rhcsa"})
	s.do(t, "POST", base+"/devops-engineer/courses", token, nil)
	w = s.do(t, "POST", base+"/devops-engineer/courses/move", token, gin.H{"from": 1, "to": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected move to succeed, got %d: %s", w.Code, w.Body.String())
	}

	path := decode(t, w)["content"].(map[string]interface{})["learningPaths"].(map[string]interface{})["devops-engineer"].(map[string]interface{})
	if path["totalCourses"].(float64) != 2 {
		t.Errorf("Expected totalCourses 2, got %v", path["totalCourses"])
	}
	steps := path["courses"].([]interface{})
	if steps[1].(map[string]interface{})["courseSlug"] != "rhcsa" {
		t.Errorf("Expected rhcsa to move to the second slot, got %v", steps)
	}

	w = s.do(t, "PUT", base+"/devops-engineer/courses/0", token, gin.H{"courseSlug": "aws-sa", "duration": "4 weeks"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected set slot to succeed, got %d", w.Code)
	}
	w = s.do(t, "DELETE", base+"/devops-engineer/courses/5", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected out of range index to be rejected, got %d", w.Code)
	}
	w = s.do(t, "PATCH", base+"/devops-engineer", token, gin.H{"field": "totalCourses", "value": 9})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected derived field to be rejected, got %d", w.Code)
	}
}

func TestBlog_AdminAndPublic(t *testing.T) {
	s := setupTestRouter(t)
	token := s.login(t)

	w := s.do(t, "POST", "/api/admin/blog", token, gin.H{"title": "Draft Post", "body": "Hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	draft := decode(t, w)

	w = s.do(t, "POST", "/api/admin/blog", token, gin.H{"title": "Live Post", "body": "Hi", "status": "published"})
	live := decode(t, w)

	w = s.do(t, "POST", "/api/admin/blog", token, gin.H{"title": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected validation failure, got %d", w.Code)
	}

	w = s.do(t, "GET", "/api/blog", "", nil)
	if decode(t, w)["count"].(float64) != 1 {
		t.Errorf("Expected 1 public post, got %v", decode(t, w)["count"])
	}
	w = s.do(t, "GET", "/api/admin/blog", token, nil)
	if decode(t, w)["count"].(float64) != 2 {
		t.Errorf("Expected 2 admin posts, got %v", decode(t, w)["count"])
	}

	w = s.do(t, "GET", "/api/blog/"+draft["slug"].(string), "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected draft to be hidden, got %d", w.Code)
	}
	w = s.do(t, "GET", "/api/blog/"+live["slug"].(string), "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected published post, got %d", w.Code)
	}

	w = s.do(t, "PUT", "/api/admin/blog/"+draft["id"].(string), token, gin.H{"title": "Draft Post", "body": "Hello", "status": "published"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected update to succeed, got %d", w.Code)
	}

	w = s.do(t, "GET", "/api/admin/blog/not-a-uuid", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid id, got %d", w.Code)
	}
	w = s.do(t, "DELETE", "/api/admin/blog/"+live["id"].(string), token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected delete to succeed, got %d", w.Code)
	}
	w = s.do(t, "DELETE", "/api/admin/blog/"+live["id"].(string), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", w.Code)
	}
}

func contactRequest(t *testing.T, fields map[string]string, filename string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	if filename != "" {
		part, err := writer.CreateFormFile("attachment", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write(data)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/api/contact", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestContact_Submit(t *testing.T) {
	s := setupTestRouter(t)

	req := contactRequest(t, map[string]string{
		"name":    "Asha",
		"email":   "asha@example.com",
		"message": "Interested in weekend batches",
	}, "resume.pdf", []byte("%PDF-1.4"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(s.leads.Leads) != 1 {
		t.Fatalf("Expected 1 lead, got %d", len(s.leads.Leads))
	}
	lead := s.leads.Leads[0]
	if !lead.HasAttachment {
		t.Error("Expected lead to have an attachment")
	}
	if _, err := os.Stat(lead.AttachmentPath); err != nil {
		t.Errorf("Expected attachment on disk: %v", err)
	}
	if !strings.HasPrefix(lead.AttachmentPath, s.cfg.Upload.Dir) {
		t.Errorf("Expected attachment under upload dir, got %s", lead.AttachmentPath)
	}
}

func TestContact_Rejections(t *testing.T) {
	s := setupTestRouter(t)

	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		data     []byte
	}{
		{"invalid email", map[string]string{"name": "Asha", "email": "nope"}, "", nil},
		{"missing name", map[string]string{"email": "asha@example.com"}, "", nil},
		{"bad extension", map[string]string{"name": "Asha", "email": "asha@example.com"}, "run.exe", []byte("MZ")},
		{"too large", map[string]string{"name": "Asha", "email": "asha@example.com"}, "big.pdf", make([]byte, 2*1024*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, contactRequest(t, tt.fields, tt.filename, tt.data))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
	if len(s.leads.Leads) != 0 {
		t.Errorf("Expected no stored leads, got %d", len(s.leads.Leads))
	}
}

func TestLeads_ExportRequiresBasicAuth(t *testing.T) {
	s := setupTestRouter(t)
	s.leads.Create(context.Background(), &models.Lead{ID: "l1", Name: "Asha", Email: "asha@example.com", CreatedAt: time.Now()})

	w := s.do(t, "GET", "/api/leads", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/leads?format=csv", nil)
	req.SetBasicAuth("leads", "leads-pass")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), "asha@example.com") {
		t.Errorf("Expected lead in export, got %q", w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/leads?format=xml", nil)
	req.SetBasicAuth("leads", "leads-pass")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unsupported format, got %d", w.Code)
	}
}

func TestLeads_ExportUsesLeadService(t *testing.T) {
	s := setupTestRouter(t)
	mockLead := mocks.NewMockLeadService()
	var gotFormat string
	mockLead.StreamLeadsFunc = func(ctx context.Context, w http.ResponseWriter, format string) error {
		gotFormat = format
		w.Write([]byte("ok"))
		return nil
	}
	s.services.Lead = mockLead
	router := api.NewRouter(s.services, s.sessions, s.cfg, zerolog.Nop())

	req := httptest.NewRequest("GET", "/api/leads", nil)
	req.SetBasicAuth("leads", "leads-pass")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if gotFormat != "json" {
		t.Errorf("Expected default format json, got %q", gotFormat)
	}
	if w.Body.String() != "ok" {
		t.Errorf("Expected streamed body, got %q", w.Body.String())
	}
}

func TestContent_LoadFailure(t *testing.T) {
	s := setupTestRouter(t)
	mockContent := mocks.NewMockContentService()
	mockContent.LoadError = context.DeadlineExceeded
	s.services.Content = mockContent
	router := api.NewRouter(s.services, s.sessions, s.cfg, zerolog.Nop())

	for _, path := range []string{"/api/content", "/api/courses", "/api/categories"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", path, w.Code)
		}
	}
}
