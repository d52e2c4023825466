package service

import (
	"context"
	"net/http"

	"github.com/institute-cms/internal/auth"
	"github.com/institute-cms/internal/cache"
	"github.com/institute-cms/internal/config"
	"github.com/institute-cms/internal/content"
	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/repository"
	"github.com/rs/zerolog"
)

// ContentService defines the interface for content tree storage
type ContentService interface {
	// Load returns the newest normalized revision. Published content is served
	// from the cache when possible.
	Load(ctx context.Context, includeDrafts bool) (*models.ContentRevision, error)
	Save(ctx context.Context, user string, req *models.SaveContentRequest) (*models.ContentRevision, error)
	AuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error)
	Drift(ctx context.Context) (*DriftReport, error)
	ForceSync(ctx context.Context) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// BlogService defines the interface for blog post management
type BlogService interface {
	Create(ctx context.Context, in *models.BlogPostInput) (*models.BlogPost, []models.FieldError, error)
	Update(ctx context.Context, id string, in *models.BlogPostInput) (*models.BlogPost, []models.FieldError, error)
	Delete(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (*models.BlogPost, error)
	GetPublished(ctx context.Context, slug string) (*models.BlogPost, error)
	List(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error)
	Count(ctx context.Context) (int, error)
}

// LeadService defines the interface for contact leads
type LeadService interface {
	Submit(ctx context.Context, form *models.ContactForm, attachmentPath string) (*models.Lead, []models.FieldError, error)
	StreamLeads(ctx context.Context, w http.ResponseWriter, format string) error
	Count(ctx context.Context) (int, error)
}

// AuthService defines the interface for admin authentication
type AuthService interface {
	Login(ctx context.Context, password string) (string, *auth.Claims, error)
	Verify(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, token string) (*auth.Claims, error)
}

// DriftReport lists keys whose slug field disagrees with the key, and
// learning-path steps pointing at missing courses.
type DriftReport struct {
	Version  int64           `json:"version"`
	Drift    []content.Drift `json:"drift"`
	Dangling []string        `json:"dangling"`
}

// Services holds all service interfaces
type Services struct {
	Content ContentService
	Blog    BlogService
	Lead    LeadService
	Auth    AuthService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, store cache.Store, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	authSvc, err := auth.NewManager(&cfg.Auth, store, log)
	if err != nil {
		return nil, err
	}

	contentSvc := newContentService(repos, store, cfg.Redis.ContentTTL, log)

	return &Services{
		Content: contentSvc,
		Blog:    newBlogService(repos.Blog, log),
		Lead:    newLeadService(repos.Lead, contentSvc, log),
		Auth:    authSvc,
	}, nil
}
