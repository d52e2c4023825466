package repository

import (
	"context"
	"errors"

	"github.com/institute-cms/internal/database"
	"github.com/institute-cms/internal/models"
)

// ErrVersionConflict is returned when a save is based on a revision that is
// no longer the newest one.
var ErrVersionConflict = errors.New("content was changed by another session")

// ContentRepository defines the interface for content revision storage
type ContentRepository interface {
	// Latest returns the newest revision, or nil when none exist. Drafts are
	// skipped unless includeDrafts is set.
	Latest(ctx context.Context, includeDrafts bool) (*models.ContentRevision, error)
	GetByVersion(ctx context.Context, version int64) (*models.ContentRevision, error)
	// Save inserts rev and fills its Version and CreatedAt. A non-nil
	// baseVersion must equal the current head version.
	Save(ctx context.Context, rev *models.ContentRevision, baseVersion *int64) error
	HeadVersion(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}

// AuditRepository defines the interface for content audit log storage
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, limit int) ([]models.AuditLog, error)
	Count(ctx context.Context) (int, error)
}

// BlogRepository defines the interface for blog post data operations
type BlogRepository interface {
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, post *models.BlogPost) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error)
	Count(ctx context.Context) (int, error)
}

// LeadRepository defines the interface for contact lead data operations
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Lead) error) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Content ContentRepository
	Audit   AuditRepository
	Blog    BlogRepository
	Lead    LeadRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Content: NewContentRepo(db),
		Audit:   NewAuditRepo(db),
		Blog:    NewBlogRepo(db),
		Lead:    NewLeadRepo(db),
	}
}
