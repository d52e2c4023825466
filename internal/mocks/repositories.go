package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/repository"
)

// MockContentRepository is a mock implementation of ContentRepository
type MockContentRepository struct {
	mu        sync.Mutex
	Revisions []*models.ContentRevision
	SaveError error
	SaveCalls int
}

var _ repository.ContentRepository = (*MockContentRepository)(nil)

func NewMockContentRepository() *MockContentRepository {
	return &MockContentRepository{}
}

func (m *MockContentRepository) Latest(ctx context.Context, includeDrafts bool) (*models.ContentRevision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Revisions) - 1; i >= 0; i-- {
		rev := m.Revisions[i]
		if !includeDrafts && rev.IsDraft {
			continue
		}
		cp := *rev
		return &cp, nil
	}
	return nil, nil
}

func (m *MockContentRepository) GetByVersion(ctx context.Context, version int64) (*models.ContentRevision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rev := range m.Revisions {
		if rev.Version == version {
			cp := *rev
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockContentRepository) Save(ctx context.Context, rev *models.ContentRevision, baseVersion *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	head := m.head()
	if baseVersion != nil && *baseVersion != head {
		return repository.ErrVersionConflict
	}
	rev.Version = head + 1
	rev.CreatedAt = time.Now().UTC()
	cp := *rev
	m.Revisions = append(m.Revisions, &cp)
	return nil
}

func (m *MockContentRepository) HeadVersion(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.head(), nil
}

func (m *MockContentRepository) head() int64 {
	if len(m.Revisions) == 0 {
		return 0
	}
	return m.Revisions[len(m.Revisions)-1].Version
}

func (m *MockContentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Revisions), nil
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mu          sync.Mutex
	Entries     []models.AuditLog
	CreateError error
}

var _ repository.AuditRepository = (*MockAuditRepository)(nil)

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	entry.ID = int64(len(m.Entries) + 1)
	entry.Timestamp = time.Now().UTC()
	m.Entries = append(m.Entries, *entry)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AuditLog, 0, len(m.Entries))
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.Entries[i])
	}
	return out, nil
}

func (m *MockAuditRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries), nil
}

// MockBlogRepository is a mock implementation of BlogRepository
type MockBlogRepository struct {
	Posts       map[string]*models.BlogPost
	InsertError error
}

var _ repository.BlogRepository = (*MockBlogRepository)(nil)

func NewMockBlogRepository() *MockBlogRepository {
	return &MockBlogRepository{
		Posts: make(map[string]*models.BlogPost),
	}
}

func (m *MockBlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Posts[post.ID] = post
	return nil
}

func (m *MockBlogRepository) Update(ctx context.Context, post *models.BlogPost) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	post.UpdatedAt = time.Now().UTC()
	m.Posts[post.ID] = post
	return nil
}

func (m *MockBlogRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.Posts[id]; !ok {
		return false, nil
	}
	delete(m.Posts, id)
	return true, nil
}

func (m *MockBlogRepository) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	return m.Posts[id], nil
}

func (m *MockBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	for _, p := range m.Posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (m *MockBlogRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	for _, p := range m.Posts {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBlogRepository) List(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	out := make([]*models.BlogPost, 0, len(m.Posts))
	for _, p := range m.Posts {
		if publishedOnly && p.Status != models.BlogStatusPublished {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockBlogRepository) Count(ctx context.Context) (int, error) {
	return len(m.Posts), nil
}

// MockLeadRepository is a mock implementation of LeadRepository
type MockLeadRepository struct {
	Leads       []*models.Lead
	InsertError error
}

var _ repository.LeadRepository = (*MockLeadRepository)(nil)

func NewMockLeadRepository() *MockLeadRepository {
	return &MockLeadRepository{}
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Leads = append(m.Leads, lead)
	return nil
}

func (m *MockLeadRepository) Count(ctx context.Context) (int, error) {
	return len(m.Leads), nil
}

func (m *MockLeadRepository) StreamAll(ctx context.Context, callback func(*models.Lead) error) error {
	for _, lead := range m.Leads {
		if err := callback(lead); err != nil {
			return err
		}
	}
	return nil
}

// NewMockRepositories wires fresh mocks into a Repositories set
func NewMockRepositories() (*repository.Repositories, *MockContentRepository, *MockAuditRepository, *MockBlogRepository, *MockLeadRepository) {
	content := NewMockContentRepository()
	audit := NewMockAuditRepository()
	blog := NewMockBlogRepository()
	lead := NewMockLeadRepository()
	return &repository.Repositories{
		Content: content,
		Audit:   audit,
		Blog:    blog,
		Lead:    lead,
	}, content, audit, blog, lead
}
