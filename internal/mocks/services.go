package mocks

import (
	"context"
	"net/http"

	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/service"
)

// MockContentService is a mock implementation of ContentService
type MockContentService struct {
	Revision  *models.ContentRevision
	LoadError error
	SaveFunc  func(ctx context.Context, user string, req *models.SaveContentRequest) (*models.ContentRevision, error)
	Saved     []*models.SaveContentRequest
	Audit     []models.AuditLog
	Synced    int
	Counts    map[string]int
}

// Verify interface compliance
var _ service.ContentService = (*MockContentService)(nil)

func NewMockContentService() *MockContentService {
	return &MockContentService{
		Revision: &models.ContentRevision{Content: map[string]any{}},
		Counts: map[string]int{
			"revisions":  0,
			"audit_logs": 0,
		},
	}
}

func (m *MockContentService) Load(ctx context.Context, includeDrafts bool) (*models.ContentRevision, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return m.Revision, nil
}

func (m *MockContentService) Save(ctx context.Context, user string, req *models.SaveContentRequest) (*models.ContentRevision, error) {
	m.Saved = append(m.Saved, req)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user, req)
	}
	m.Revision = &models.ContentRevision{
		Version: m.Revision.Version + 1,
		Content: req.Content,
		IsDraft: req.IsDraft,
		Author:  user,
	}
	return m.Revision, nil
}

func (m *MockContentService) AuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	return m.Audit, nil
}

func (m *MockContentService) Drift(ctx context.Context) (*service.DriftReport, error) {
	return &service.DriftReport{Version: m.Revision.Version}, nil
}

func (m *MockContentService) ForceSync(ctx context.Context) error {
	m.Synced++
	return nil
}

func (m *MockContentService) GetCount(ctx context.Context, resource string) (int, error) {
	return m.Counts[resource], nil
}

// MockLeadService is a mock implementation of LeadService
type MockLeadService struct {
	StreamLeadsFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	Submitted       []*models.ContactForm
	Attachments     []string
	Total           int
}

// Verify interface compliance
var _ service.LeadService = (*MockLeadService)(nil)

func NewMockLeadService() *MockLeadService {
	return &MockLeadService{}
}

func (m *MockLeadService) Submit(ctx context.Context, form *models.ContactForm, attachmentPath string) (*models.Lead, []models.FieldError, error) {
	m.Submitted = append(m.Submitted, form)
	m.Attachments = append(m.Attachments, attachmentPath)
	return &models.Lead{
		ID:            "lead-1",
		Name:          form.Name,
		Email:         form.Email,
		HasAttachment: attachmentPath != "",
	}, nil, nil
}

func (m *MockLeadService) StreamLeads(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamLeadsFunc != nil {
		return m.StreamLeadsFunc(ctx, w, format)
	}
	return nil
}

func (m *MockLeadService) Count(ctx context.Context) (int, error) {
	return m.Total, nil
}
