package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/institute-cms/internal/content"
	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/repository"
	"github.com/institute-cms/internal/validation"
	"github.com/rs/zerolog"
)

// leadService is the concrete implementation of LeadService
type leadService struct {
	repo    repository.LeadRepository
	content ContentService
	log     zerolog.Logger
}

// newLeadService creates a new LeadService
func newLeadService(repo repository.LeadRepository, contentSvc ContentService, log zerolog.Logger) *leadService {
	return &leadService{
		repo:    repo,
		content: contentSvc,
		log:     log.With().Str("service", "lead").Logger(),
	}
}

// Submit validates and stores a contact form. The course field, when set,
// must name a course in the published content.
func (s *leadService) Submit(ctx context.Context, form *models.ContactForm, attachmentPath string) (*models.Lead, []models.FieldError, error) {
	validator := validation.NewValidator()
	if form.Course != "" {
		rev, err := s.content.Load(ctx, false)
		if err != nil {
			s.log.Warn().Err(err).Msg("Could not load courses for lead validation")
		} else {
			var slugs []string
			for _, c := range content.Tree(rev.Content).Courses() {
				slugs = append(slugs, c.Slug)
			}
			validator.SetCourseSlugs(slugs)
		}
	}

	if errs := validator.ValidateContactForm(form); len(errs) > 0 {
		return nil, errs, nil
	}

	lead := &models.Lead{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(form.Name),
		Email:          strings.ToLower(strings.TrimSpace(form.Email)),
		Phone:          strings.TrimSpace(form.Phone),
		Course:         form.Course,
		Message:        strings.TrimSpace(form.Message),
		AttachmentPath: attachmentPath,
		HasAttachment:  attachmentPath != "",
		Source:         "contact",
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, nil, fmt.Errorf("create lead: %w", err)
	}

	s.log.Info().
		Str("lead_id", lead.ID).
		Str("course", lead.Course).
		Bool("attachment", lead.HasAttachment).
		Msg("Contact lead received")

	return lead, nil, nil
}

// Count returns the number of leads
func (s *leadService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
