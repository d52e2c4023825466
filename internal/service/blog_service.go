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
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// blogService is the concrete implementation of BlogService
type blogService struct {
	repo      repository.BlogRepository
	validator *validation.Validator
	body      *bluemonday.Policy
	plain     *bluemonday.Policy
	log       zerolog.Logger
}

// newBlogService creates a new BlogService
func newBlogService(repo repository.BlogRepository, log zerolog.Logger) *blogService {
	return &blogService{
		repo:      repo,
		validator: validation.NewValidator(),
		body:      bluemonday.UGCPolicy(),
		plain:     bluemonday.StrictPolicy(),
		log:       log.With().Str("service", "blog").Logger(),
	}
}

// Create validates, sanitizes and stores a new post
func (s *blogService) Create(ctx context.Context, in *models.BlogPostInput) (*models.BlogPost, []models.FieldError, error) {
	if errs := s.validator.ValidateBlogPost(in); len(errs) > 0 {
		return nil, errs, nil
	}

	now := time.Now().UTC()
	post := &models.BlogPost{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, nil, err
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, nil, fmt.Errorf("create blog post: %w", err)
	}

	s.log.Info().Str("id", post.ID).Str("slug", post.Slug).Str("status", post.Status).Msg("Blog post created")
	return post, nil, nil
}

// Update replaces the editable fields of an existing post. A nil post with no
// error means the post does not exist.
func (s *blogService) Update(ctx context.Context, id string, in *models.BlogPostInput) (*models.BlogPost, []models.FieldError, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil || post == nil {
		return nil, nil, err
	}
	if errs := s.validator.ValidateBlogPost(in); len(errs) > 0 {
		return nil, errs, nil
	}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, nil, err
	}
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, nil, fmt.Errorf("update blog post: %w", err)
	}

	s.log.Info().Str("id", post.ID).Str("slug", post.Slug).Msg("Blog post updated")
	return post, nil, nil
}

// apply copies sanitized input onto post and assigns a unique slug
func (s *blogService) apply(ctx context.Context, post *models.BlogPost, in *models.BlogPostInput) error {
	title := strings.TrimSpace(s.plain.Sanitize(in.Title))
	base := in.Slug
	if base == "" {
		base = content.Slugify(title)
	}
	if base == "" {
		base = "post-" + post.ID[:8]
	}

	var lookupErr error
	slug := content.UniqueSlug(base, func(candidate string) bool {
		if lookupErr != nil {
			return false
		}
		taken, err := s.repo.SlugExists(ctx, candidate, post.ID)
		if err != nil {
			lookupErr = err
		}
		return taken
	})
	if lookupErr != nil {
		return fmt.Errorf("check slug: %w", lookupErr)
	}

	post.Slug = slug
	post.Title = title
	post.Excerpt = strings.TrimSpace(s.plain.Sanitize(in.Excerpt))
	post.Body = s.body.Sanitize(in.Body)
	post.Author = strings.TrimSpace(s.plain.Sanitize(in.Author))
	post.CoverImage = strings.TrimSpace(in.CoverImage)
	post.Tags = normalizeTags(in.Tags)

	post.Status = in.Status
	if post.Status == "" {
		post.Status = models.BlogStatusDraft
	}
	switch post.Status {
	case models.BlogStatusPublished:
		if post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
		}
	default:
		post.PublishedAt = nil
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Delete removes a post
func (s *blogService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err == nil && deleted {
		s.log.Info().Str("id", id).Msg("Blog post deleted")
	}
	return deleted, err
}

// Get retrieves any post by ID
func (s *blogService) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	return s.repo.GetByID(ctx, id)
}

// GetPublished retrieves a published post by slug; drafts are not found
func (s *blogService) GetPublished(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil || post == nil {
		return nil, err
	}
	if post.Status != models.BlogStatusPublished {
		return nil, nil
	}
	return post, nil
}

// List returns posts, newest first
func (s *blogService) List(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	return s.repo.List(ctx, publishedOnly)
}

// Count returns the number of posts
func (s *blogService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
