package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/institute-cms/internal/cache"
	"github.com/institute-cms/internal/content"
	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/repository"
	"github.com/rs/zerolog"
)

// ErrEmptyContent is returned when a save carries no content document.
var ErrEmptyContent = errors.New("content is required")

const publishedCacheKey = "content:published"

// contentService is the concrete implementation of ContentService
type contentService struct {
	repos *repository.Repositories
	cache cache.Store
	ttl   time.Duration
	log   zerolog.Logger
}

// newContentService creates a new ContentService
func newContentService(repos *repository.Repositories, store cache.Store, ttl time.Duration, log zerolog.Logger) *contentService {
	return &contentService{
		repos: repos,
		cache: store,
		ttl:   ttl,
		log:   log.With().Str("service", "content").Logger(),
	}
}

// Load returns the newest revision. An empty store yields version 0 with an
// empty, normalized tree.
func (s *contentService) Load(ctx context.Context, includeDrafts bool) (*models.ContentRevision, error) {
	if !includeDrafts {
		if rev := s.cached(ctx); rev != nil {
			return rev, nil
		}
	}

	rev, err := s.repos.Content.Latest(ctx, includeDrafts)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	if rev == nil {
		rev = &models.ContentRevision{Content: map[string]any{}}
	}
	rev.Content = content.Tree(rev.Content).Normalize()

	if !includeDrafts {
		s.store(ctx, rev)
	}
	return rev, nil
}

func (s *contentService) cached(ctx context.Context) *models.ContentRevision {
	data, err := s.cache.Get(ctx, publishedCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn().Err(err).Msg("Content cache read failed")
		}
		return nil
	}
	var rev models.ContentRevision
	if err := json.Unmarshal(data, &rev); err != nil {
		s.log.Warn().Err(err).Msg("Discarding undecodable cached content")
		return nil
	}
	return &rev
}

func (s *contentService) store(ctx context.Context, rev *models.ContentRevision) {
	data, err := json.Marshal(rev)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, publishedCacheKey, data, s.ttl); err != nil {
		s.log.Warn().Err(err).Msg("Content cache write failed")
	}
}

// Save normalizes and persists the tree, then records an audit entry with the
// top-level sections that changed against the previous head.
func (s *contentService) Save(ctx context.Context, user string, req *models.SaveContentRequest) (*models.ContentRevision, error) {
	if req.Content == nil {
		return nil, ErrEmptyContent
	}

	tree := content.Tree(req.Content).Normalize()
	if tree.LastModified() == "" {
		tree[content.LastModifiedKey] = content.Now().UTC().Format(time.RFC3339Nano)
	}

	before := content.New()
	prev, err := s.repos.Content.Latest(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load previous content: %w", err)
	}
	if prev != nil {
		before = content.Tree(prev.Content)
	}

	rev := &models.ContentRevision{
		Content: tree,
		IsDraft: req.IsDraft,
		Author:  user,
	}
	if err := s.repos.Content.Save(ctx, rev, req.Version); err != nil {
		return nil, err
	}

	changed, summary := content.Diff(before, tree)
	entry := &models.AuditLog{
		Version:     rev.Version,
		User:        user,
		IsDraft:     req.IsDraft,
		DiffSummary: summary,
		ChangedKeys: changed,
	}
	if err := s.repos.Audit.Create(ctx, entry); err != nil {
		s.log.Error().Err(err).Int64("version", rev.Version).Msg("Failed to write audit log")
	}

	if !req.IsDraft {
		if err := s.cache.Delete(ctx, publishedCacheKey); err != nil {
			s.log.Warn().Err(err).Msg("Failed to invalidate content cache")
		}
	}

	s.log.Info().
		Int64("version", rev.Version).
		Str("user", user).
		Bool("draft", req.IsDraft).
		Strs("changed", changed).
		Msg("Content saved")

	return rev, nil
}

// AuditLogs returns the newest audit entries first
func (s *contentService) AuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	return s.repos.Audit.List(ctx, limit)
}

// Drift reports slug drift and dangling references in the newest revision
func (s *contentService) Drift(ctx context.Context) (*DriftReport, error) {
	rev, err := s.Load(ctx, true)
	if err != nil {
		return nil, err
	}
	tree := content.Tree(rev.Content)
	return &DriftReport{
		Version:  rev.Version,
		Drift:    tree.SlugDrift(),
		Dangling: tree.DanglingReferences(),
	}, nil
}

// ForceSync drops the published-content cache
func (s *contentService) ForceSync(ctx context.Context) error {
	if err := s.cache.Delete(ctx, publishedCacheKey); err != nil {
		return fmt.Errorf("invalidate content cache: %w", err)
	}
	s.log.Info().Msg("Content cache invalidated")
	return nil
}

// GetCount returns count for a resource
func (s *contentService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "revisions":
		return s.repos.Content.Count(ctx)
	case "audit_logs":
		return s.repos.Audit.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}
