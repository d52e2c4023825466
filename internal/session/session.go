// Package session keeps the content tree an admin is editing between the
// load and the explicit save.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/institute-cms/internal/content"
	"github.com/institute-cms/internal/models"
)

// ErrNoChanges is returned by Commit when the tree equals the loaded snapshot.
var ErrNoChanges = errors.New("no changes to commit")

// Backend loads and persists content revisions.
type Backend interface {
	Load(ctx context.Context, includeDrafts bool) (*models.ContentRevision, error)
	Save(ctx context.Context, user string, req *models.SaveContentRequest) (*models.ContentRevision, error)
}

// Op is one engine operation applied to the working tree.
type Op func(content.Tree) (content.Tree, error)

// Session is the single authoritative editing state of one admin login.
// Get, Update, Apply, Reset and Commit are its only mutators.
type Session struct {
	ID   string
	User string

	mu       sync.Mutex
	backend  Backend
	original content.Tree
	current  content.Tree
	version  int64
	lastUsed time.Time
	now      func() time.Time
}

func newSession(id, user string, backend Backend, rev *models.ContentRevision, now func() time.Time) *Session {
	tree := content.Tree(rev.Content).Normalize()
	return &Session{
		ID:       id,
		User:     user,
		backend:  backend,
		original: tree,
		current:  tree,
		version:  rev.Version,
		lastUsed: now(),
		now:      now,
	}
}

// Get returns the working tree. Trees are never modified in place, so the
// result stays valid after later edits.
func (s *Session) Get() content.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	return s.current
}

// Original returns the snapshot taken at load or at the last commit.
func (s *Session) Original() content.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original
}

// Version is the revision the working tree is based on.
func (s *Session) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Update applies a path-addressed update.
func (s *Session) Update(path string, value any) (content.Tree, error) {
	return s.Apply(func(t content.Tree) (content.Tree, error) {
		return t.Update(path, value)
	})
}

// Apply runs op against the working tree. On error the tree is unchanged.
func (s *Session) Apply(op Op) (content.Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()

	next, err := op(s.current)
	if err != nil {
		return nil, err
	}
	s.current = next
	return next, nil
}

// Reset discards every uncommitted edit.
func (s *Session) Reset() content.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	s.current = s.original
	return s.current
}

// Dirty reports whether the working tree differs from the snapshot.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !content.Equal(s.original, s.current)
}

// Changes lists the top-level sections edited since the snapshot.
func (s *Session) Changes() ([]string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return content.Diff(s.original, s.current)
}

// Commit saves the working tree as a new revision based on the loaded
// version. The session lock is held for the whole save, so a second commit
// issued while the first is in flight waits and then finds nothing to save.
func (s *Session) Commit(ctx context.Context, isDraft bool) (*models.ContentRevision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()

	if content.Equal(s.original, s.current) {
		return nil, ErrNoChanges
	}

	base := s.version
	rev, err := s.backend.Save(ctx, s.User, &models.SaveContentRequest{
		Content: s.current,
		IsDraft: isDraft,
		Version: &base,
	})
	if err != nil {
		return nil, err
	}

	saved := content.Tree(rev.Content)
	s.original = saved
	s.current = saved
	s.version = rev.Version
	return rev, nil
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
