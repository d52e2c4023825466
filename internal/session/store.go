package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/institute-cms/internal/config"
	"github.com/rs/zerolog"
)

// Store holds the open editing sessions, keyed by token id.
type Store struct {
	backend Backend
	idle    time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	janitorMu sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewStore creates an empty store.
func NewStore(backend Backend, cfg config.SessionConfig, log zerolog.Logger) *Store {
	return &Store{
		backend:  backend,
		idle:     cfg.IdleTimeout,
		log:      log.With().Str("service", "session").Logger(),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Open returns the session for id, loading the newest revision (drafts
// included) when none is open yet.
func (st *Store) Open(ctx context.Context, id, user string) (*Session, error) {
	if s, ok := st.Get(id); ok {
		return s, nil
	}

	rev, err := st.backend.Load(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load content for session: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	// another request may have opened it while we were loading
	if s, ok := st.sessions[id]; ok {
		return s, nil
	}
	s := newSession(id, user, st.backend, rev, st.now)
	st.sessions[id] = s

	st.log.Info().Str("session_id", id).Str("user", user).Int64("version", rev.Version).Msg("Editing session opened")
	return s, nil
}

// Get returns an open session.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Close discards a session and its uncommitted edits.
func (st *Store) Close(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; ok {
		delete(st.sessions, id)
		st.log.Info().Str("session_id", id).Msg("Editing session closed")
	}
}

// Len returns the number of open sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep closes sessions idle for longer than the configured timeout.
func (st *Store) Sweep() int {
	if st.idle <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.idle)

	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			if s.Dirty() {
				st.log.Warn().Str("session_id", id).Msg("Evicting idle session with uncommitted edits")
			}
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// StartJanitor sweeps idle sessions every interval until ctx is cancelled or
// StopJanitor is called. It blocks, so run it in its own goroutine.
func (st *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	st.janitorMu.Lock()
	if st.cancel != nil {
		st.janitorMu.Unlock()
		return
	}
	ctx, st.cancel = context.WithCancel(ctx)
	st.done = make(chan struct{})
	done := st.done
	st.janitorMu.Unlock()
	defer close(done)

	if interval <= 0 {
		interval = time.Minute
	}
	st.log.Info().Dur("interval", interval).Dur("idle_timeout", st.idle).Msg("Session janitor started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.log.Info().Msg("Session janitor stopping")
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				st.log.Info().Int("evicted", n).Msg("Idle sessions evicted")
			}
		}
	}
}

// StopJanitor stops a running janitor and waits for it to exit.
func (st *Store) StopJanitor() {
	st.janitorMu.Lock()
	cancel, done := st.cancel, st.done
	st.cancel, st.done = nil, nil
	st.janitorMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
