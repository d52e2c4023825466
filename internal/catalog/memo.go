package catalog

import (
	"sync"

	"github.com/institute-cms/internal/content"
	"github.com/institute-cms/internal/models"
)

// Memo caches Categorize for one content revision at a time.
type Memo struct {
	mu      sync.Mutex
	key     string
	grouped map[string][]models.Course
	misses  int
}

// Grouped returns the vendor buckets for tree, recomputing only when the
// revision key changes. An empty key always recomputes.
func (m *Memo) Grouped(revision string, tree content.Tree) map[string][]models.Course {
	m.mu.Lock()
	defer m.mu.Unlock()

	if revision != "" && revision == m.key && m.grouped != nil {
		return m.grouped
	}
	m.misses++
	m.grouped = Categorize(VisibleCourses(tree), tree.Categories())
	m.key = revision
	return m.grouped
}

// Misses reports how many times Grouped recomputed.
func (m *Memo) Misses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.misses
}
