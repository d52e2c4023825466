// Package content holds the site content tree and every operation that edits it.
//
// A Tree is one JSON document. Operations never modify the receiver: each one
// deep-copies the document, applies its change to the copy, stamps
// _lastModified and returns the copy.
package content

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ohler55/ojg/alt"
	"github.com/ohler55/ojg/jp"
)

// Top-level keys the engine understands.
const (
	KeyCourses          = "courses"
	KeyCourseCategories = "courseCategories"
	KeyLearningPaths    = "learningPaths"
	KeyFooter           = "footer"
	KeyInstitute        = "institute"
	KeyFAQs             = "faqs"
	KeyTestimonials     = "testimonials"
	KeyHome             = "home"
	KeyAbout            = "about"
	KeyPages            = "pages"

	LastModifiedKey = "_lastModified"
)

// Now is the clock used for _lastModified stamps.
var Now = time.Now

// Tree is the whole site content document.
type Tree map[string]any

// New returns an empty tree.
func New() Tree {
	return Tree{}
}

// FromJSON decodes a document. A JSON null decodes to an empty tree.
func FromJSON(data []byte) (Tree, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return Tree(doc), nil
}

// JSON encodes the tree.
func (t Tree) JSON() ([]byte, error) {
	return json.Marshal(map[string]any(t))
}

// Clone returns a deep copy.
func (t Tree) Clone() Tree {
	if t == nil {
		return Tree{}
	}
	doc, _ := alt.Dup(map[string]any(t)).(map[string]any)
	if doc == nil {
		doc = map[string]any{}
	}
	return Tree(doc)
}

// LastModified returns the _lastModified stamp, or "" when unset.
func (t Tree) LastModified() string {
	return str(t[LastModifiedKey])
}

// mutate runs fn against a deep copy and stamps the copy on success.
func (t Tree) mutate(fn func(doc map[string]any) error) (Tree, error) {
	next := t.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next[LastModifiedKey] = Now().UTC().Format(time.RFC3339Nano)
	return next, nil
}

// Update sets the value at a dot-separated path and returns the new tree.
//
// Missing intermediate segments are created as empty maps. A numeric segment
// indexes into an existing sequence. Descending through a scalar, or using a
// non-numeric segment on a sequence, fails with ErrPathConflict.
func (t Tree) Update(path string, value any) (Tree, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	v, err := plain(value)
	if err != nil {
		return nil, err
	}
	return t.mutate(func(doc map[string]any) error {
		x, err := compile(doc, segs, true)
		if err != nil {
			return err
		}
		if v == nil {
			// explicit nulls are written through the parent container
			return setNull(doc, segs)
		}
		return x.SetOne(doc, v)
	})
}

// Get returns the value at a dot-separated path.
func (t Tree) Get(path string) (any, bool) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, false
	}
	doc := map[string]any(t)
	x, err := compile(doc, segs, false)
	if err != nil {
		return nil, false
	}
	return x.First(doc), true
}

// GetString returns the string at path, or "" when absent.
func (t Tree) GetString(path string) string {
	v, _ := t.Get(path)
	return str(v)
}

// GetSlice returns the sequence at path, or an empty slice when absent.
func (t Tree) GetSlice(path string) []any {
	v, _ := t.Get(path)
	if s, ok := asSlice(v); ok {
		return s
	}
	return []any{}
}

// GetMap returns the mapping at path, or an empty map when absent.
func (t Tree) GetMap(path string) map[string]any {
	v, _ := t.Get(path)
	if m, ok := asMap(v); ok {
		return m
	}
	return map[string]any{}
}

func splitPath(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segs := strings.Split(path, ".")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

// compile walks doc along segs and builds the matching jp expression. With
// create set, missing intermediates become maps; otherwise a missing segment
// is an error.
func compile(doc map[string]any, segs []string, create bool) (jp.Expr, error) {
	x := jp.Expr{}
	var cur any = doc
	for i, seg := range segs {
		last := i == len(segs)-1
		switch node := cur.(type) {
		case map[string]any:
			x = x.C(seg)
			next, ok := node[seg]
			if last {
				if !ok && !create {
					return nil, fmt.Errorf("%w: %q not found", ErrInvalidPath, seg)
				}
				return x, nil
			}
			if !ok || next == nil {
				if !create {
					return nil, fmt.Errorf("%w: %q not found", ErrInvalidPath, seg)
				}
				next = map[string]any{}
				node[seg] = next
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("%w: %q indexes a sequence", ErrPathConflict, seg)
			}
			if idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("%w: index %d of %d", ErrPathConflict, idx, len(node))
			}
			x = x.N(idx)
			if last {
				return x, nil
			}
			if node[idx] == nil {
				if !create {
					return nil, fmt.Errorf("%w: index %d is null", ErrInvalidPath, idx)
				}
				node[idx] = map[string]any{}
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("%w: %q is a %T", ErrPathConflict, strings.Join(segs[:i], "."), cur)
		}
	}
	return x, nil
}

func setNull(doc map[string]any, segs []string) error {
	var cur any = doc
	for _, seg := range segs[:len(segs)-1] {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[seg]
		case []any:
			idx, _ := strconv.Atoi(seg)
			cur = node[idx]
		}
	}
	leaf := segs[len(segs)-1]
	switch node := cur.(type) {
	case map[string]any:
		node[leaf] = nil
	case []any:
		idx, _ := strconv.Atoi(leaf)
		node[idx] = nil
	}
	return nil
}

// plain converts v into the generic JSON shape (maps, []any, float64, ...)
// and detaches it from the caller.
func plain(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64, int, int64, json.Number:
		return v, nil
	case map[string]any, []any:
		return alt.Dup(v), nil
	case Tree:
		return alt.Dup(map[string]any(v.(Tree))), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
