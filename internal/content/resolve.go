package content

import (
	"sort"

	"github.com/institute-cms/internal/models"
)

// Courses, categories and learning paths refer to each other by slug or key
// only. Resolution may fail; callers drop what does not resolve.

// Courses returns every course in stored order.
func (t Tree) Courses() []models.Course {
	list, _ := asSlice(t[KeyCourses])
	out := make([]models.Course, 0, len(list))
	for _, item := range list {
		if m, ok := asMap(item); ok {
			out = append(out, CourseFromMap(m))
		}
	}
	return out
}

// Categories returns every category ordered by "order", then key.
func (t Tree) Categories() []models.Category {
	cats, _ := asMap(t[KeyCourseCategories])
	out := make([]models.Category, 0, len(cats))
	for _, key := range sortedKeys(cats) {
		m, _ := asMap(cats[key])
		out = append(out, CategoryFromMap(key, m))
	}
	return out
}

// LearningPaths returns every path ordered by key.
func (t Tree) LearningPaths() []models.LearningPath {
	paths, _ := asMap(t[KeyLearningPaths])
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]models.LearningPath, 0, len(keys))
	for _, key := range keys {
		if m, ok := asMap(paths[key]); ok {
			out = append(out, LearningPathFromMap(key, m))
		}
	}
	return out
}

// ResolveCourse looks a course up by slug.
func (t Tree) ResolveCourse(slug string) (models.Course, bool) {
	list, _ := asSlice(t[KeyCourses])
	for _, item := range list {
		if m, ok := asMap(item); ok && str(m["slug"]) == slug {
			return CourseFromMap(m), true
		}
	}
	return models.Course{}, false
}

// ResolveCategory looks a category up by key.
func (t Tree) ResolveCategory(key string) (models.Category, bool) {
	cats, _ := asMap(t[KeyCourseCategories])
	m, ok := asMap(cats[key])
	if !ok {
		return models.Category{}, false
	}
	return CategoryFromMap(key, m), true
}

// ResolveLearningPath looks a path up by key.
func (t Tree) ResolveLearningPath(key string) (models.LearningPath, bool) {
	paths, _ := asMap(t[KeyLearningPaths])
	m, ok := asMap(paths[key])
	if !ok {
		return models.LearningPath{}, false
	}
	return LearningPathFromMap(key, m), true
}

// PathStep is a learning-path step joined with its course.
type PathStep struct {
	models.PathCourseRef
	Course models.Course `json:"course"`
}

// ResolvePathCourses joins a path's steps with their courses, dropping steps
// whose course no longer exists or is still a placeholder.
func (t Tree) ResolvePathCourses(key string) ([]PathStep, bool) {
	lp, ok := t.ResolveLearningPath(key)
	if !ok {
		return nil, false
	}
	steps := make([]PathStep, 0, len(lp.Courses))
	for _, ref := range lp.Courses {
		if ref.CourseSlug == "" {
			continue
		}
		course, ok := t.ResolveCourse(ref.CourseSlug)
		if !ok {
			continue
		}
		steps = append(steps, PathStep{PathCourseRef: ref, Course: course})
	}
	return steps, true
}

// CourseCategories resolves a course's category keys, dropping unknown keys.
func (t Tree) CourseCategories(c models.Course) []models.Category {
	out := make([]models.Category, 0, len(c.Categories))
	for _, key := range c.Categories {
		if cat, ok := t.ResolveCategory(key); ok {
			out = append(out, cat)
		}
	}
	return out
}

// Drift names an entry whose map key differs from its slug field.
type Drift struct {
	Kind string `json:"kind"` // "category" or "learningPath"
	Key  string `json:"key"`
	Slug string `json:"slug"`
}

// SlugDrift lists categories and learning paths whose key and slug disagree.
func (t Tree) SlugDrift() []Drift {
	out := []Drift{}
	for _, cat := range t.Categories() {
		if cat.Slug != "" && cat.Slug != cat.Key {
			out = append(out, Drift{Kind: "category", Key: cat.Key, Slug: cat.Slug})
		}
	}
	for _, lp := range t.LearningPaths() {
		if lp.Slug != "" && lp.Slug != lp.Key {
			out = append(out, Drift{Kind: "learningPath", Key: lp.Key, Slug: lp.Slug})
		}
	}
	return out
}

// DanglingReferences lists "path/courseSlug" pairs that do not resolve.
func (t Tree) DanglingReferences() []string {
	out := []string{}
	for _, lp := range t.LearningPaths() {
		for _, ref := range lp.Courses {
			if ref.CourseSlug == "" {
				continue
			}
			if _, ok := t.ResolveCourse(ref.CourseSlug); !ok {
				out = append(out, lp.Key+"/"+ref.CourseSlug)
			}
		}
	}
	return out
}
