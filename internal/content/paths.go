package content

import (
	"fmt"
	"strings"

	"github.com/institute-cms/internal/models"
)

func findPath(doc map[string]any, key string) (map[string]any, error) {
	paths, _ := asMap(doc[KeyLearningPaths])
	path, ok := asMap(paths[key])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, key)
	}
	return path, nil
}

func pathSteps(path map[string]any) []any {
	steps, ok := asSlice(path["courses"])
	if !ok {
		return []any{}
	}
	return steps
}

// storeSteps writes steps back with contiguous 1-based order and a matching
// totalCourses.
func storeSteps(path map[string]any, steps []any) {
	for i, step := range steps {
		if ref, ok := asMap(step); ok {
			ref["order"] = float64(i + 1)
		}
	}
	path["courses"] = steps
	path["totalCourses"] = float64(len(steps))
}

// AddLearningPath creates an empty path keyed by the slug of its title.
func (t Tree) AddLearningPath(title string) (Tree, string, error) {
	title = strings.TrimSpace(title)
	base := Slugify(title)
	if base == "" {
		return nil, "", ErrEmptyTitle
	}
	var key string
	next, err := t.mutate(func(doc map[string]any) error {
		paths := mapping(doc, KeyLearningPaths)
		key = UniqueSlug(base, func(s string) bool { _, ok := paths[s]; return ok })
		paths[key] = map[string]any{
			"slug":         key,
			"title":        title,
			"description":  "",
			"courses":      []any{},
			"totalCourses": float64(0),
			"outcomes":     []any{},
			"careerRoles":  []any{},
			"featured":     false,
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return next, key, nil
}

// DeleteLearningPath removes a path. Courses are untouched.
func (t Tree) DeleteLearningPath(key string) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		if _, err := findPath(doc, key); err != nil {
			return err
		}
		delete(mapping(doc, KeyLearningPaths), key)
		return nil
	})
}

// SetLearningPathField sets one field of a path. totalCourses is derived; a
// new "courses" value is renumbered and recounted.
func (t Tree) SetLearningPathField(key, field string, value any) (Tree, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, ErrInvalidField
	}
	if field == "totalCourses" {
		return nil, ErrDerivedField
	}
	v, err := plain(value)
	if err != nil {
		return nil, err
	}
	return t.mutate(func(doc map[string]any) error {
		path, err := findPath(doc, key)
		if err != nil {
			return err
		}
		if field == "courses" {
			steps, ok := asSlice(v)
			if !ok {
				return fmt.Errorf("%w: courses must be a sequence", ErrPathConflict)
			}
			storeSteps(path, steps)
			return nil
		}
		path[field] = v
		return nil
	})
}

// AddPathCourse appends a step. A zero ref appends an empty placeholder slot.
// totalCourses is updated in the same step.
func (t Tree) AddPathCourse(key string, ref models.PathCourseRef) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		path, err := findPath(doc, key)
		if err != nil {
			return err
		}
		steps := pathSteps(path)
		steps = append(steps, map[string]any{
			"courseSlug":   strings.TrimSpace(ref.CourseSlug),
			"order":        float64(len(steps) + 1),
			"duration":     ref.Duration,
			"prerequisite": ref.Prerequisite,
		})
		storeSteps(path, steps)
		return nil
	})
}

// RemovePathCourse deletes the step at index and renumbers the rest.
func (t Tree) RemovePathCourse(key string, index int) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		path, err := findPath(doc, key)
		if err != nil {
			return err
		}
		steps := pathSteps(path)
		if index < 0 || index >= len(steps) {
			return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(steps))
		}
		rest := make([]any, 0, len(steps)-1)
		rest = append(rest, steps[:index]...)
		rest = append(rest, steps[index+1:]...)
		storeSteps(path, rest)
		return nil
	})
}

// MovePathCourse moves the step at from to position to and renumbers.
func (t Tree) MovePathCourse(key string, from, to int) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		path, err := findPath(doc, key)
		if err != nil {
			return err
		}
		steps := pathSteps(path)
		if from < 0 || from >= len(steps) || to < 0 || to >= len(steps) {
			return fmt.Errorf("%w: move %d to %d of %d", ErrIndexOutOfRange, from, to, len(steps))
		}
		step := steps[from]
		rest := make([]any, 0, len(steps))
		rest = append(rest, steps[:from]...)
		rest = append(rest, steps[from+1:]...)
		moved := make([]any, 0, len(steps))
		moved = append(moved, rest[:to]...)
		moved = append(moved, step)
		moved = append(moved, rest[to:]...)
		storeSteps(path, moved)
		return nil
	})
}

// SetPathCourse replaces the course slug and details of one step.
func (t Tree) SetPathCourse(key string, index int, ref models.PathCourseRef) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		path, err := findPath(doc, key)
		if err != nil {
			return err
		}
		steps := pathSteps(path)
		if index < 0 || index >= len(steps) {
			return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(steps))
		}
		step, ok := asMap(steps[index])
		if !ok {
			step = map[string]any{}
			steps[index] = step
		}
		step["courseSlug"] = strings.TrimSpace(ref.CourseSlug)
		step["duration"] = ref.Duration
		step["prerequisite"] = ref.Prerequisite
		storeSteps(path, steps)
		return nil
	})
}

// LearningPathFromMap reads a path record stored under key.
func LearningPathFromMap(key string, m map[string]any) models.LearningPath {
	lp := models.LearningPath{
		Key:            key,
		Slug:           str(m["slug"]),
		Title:          str(m["title"]),
		Description:    str(m["description"]),
		Duration:       str(m["duration"]),
		Level:          str(m["level"]),
		TotalCourses:   num(m["totalCourses"]),
		EstimatedHours: num(m["estimatedHours"]),
		Featured:       boolOr(m["featured"], false),
		AverageSalary:  str(m["averageSalary"]),
		Outcomes:       strs(m["outcomes"]),
		CareerRoles:    strs(m["careerRoles"]),
		Courses:        []models.PathCourseRef{},
	}
	if seo, ok := asMap(m["seo"]); ok {
		lp.SEO = seo
	}
	for _, step := range pathSteps(m) {
		ref, ok := asMap(step)
		if !ok {
			continue
		}
		lp.Courses = append(lp.Courses, models.PathCourseRef{
			CourseSlug:   str(ref["courseSlug"]),
			Order:        num(ref["order"]),
			Duration:     str(ref["duration"]),
			Prerequisite: boolOr(ref["prerequisite"], false),
		})
	}
	return lp
}
