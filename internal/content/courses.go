package content

import (
	"fmt"
	"strings"

	"github.com/institute-cms/internal/models"
)

// DefaultFees is shown when a course has no fees or legacy price.
const DefaultFees = "Contact for pricing"

// AddCourse appends a new visible course whose slug is derived from its title.
// The returned course is the normalized record as stored.
func (t Tree) AddCourse(in models.Course) (Tree, models.Course, error) {
	title := strings.TrimSpace(in.Title)
	slug := Slugify(title)
	if title == "" || slug == "" {
		return nil, models.Course{}, ErrEmptyTitle
	}

	var added map[string]any
	next, err := t.mutate(func(doc map[string]any) error {
		if _, m := findCourse(doc, slug); m != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateSlug, slug)
		}

		list := courseList(doc)
		existing := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := asMap(item); ok {
				existing = append(existing, m)
			}
		}

		in.Title = title
		in.Slug = slug
		in.Visible = true
		in.Order = maxOrder(existing) + 1
		added = courseToMap(in)
		normalizeCourse(added, len(list))
		doc[KeyCourses] = append(list, added)
		return nil
	})
	if err != nil {
		return nil, models.Course{}, err
	}
	return next, CourseFromMap(added), nil
}

// DeleteCourse removes a course. Learning-path references to it are kept and
// dropped when resolved.
func (t Tree) DeleteCourse(slug string) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		idx, m := findCourse(doc, slug)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrCourseNotFound, slug)
		}
		list := courseList(doc)
		doc[KeyCourses] = append(list[:idx:idx], list[idx+1:]...)
		return nil
	})
}

// RenameCourse changes a course slug and repoints every learning-path step.
func (t Tree) RenameCourse(oldSlug, newSlug string) (Tree, error) {
	target := Slugify(newSlug)
	if target == "" {
		return nil, ErrEmptySlug
	}
	if target == oldSlug {
		return nil, ErrSlugUnchanged
	}
	return t.mutate(func(doc map[string]any) error {
		_, m := findCourse(doc, oldSlug)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrCourseNotFound, oldSlug)
		}
		if _, clash := findCourse(doc, target); clash != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateSlug, target)
		}
		m["slug"] = target

		paths, _ := asMap(doc[KeyLearningPaths])
		for _, raw := range paths {
			path, ok := asMap(raw)
			if !ok {
				continue
			}
			steps, _ := asSlice(path["courses"])
			for _, step := range steps {
				if ref, ok := asMap(step); ok && str(ref["courseSlug"]) == oldSlug {
					ref["courseSlug"] = target
				}
			}
		}
		return nil
	})
}

// SetCourseField sets one field of the course identified by slug.
func (t Tree) SetCourseField(slug, field string, value any) (Tree, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, ErrInvalidField
	}
	if field == "slug" {
		return nil, fmt.Errorf("%w: use RenameCourse to change a slug", ErrProtectedField)
	}
	v, err := plain(value)
	if err != nil {
		return nil, err
	}
	return t.mutate(func(doc map[string]any) error {
		_, m := findCourse(doc, slug)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrCourseNotFound, slug)
		}
		m[field] = v
		return nil
	})
}

// CourseFromMap reads a course record, treating missing fields as empty.
func CourseFromMap(m map[string]any) models.Course {
	return models.Course{
		Slug:             str(m["slug"]),
		Title:            str(m["title"]),
		Description:      str(m["description"]),
		OneLiner:         str(m["oneLiner"]),
		Category:         str(m["category"]),
		Categories:       strs(m["categories"]),
		Fees:             str(m["fees"]),
		Duration:         str(m["duration"]),
		Level:            str(m["level"]),
		Visible:          boolOr(m["visible"], true),
		Featured:         boolOr(m["featured"], false),
		Order:            num(m["order"]),
		Tools:            strs(m["tools"]),
		Highlights:       strs(m["highlights"]),
		LearningOutcomes: strs(m["learningOutcomes"]),
		CareerRoles:      strs(m["careerRoles"]),
	}
}

func courseToMap(c models.Course) map[string]any {
	m := map[string]any{
		"slug":             c.Slug,
		"title":            c.Title,
		"description":      c.Description,
		"oneLiner":         c.OneLiner,
		"categories":       anys(strs(c.Categories)),
		"fees":             c.Fees,
		"duration":         c.Duration,
		"level":            c.Level,
		"visible":          c.Visible,
		"featured":         c.Featured,
		"order":            float64(c.Order),
		"tools":            anys(strs(c.Tools)),
		"highlights":       anys(strs(c.Highlights)),
		"learningOutcomes": anys(strs(c.LearningOutcomes)),
		"careerRoles":      anys(strs(c.CareerRoles)),
	}
	if c.Category != "" {
		m["category"] = c.Category
	}
	return m
}
