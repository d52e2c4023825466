package catalog

import (
	"sort"
	"strings"

	"github.com/institute-cms/internal/content"
	"github.com/institute-cms/internal/models"
)

// Filter narrows a course list. Zero values match everything.
type Filter struct {
	Query    string
	Category string
	Featured *bool
}

// CategorySummary is a visible category with the number of visible courses in it
type CategorySummary struct {
	models.Category
	CourseCount int `json:"courseCount"`
}

// PathView is a learning path with its steps resolved to courses
type PathView struct {
	models.LearningPath
	Steps []content.PathStep `json:"steps"`
}

// VisibleCourses returns the courses shown on the public site, by order then title.
func VisibleCourses(tree content.Tree) []models.Course {
	all := tree.Normalize().Courses()
	out := make([]models.Course, 0, len(all))
	for _, c := range all {
		if c.Visible {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// FilterCourses applies f to courses, keeping their order.
func FilterCourses(courses []models.Course, f Filter) []models.Course {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if f.Category != "" && !inCategory(c, f.Category) {
			continue
		}
		if f.Featured != nil && c.Featured != *f.Featured {
			continue
		}
		if q != "" && !matches(c, q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func inCategory(c models.Course, key string) bool {
	if c.Category == key {
		return true
	}
	for _, k := range c.Categories {
		if k == key {
			return true
		}
	}
	return false
}

func matches(c models.Course, q string) bool {
	fields := []string{c.Title, c.OneLiner, c.Description, c.Level, strings.Join(c.Tools, " ")}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// CategoriesWithCounts lists visible categories in display order with counts of
// the visible courses that belong to each.
func CategoriesWithCounts(tree content.Tree) []CategorySummary {
	norm := tree.Normalize()
	courses := VisibleCourses(norm)
	out := []CategorySummary{}
	for _, cat := range norm.Categories() {
		if !cat.Visible {
			continue
		}
		n := 0
		for _, c := range courses {
			if inCategory(c, cat.Key) {
				n++
			}
		}
		out = append(out, CategorySummary{Category: cat, CourseCount: n})
	}
	return out
}

// ResolvedPath returns the learning path under key with dangling and
// placeholder steps dropped.
func ResolvedPath(tree content.Tree, key string) (PathView, bool) {
	lp, ok := tree.ResolveLearningPath(key)
	if !ok {
		return PathView{}, false
	}
	steps, _ := tree.ResolvePathCourses(key)
	return PathView{LearningPath: lp, Steps: steps}, true
}
