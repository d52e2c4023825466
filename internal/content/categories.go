package content

import (
	"fmt"
	"strings"

	"github.com/institute-cms/internal/models"
)

// SyncPlan describes a category key rename before it is applied.
type SyncPlan struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Courses []string `json:"courses"` // slugs of courses whose categories will be rewritten
}

// AddCategory creates a visible category keyed by the slug of its name.
// It returns the key that was used.
func (t Tree) AddCategory(name string) (Tree, string, error) {
	name = strings.TrimSpace(name)
	base := Slugify(name)
	if base == "" {
		return nil, "", ErrEmptyName
	}

	var key string
	next, err := t.mutate(func(doc map[string]any) error {
		cats := mapping(doc, KeyCourseCategories)
		key = UniqueSlug(base, func(s string) bool { _, ok := cats[s]; return ok })

		existing := make([]map[string]any, 0, len(cats))
		for _, raw := range cats {
			if m, ok := asMap(raw); ok {
				existing = append(existing, m)
			}
		}
		cats[key] = map[string]any{
			"name":        name,
			"slug":        key,
			"description": "",
			"icon":        "",
			"color":       "",
			"order":       float64(maxOrder(existing) + 1),
			"visible":     true,
			"featured":    false,
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return next, key, nil
}

// SetCategoryField sets one field of a category. Setting "slug" records the
// desired key; SyncSlugKey applies it.
func (t Tree) SetCategoryField(key, field string, value any) (Tree, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, ErrInvalidField
	}
	v, err := plain(value)
	if err != nil {
		return nil, err
	}
	return t.mutate(func(doc map[string]any) error {
		cat, ok := asMap(mapping(doc, KeyCourseCategories)[key])
		if !ok {
			return fmt.Errorf("%w: %s", ErrCategoryNotFound, key)
		}
		cat[field] = v
		return nil
	})
}

// PlanSlugSync validates renaming a category's key to its slug field.
func (t Tree) PlanSlugSync(key string) (SyncPlan, error) {
	cats, _ := asMap(t[KeyCourseCategories])
	cat, ok := asMap(cats[key])
	if !ok {
		return SyncPlan{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, key)
	}
	return t.PlanCategoryRename(key, str(cat["slug"]))
}

// PlanCategoryRename validates renaming category key to target and lists the
// courses that reference it.
func (t Tree) PlanCategoryRename(key, target string) (SyncPlan, error) {
	target = strings.TrimSpace(target)
	cats, _ := asMap(t[KeyCourseCategories])
	if _, ok := asMap(cats[key]); !ok {
		return SyncPlan{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, key)
	}
	if target == "" {
		return SyncPlan{}, ErrEmptySlug
	}
	if target == key {
		return SyncPlan{}, ErrSlugUnchanged
	}
	if _, clash := cats[target]; clash {
		return SyncPlan{}, fmt.Errorf("%w: %s", ErrSlugCollision, target)
	}

	plan := SyncPlan{From: key, To: target, Courses: []string{}}
	list, _ := asSlice(t[KeyCourses])
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		if contains(strs(m["categories"]), key) || str(m["category"]) == key {
			plan.Courses = append(plan.Courses, str(m["slug"]))
		}
	}
	return plan, nil
}

// SyncSlugKey moves a category to the key named by its slug field and
// repoints every course that referenced the old key.
func (t Tree) SyncSlugKey(key string) (Tree, error) {
	plan, err := t.PlanSlugSync(key)
	if err != nil {
		return nil, err
	}
	return t.applyRenames(map[string]string{plan.From: plan.To})
}

// RenameCategory moves a category to target, updating its slug and every
// course reference.
func (t Tree) RenameCategory(key, target string) (Tree, error) {
	plan, err := t.PlanCategoryRename(key, target)
	if err != nil {
		return nil, err
	}
	return t.applyRenames(map[string]string{plan.From: plan.To})
}

// PlanSyncAll computes the collision-free key for every category. Categories
// whose key already equals their derived slug keep it; the rest are assigned
// in order, with duplicates suffixed -2, -3, ...
func (t Tree) PlanSyncAll() map[string]string {
	cats, _ := asMap(t[KeyCourseCategories])
	keys := sortedKeys(cats)

	base := make(map[string]string, len(keys))
	for _, key := range keys {
		cat, _ := asMap(cats[key])
		b := Slugify(str(cat["slug"]))
		if b == "" {
			b = Slugify(str(cat["name"]))
		}
		if b == "" {
			b = Slugify(key)
		}
		if b == "" {
			b = "category"
		}
		base[key] = b
	}

	assigned := make(map[string]string, len(keys))
	used := make(map[string]bool, len(keys))
	for _, key := range keys {
		if base[key] == key {
			assigned[key] = key
			used[key] = true
		}
	}
	for _, key := range keys {
		if _, done := assigned[key]; done {
			continue
		}
		target := UniqueSlug(base[key], func(s string) bool { return used[s] })
		assigned[key] = target
		used[target] = true
	}
	return assigned
}

// SyncAllCategories applies PlanSyncAll. The returned map holds only the keys
// that changed.
func (t Tree) SyncAllCategories() (Tree, map[string]string, error) {
	changed := map[string]string{}
	for from, to := range t.PlanSyncAll() {
		if from != to {
			changed[from] = to
		}
	}
	next, err := t.applyRenames(changed)
	if err != nil {
		return nil, nil, err
	}
	// keys that stayed still get their slug field aligned
	cats := mapping(next, KeyCourseCategories)
	for key, raw := range cats {
		if cat, ok := asMap(raw); ok {
			cat["slug"] = key
		}
	}
	return next, changed, nil
}

// applyRenames rewrites category keys and course references in one step.
func (t Tree) applyRenames(renames map[string]string) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		cats := mapping(doc, KeyCourseCategories)
		moved := make(map[string]any, len(renames))
		for from, to := range renames {
			cat, ok := asMap(cats[from])
			if !ok {
				return fmt.Errorf("%w: %s", ErrCategoryNotFound, from)
			}
			cat["slug"] = to
			moved[to] = cat
			delete(cats, from)
		}
		for to, cat := range moved {
			cats[to] = cat
		}

		for _, item := range courseList(doc) {
			m, ok := asMap(item)
			if !ok {
				continue
			}
			current := strs(m["categories"])
			touched := false
			rewritten := make([]string, len(current))
			for i, key := range current {
				if to, ok := renames[key]; ok {
					rewritten[i] = to
					touched = true
				} else {
					rewritten[i] = key
				}
			}
			if touched {
				m["categories"] = anys(dedupe(rewritten))
			}
			if to, ok := renames[str(m["category"])]; ok {
				m["category"] = to
			}
		}
		return nil
	})
}

// AssignCourseToCategory adds key to the course's categories when absent.
func (t Tree) AssignCourseToCategory(key, slug string) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		if _, ok := asMap(mapping(doc, KeyCourseCategories)[key]); !ok {
			return fmt.Errorf("%w: %s", ErrCategoryNotFound, key)
		}
		_, m := findCourse(doc, slug)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrCourseNotFound, slug)
		}
		current := strs(m["categories"])
		if !contains(current, key) {
			m["categories"] = anys(append(current, key))
		}
		return nil
	})
}

// RemoveCourseFromCategory drops key from the course's categories.
func (t Tree) RemoveCourseFromCategory(key, slug string) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		_, m := findCourse(doc, slug)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrCourseNotFound, slug)
		}
		m["categories"] = anys(without(strs(m["categories"]), key))
		if str(m["category"]) == key {
			m["category"] = ""
		}
		return nil
	})
}

// DeleteCategory removes a category and strips its key from every course.
// No course is deleted.
func (t Tree) DeleteCategory(key string) (Tree, error) {
	return t.mutate(func(doc map[string]any) error {
		cats := mapping(doc, KeyCourseCategories)
		if _, ok := cats[key]; !ok {
			return fmt.Errorf("%w: %s", ErrCategoryNotFound, key)
		}
		delete(cats, key)

		for _, item := range courseList(doc) {
			m, ok := asMap(item)
			if !ok {
				continue
			}
			current := strs(m["categories"])
			if contains(current, key) {
				m["categories"] = anys(without(current, key))
			}
			if str(m["category"]) == key {
				m["category"] = ""
			}
		}
		return nil
	})
}

// CategoryFromMap reads a category record stored under key.
func CategoryFromMap(key string, m map[string]any) models.Category {
	return models.Category{
		Key:         key,
		Name:        str(m["name"]),
		Slug:        str(m["slug"]),
		Description: str(m["description"]),
		Icon:        str(m["icon"]),
		Color:       str(m["color"]),
		Order:       num(m["order"]),
		Visible:     boolOr(m["visible"], true),
		Featured:    boolOr(m["featured"], false),
	}
}

func without(items []string, s string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}
