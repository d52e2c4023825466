package content

import (
	"strings"
	"unicode/utf8"
)

const oneLinerMaxRunes = 160

// Normalize fills every default the site relies on so readers can assume
// presence instead of falling back at each use. It runs when content is
// loaded and before it is saved, and does not stamp _lastModified.
func (t Tree) Normalize() Tree {
	doc := t.Clone()

	list := courseList(doc)
	for i, item := range list {
		if m, ok := asMap(item); ok {
			normalizeCourse(m, i)
		}
	}

	cats := mapping(doc, KeyCourseCategories)
	for key, raw := range cats {
		cat, ok := asMap(raw)
		if !ok {
			cat = map[string]any{}
			cats[key] = cat
		}
		if strings.TrimSpace(str(cat["slug"])) == "" {
			cat["slug"] = key
		}
		if strings.TrimSpace(str(cat["name"])) == "" {
			cat["name"] = key
		}
		if _, ok := cat["visible"].(bool); !ok {
			cat["visible"] = true
		}
	}

	paths := mapping(doc, KeyLearningPaths)
	for key, raw := range paths {
		path, ok := asMap(raw)
		if !ok {
			continue
		}
		if strings.TrimSpace(str(path["slug"])) == "" {
			path["slug"] = key
		}
		steps := pathSteps(path)
		kept := make([]any, 0, len(steps))
		for _, step := range steps {
			if _, ok := asMap(step); ok {
				kept = append(kept, step)
			}
		}
		storeSteps(path, kept)
	}

	for _, key := range []string{KeyFAQs, KeyTestimonials} {
		if _, ok := asSlice(doc[key]); !ok {
			doc[key] = []any{}
		}
	}
	for _, key := range []string{KeyFooter, KeyInstitute, KeyHome, KeyAbout, KeyPages} {
		mapping(doc, key)
	}
	return doc
}

func normalizeCourse(m map[string]any, index int) {
	if strings.TrimSpace(str(m["slug"])) == "" {
		m["slug"] = Slugify(str(m["title"]))
	}
	if _, ok := m["visible"].(bool); !ok {
		m["visible"] = true
	}
	if _, ok := m["featured"].(bool); !ok {
		m["featured"] = false
	}
	if _, ok := m["order"]; !ok {
		m["order"] = float64(index + 1)
	}

	fees := strings.TrimSpace(str(m["fees"]))
	if fees == "" {
		fees = strings.TrimSpace(str(m["price"]))
	}
	if fees == "" {
		fees = DefaultFees
	}
	m["fees"] = fees

	if strings.TrimSpace(str(m["oneLiner"])) == "" {
		m["oneLiner"] = firstSentence(str(m["description"]))
	}

	categories := strs(m["categories"])
	if legacy := strings.TrimSpace(str(m["category"])); legacy != "" && !contains(categories, legacy) {
		categories = append(categories, legacy)
	}
	m["categories"] = anys(dedupe(categories))

	for _, field := range []string{"tools", "highlights", "learningOutcomes", "careerRoles"} {
		if _, ok := asSlice(m[field]); !ok {
			m[field] = []any{}
		}
	}
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i >= 0 {
		s = s[:i+1]
	}
	if utf8.RuneCountInString(s) > oneLinerMaxRunes {
		r := []rune(s)
		s = strings.TrimSpace(string(r[:oneLinerMaxRunes-1])) + "…"
	}
	return s
}
