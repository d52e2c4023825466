// Package catalog derives the public, read-only views of the course catalog
// from a content tree.
package catalog

import (
	"strings"

	"github.com/institute-cms/internal/content"
	"github.com/institute-cms/internal/models"
)

// General is the catch-all bucket every course belongs to.
const General = "general"

type vendor struct {
	ID       string
	Keywords []string
}

// vendors is checked in order; the first match wins.
var vendors = []vendor{
	{ID: "redhat", Keywords: []string{"red hat", "redhat", "rhcsa", "rhce", "openshift", "ansible"}},
	{ID: "aws", Keywords: []string{"aws", "amazon web services"}},
	{ID: "azure", Keywords: []string{"azure", "az-104", "az-900"}},
	{ID: "gcp", Keywords: []string{"gcp", "google cloud"}},
	{ID: "devops", Keywords: []string{"devops", "docker", "kubernetes", "jenkins", "terraform", "ci/cd"}},
	{ID: "cisco", Keywords: []string{"cisco", "ccna", "ccnp"}},
	{ID: "linux", Keywords: []string{"linux", "bash", "shell scripting"}},
	{ID: "python", Keywords: []string{"python", "django", "data science"}},
}

// Categorize groups courses into vendor buckets for tabbed display.
//
// Courses are deduplicated by slug, first occurrence wins. Every course lands
// in General exactly once and in at most one vendor bucket, chosen by:
//  1. an exact category or categories entry naming a known identifier
//  2. a keyword found in the title, category, tools or description
//  3. the leading word of the title naming a known identifier
func Categorize(courses []models.Course, categories []models.Category) map[string][]models.Course {
	known := make(map[string]bool, len(vendors)+len(categories))
	for _, v := range vendors {
		known[v.ID] = true
	}
	for _, c := range categories {
		known[c.Key] = true
	}

	out := map[string][]models.Course{General: {}}
	seen := make(map[string]bool, len(courses))
	for _, c := range courses {
		if seen[c.Slug] {
			continue
		}
		seen[c.Slug] = true

		out[General] = append(out[General], c)
		if id := classify(c, known, categories); id != "" && id != General {
			out[id] = append(out[id], c)
		}
	}
	return out
}

func classify(c models.Course, known map[string]bool, categories []models.Category) string {
	if id := strings.ToLower(strings.TrimSpace(c.Category)); known[id] {
		return id
	}
	for _, key := range c.Categories {
		if id := strings.ToLower(strings.TrimSpace(key)); known[id] {
			return id
		}
	}

	haystack := strings.ToLower(strings.Join([]string{
		c.Title, c.Category, strings.Join(c.Tools, " "), c.Description,
	}, " "))
	for _, v := range vendors {
		for _, kw := range v.Keywords {
			if strings.Contains(haystack, kw) {
				return v.ID
			}
		}
	}

	return titleHeuristic(c.Title, known, categories)
}

func titleHeuristic(title string, known map[string]bool, categories []models.Category) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	lead := content.Slugify(fields[0])
	if known[lead] {
		return lead
	}
	for _, c := range categories {
		name := content.Slugify(c.Name)
		if name != "" && strings.HasPrefix(content.Slugify(title), name) {
			return c.Key
		}
	}
	return ""
}
