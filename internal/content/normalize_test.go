package content

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tree, _ := FromJSON([]byte(`{
		"courses": [
			{"title": "Linux Basics", "price": "5000", "category": "redhat"},
			{"slug": "ccna", "title": "CCNA", "visible": false, "fees": "", "categories": ["cisco", "cisco"],
			 "description": "Networking from scratch. Then routing."}
		],
		"courseCategories": {"redhat": {"name": "Red Hat"}, "cisco": {"slug": "cisco", "visible": false}},
		"learningPaths": {"net": {"totalCourses": 9, "courses": [{"courseSlug": "ccna", "order": 4}, "junk"]}}
	}`))
	snapshot := tree.Clone()

	norm := tree.Normalize()

	if !reflect.DeepEqual(tree, snapshot) {
		t.Error("Normalize must not modify its receiver")
	}
	if norm.LastModified() != "" {
		t.Error("Normalize should not stamp _lastModified")
	}

	linux, ok := norm.ResolveCourse("linux-basics")
	if !ok {
		t.Fatal("Expected slug derived from title")
	}
	if linux.Fees != "5000" {
		t.Errorf("Expected legacy price fallback, got %q", linux.Fees)
	}
	if !linux.Visible || linux.Order != 1 {
		t.Errorf("Unexpected defaults %+v", linux)
	}
	if !reflect.DeepEqual(linux.Categories, []string{"redhat"}) {
		t.Errorf("Expected legacy category folded in, got %v", linux.Categories)
	}

	ccna, _ := norm.ResolveCourse("ccna")
	if ccna.Visible {
		t.Error("Explicit visible=false must be kept")
	}
	if ccna.Fees != DefaultFees {
		t.Errorf("Expected default fees, got %q", ccna.Fees)
	}
	if ccna.OneLiner != "Networking from scratch." {
		t.Errorf("Unexpected oneLiner %q", ccna.OneLiner)
	}
	if !reflect.DeepEqual(ccna.Categories, []string{"cisco"}) {
		t.Errorf("Expected deduped categories, got %v", ccna.Categories)
	}

	redhat, _ := norm.ResolveCategory("redhat")
	if redhat.Slug != "redhat" || !redhat.Visible {
		t.Errorf("Unexpected category defaults %+v", redhat)
	}
	cisco, _ := norm.ResolveCategory("cisco")
	if cisco.Visible {
		t.Error("Explicit category visible=false must be kept")
	}

	net, _ := norm.ResolveLearningPath("net")
	if net.TotalCourses != 1 || net.Courses[0].Order != 1 || net.Slug != "net" {
		t.Errorf("Unexpected path %+v", net)
	}

	if _, ok := norm[KeyFAQs].([]any); !ok {
		t.Error("Expected faqs to default to an empty sequence")
	}
	if _, ok := norm[KeyFooter].(map[string]any); !ok {
		t.Error("Expected footer to default to an empty mapping")
	}
}

func TestSlugDrift(t *testing.T) {
	tree, _ := FromJSON([]byte(`{
		"courseCategories": {"a": {"slug": "a"}, "b": {"slug": "bee"}, "c": {}},
		"learningPaths": {"p": {"slug": "path"}}
	}`))

	drift := tree.SlugDrift()
	want := []Drift{
		{Kind: "category", Key: "b", Slug: "bee"},
		{Kind: "learningPath", Key: "p", Slug: "path"},
	}
	if !reflect.DeepEqual(drift, want) {
		t.Errorf("Expected %v, got %v", want, drift)
	}
}
