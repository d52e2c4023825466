package content

import (
	"errors"
	"testing"

	"github.com/institute-cms/internal/models"
)

func TestAddCourse_Scenario(t *testing.T) {
	tree, _ := FromJSON([]byte(`{"courses": []}`))

	next, course, err := tree.AddCourse(models.Course{Title: "Cloud Basics 101!"})
	if err != nil {
		t.Fatalf("AddCourse failed: %v", err)
	}

	if course.Slug != "cloud-basics-101" {
		t.Errorf("Expected slug cloud-basics-101, got %q", course.Slug)
	}
	if !course.Visible {
		t.Error("New course should be visible")
	}
	if course.Fees != DefaultFees {
		t.Errorf("Expected fees %q, got %q", DefaultFees, course.Fees)
	}
	if course.Order != 1 {
		t.Errorf("Expected order 1, got %d", course.Order)
	}
	if got := len(next.Courses()); got != 1 {
		t.Errorf("Expected 1 course, got %d", got)
	}
	if got := len(tree.Courses()); got != 0 {
		t.Errorf("Original tree should be unchanged, got %d courses", got)
	}
}

func TestAddCourse_DuplicateRejected(t *testing.T) {
	tree := sampleTree(t)

	_, _, err := tree.AddCourse(models.Course{Title: "RHCSA"})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("Expected ErrDuplicateSlug, got %v", err)
	}
	if got := len(tree.Courses()); got != 2 {
		t.Errorf("Expected course count unchanged at 2, got %d", got)
	}
}

func TestAddCourse_Validation(t *testing.T) {
	for _, title := range []string{"", "   ", "!!!"} {
		if _, _, err := New().AddCourse(models.Course{Title: title}); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("title %q: expected ErrEmptyTitle, got %v", title, err)
		}
	}
}

func TestAddCourse_OneLinerFallbackAndOrder(t *testing.T) {
	tree := sampleTree(t)

	_, course, err := tree.AddCourse(models.Course{
		Title:       "Kubernetes Admin",
		Description: "Run production clusters. Includes CKA prep.",
		Fees:        "30000",
		Category:    "devops",
	})
	if err != nil {
		t.Fatalf("AddCourse failed: %v", err)
	}
	if course.OneLiner != "Run production clusters." {
		t.Errorf("Unexpected oneLiner %q", course.OneLiner)
	}
	if course.Fees != "30000" {
		t.Errorf("Expected fees kept, got %q", course.Fees)
	}
	if course.Order != 3 {
		t.Errorf("Expected order 3, got %d", course.Order)
	}
	if len(course.Categories) != 1 || course.Categories[0] != "devops" {
		t.Errorf("Expected legacy category folded into categories, got %v", course.Categories)
	}
}

func TestDeleteCourse_LeavesWeakReferences(t *testing.T) {
	tree := sampleTree(t)

	next, err := tree.DeleteCourse("aws-sa")
	if err != nil {
		t.Fatalf("DeleteCourse failed: %v", err)
	}
	if _, ok := next.ResolveCourse("aws-sa"); ok {
		t.Error("Course should be deleted")
	}

	lp, _ := next.ResolveLearningPath("cloud")
	if len(lp.Courses) != 1 {
		t.Errorf("Path reference should remain, got %d", len(lp.Courses))
	}
	steps, _ := next.ResolvePathCourses("cloud")
	if len(steps) != 0 {
		t.Errorf("Dangling reference should be dropped on resolve, got %d", len(steps))
	}
	if got := next.DanglingReferences(); len(got) != 1 || got[0] != "cloud/aws-sa" {
		t.Errorf("Unexpected dangling refs %v", got)
	}

	if _, err := tree.DeleteCourse("missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("Expected ErrCourseNotFound, got %v", err)
	}
}

func TestRenameCourse_RepointsPaths(t *testing.T) {
	tree := sampleTree(t)

	next, err := tree.RenameCourse("aws-sa", "AWS SAA C03")
	if err != nil {
		t.Fatalf("RenameCourse failed: %v", err)
	}
	if _, ok := next.ResolveCourse("aws-saa-c03"); !ok {
		t.Error("Renamed course not found")
	}
	steps, _ := next.ResolvePathCourses("cloud")
	if len(steps) != 1 || steps[0].Course.Slug != "aws-saa-c03" {
		t.Errorf("Path should follow the rename, got %+v", steps)
	}

	if _, err := tree.RenameCourse("aws-sa", "rhcsa"); !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("Expected ErrDuplicateSlug, got %v", err)
	}
	if _, err := tree.RenameCourse("aws-sa", "aws-sa"); !errors.Is(err, ErrSlugUnchanged) {
		t.Errorf("Expected ErrSlugUnchanged, got %v", err)
	}
}

func TestSetCourseField(t *testing.T) {
	tree := sampleTree(t)

	next, err := tree.SetCourseField("rhcsa", "tools", []string{"podman", "systemd"})
	if err != nil {
		t.Fatalf("SetCourseField failed: %v", err)
	}
	course, _ := next.ResolveCourse("rhcsa")
	if len(course.Tools) != 2 || course.Tools[0] != "podman" {
		t.Errorf("Unexpected tools %v", course.Tools)
	}

	if _, err := tree.SetCourseField("rhcsa", "slug", "x"); !errors.Is(err, ErrProtectedField) {
		t.Errorf("Expected ErrProtectedField, got %v", err)
	}
	if _, err := tree.SetCourseField("rhcsa", " ", "x"); !errors.Is(err, ErrInvalidField) {
		t.Errorf("Expected ErrInvalidField, got %v", err)
	}
	if _, err := tree.SetCourseField("nope", "title", "x"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("Expected ErrCourseNotFound, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Cloud Basics 101!":     "cloud-basics-101",
		"  Red Hat -- RHCSA  ":  "red-hat-rhcsa",
		"AWS/Azure & GCP":       "aws-azure-gcp",
		"already-a-slug":        "already-a-slug",
		"***":                   "",
		"Python3 for Data Sci.": "python3-for-data-sci",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
		if want != "" && !IsSlug(Slugify(in)) {
			t.Errorf("Slugify(%q) is not canonical", in)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"aws": true, "aws-2": true}
	if got := UniqueSlug("aws", func(s string) bool { return taken[s] }); got != "aws-3" {
		t.Errorf("Expected aws-3, got %s", got)
	}
	if got := UniqueSlug("gcp", func(s string) bool { return taken[s] }); got != "gcp" {
		t.Errorf("Expected gcp, got %s", got)
	}
}
