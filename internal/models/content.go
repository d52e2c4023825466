package models

import (
	"time"
)

// Course is the typed view of one entry in the content tree's "courses" sequence
type Course struct {
	Slug             string   `json:"slug"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	OneLiner         string   `json:"oneLiner"`
	Category         string   `json:"category,omitempty"` // legacy single category key
	Categories       []string `json:"categories"`
	Fees             string   `json:"fees"`
	Duration         string   `json:"duration"`
	Level            string   `json:"level"`
	Visible          bool     `json:"visible"`
	Featured         bool     `json:"featured"`
	Order            int      `json:"order"`
	Tools            []string `json:"tools"`
	Highlights       []string `json:"highlights"`
	LearningOutcomes []string `json:"learningOutcomes"`
	CareerRoles      []string `json:"careerRoles"`
}

// Category is the typed view of one "courseCategories" entry. Key is the map key.
type Category struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Order       int    `json:"order"`
	Visible     bool   `json:"visible"`
	Featured    bool   `json:"featured"`
}

// PathCourseRef is a weak reference from a learning path to a course slug
type PathCourseRef struct {
	CourseSlug   string `json:"courseSlug"`
	Order        int    `json:"order"`
	Duration     string `json:"duration"`
	Prerequisite bool   `json:"prerequisite"`
}

// LearningPath is the typed view of one "learningPaths" entry
type LearningPath struct {
	Key            string          `json:"key"`
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Duration       string          `json:"duration"`
	Level          string          `json:"level"`
	TotalCourses   int             `json:"totalCourses"`
	EstimatedHours int             `json:"estimatedHours"`
	Featured       bool            `json:"featured"`
	AverageSalary  string          `json:"averageSalary"`
	Outcomes       []string        `json:"outcomes"`
	CareerRoles    []string        `json:"careerRoles"`
	Courses        []PathCourseRef `json:"courses"`
	SEO            map[string]any  `json:"seo,omitempty"`
}

// ContentRevision is one persisted version of the whole content tree
type ContentRevision struct {
	Version   int64          `json:"version" db:"version"`
	Content   map[string]any `json:"content" db:"content"`
	IsDraft   bool           `json:"isDraft" db:"is_draft"`
	Author    string         `json:"author" db:"author"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}

// AuditLog records who changed which top-level sections of the tree
type AuditLog struct {
	ID          int64     `json:"id" db:"id"`
	Version     int64     `json:"version" db:"version"`
	User        string    `json:"user" db:"username"`
	IsDraft     bool      `json:"isDraft" db:"is_draft"`
	DiffSummary string    `json:"diffSummary" db:"diff_summary"`
	ChangedKeys []string  `json:"changedKeys" db:"changed_keys"`
	Timestamp   time.Time `json:"timestamp" db:"created_at"`
}

// SaveContentRequest is the body of POST /api/content
type SaveContentRequest struct {
	Content map[string]any `json:"content"`
	IsDraft bool           `json:"isDraft"`
	Version *int64         `json:"version,omitempty"` // base version for optimistic concurrency
}
