package models

import (
	"time"
)

// BlogPost represents a blog article managed from the admin panel
type BlogPost struct {
	ID          string     `json:"id" db:"id"`
	Slug        string     `json:"slug" db:"slug"`
	Title       string     `json:"title" db:"title"`
	Excerpt     string     `json:"excerpt" db:"excerpt"`
	Body        string     `json:"body" db:"body"`
	Author      string     `json:"author" db:"author"`
	CoverImage  string     `json:"coverImage" db:"cover_image"`
	Tags        []string   `json:"tags" db:"-"` // Stored as JSONB
	Status      string     `json:"status" db:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Blog post statuses
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
)

// ValidBlogStatuses defines allowed blog post statuses
var ValidBlogStatuses = map[string]bool{
	BlogStatusDraft:     true,
	BlogStatusPublished: true,
}

// BlogPostInput is the admin create/update payload
type BlogPostInput struct {
	Title      string   `json:"title"`
	Slug       string   `json:"slug,omitempty"`
	Excerpt    string   `json:"excerpt"`
	Body       string   `json:"body"`
	Author     string   `json:"author"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status"`
}
