package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/institute-cms/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,19}$`)
)

// Field length limits
const (
	MaxTitleLength   = 200
	MaxExcerptLength = 500
	MaxNameLength    = 120
	MaxTags          = 20
)

// ValidCourseLevels defines the allowed course levels; empty is also accepted
var ValidCourseLevels = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

// Validator provides validation methods
type Validator struct {
	courseSlugCache map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		courseSlugCache: make(map[string]bool),
	}
}

// SetCourseSlugs sets the known course slugs a contact form may reference
func (v *Validator) SetCourseSlugs(slugs []string) {
	v.courseSlugCache = make(map[string]bool, len(slugs))
	for _, s := range slugs {
		v.courseSlugCache[s] = true
	}
}

// ValidateBlogPost validates an admin blog post payload
func (v *Validator) ValidateBlogPost(in *models.BlogPostInput) []models.FieldError {
	var errors []models.FieldError

	// Validate title
	title := strings.TrimSpace(in.Title)
	if title == "" {
		errors = append(errors, models.FieldError{Field: "title", Message: "title is required"})
	} else if len([]rune(title)) > MaxTitleLength {
		errors = append(errors, models.FieldError{
			Field:   "title",
			Message: fmt.Sprintf("title exceeds maximum of %d characters", MaxTitleLength),
		})
	}

	// Validate slug if supplied
	if in.Slug != "" && !slugRegex.MatchString(in.Slug) {
		errors = append(errors, models.FieldError{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)", Value: in.Slug})
	}

	// Validate body
	if strings.TrimSpace(in.Body) == "" {
		errors = append(errors, models.FieldError{Field: "body", Message: "body is required"})
	}

	if len([]rune(in.Excerpt)) > MaxExcerptLength {
		errors = append(errors, models.FieldError{
			Field:   "excerpt",
			Message: fmt.Sprintf("excerpt exceeds maximum of %d characters", MaxExcerptLength),
		})
	}

	if len(in.Tags) > MaxTags {
		errors = append(errors, models.FieldError{Field: "tags", Message: fmt.Sprintf("at most %d tags allowed", MaxTags)})
	}

	// Validate status
	if in.Status != "" && !models.ValidBlogStatuses[in.Status] {
		errors = append(errors, models.FieldError{
			Field:   "status",
			Message: "invalid status, must be one of: draft, published",
			Value:   in.Status,
		})
	}

	return errors
}

// ValidateContactForm validates a public contact submission
func (v *Validator) ValidateContactForm(f *models.ContactForm) []models.FieldError {
	var errors []models.FieldError

	// Validate name
	name := strings.TrimSpace(f.Name)
	if name == "" {
		errors = append(errors, models.FieldError{Field: "name", Message: "name is required"})
	} else if len([]rune(name)) > MaxNameLength {
		errors = append(errors, models.FieldError{Field: "name", Message: fmt.Sprintf("name exceeds maximum of %d characters", MaxNameLength)})
	}

	// Validate email
	if f.Email == "" {
		errors = append(errors, models.FieldError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(f.Email) {
		errors = append(errors, models.FieldError{Field: "email", Message: "invalid email format", Value: f.Email})
	}

	// Validate phone if present
	if f.Phone != "" && !phoneRegex.MatchString(f.Phone) {
		errors = append(errors, models.FieldError{Field: "phone", Message: "invalid phone number", Value: f.Phone})
	}

	// Validate course reference
	if f.Course != "" && len(v.courseSlugCache) > 0 && !v.courseSlugCache[f.Course] {
		errors = append(errors, models.FieldError{Field: "course", Message: "referenced course does not exist", Value: f.Course})
	}

	// Check word count
	wordCount := len(strings.Fields(f.Message))
	if wordCount > models.MaxMessageWords {
		errors = append(errors, models.FieldError{
			Field:   "message",
			Message: fmt.Sprintf("message exceeds maximum of %d words (has %d)", models.MaxMessageWords, wordCount),
		})
	}

	return errors
}

// ValidateCourse validates an admin add-course payload
func (v *Validator) ValidateCourse(c *models.Course) []models.FieldError {
	var errors []models.FieldError

	if strings.TrimSpace(c.Title) == "" {
		errors = append(errors, models.FieldError{Field: "title", Message: "title is required"})
	} else if len([]rune(c.Title)) > MaxTitleLength {
		errors = append(errors, models.FieldError{Field: "title", Message: fmt.Sprintf("title exceeds maximum of %d characters", MaxTitleLength)})
	}

	if c.Level != "" && !ValidCourseLevels[strings.ToLower(c.Level)] {
		errors = append(errors, models.FieldError{
			Field:   "level",
			Message: "invalid level, must be one of: beginner, intermediate, advanced",
			Value:   c.Level,
		})
	}

	for _, key := range c.Categories {
		if !slugRegex.MatchString(key) {
			errors = append(errors, models.FieldError{Field: "categories", Message: "category keys must be kebab-case", Value: key})
		}
	}

	return errors
}

// IsValidID checks if a string is a valid UUID
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
