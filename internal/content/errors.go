package content

import "errors"

// Validation failures. Every operation returns one of these before touching the tree.
var (
	ErrInvalidPath      = errors.New("invalid content path")
	ErrInvalidValue     = errors.New("value is not representable as JSON")
	ErrPathConflict     = errors.New("path segment does not match the existing container")
	ErrInvalidField     = errors.New("field name is required")
	ErrProtectedField   = errors.New("field cannot be set directly")
	ErrDerivedField     = errors.New("field is derived and cannot be set")
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyName        = errors.New("name is required")
	ErrDuplicateSlug    = errors.New("a course with this slug already exists")
	ErrCourseNotFound   = errors.New("course not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrPathNotFound     = errors.New("learning path not found")
	ErrEmptySlug        = errors.New("slug cannot be empty")
	ErrSlugUnchanged    = errors.New("slug already matches the key")
	ErrSlugCollision    = errors.New("another entry already uses this key")
	ErrIndexOutOfRange  = errors.New("index out of range")
)

// IsValidation reports whether err is one of the engine's validation failures.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidPath, ErrInvalidValue, ErrPathConflict, ErrInvalidField, ErrProtectedField, ErrDerivedField,
		ErrEmptyTitle, ErrEmptyName, ErrDuplicateSlug, ErrEmptySlug, ErrSlugUnchanged,
		ErrSlugCollision, ErrIndexOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err names a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrPathNotFound)
}
