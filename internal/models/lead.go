package models

import (
	"time"
)

// Lead is a public contact-form submission
type Lead struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	Phone          string    `json:"phone" db:"phone"`
	Course         string    `json:"course" db:"course"`
	Message        string    `json:"message" db:"message"`
	AttachmentPath string    `json:"-" db:"attachment_path"`
	HasAttachment  bool      `json:"hasAttachment" db:"-"`
	Source         string    `json:"source" db:"source"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// ContactForm is the multipart payload of POST /api/contact
type ContactForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Course  string `form:"course"`
	Message string `form:"message"`
}

// MaxMessageWords is the maximum allowed words in a contact message
const MaxMessageWords = 500

// FieldError is a single field validation failure
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}
