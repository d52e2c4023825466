package repository

import (
	"context"
	"database/sql"

	"github.com/institute-cms/internal/database"
	"github.com/institute-cms/internal/models"
)

// leadRepo is the concrete implementation of LeadRepository
type leadRepo struct {
	db *database.DB
}

// NewLeadRepo creates a new lead repository
func NewLeadRepo(db *database.DB) LeadRepository {
	return &leadRepo{db: db}
}

// Create inserts a new lead
func (r *leadRepo) Create(ctx context.Context, lead *models.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, course, message, attachment_path, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.Course, lead.Message,
		nullString(lead.AttachmentPath), lead.Source, lead.CreatedAt,
	)
	return err
}

// Count returns the total number of leads
func (r *leadRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads").Scan(&count)
	return count, err
}

// StreamAll streams all leads for export, oldest first
func (r *leadRepo) StreamAll(ctx context.Context, callback func(*models.Lead) error) error {
	query := `
		SELECT id, name, email, phone, course, message, attachment_path, source, created_at
		FROM leads ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var lead models.Lead
		var attachment sql.NullString
		if err := rows.Scan(
			&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Course,
			&lead.Message, &attachment, &lead.Source, &lead.CreatedAt,
		); err != nil {
			return err
		}
		lead.AttachmentPath = attachment.String
		lead.HasAttachment = attachment.Valid && attachment.String != ""

		if err := callback(&lead); err != nil {
			return err
		}
	}
	return rows.Err()
}

// nullString converts empty string to sql.NullString
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
