package repository

import (
	"context"

	"github.com/institute-cms/internal/database"
	"github.com/institute-cms/internal/models"
	"github.com/lib/pq"
)

// auditRepo is the concrete implementation of AuditRepository
type auditRepo struct {
	db *database.DB
}

// NewAuditRepo creates a new audit log repository
func NewAuditRepo(db *database.DB) AuditRepository {
	return &auditRepo{db: db}
}

// Create inserts an audit entry and fills its ID and Timestamp
func (r *auditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	keys := entry.ChangedKeys
	if keys == nil {
		keys = []string{}
	}
	query := `
		INSERT INTO content_audit_logs (version, username, is_draft, diff_summary, changed_keys)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		entry.Version, entry.User, entry.IsDraft, entry.DiffSummary, pq.Array(keys),
	).Scan(&entry.ID, &entry.Timestamp)
}

// List returns the newest entries first. A limit of 0 returns every entry.
func (r *auditRepo) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	query := `
		SELECT id, version, username, is_draft, diff_summary, changed_keys, created_at
		FROM content_audit_logs ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditLog{}
	for rows.Next() {
		var e models.AuditLog
		var keys pq.StringArray
		if err := rows.Scan(&e.ID, &e.Version, &e.User, &e.IsDraft, &e.DiffSummary, &keys, &e.Timestamp); err != nil {
			return nil, err
		}
		e.ChangedKeys = []string(keys)
		if e.ChangedKeys == nil {
			e.ChangedKeys = []string{}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of audit entries
func (r *auditRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_audit_logs").Scan(&count)
	return count, err
}
