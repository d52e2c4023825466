package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/institute-cms/internal/database"
	"github.com/institute-cms/internal/models"
)

// contentRepo is the concrete implementation of ContentRepository
type contentRepo struct {
	db *database.DB
}

// NewContentRepo creates a new content revision repository
func NewContentRepo(db *database.DB) ContentRepository {
	return &contentRepo{db: db}
}

const revisionColumns = `version, content, is_draft, author, created_at`

func scanRevision(row *sql.Row) (*models.ContentRevision, error) {
	var rev models.ContentRevision
	var raw []byte

	err := row.Scan(&rev.Version, &raw, &rev.IsDraft, &rev.Author, &rev.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &rev.Content); err != nil {
		return nil, fmt.Errorf("decode revision %d: %w", rev.Version, err)
	}
	return &rev, nil
}

// Latest retrieves the newest revision
func (r *contentRepo) Latest(ctx context.Context, includeDrafts bool) (*models.ContentRevision, error) {
	query := `SELECT ` + revisionColumns + ` FROM content_revisions WHERE is_draft = FALSE ORDER BY version DESC LIMIT 1`
	if includeDrafts {
		query = `SELECT ` + revisionColumns + ` FROM content_revisions ORDER BY version DESC LIMIT 1`
	}
	return scanRevision(r.db.QueryRowContext(ctx, query))
}

// GetByVersion retrieves one revision
func (r *contentRepo) GetByVersion(ctx context.Context, version int64) (*models.ContentRevision, error) {
	query := `SELECT ` + revisionColumns + ` FROM content_revisions WHERE version = $1`
	return scanRevision(r.db.QueryRowContext(ctx, query, version))
}

// Save inserts a revision inside a transaction holding a table lock, so the
// head-version check and the insert cannot interleave with another save.
func (r *contentRepo) Save(ctx context.Context, rev *models.ContentRevision, baseVersion *int64) error {
	raw, err := json.Marshal(rev.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE content_revisions IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return err
	}

	if baseVersion != nil {
		var head int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM content_revisions`).Scan(&head); err != nil {
			return err
		}
		if head != *baseVersion {
			return fmt.Errorf("%w: based on %d, head is %d", ErrVersionConflict, *baseVersion, head)
		}
	}

	query := `
		INSERT INTO content_revisions (content, is_draft, author)
		VALUES ($1, $2, $3)
		RETURNING version, created_at
	`
	if err := tx.QueryRowContext(ctx, query, raw, rev.IsDraft, rev.Author).Scan(&rev.Version, &rev.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// HeadVersion returns the newest version number, or 0 when empty
func (r *contentRepo) HeadVersion(ctx context.Context) (int64, error) {
	var head int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM content_revisions`).Scan(&head)
	return head, err
}

// Count returns the total number of revisions
func (r *contentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_revisions").Scan(&count)
	return count, err
}
