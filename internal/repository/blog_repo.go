package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/institute-cms/internal/database"
	"github.com/institute-cms/internal/models"
)

// blogRepo is the concrete implementation of BlogRepository
type blogRepo struct {
	db *database.DB
}

// NewBlogRepo creates a new blog post repository
func NewBlogRepo(db *database.DB) BlogRepository {
	return &blogRepo{db: db}
}

const blogColumns = `id, slug, title, excerpt, body, author, cover_image, tags, status, published_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlogPost(row rowScanner) (*models.BlogPost, error) {
	var post models.BlogPost
	var tagsJSON []byte
	var publishedAt sql.NullTime

	err := row.Scan(
		&post.ID, &post.Slug, &post.Title, &post.Excerpt, &post.Body, &post.Author,
		&post.CoverImage, &tagsJSON, &post.Status, &publishedAt, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(tagsJSON, &post.Tags)
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	return &post, nil
}

func tagsValue(tags []string) []byte {
	if tags == nil {
		return []byte("[]")
	}
	data, _ := json.Marshal(tags)
	return data
}

// Create inserts a new blog post
func (r *blogRepo) Create(ctx context.Context, post *models.BlogPost) error {
	query := `
		INSERT INTO blog_posts (` + blogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Slug, post.Title, post.Excerpt, post.Body, post.Author,
		post.CoverImage, tagsValue(post.Tags), post.Status, post.PublishedAt,
		post.CreatedAt, post.UpdatedAt,
	)
	return err
}

// Update overwrites every editable field of a post
func (r *blogRepo) Update(ctx context.Context, post *models.BlogPost) error {
	post.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE blog_posts SET
			slug = $1, title = $2, excerpt = $3, body = $4, author = $5, cover_image = $6,
			tags = $7, status = $8, published_at = $9, updated_at = $10
		WHERE id = $11
	`
	_, err := r.db.ExecContext(ctx, query,
		post.Slug, post.Title, post.Excerpt, post.Body, post.Author, post.CoverImage,
		tagsValue(post.Tags), post.Status, post.PublishedAt, post.UpdatedAt, post.ID,
	)
	return err
}

// Delete removes a post and reports whether it existed
func (r *blogRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM blog_posts WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetByID retrieves a post by ID
func (r *blogRepo) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	post, err := scanBlogPost(r.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

// GetBySlug retrieves a post by slug
func (r *blogRepo) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := scanBlogPost(r.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

// SlugExists checks if another post already uses slug
func (r *blogRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM blog_posts WHERE slug = $1 AND id::text <> $2)"
	err := r.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists)
	return exists, err
}

// List returns posts, newest first
func (r *blogRepo) List(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts ORDER BY created_at DESC`
	if publishedOnly {
		query = `SELECT ` + blogColumns + ` FROM blog_posts WHERE status = 'published' ORDER BY published_at DESC NULLS LAST`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.BlogPost{}
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Count returns the total number of blog posts
func (r *blogRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blog_posts").Scan(&count)
	return count, err
}
