package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/institute-cms/internal/mocks"
	"github.com/institute-cms/internal/models"
	"github.com/institute-cms/internal/repository"
)

func TestMockContentRepository_Versions(t *testing.T) {
	repo := mocks.NewMockContentRepository()
	ctx := context.Background()

	latest, err := repo.Latest(ctx, true)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != nil {
		t.Fatal("Expected no revision in an empty store")
	}

	published := &models.ContentRevision{Content: map[string]any{"home": map[string]any{}}}
	if err := repo.Save(ctx, published, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	draft := &models.ContentRevision{Content: map[string]any{}, IsDraft: true}
	if err := repo.Save(ctx, draft, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if published.Version != 1 || draft.Version != 2 {
		t.Errorf("Expected versions 1 and 2, got %d and %d", published.Version, draft.Version)
	}
	if published.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be filled")
	}

	latest, _ = repo.Latest(ctx, false)
	if latest.Version != 1 {
		t.Errorf("Expected newest published version 1, got %d", latest.Version)
	}
	latest, _ = repo.Latest(ctx, true)
	if latest.Version != 2 {
		t.Errorf("Expected newest version 2, got %d", latest.Version)
	}

	head, _ := repo.HeadVersion(ctx)
	if head != 2 {
		t.Errorf("Expected head 2, got %d", head)
	}
	got, _ := repo.GetByVersion(ctx, 1)
	if got == nil || got.IsDraft {
		t.Errorf("Expected published revision 1, got %+v", got)
	}
}

func TestMockContentRepository_VersionConflict(t *testing.T) {
	repo := mocks.NewMockContentRepository()
	ctx := context.Background()

	tests := []struct {
		name    string
		base    *int64
		wantErr bool
	}{
		{"no base version", nil, false},
		{"matching head", int64Ptr(1), false},
		{"stale head", int64Ptr(1), true},
		{"ahead of head", int64Ptr(9), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Save(ctx, &models.ContentRevision{Content: map[string]any{}}, tt.base)
			if tt.wantErr && !errors.Is(err, repository.ErrVersionConflict) {
				t.Errorf("Expected ErrVersionConflict, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}

	count, _ := repo.Count(ctx)
	if count != 2 {
		t.Errorf("Expected 2 stored revisions, got %d", count)
	}
}

func TestMockAuditRepository_ListNewestFirst(t *testing.T) {
	repo := mocks.NewMockAuditRepository()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		repo.Create(ctx, &models.AuditLog{Version: i, User: "admin", ChangedKeys: []string{"courses"}})
	}

	logs, err := repo.List(ctx, 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(logs))
	}
	if logs[0].Version != 5 || logs[2].Version != 3 {
		t.Errorf("Expected versions 5..3, got %d..%d", logs[0].Version, logs[2].Version)
	}

	all, _ := repo.List(ctx, 0)
	if len(all) != 5 {
		t.Errorf("Expected all 5 entries without a limit, got %d", len(all))
	}
}

func TestMockBlogRepository_SlugExists(t *testing.T) {
	repo := mocks.NewMockBlogRepository()
	ctx := context.Background()

	post := &models.BlogPost{ID: "post-1", Slug: "cloud-careers", Status: models.BlogStatusDraft, CreatedAt: time.Now()}
	repo.Create(ctx, post)

	tests := []struct {
		name      string
		slug      string
		excludeID string
		want      bool
	}{
		{"taken by another post", "cloud-careers", "post-2", true},
		{"own slug on update", "cloud-careers", "post-1", false},
		{"free slug", "devops-roadmap", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SlugExists(ctx, tt.slug, tt.excludeID)
			if err != nil {
				t.Fatalf("SlugExists failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	published, _ := repo.List(ctx, true)
	if len(published) != 0 {
		t.Errorf("Expected drafts to be excluded, got %d posts", len(published))
	}
}

func TestMockLeadRepository_StreamAll(t *testing.T) {
	repo := mocks.NewMockLeadRepository()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		repo.Create(ctx, &models.Lead{ID: id, Name: "Lead " + id})
	}

	var seen []string
	err := repo.StreamAll(ctx, func(lead *models.Lead) error {
		seen = append(seen, lead.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamAll failed: %v", err)
	}
	if len(seen) != 3 {
		t.Errorf("Expected 3 leads streamed, got %d", len(seen))
	}

	stop := errors.New("stop")
	count := 0
	err = repo.StreamAll(ctx, func(lead *models.Lead) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) || count != 1 {
		t.Errorf("Expected callback error to stop the stream after 1 lead, got %v after %d", err, count)
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
