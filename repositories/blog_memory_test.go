package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/draftsmith/draftsmith/models"
)

func seedBlog(t *testing.T, repo *MemoryBlogRepository, authorID uint, title string) *models.Blog {
	t.Helper()
	blog, err := repo.Create(context.Background(), &models.Blog{
		AuthorID:   authorID,
		AuthorName: "author",
		Title:      title,
		Content:    "content",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return blog
}

func TestMemoryBlogRepositoryCreateAssignsIDs(t *testing.T) {
	repo := NewMemoryBlogRepository()
	first := seedBlog(t, repo, 1, "first")
	second := seedBlog(t, repo, 1, "second")

	if first.ID == 0 || second.ID == 0 {
		t.Fatalf("expected generated ids, got %d and %d", first.ID, second.ID)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must be unique, both are %d", first.ID)
	}
}

func TestMemoryBlogRepositoryUpdateDualKey(t *testing.T) {
	repo := NewMemoryBlogRepository()
	blog := seedBlog(t, repo, 1, "original")

	patch := models.BlogPatch{Title: "changed", Content: "changed"}

	// Wrong author: must look exactly like a missing record.
	if _, err := repo.Update(context.Background(), blog.ID, 2, patch); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign author, got %v", err)
	}

	// Record must be untouched after the failed attempt.
	got, err := repo.FindByID(context.Background(), blog.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Title != "original" {
		t.Fatalf("record mutated by rejected update: title=%q", got.Title)
	}

	// Matching author succeeds.
	updated, err := repo.Update(context.Background(), blog.ID, 1, patch)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "changed" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
	if updated.AuthorID != 1 {
		t.Fatalf("author id must not change, got %d", updated.AuthorID)
	}
}

func TestMemoryBlogRepositoryDeleteDualKey(t *testing.T) {
	repo := NewMemoryBlogRepository()
	blog := seedBlog(t, repo, 1, "doomed")

	if _, err := repo.Delete(context.Background(), blog.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign author, got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), blog.ID); err != nil {
		t.Fatalf("record must survive rejected delete: %v", err)
	}

	deleted, err := repo.Delete(context.Background(), blog.ID, 1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != blog.ID {
		t.Fatalf("expected deleted record %d, got %d", blog.ID, deleted.ID)
	}
	if _, err := repo.FindByID(context.Background(), blog.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryBlogRepositoryFindByAuthor(t *testing.T) {
	repo := NewMemoryBlogRepository()
	seedBlog(t, repo, 1, "a")
	seedBlog(t, repo, 1, "b")
	seedBlog(t, repo, 2, "c")

	blogs, err := repo.FindByAuthor(context.Background(), 1)
	if err != nil {
		t.Fatalf("FindByAuthor: %v", err)
	}
	if len(blogs) != 2 {
		t.Fatalf("expected 2 blogs, got %d", len(blogs))
	}

	// An author with no rows signals not found rather than an empty list.
	if _, err := repo.FindByAuthor(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown author, got %v", err)
	}
}

func TestMemoryBlogRepositoryFindAllEmpty(t *testing.T) {
	repo := NewMemoryBlogRepository()
	blogs, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(blogs) != 0 {
		t.Fatalf("expected empty store, got %d records", len(blogs))
	}
}
