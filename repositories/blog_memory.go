package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/draftsmith/draftsmith/models"
)

// MemoryBlogRepository keeps blogs in process memory. It backs the unit
// tests and the database-less development mode; the dual-key contract is
// identical to the gorm implementation.
type MemoryBlogRepository struct {
	mu     sync.RWMutex
	blogs  map[uint]models.Blog
	nextID uint
}

func NewMemoryBlogRepository() *MemoryBlogRepository {
	return &MemoryBlogRepository{
		blogs:  make(map[uint]models.Blog),
		nextID: 1,
	}
}

func (r *MemoryBlogRepository) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored := *blog
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.nextID++
	r.blogs[stored.ID] = stored

	out := stored
	return &out, nil
}

func (r *MemoryBlogRepository) FindByID(ctx context.Context, id uint) (*models.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blog, ok := r.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := blog
	return &out, nil
}

func (r *MemoryBlogRepository) FindByAuthor(ctx context.Context, authorID uint) ([]models.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var blogs []models.Blog
	for _, blog := range r.blogs {
		if blog.AuthorID == authorID {
			blogs = append(blogs, blog)
		}
	}
	if len(blogs) == 0 {
		return nil, ErrNotFound
	}
	sortNewestFirst(blogs)
	return blogs, nil
}

func (r *MemoryBlogRepository) FindAll(ctx context.Context) ([]models.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blogs := make([]models.Blog, 0, len(r.blogs))
	for _, blog := range r.blogs {
		blogs = append(blogs, blog)
	}
	sortNewestFirst(blogs)
	return blogs, nil
}

func (r *MemoryBlogRepository) Update(ctx context.Context, id, authorID uint, patch models.BlogPatch) (*models.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	blog, ok := r.blogs[id]
	if !ok || blog.AuthorID != authorID {
		return nil, ErrNotFound
	}

	blog.Title = patch.Title
	blog.Content = patch.Content
	blog.Tags = patch.Tags
	blog.Thumbnail = patch.Thumbnail
	blog.Attachments = patch.Attachments
	blog.UpdatedAt = time.Now()
	r.blogs[id] = blog

	out := blog
	return &out, nil
}

func (r *MemoryBlogRepository) Delete(ctx context.Context, id, authorID uint) (*models.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	blog, ok := r.blogs[id]
	if !ok || blog.AuthorID != authorID {
		return nil, ErrNotFound
	}
	delete(r.blogs, id)

	out := blog
	return &out, nil
}

func sortNewestFirst(blogs []models.Blog) {
	sort.SliceStable(blogs, func(i, j int) bool {
		if blogs[i].CreatedAt.Equal(blogs[j].CreatedAt) {
			return blogs[i].ID > blogs[j].ID
		}
		return blogs[i].CreatedAt.After(blogs[j].CreatedAt)
	})
}
