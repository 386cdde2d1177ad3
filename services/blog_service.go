package services

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"

	"github.com/draftsmith/draftsmith/models"
	"github.com/draftsmith/draftsmith/repositories"
)

// BlogDraft carries the fields of a create request. AuthorName is resolved
// by the service, never supplied by the caller.
type BlogDraft struct {
	AuthorID    uint
	Title       string
	Content     string
	Tags        models.TagList
	Thumbnail   models.FileRef
	Attachments models.FileRefList
}

// AssetMeta describes an uploaded binary.
type AssetMeta struct {
	FileName    string
	ContentType string
}

// BlogService orchestrates blog persistence, authorship enforcement and
// binary asset uploads.
type BlogService struct {
	blogs repositories.BlogRepository
	users repositories.UserRepository
	store ObjectStore
}

func NewBlogService(blogs repositories.BlogRepository, users repositories.UserRepository, store ObjectStore) *BlogService {
	return &BlogService{blogs: blogs, users: users, store: store}
}

// CreateBlog persists a new blog. The author's current username is copied
// into the record as a snapshot; a later rename does not propagate.
func (s *BlogService) CreateBlog(ctx context.Context, draft BlogDraft) (*models.Blog, error) {
	if draft.AuthorID == 0 {
		return nil, ErrMissingAuthor
	}

	author, err := s.users.FindByID(ctx, draft.AuthorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("resolve author %d: %w", draft.AuthorID, err)
	}

	blog := &models.Blog{
		AuthorID:    draft.AuthorID,
		AuthorName:  author.Username,
		Title:       draft.Title,
		Content:     draft.Content,
		Tags:        draft.Tags,
		Thumbnail:   draft.Thumbnail,
		Attachments: draft.Attachments,
	}
	created, err := s.blogs.Create(ctx, blog)
	if err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}
	return created, nil
}

// GetBlogByID returns the record or ErrBlogNotFound.
func (s *BlogService) GetBlogByID(ctx context.Context, id uint) (*models.Blog, error) {
	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, fmt.Errorf("find blog %d: %w", id, err)
	}
	return blog, nil
}

// FindBlogsByAuthor returns the author's posts, newest first. An author with
// no posts maps to ErrBlogNotFound; the store cannot tell an unknown author
// from one who never published.
func (s *BlogService) FindBlogsByAuthor(ctx context.Context, authorID uint) ([]models.Blog, error) {
	blogs, err := s.blogs.FindByAuthor(ctx, authorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, fmt.Errorf("find blogs by author %d: %w", authorID, err)
	}
	return blogs, nil
}

// GetAllBlogs never fails on emptiness; an empty slice is a valid result.
func (s *BlogService) GetAllBlogs(ctx context.Context) ([]models.Blog, error) {
	blogs, err := s.blogs.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	return blogs, nil
}

// UpdateBlog delegates to the dual-keyed store update. A mismatch surfaces
// as ErrBlogNotFound regardless of whether the record exists under another
// author; possession of the matching id+author pair is the only credential.
func (s *BlogService) UpdateBlog(ctx context.Context, id, authorID uint, patch models.BlogPatch) (*models.Blog, error) {
	updated, err := s.blogs.Update(ctx, id, authorID, patch)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, fmt.Errorf("update blog %d: %w", id, err)
	}
	return updated, nil
}

// DeleteBlog applies the same dual-key contract as UpdateBlog.
func (s *BlogService) DeleteBlog(ctx context.Context, id, authorID uint) (*models.Blog, error) {
	deleted, err := s.blogs.Delete(ctx, id, authorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, fmt.Errorf("delete blog %d: %w", id, err)
	}
	return deleted, nil
}

// UploadAsset stores the bytes under a fresh unique object id and returns a
// durable access URL. Nothing is deleted on failure; the object store is
// assumed not to leave partial objects behind on error.
func (s *BlogService) UploadAsset(ctx context.Context, data []byte, meta AssetMeta) (models.FileRef, error) {
	uniqueID := uuid.New().String()
	if ext := path.Ext(meta.FileName); ext != "" {
		uniqueID += ext
	}

	ref, err := s.store.Store(ctx, data, meta.ContentType, uniqueID)
	if err != nil {
		return models.FileRef{}, fmt.Errorf("store asset %s: %w", meta.FileName, err)
	}

	url, err := s.store.AccessURL(ctx, ref)
	if err != nil {
		return models.FileRef{}, fmt.Errorf("resolve asset url %s: %w", ref, err)
	}
	return models.FileRef{URL: url, Name: meta.FileName}, nil
}
