package repositories

import (
	"context"
	"errors"

	"github.com/draftsmith/draftsmith/models"
)

// ErrNotFound is returned when no record matches the given keys. For Update
// and Delete this includes the case where the record exists under another
// author: the dual-keyed query cannot tell the two apart, and callers are
// not supposed to either.
var ErrNotFound = errors.New("record not found")

// BlogRepository is the content store contract. Update and Delete take the
// requesting author's id as a second key; a row is touched only when both
// id and author id match.
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) (*models.Blog, error)
	FindByID(ctx context.Context, id uint) (*models.Blog, error)
	FindByAuthor(ctx context.Context, authorID uint) ([]models.Blog, error)
	FindAll(ctx context.Context) ([]models.Blog, error)
	Update(ctx context.Context, id, authorID uint, patch models.BlogPatch) (*models.Blog, error)
	Delete(ctx context.Context, id, authorID uint) (*models.Blog, error)
}

// UserRepository exposes the identity lookups the blog service needs.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}
