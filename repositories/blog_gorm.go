package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/draftsmith/draftsmith/models"
)

// GormBlogRepository persists blogs in MySQL through gorm.
type GormBlogRepository struct {
	db *gorm.DB
}

// NewGormBlogRepository creates a repository over an initialized gorm handle.
func NewGormBlogRepository(db *gorm.DB) *GormBlogRepository {
	return &GormBlogRepository{db: db}
}

func (r *GormBlogRepository) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	if err := r.db.WithContext(ctx).Create(blog).Error; err != nil {
		return nil, err
	}
	return blog, nil
}

func (r *GormBlogRepository) FindByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &blog, nil
}

func (r *GormBlogRepository) FindByAuthor(ctx context.Context, authorID uint) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	if len(blogs) == 0 {
		// No rows for this author; indistinguishable from an unknown author.
		return nil, ErrNotFound
	}
	return blogs, nil
}

func (r *GormBlogRepository) FindAll(ctx context.Context) ([]models.Blog, error) {
	var blogs []models.Blog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&blogs).Error; err != nil {
		return nil, err
	}
	return blogs, nil
}

// Update touches the row only when both id and author id match. The dual
// condition is the authorization check; there is no separate ownership lookup.
func (r *GormBlogRepository) Update(ctx context.Context, id, authorID uint, patch models.BlogPatch) (*models.Blog, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Updates(map[string]interface{}{
			"title":       patch.Title,
			"content":     patch.Content,
			"tags":        patch.Tags,
			"thumbnail":   patch.Thumbnail,
			"attachments": patch.Attachments,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var blog models.Blog
	if err := r.db.WithContext(ctx).First(&blog, id).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

// Delete applies the same dual-keyed rule as Update and returns the removed record.
func (r *GormBlogRepository) Delete(ctx context.Context, id, authorID uint) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		First(&blog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	res := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&models.Blog{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &blog, nil
}
