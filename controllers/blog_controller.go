package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/draftsmith/draftsmith/middleware"
	"github.com/draftsmith/draftsmith/models"
	"github.com/draftsmith/draftsmith/services"
	"github.com/draftsmith/draftsmith/utils"
)

// Uploads above this size are rejected before touching the object store.
const maxUploadSize = 50 * 1024 * 1024

// BlogController handles the multipart blog submission boundary and the
// read endpoints backing the editor's known-posts list.
type BlogController struct {
	service *services.BlogService
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(service *services.BlogService) *BlogController {
	return &BlogController{service: service}
}

// submission is the parsed multipart unit: sanitized text fields plus the
// uploaded file references. Identity is not part of it; it comes from the
// request's auth context.
type submission struct {
	title       string
	content     string
	tags        models.TagList
	thumbnail   models.FileRef
	attachments models.FileRefList
	hasThumb    bool
	hasFiles    bool
}

// CreateBlog accepts a multipart submission and publishes a new post for
// the authenticated author.
func (b *BlogController) CreateBlog(ctx *gin.Context) {
	authorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	sub, ok := b.parseSubmission(ctx)
	if !ok {
		return
	}

	blog, err := b.service.CreateBlog(ctx.Request.Context(), services.BlogDraft{
		AuthorID:    authorID,
		Title:       sub.title,
		Content:     sub.content,
		Tags:        sub.tags,
		Thumbnail:   sub.thumbnail,
		Attachments: sub.attachments,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:blogs:list")
	utils.InvalidateByPrefix("cache:author:" + strconv.Itoa(int(authorID)) + ":blogs")

	utils.Success(ctx, gin.H{"blog": blog})
}

// UpdateBlog accepts a multipart submission for an existing post. The
// store's dual-keyed update enforces ownership; a foreign or missing id
// uniformly comes back as not found.
func (b *BlogController) UpdateBlog(ctx *gin.Context) {
	authorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	id, ok := parseBlogID(ctx)
	if !ok {
		return
	}

	sub, ok := b.parseSubmission(ctx)
	if !ok {
		return
	}

	patch := models.BlogPatch{
		Title:       sub.title,
		Content:     sub.content,
		Tags:        sub.tags,
		Thumbnail:   sub.thumbnail,
		Attachments: sub.attachments,
	}

	// A submission without file parts keeps the record's stored references
	// instead of clearing them.
	if !sub.hasThumb || !sub.hasFiles {
		if existing, err := b.service.GetBlogByID(ctx.Request.Context(), id); err == nil {
			if !sub.hasThumb {
				patch.Thumbnail = existing.Thumbnail
			}
			if !sub.hasFiles {
				patch.Attachments = existing.Attachments
			}
		}
	}

	blog, err := b.service.UpdateBlog(ctx.Request.Context(), id, authorID, patch)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:blogs:list")
	utils.InvalidateByPrefix("cache:blog:detail:" + strconv.Itoa(int(id)))
	utils.InvalidateByPrefix("cache:author:" + strconv.Itoa(int(authorID)) + ":blogs")

	utils.Success(ctx, gin.H{"blog": blog})
}

// GetBlog returns a single post.
func (b *BlogController) GetBlog(ctx *gin.Context) {
	id, ok := parseBlogID(ctx)
	if !ok {
		return
	}

	cacheKey := "cache:blog:detail:" + strconv.Itoa(int(id))
	if cached, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	blog, err := b.service.GetBlogByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	payload := gin.H{"blog": blog}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// ListBlogs returns every post, newest first. An empty list is a valid
// result, not an error.
func (b *BlogController) ListBlogs(ctx *gin.Context) {
	if cached, ok := utils.CacheGetBytes("cache:blogs:list"); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	blogs, err := b.service.GetAllBlogs(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if blogs == nil {
		blogs = []models.Blog{}
	}

	payload := gin.H{"items": blogs}
	utils.CacheSetJSON("cache:blogs:list", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// ListAuthorBlogs returns the posts of a specific author.
func (b *BlogController) ListAuthorBlogs(ctx *gin.Context) {
	authorID, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid author id")
		return
	}

	cacheKey := "cache:author:" + strconv.Itoa(int(authorID)) + ":blogs"
	if cached, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	blogs, err := b.service.FindBlogsByAuthor(ctx.Request.Context(), uint(authorID))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	payload := gin.H{"items": blogs}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// ListMyBlogs returns the authenticated author's posts.
func (b *BlogController) ListMyBlogs(ctx *gin.Context) {
	authorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	blogs, err := b.service.FindBlogsByAuthor(ctx.Request.Context(), authorID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": blogs})
}

// DeleteBlog removes the authenticated author's post under the same
// dual-key rule as update.
func (b *BlogController) DeleteBlog(ctx *gin.Context) {
	authorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	id, ok := parseBlogID(ctx)
	if !ok {
		return
	}

	blog, err := b.service.DeleteBlog(ctx.Request.Context(), id, authorID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:blogs:list")
	utils.InvalidateByPrefix("cache:blog:detail:" + strconv.Itoa(int(id)))
	utils.InvalidateByPrefix("cache:author:" + strconv.Itoa(int(authorID)) + ":blogs")

	utils.Success(ctx, gin.H{"blog": blog})
}

// UploadAsset stores a single file and returns its durable URL, for
// clients that upload outside a full submission.
func (b *BlogController) UploadAsset(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}

	ref, ok := b.uploadFile(ctx, header)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"file": ref})
}

// parseSubmission reads the multipart unit: title, content, tags plus the
// optional thumbnail part and attachment0..N-1 parts. File parts are
// pushed through the object store immediately so the stored record only
// ever carries durable URLs.
func (b *BlogController) parseSubmission(ctx *gin.Context) (submission, bool) {
	var sub submission

	sub.title = utils.SanitizeTitle(strings.TrimSpace(ctx.PostForm("title")))
	if sub.title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return sub, false
	}
	sub.content = utils.Sanitize(ctx.PostForm("content"))

	if raw := ctx.PostForm("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.tags); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40022, "tags must be a JSON array of strings")
			return sub, false
		}
	}

	if header, err := ctx.FormFile("thumbnail"); err == nil {
		ref, ok := b.uploadFile(ctx, header)
		if !ok {
			return sub, false
		}
		sub.thumbnail = ref
		sub.hasThumb = true
	}

	for i := 0; ; i++ {
		header, err := ctx.FormFile(fmt.Sprintf("attachment%d", i))
		if err != nil {
			break
		}
		ref, ok := b.uploadFile(ctx, header)
		if !ok {
			return sub, false
		}
		sub.attachments = append(sub.attachments, ref)
		sub.hasFiles = true
	}

	return sub, true
}

func (b *BlogController) uploadFile(ctx *gin.Context, header *multipart.FileHeader) (models.FileRef, bool) {
	if header.Size > maxUploadSize {
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 50MB")
		return models.FileRef{}, false
	}

	file, err := header.Open()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to read file")
		return models.FileRef{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to read file")
		return models.FileRef{}, false
	}
	if int64(len(data)) > maxUploadSize {
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 50MB")
		return models.FileRef{}, false
	}

	ref, err := b.service.UploadAsset(ctx.Request.Context(), data, services.AssetMeta{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		utils.Sugar.Errorf("asset upload failed file=%s err=%v", header.Filename, err)
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to store file")
		return models.FileRef{}, false
	}
	return ref, true
}

func parseBlogID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid blog id")
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps service failures onto the response envelope.
// Note that a dual-key mismatch deliberately answers 404, not 403.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingAuthor):
		utils.Error(ctx, http.StatusBadRequest, 40023, "author is required")
	case errors.Is(err, services.ErrAuthorNotFound):
		utils.Error(ctx, http.StatusNotFound, 40402, "author not found")
	case errors.Is(err, services.ErrBlogNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "blog not found")
	default:
		utils.Sugar.Errorf("blog request failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "internal error")
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
