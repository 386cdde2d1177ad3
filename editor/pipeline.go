package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"

	"github.com/draftsmith/draftsmith/models"
)

// FilePart is one binary part of a submission: the raw bytes plus the
// locally generated URL used for preview display.
type FilePart struct {
	Name       string
	PreviewURL string
	Data       []byte
}

// Submission is one save packaged as a single multipart unit: text fields
// title/content/tags plus an optional thumbnail part and N attachment
// parts. The acting author's identity is not part of the submission; it
// travels with the transport's auth context.
type Submission struct {
	BlogID      uint // zero routes to create, non-zero to update
	Title       string
	Content     string
	Tags        models.TagList
	Thumbnail   *FilePart
	Attachments []FilePart
}

// Encode writes the submission as a multipart form body and returns the
// body and its content type. Attachment parts are named attachment0..N-1
// so order and identity survive transport.
func (sub Submission) Encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField("title", sub.Title); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("content", sub.Content); err != nil {
		return nil, "", err
	}
	tags, err := json.Marshal(sub.Tags)
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("tags", string(tags)); err != nil {
		return nil, "", err
	}

	if sub.Thumbnail != nil {
		fw, err := w.CreateFormFile("thumbnail", sub.Thumbnail.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(sub.Thumbnail.Data); err != nil {
			return nil, "", err
		}
	}
	for i, att := range sub.Attachments {
		fw, err := w.CreateFormFile(fmt.Sprintf("attachment%d", i), att.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(att.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// SaveResult tells the session how the save landed. Created distinguishes
// a fresh record from an update because the known-posts merge branches on
// it. Record carries the locally regenerated preview references, not
// server-confirmed URLs.
type SaveResult struct {
	Created bool
	Record  models.Blog
}

// submit encodes the submission and routes it: bound drafts go to update,
// unbound ones to create.
func submit(ctx context.Context, client Client, sub Submission) (*models.Blog, error) {
	body, contentType, err := sub.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	if sub.BlogID != 0 {
		return client.UpdateBlog(ctx, sub.BlogID, body, contentType)
	}
	return client.CreateBlog(ctx, body, contentType)
}
