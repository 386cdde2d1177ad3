package services

import "errors"

var (
	// ErrMissingAuthor is returned when a create call carries no author id.
	ErrMissingAuthor = errors.New("author id is required")
	// ErrAuthorNotFound is returned when the referenced author identity does not exist.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrBlogNotFound covers three cases on purpose: no record with that id,
	// a dual-key mismatch on update/delete, and an author with no posts.
	// Callers cannot tell them apart without extra lookups.
	ErrBlogNotFound = errors.New("blog not found")
)
