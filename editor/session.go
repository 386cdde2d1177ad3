package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/draftsmith/draftsmith/models"
)

// ErrSavePending is returned when a save is dispatched while another one is
// still in flight. One save at a time; editing stays allowed meanwhile.
var ErrSavePending = errors.New("a save is already in progress")

// ViewMode selects which surface the editor UI shows.
type ViewMode string

const (
	ViewEditor ViewMode = "editor"
	ViewPosts  ViewMode = "posts"
)

// TabMode selects the active editor tab.
type TabMode string

const (
	TabWrite   TabMode = "write"
	TabPreview TabMode = "preview"
)

// Attachment is a file held by the draft. Data is non-nil for files picked
// locally and not yet uploaded; it is nil for references already persisted
// on the server. Ref always carries the URL used for preview display.
type Attachment struct {
	Ref  models.FileRef
	Data []byte
}

// Draft is the unsaved, session-local representation of a post being composed.
// EditingID zero means a new post; non-zero means editing that record.
type Draft struct {
	Title       string
	Content     string
	Tags        models.TagList
	Thumbnail   *Attachment
	Attachments []Attachment
	EditingID   uint
	// Saved is true only while the draft content matches the last
	// persisted state; any local mutation flips it back to false.
	Saved bool
}

// Author identifies the user who owns this editor session.
type Author struct {
	ID   uint
	Name string
}

// Session is the single state container behind one open editor. It is
// created on editor open and owns exactly one draft at a time. One writer
// mutates it through its methods; reads go through Snapshot. A save runs
// its network call without holding the lock, so edits are never blocked by
// an in-flight save, and its completion is applied as one atomic update.
type Session struct {
	mu sync.Mutex

	client Client
	author Author

	draft     Draft
	viewMode  ViewMode
	activeTab TabMode
	posts     []models.Blog
	loading   bool
	errMsg    string
	pending   bool
}

// NewSession creates an empty session for the given author.
func NewSession(client Client, author Author) *Session {
	return &Session{
		client:    client,
		author:    author,
		viewMode:  ViewEditor,
		activeTab: TabWrite,
	}
}

// Snapshot is a consistent copy of the session state for readers.
type Snapshot struct {
	Draft     Draft
	ViewMode  ViewMode
	ActiveTab TabMode
	Posts     []models.Blog
	Loading   bool
	Err       string
}

// Snapshot returns a copy of the current state. Slices are cloned so the
// caller can hold on to the result while editing continues.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Draft:     s.draft,
		ViewMode:  s.viewMode,
		ActiveTab: s.activeTab,
		Loading:   s.loading,
		Err:       s.errMsg,
	}
	snap.Draft.Tags = append(models.TagList(nil), s.draft.Tags...)
	snap.Draft.Attachments = append([]Attachment(nil), s.draft.Attachments...)
	if s.draft.Thumbnail != nil {
		thumb := *s.draft.Thumbnail
		snap.Draft.Thumbnail = &thumb
	}
	snap.Posts = append([]models.Blog(nil), s.posts...)
	return snap
}

// SetTitle updates the draft title.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Title = title
	s.draft.Saved = false
}

// SetContent updates the draft body.
func (s *Session) SetContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Content = content
	s.draft.Saved = false
}

// AddTag appends a tag unless it is already present. A duplicate is a no-op
// and does not touch the saved flag.
func (s *Session) AddTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Tags.Contains(tag) {
		return
	}
	s.draft.Tags = append(s.draft.Tags, tag)
	s.draft.Saved = false
}

// RemoveTag removes a tag if present.
func (s *Session) RemoveTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.draft.Tags[:0]
	for _, t := range s.draft.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	s.draft.Tags = kept
	s.draft.Saved = false
}

// SetThumbnail replaces the draft thumbnail; nil clears it.
func (s *Session) SetThumbnail(thumb *Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Thumbnail = thumb
	s.draft.Saved = false
}

// AddAttachment appends a file to the ordered attachment list.
func (s *Session) AddAttachment(att Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Attachments = append(s.draft.Attachments, att)
	s.draft.Saved = false
}

// RemoveAttachment drops the attachment at index; out-of-range is a no-op
// but still marks the draft dirty, matching the other mutation actions.
func (s *Session) RemoveAttachment(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index >= 0 && index < len(s.draft.Attachments) {
		s.draft.Attachments = append(s.draft.Attachments[:index], s.draft.Attachments[index+1:]...)
	}
	s.draft.Saved = false
}

// SetActiveTab switches between write and preview without dirtying the draft.
func (s *Session) SetActiveTab(tab TabMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTab = tab
}

// SetViewMode switches between the editor and the post list without
// dirtying the draft.
func (s *Session) SetViewMode(mode ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewMode = mode
}

// EditBlog replaces the whole draft with the record's persisted content,
// discarding any unsaved local state. The loaded content matches storage
// exactly, so the draft starts out saved. Calling it twice is the same as
// calling it once.
func (s *Session) EditBlog(record models.Blog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = Draft{
		Title:     record.Title,
		Content:   record.Content,
		Tags:      append(models.TagList(nil), record.Tags...),
		EditingID: record.ID,
		Saved:     true,
	}
	if !record.Thumbnail.IsZero() {
		s.draft.Thumbnail = &Attachment{Ref: record.Thumbnail}
	}
	for _, ref := range record.Attachments {
		s.draft.Attachments = append(s.draft.Attachments, Attachment{Ref: ref})
	}
	s.viewMode = ViewEditor
}

// ResetEditor clears the draft back to a fresh, unsaved state. Valid from
// any state; does not touch the known-posts list.
func (s *Session) ResetEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = Draft{}
}

// Save packages the current draft and submits it, creating or updating
// depending on whether the draft is bound to an existing record. Only one
// save may be in flight; a second dispatch returns ErrSavePending. The
// draft stays editable while the submission runs.
//
// On success the synthesized record keeps the locally generated preview
// references for any files that were part of the submission; the
// authoritative server URLs arrive on the next ReloadPosts. On failure the
// error message is recorded on the session, pending binary attachments are
// discarded, and the text fields survive untouched.
func (s *Session) Save(ctx context.Context) (*SaveResult, error) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil, ErrSavePending
	}
	s.pending = true
	s.loading = true
	s.errMsg = ""
	sub := s.buildSubmissionLocked()
	s.mu.Unlock()

	record, err := submit(ctx, s.client, sub)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	s.loading = false

	if err != nil {
		s.errMsg = err.Error()
		s.draft.Thumbnail = nil
		s.draft.Attachments = nil
		return nil, err
	}

	result := s.applySuccessLocked(sub, record)
	return result, nil
}

// buildSubmissionLocked snapshots the draft into a submission unit.
func (s *Session) buildSubmissionLocked() Submission {
	sub := Submission{
		BlogID:  s.draft.EditingID,
		Title:   s.draft.Title,
		Content: s.draft.Content,
		Tags:    append(models.TagList(nil), s.draft.Tags...),
	}
	if t := s.draft.Thumbnail; t != nil && t.Data != nil {
		sub.Thumbnail = &FilePart{Name: t.Ref.Name, PreviewURL: t.Ref.URL, Data: t.Data}
	}
	for _, att := range s.draft.Attachments {
		if att.Data == nil {
			continue
		}
		sub.Attachments = append(sub.Attachments, FilePart{Name: att.Ref.Name, PreviewURL: att.Ref.URL, Data: att.Data})
	}
	return sub
}

// applySuccessLocked reconciles a finished save into the session as one
// atomic update: mark saved, merge into the known-posts list, switch view.
func (s *Session) applySuccessLocked(sub Submission, serverRecord *models.Blog) *SaveResult {
	s.draft.Saved = true

	synthesized := models.Blog{
		ID:         sub.BlogID,
		AuthorID:   s.author.ID,
		AuthorName: s.author.Name,
		Title:      sub.Title,
		Content:    sub.Content,
		Tags:       sub.Tags,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if sub.Thumbnail != nil {
		synthesized.Thumbnail = models.FileRef{URL: sub.Thumbnail.PreviewURL, Name: sub.Thumbnail.Name}
	}
	for _, part := range sub.Attachments {
		synthesized.Attachments = append(synthesized.Attachments, models.FileRef{URL: part.PreviewURL, Name: part.Name})
	}

	created := sub.BlogID == 0
	if created {
		if serverRecord != nil && serverRecord.ID != 0 {
			synthesized.ID = serverRecord.ID
		} else {
			synthesized.ID = uint(time.Now().UnixMilli())
		}
		s.posts = append(s.posts, synthesized)
	} else {
		for i := range s.posts {
			if s.posts[i].ID == sub.BlogID {
				s.posts[i] = synthesized
				break
			}
		}
	}

	s.viewMode = ViewPosts
	return &SaveResult{Created: created, Record: synthesized}
}

// ReloadPosts replaces the known-posts cache with the authoritative server
// list. This is the explicit reconciliation point where optimistic preview
// references give way to server URLs.
func (s *Session) ReloadPosts(ctx context.Context) error {
	blogs, err := s.client.ListBlogs(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = blogs
	return nil
}

// SeedPosts preloads the known-posts list, typically right after opening
// the editor with records fetched elsewhere.
func (s *Session) SeedPosts(blogs []models.Blog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]models.Blog(nil), blogs...)
}
