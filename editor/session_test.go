package editor

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/draftsmith/draftsmith/models"
)

// fakeClient answers submissions from memory. The block channel, when set,
// makes CreateBlog/UpdateBlog wait so a test can observe the pending state.
type fakeClient struct {
	createCalls int
	updateCalls int
	lastUpdate  uint
	record      *models.Blog
	err         error
	list        []models.Blog
	block       chan struct{}
}

func (f *fakeClient) CreateBlog(ctx context.Context, body io.Reader, contentType string) (*models.Blog, error) {
	f.createCalls++
	if f.block != nil {
		<-f.block
	}
	return f.record, f.err
}

func (f *fakeClient) UpdateBlog(ctx context.Context, id uint, body io.Reader, contentType string) (*models.Blog, error) {
	f.updateCalls++
	f.lastUpdate = id
	if f.block != nil {
		<-f.block
	}
	return f.record, f.err
}

func (f *fakeClient) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	return f.list, f.err
}

var testAuthor = Author{ID: 7, Name: "alice"}

func TestMutationsDirtyTheDraft(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Session)
	}{
		{"title", func(s *Session) { s.SetTitle("t") }},
		{"content", func(s *Session) { s.SetContent("c") }},
		{"add tag", func(s *Session) { s.AddTag("go") }},
		{"remove tag", func(s *Session) { s.RemoveTag("go") }},
		{"thumbnail", func(s *Session) { s.SetThumbnail(&Attachment{Data: []byte{1}}) }},
		{"add attachment", func(s *Session) { s.AddAttachment(Attachment{Data: []byte{1}}) }},
		{"remove attachment", func(s *Session) { s.RemoveAttachment(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(&fakeClient{}, testAuthor)
			s.EditBlog(models.Blog{ID: 1, Title: "t", Tags: models.TagList{"go"}})
			if !s.Snapshot().Draft.Saved {
				t.Fatalf("loading a record must start saved")
			}
			tt.mutate(s)
			if s.Snapshot().Draft.Saved {
				t.Fatalf("mutation %q must clear the saved flag", tt.name)
			}
		})
	}
}

func TestTabAndViewSwitchesDoNotDirty(t *testing.T) {
	s := NewSession(&fakeClient{}, testAuthor)
	s.EditBlog(models.Blog{ID: 1, Title: "t"})

	s.SetActiveTab(TabPreview)
	s.SetViewMode(ViewPosts)

	snap := s.Snapshot()
	if !snap.Draft.Saved {
		t.Fatalf("switching tabs or views must not dirty the draft")
	}
	if snap.ActiveTab != TabPreview || snap.ViewMode != ViewPosts {
		t.Fatalf("switches not applied: %+v", snap)
	}
}

func TestAddTagDeduplicates(t *testing.T) {
	s := NewSession(&fakeClient{}, testAuthor)
	s.AddTag("go")
	s.AddTag("go")
	s.AddTag("web")

	tags := s.Snapshot().Draft.Tags
	if !reflect.DeepEqual(tags, models.TagList{"go", "web"}) {
		t.Fatalf("unexpected tags %v", tags)
	}
}

func TestEditBlogIsIdempotent(t *testing.T) {
	s := NewSession(&fakeClient{}, testAuthor)
	record := models.Blog{
		ID:          3,
		Title:       "stored",
		Content:     "body",
		Tags:        models.TagList{"go"},
		Thumbnail:   models.FileRef{URL: "u", Name: "n"},
		Attachments: models.FileRefList{{URL: "a", Name: "b"}},
	}

	s.EditBlog(record)
	// Local edits between the two loads must be discarded by the second.
	s.SetTitle("scratch")
	s.EditBlog(record)

	snap := s.Snapshot()
	if snap.Draft.Title != "stored" || snap.Draft.EditingID != 3 || !snap.Draft.Saved {
		t.Fatalf("second load must restore persisted state: %+v", snap.Draft)
	}
	if snap.Draft.Thumbnail == nil || snap.Draft.Thumbnail.Data != nil {
		t.Fatalf("loaded thumbnail must be a persisted ref without bytes")
	}
	if len(snap.Draft.Attachments) != 1 || snap.Draft.Attachments[0].Data != nil {
		t.Fatalf("loaded attachments must be persisted refs: %+v", snap.Draft.Attachments)
	}
	if snap.ViewMode != ViewEditor {
		t.Fatalf("loading a record must land in the editor view")
	}
}

func TestResetEditorClearsDraftOnly(t *testing.T) {
	s := NewSession(&fakeClient{}, testAuthor)
	s.SeedPosts([]models.Blog{{ID: 1}})
	s.EditBlog(models.Blog{ID: 1, Title: "t", Content: "c"})

	s.ResetEditor()

	snap := s.Snapshot()
	if snap.Draft.Title != "" || snap.Draft.EditingID != 0 || snap.Draft.Saved {
		t.Fatalf("reset must return a fresh unsaved draft: %+v", snap.Draft)
	}
	if len(snap.Posts) != 1 {
		t.Fatalf("reset must not touch the known-posts list")
	}
}

func TestSaveCreateAppendsPost(t *testing.T) {
	client := &fakeClient{record: &models.Blog{ID: 42}}
	s := NewSession(client, testAuthor)
	s.SeedPosts([]models.Blog{{ID: 1}})

	s.SetTitle("fresh")
	s.SetContent("body")
	s.AddTag("go")
	s.SetThumbnail(&Attachment{Ref: models.FileRef{URL: "blob:thumb", Name: "t.png"}, Data: []byte{1}})

	result, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if client.createCalls != 1 || client.updateCalls != 0 {
		t.Fatalf("unbound draft must route to create: %d/%d", client.createCalls, client.updateCalls)
	}
	if !result.Created {
		t.Fatalf("expected a created result")
	}
	if result.Record.ID != 42 {
		t.Fatalf("created record must take the server id, got %d", result.Record.ID)
	}
	if result.Record.AuthorID != testAuthor.ID || result.Record.AuthorName != "alice" {
		t.Fatalf("record must carry the session author: %+v", result.Record)
	}
	// Preview reference survives until the next reload.
	if result.Record.Thumbnail.URL != "blob:thumb" {
		t.Fatalf("expected local preview url, got %q", result.Record.Thumbnail.URL)
	}

	snap := s.Snapshot()
	if len(snap.Posts) != 2 {
		t.Fatalf("create must append exactly one post, have %d", len(snap.Posts))
	}
	if !snap.Draft.Saved {
		t.Fatalf("successful save must mark the draft saved")
	}
	if snap.ViewMode != ViewPosts {
		t.Fatalf("successful save must switch to the posts view")
	}
	if snap.Err != "" {
		t.Fatalf("no error expected, got %q", snap.Err)
	}
}

func TestSaveCreateWithoutServerIDFallsBack(t *testing.T) {
	// A server reply without a usable record still needs a local id for the
	// optimistic post.
	client := &fakeClient{record: nil}
	s := NewSession(client, testAuthor)
	s.SetTitle("t")

	result, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result.Record.ID == 0 {
		t.Fatalf("expected a synthesized non-zero id")
	}
}

func TestSaveUpdateReplacesPost(t *testing.T) {
	client := &fakeClient{record: &models.Blog{ID: 5}}
	s := NewSession(client, testAuthor)
	s.SeedPosts([]models.Blog{{ID: 4, Title: "other"}, {ID: 5, Title: "old"}})
	s.EditBlog(models.Blog{ID: 5, Title: "old", Content: "c"})
	s.SetTitle("new")

	result, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if client.updateCalls != 1 || client.lastUpdate != 5 {
		t.Fatalf("bound draft must route to update with its id: calls=%d id=%d", client.updateCalls, client.lastUpdate)
	}
	if result.Created {
		t.Fatalf("update must not report created")
	}

	snap := s.Snapshot()
	if len(snap.Posts) != 2 {
		t.Fatalf("update must keep the list length, have %d", len(snap.Posts))
	}
	var found bool
	for _, p := range snap.Posts {
		if p.ID == 5 {
			found = true
			if p.Title != "new" {
				t.Fatalf("post 5 not replaced: %+v", p)
			}
		}
	}
	if !found {
		t.Fatalf("post 5 missing after update")
	}
}

func TestSaveFailureKeepsTextDropsBinaries(t *testing.T) {
	client := &fakeClient{err: errors.New("upstream said no")}
	s := NewSession(client, testAuthor)
	s.SetTitle("keep me")
	s.SetContent("and me")
	s.AddTag("go")
	s.SetThumbnail(&Attachment{Data: []byte{1}})
	s.AddAttachment(Attachment{Data: []byte{2}})

	if _, err := s.Save(context.Background()); err == nil {
		t.Fatalf("expected save failure")
	}

	snap := s.Snapshot()
	if snap.Err != "upstream said no" {
		t.Fatalf("failure must be recorded on the session, got %q", snap.Err)
	}
	if snap.Draft.Title != "keep me" || snap.Draft.Content != "and me" || len(snap.Draft.Tags) != 1 {
		t.Fatalf("text fields must survive a failed save: %+v", snap.Draft)
	}
	if snap.Draft.Thumbnail != nil || snap.Draft.Attachments != nil {
		t.Fatalf("binary parts must be dropped on failure")
	}
	if snap.Draft.Saved {
		t.Fatalf("failed save must not mark the draft saved")
	}
	if len(snap.Posts) != 0 {
		t.Fatalf("failed save must not touch the posts list")
	}
	if snap.Loading {
		t.Fatalf("loading flag must be cleared after completion")
	}
}

func TestSecondSaveWhilePendingIsRejected(t *testing.T) {
	client := &fakeClient{record: &models.Blog{ID: 1}, block: make(chan struct{})}
	s := NewSession(client, testAuthor)
	s.SetTitle("t")

	done := make(chan error, 1)
	go func() {
		_, err := s.Save(context.Background())
		done <- err
	}()

	// Wait until the first save is visibly in flight.
	deadline := time.After(2 * time.Second)
	for !s.Snapshot().Loading {
		select {
		case <-deadline:
			t.Fatalf("first save never became pending")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := s.Save(context.Background()); !errors.Is(err, ErrSavePending) {
		t.Fatalf("expected ErrSavePending, got %v", err)
	}

	// Editing stays possible while the save runs.
	s.SetContent("typed while saving")

	close(client.block)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}
	if got := s.Snapshot().Draft.Content; got != "typed while saving" {
		t.Fatalf("mid-flight edit lost: %q", got)
	}

	// With the first save settled a new one is accepted again.
	client.block = nil
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("follow-up save: %v", err)
	}
}

func TestReloadPostsReplacesList(t *testing.T) {
	client := &fakeClient{record: &models.Blog{ID: 9}}
	s := NewSession(client, testAuthor)
	s.SetTitle("t")
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	client.list = []models.Blog{
		{ID: 9, Title: "t", Thumbnail: models.FileRef{URL: "https://cdn/thumb.png"}},
	}
	if err := s.ReloadPosts(context.Background()); err != nil {
		t.Fatalf("ReloadPosts: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Posts) != 1 {
		t.Fatalf("reload must replace, not merge: %d posts", len(snap.Posts))
	}
	if snap.Posts[0].Thumbnail.URL != "https://cdn/thumb.png" {
		t.Fatalf("server url must win after reload, got %q", snap.Posts[0].Thumbnail.URL)
	}
}
