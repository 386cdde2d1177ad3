package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/draftsmith/draftsmith/models"
)

func TestSubmissionEncode(t *testing.T) {
	sub := Submission{
		Title:     "a title",
		Content:   "# body",
		Tags:      models.TagList{"go", "web"},
		Thumbnail: &FilePart{Name: "cover.png", Data: []byte("thumb-bytes")},
		Attachments: []FilePart{
			{Name: "a.pdf", Data: []byte("pdf")},
			{Name: "b.zip", Data: []byte("zip")},
		},
	}

	body, contentType, err := sub.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("unexpected content type %q: %v", contentType, err)
	}

	reader := multipart.NewReader(body, params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	defer form.RemoveAll()

	if got := form.Value["title"]; len(got) != 1 || got[0] != "a title" {
		t.Fatalf("title field: %v", got)
	}
	if got := form.Value["content"]; len(got) != 1 || got[0] != "# body" {
		t.Fatalf("content field: %v", got)
	}

	// Tags travel as one JSON-encoded array field.
	var tags []string
	if err := json.Unmarshal([]byte(form.Value["tags"][0]), &tags); err != nil {
		t.Fatalf("tags field is not JSON: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"go", "web"}) {
		t.Fatalf("tags: %v", tags)
	}

	thumbs := form.File["thumbnail"]
	if len(thumbs) != 1 || thumbs[0].Filename != "cover.png" {
		t.Fatalf("thumbnail part: %+v", thumbs)
	}
	for i, want := range []string{"a.pdf", "b.zip"} {
		parts := form.File[fmt.Sprintf("attachment%d", i)]
		if len(parts) != 1 || parts[0].Filename != want {
			t.Fatalf("attachment%d part: %+v", i, parts)
		}
	}

	// Identity never rides in the form; it belongs to the transport.
	for field := range form.Value {
		switch field {
		case "title", "content", "tags":
		default:
			t.Fatalf("unexpected form field %q", field)
		}
	}
}

func TestSubmissionEncodeSkipsAbsentFiles(t *testing.T) {
	sub := Submission{Title: "t", Content: "c"}

	body, contentType, err := sub.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, params, _ := mime.ParseMediaType(contentType)
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	defer form.RemoveAll()

	if len(form.File) != 0 {
		t.Fatalf("no file parts expected, got %v", form.File)
	}
	if got := form.Value["tags"]; len(got) != 1 || got[0] != "null" {
		t.Fatalf("empty tags must still encode: %v", got)
	}
}

func TestSubmitRouting(t *testing.T) {
	t.Run("unbound creates", func(t *testing.T) {
		client := &fakeClient{record: &models.Blog{ID: 1}}
		if _, err := submit(context.Background(), client, Submission{Title: "t"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if client.createCalls != 1 || client.updateCalls != 0 {
			t.Fatalf("calls: create=%d update=%d", client.createCalls, client.updateCalls)
		}
	})

	t.Run("bound updates", func(t *testing.T) {
		client := &fakeClient{record: &models.Blog{ID: 9}}
		if _, err := submit(context.Background(), client, Submission{BlogID: 9, Title: "t"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if client.updateCalls != 1 || client.lastUpdate != 9 {
			t.Fatalf("calls: update=%d id=%d", client.updateCalls, client.lastUpdate)
		}
	})
}

func TestHTTPClientCreateBlog(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		if _, err := r.MultipartReader(); err != nil {
			t.Errorf("expected a multipart body: %v", err)
		}
		io.Copy(io.Discard, r.Body)
		fmt.Fprint(w, `{"code":0,"message":"success","data":{"blog":{"id":11,"title":"t","author_name":"alice"}}}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "tok-123")
	sub := Submission{Title: "t", Content: "c"}
	body, contentType, err := sub.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	blog, err := client.CreateBlog(context.Background(), body, contentType)
	if err != nil {
		t.Fatalf("CreateBlog: %v", err)
	}
	if blog.ID != 11 || blog.AuthorName != "alice" {
		t.Fatalf("decoded blog: %+v", blog)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("authorization header: %q", gotAuth)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v1/blogs" {
		t.Fatalf("request: %s %s", gotMethod, gotPath)
	}
}

func TestHTTPClientUpdateBlogPath(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		io.Copy(io.Discard, r.Body)
		fmt.Fprint(w, `{"code":0,"message":"success","data":{"blog":{"id":5}}}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/", "")
	body, contentType, _ := Submission{BlogID: 5, Title: "t"}.Encode()
	if _, err := client.UpdateBlog(context.Background(), 5, body, contentType); err != nil {
		t.Fatalf("UpdateBlog: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/v1/blogs/5" {
		t.Fatalf("request: %s %s", gotMethod, gotPath)
	}
}

func TestHTTPClientSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code":40401,"message":"blog not found"}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "tok")
	body, contentType, _ := Submission{BlogID: 404, Title: "t"}.Encode()
	_, err := client.UpdateBlog(context.Background(), 404, body, contentType)
	if err == nil || err.Error() != "blog not found" {
		t.Fatalf("expected the server message, got %v", err)
	}
}

func TestHTTPClientListBlogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"message":"success","data":{"items":[{"id":1},{"id":2}]}}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "tok")
	blogs, err := client.ListBlogs(context.Background())
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	if len(blogs) != 2 || blogs[0].ID != 1 || blogs[1].ID != 2 {
		t.Fatalf("decoded list: %+v", blogs)
	}
}
