package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftsmith/draftsmith/models"
)

// Client is the transport the save pipeline submits through. The identity
// of the acting author is carried by the client (bearer token), never by
// the submission body.
type Client interface {
	CreateBlog(ctx context.Context, body io.Reader, contentType string) (*models.Blog, error)
	UpdateBlog(ctx context.Context, id uint, body io.Reader, contentType string) (*models.Blog, error)
	ListBlogs(ctx context.Context) ([]models.Blog, error)
}

// HTTPClient talks to the blog API over HTTP with a bearer token.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient creates a client for the given API base URL and auth token.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type blogPayload struct {
	Blog models.Blog `json:"blog"`
}

type blogListPayload struct {
	Items []models.Blog `json:"items"`
}

func (c *HTTPClient) CreateBlog(ctx context.Context, body io.Reader, contentType string) (*models.Blog, error) {
	data, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/v1/blogs", body, contentType)
	if err != nil {
		return nil, err
	}
	var payload blogPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode created blog: %w", err)
	}
	return &payload.Blog, nil
}

func (c *HTTPClient) UpdateBlog(ctx context.Context, id uint, body io.Reader, contentType string) (*models.Blog, error) {
	data, err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s/api/v1/blogs/%d", c.baseURL, id), body, contentType)
	if err != nil {
		return nil, err
	}
	var payload blogPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode updated blog: %w", err)
	}
	return &payload.Blog, nil
}

func (c *HTTPClient) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	data, err := c.do(ctx, http.MethodGet, c.baseURL+"/api/v1/blogs", nil, "")
	if err != nil {
		return nil, err
	}
	var payload blogListPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode blog list: %w", err)
	}
	return payload.Items, nil
}

func (c *HTTPClient) do(ctx context.Context, method, url string, body io.Reader, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("%s", env.Message)
	}
	return env.Data, nil
}
