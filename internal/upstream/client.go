// Package upstream talks to the remote post store: a JSON-over-HTTP
// collection resource (jsonplaceholder-style). It is the only I/O boundary
// of the service; everything above it works against the Client interface.
//
// Error semantics:
//   - A 404 response maps to ErrNotFound.
//   - Any other non-2xx response or transport failure maps to a *StatusError
//     or the wrapped transport error.
//   - Reads retry up to the configured count; mutations are never retried,
//     the caller must resubmit.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/nrjbwj/postforge/internal/domain"
)

// ErrNotFound is returned when the upstream store has no entity for the
// requested id.
var ErrNotFound = errors.New("upstream: not found")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: %s %s returned %d", e.Method, e.Path, e.Code)
}

// CreatePostInput is the payload for creating a post. The id is assigned by
// the store.
type CreatePostInput struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// UpdatePostInput is the full replacement payload for an existing post.
type UpdatePostInput struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// Client is the remote post store contract consumed by the service layer.
// Implementations must honor the context for cancellation.
type Client interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	GetPost(ctx context.Context, id int) (*domain.Post, error)
	ListComments(ctx context.Context, postID int) ([]domain.Comment, error)
	CreatePost(ctx context.Context, in CreatePostInput) (*domain.Post, error)
	UpdatePost(ctx context.Context, in UpdatePostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, id int) error
}

// HTTPClient implements Client against a live HTTP endpoint.
type HTTPClient struct {
	BaseURL     string
	HTTP        *http.Client
	ReadRetries int // extra attempts for GETs after the first failure
}

// NewHTTPClient returns a ready-to-use client for baseURL. timeout bounds
// each individual request; readRetries controls extra GET attempts.
func NewHTTPClient(baseURL string, timeout time.Duration, readRetries int) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if readRetries < 0 {
		readRetries = 0
	}
	return &HTTPClient{
		BaseURL:     baseURL,
		HTTP:        &http.Client{Timeout: timeout},
		ReadRetries: readRetries,
	}
}

// ListPosts fetches the full post collection.
func (c *HTTPClient) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var out []domain.Post
	if err := c.getJSON(ctx, "/posts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPost fetches a single post by id.
func (c *HTTPClient) GetPost(ctx context.Context, id int) (*domain.Post, error) {
	var out domain.Post
	if err := c.getJSON(ctx, "/posts/"+strconv.Itoa(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListComments fetches the comments attached to a post.
func (c *HTTPClient) ListComments(ctx context.Context, postID int) ([]domain.Comment, error) {
	var out []domain.Comment
	if err := c.getJSON(ctx, "/posts/"+strconv.Itoa(postID)+"/comments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePost creates a new post; the store assigns the id.
func (c *HTTPClient) CreatePost(ctx context.Context, in CreatePostInput) (*domain.Post, error) {
	var out domain.Post
	if err := c.writeJSON(ctx, http.MethodPost, "/posts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost replaces the post identified by in.ID.
func (c *HTTPClient) UpdatePost(ctx context.Context, in UpdatePostInput) (*domain.Post, error) {
	var out domain.Post
	if err := c.writeJSON(ctx, http.MethodPut, "/posts/"+strconv.Itoa(in.ID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes the post identified by id. The response body is ignored.
func (c *HTTPClient) DeletePost(ctx context.Context, id int) error {
	return c.writeJSON(ctx, http.MethodDelete, "/posts/"+strconv.Itoa(id), nil, nil)
}

// getJSON performs a GET with retry and decodes the 2xx body into out.
func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.ReadRetries; attempt++ {
		lastErr = c.do(ctx, http.MethodGet, path, nil, out)
		if lastErr == nil || errors.Is(lastErr, ErrNotFound) || ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

// writeJSON performs a mutation exactly once.
func (c *HTTPClient) writeJSON(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, method, path, in, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("upstream: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("upstream: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("upstream: decode %s %s: %w", method, path, err)
	}
	return nil
}
