// Package classroom implements the ClassroomAPI port against the classroom
// REST API.
package classroom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ClassroomAPI = (*Client)(nil)

const (
	// DefaultTimeout bounds a single request when no timeout is configured.
	DefaultTimeout = 15 * time.Second

	maxBodyBytes     = 4 << 20
	maxErrorMsgBytes = 512

	pathSignIn  = "/api/classroom/signin"
	pathClass   = "/api/classroom/class"
	pathStatus  = "/api/classroom/status"
	pathComment = "/api/classroom/comment"
	pathLike    = "/api/classroom/like"
)

// Client implements the driven.ClassroomAPI port over net/http.
type Client struct {
	http    *http.Client
	baseURL string // No trailing slash; may be empty when unconfigured.
}

// NewClient creates a classroom API client with the following transport stack:
//  1. authTransport (API key, request ID, bearer token from tokens)
//  2. httpcache (ETag/Last-Modified revalidation for GETs)
//  3. http.DefaultTransport
//
// tokens may be nil for a client that only signs in. An empty baseURL is
// logged as a configuration warning; requests will then fail individually.
func NewClient(baseURL, apiKey string, tokens driven.TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	httpClient := &http.Client{
		Transport: newAuthTransport(cacheTransport, apiKey, tokens),
		Timeout:   timeout,
	}

	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		slog.Warn("no classroom base URL configured", "hint", "set CLASSFEED_BASE_URL")
	}

	return &Client{http: httpClient, baseURL: base}
}

// NewClientWithHTTPClient creates a Client around a caller-supplied http.Client,
// keeping its transport underneath the auth transport.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, apiKey string, tokens driven.TokenSource) (*Client, error) {
	base := strings.TrimRight(baseURL, "/")
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
		}
	}

	wrapped := *httpClient
	wrapped.Transport = newAuthTransport(httpClient.Transport, apiKey, tokens)

	return &Client{http: &wrapped, baseURL: base}, nil
}

// SignIn posts the credentials and returns the identity and token from the
// response. A response without a token yields a Credential with an empty Token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Credential, error) {
	body, err := c.do(ctx, http.MethodPost, pathSignIn, signInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	u, err := decodeObject[userJSON](body)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	return mapCredential(u), nil
}

// ListClassmates returns every classmate in the directory.
func (c *Client) ListClassmates(ctx context.Context) ([]model.Classmate, error) {
	return c.listClassmates(ctx, pathClass)
}

// ListClassmatesByYear returns the classmates enrolled in year.
func (c *Client) ListClassmatesByYear(ctx context.Context, year string) ([]model.Classmate, error) {
	return c.listClassmates(ctx, pathClass+"/"+url.PathEscape(year))
}

func (c *Client) listClassmates(ctx context.Context, path string) ([]model.Classmate, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	items, err := decodeList[classmateJSON](body)
	if err != nil {
		return nil, fmt.Errorf("listing classmates: %w", err)
	}

	return mapClassmates(items), nil
}

// ListPosts returns the feed in server order (newest first). The feed is
// always fetched from the server: writes to other paths (comments, likes)
// change it without evicting the cached GET.
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathStatus, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	items, err := decodeList[statusJSON](body)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	return mapPosts(items), nil
}

// CreatePost publishes a new status.
func (c *Client) CreatePost(ctx context.Context, content string) (*model.Post, error) {
	return c.postResult(ctx, http.MethodPost, pathStatus, contentRequest{Content: content})
}

// DeletePost deletes a status owned by the signed-in user.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	_, err := c.do(ctx, http.MethodDelete, pathStatus+"/"+url.PathEscape(postID), nil)
	return err
}

// AddComment comments on a status and returns the updated status.
func (c *Client) AddComment(ctx context.Context, postID, content string) (*model.Post, error) {
	return c.postResult(ctx, http.MethodPost, pathComment, commentRequest{StatusID: postID, Content: content})
}

// DeleteComment deletes a comment owned by the signed-in user. The parent
// status ID travels in the DELETE body.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	_, err := c.do(ctx, http.MethodDelete, pathComment+"/"+url.PathEscape(commentID), statusRefRequest{StatusID: postID})
	return err
}

// Like adds the signed-in user to the status's likers.
func (c *Client) Like(ctx context.Context, postID string) (*model.Post, error) {
	return c.postResult(ctx, http.MethodPost, pathLike, statusRefRequest{StatusID: postID})
}

// Unlike removes the signed-in user from the status's likers.
func (c *Client) Unlike(ctx context.Context, postID string) (*model.Post, error) {
	return c.postResult(ctx, http.MethodDelete, pathLike, statusRefRequest{StatusID: postID})
}

// postResult performs a write whose response carries a single status.
func (c *Client) postResult(ctx context.Context, method, path string, payload any) (*model.Post, error) {
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	s, err := decodeObject[statusJSON](body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	post := mapPost(s)
	return &post, nil
}

// do sends a JSON request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send performs req. Non-2xx responses become *driven.APIError; transport
// failures wrap driven.ErrNetwork.
func (c *Client) send(req *http.Request) ([]byte, error) {
	method, path := req.Method, req.URL.Path

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		var tokErr *tokenError
		if errors.As(err, &tokErr) {
			return nil, fmt.Errorf("%s %s: %w", method, path, tokErr)
		}
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, driven.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w: %w", method, path, driven.ErrNetwork, err)
	}

	slog.Debug("classroom api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"from_cache", resp.Header.Get(httpcache.XFromCache) != "",
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// decodeAPIError builds an APIError from an error response. A JSON body's
// "message" (or "error") field is used verbatim; any other body is used as
// trimmed text.
func decodeAPIError(status int, body []byte) *driven.APIError {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			msg := payload.Message
			if msg == "" {
				msg = payload.Error
			}
			return &driven.APIError{StatusCode: status, Message: msg}
		}
	}

	msg := string(trimmed)
	if len(msg) > maxErrorMsgBytes {
		msg = msg[:maxErrorMsgBytes]
	}
	return &driven.APIError{StatusCode: status, Message: msg}
}
