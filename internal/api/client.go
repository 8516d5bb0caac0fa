package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "QUILL_HTTP_TIMEOUT"
)

// Client reads from a running quill server over its JSON routes.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// ListBlogs fetches /api/blogs with the given filter query.
func (c *Client) ListBlogs(ctx context.Context, query url.Values) (BlogListResponse, error) {
	var resp BlogListResponse
	err := c.do(ctx, http.MethodGet, "/api/blogs", query, &resp)
	return resp, err
}

// GetBlog fetches one blog. The server counts this as a view.
func (c *Client) GetBlog(ctx context.Context, id int64) (BlogResponse, error) {
	var resp BlogResponse
	err := c.do(ctx, http.MethodGet, "/api/blogs/"+strconv.FormatInt(id, 10), nil, &resp)
	return resp, err
}

// Like adds a like to a blog.
func (c *Client) Like(ctx context.Context, id int64) (LikeResponse, error) {
	var resp LikeResponse
	err := c.do(ctx, http.MethodPost, "/blogs/"+strconv.FormatInt(id, 10)+"/like", nil, &resp)
	return resp, err
}

// Unlike removes a like from a blog.
func (c *Client) Unlike(ctx context.Context, id int64) (LikeResponse, error) {
	var resp LikeResponse
	err := c.do(ctx, http.MethodPost, "/blogs/"+strconv.FormatInt(id, 10)+"/unlike", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var errResp ErrorResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&errResp); err == nil && errResp.Error != "" {
		return &APIError{Status: resp.StatusCode, Code: errResp.Code, ErrorCode: errResp.ErrorCode, Message: errResp.Error}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
