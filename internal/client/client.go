// Package client talks to a running plantmetrics server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/plantmetrics/internal/domain/dataset"
	"github.com/okian/plantmetrics/internal/domain/types"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 60 * time.Second

// ErrStatus reports an unexpected HTTP status.
var ErrStatus = errors.New("unexpected response status")

// Client wraps http.Client with the server's base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http.Timeout = d }
}

// New returns a Client for baseURL, e.g. "http://localhost:9080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIError is the server's error body.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return ErrStatus }

// Upload posts data as a multipart file. With wait the server ingests it
// before answering. A failed ingestion is returned as a job with status
// failed, not as an error.
func (c *Client) Upload(ctx context.Context, name string, data []byte, wait bool) (types.JobView, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return types.JobView{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return types.JobView{}, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return types.JobView{}, fmt.Errorf("close form: %w", err)
	}

	q := url.Values{}
	if wait {
		q.Set("wait", "true")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/uploads", q), &body)
	if err != nil {
		return types.JobView{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var job types.JobView
	err = c.do(req, &job, http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusUnprocessableEntity)
	return job, err
}

// Job fetches an upload job.
func (c *Client) Job(ctx context.Context, id string) (types.JobView, error) {
	var job types.JobView
	err := c.get(ctx, "/uploads/"+url.PathEscape(id), nil, &job)
	return job, err
}

// Wait polls a job until it finishes or ctx ends.
func (c *Client) Wait(ctx context.Context, id string, every time.Duration) (types.JobView, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		job, err := c.Job(ctx, id)
		if err != nil {
			return job, err
		}
		if job.Status.Done() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Summary fetches the active dataset summary.
func (c *Client) Summary(ctx context.Context) (dataset.Summary, error) {
	var s dataset.Summary
	err := c.get(ctx, "/dataset", nil, &s)
	return s, err
}

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, q), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out, http.StatusOK)
}

// do sends req and decodes the body into out when the status is one of ok.
func (c *Client) do(req *http.Request, out any, ok ...int) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	for _, s := range ok {
		if resp.StatusCode == s {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
