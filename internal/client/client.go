// Package client talks to the catalog API.  Client maps the HTTP endpoints
// to typed calls, Catalog adds mutation notification on top of it, and Feed
// keeps an incrementally loaded view of one filtered result set.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/iliyamo/movie-show-catalog/internal/model"
)

// DefaultBaseURL is used when CATALOG_API_URL is not set.
const DefaultBaseURL = "http://localhost:3001"

// Filter selects a subset of the catalog.  The zero value matches
// everything.
type Filter struct {
	Search string
	Kind   model.Kind
}

// Pagination mirrors the server's pagination block.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Page is one list response.
type Page struct {
	Entries    []model.Entry `json:"entries"`
	Pagination Pagination    `json:"pagination"`
}

// Fields is a create or update body keyed by JSON attribute name, e.g.
// Fields{"title": "Heat", "genre": nil}.  A nil value clears an optional
// attribute on update.
type Fields map[string]any

// FieldError is one entry of a validation error response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Client is a thin HTTP client for /api/movies-shows.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// New returns a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// List fetches one page of entries matching f.
func (c *Client) List(ctx context.Context, f Filter, page, limit int) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	if f.Kind != "" {
		q.Set("type", string(f.Kind))
	}
	var out Page
	if err := c.do(ctx, http.MethodGet, "/api/movies-shows?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one entry.
func (c *Client) Get(ctx context.Context, id int64) (*model.Entry, error) {
	var out model.Entry
	if err := c.do(ctx, http.MethodGet, entryPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new entry.
func (c *Client) Create(ctx context.Context, in Fields) (*model.Entry, error) {
	var out model.Entry
	if err := c.do(ctx, http.MethodPost, "/api/movies-shows", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update; attributes absent from in are untouched.
func (c *Client) Update(ctx context.Context, id int64, in Fields) (*model.Entry, error) {
	var out model.Entry
	if err := c.do(ctx, http.MethodPut, entryPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an entry.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, entryPath(id), nil, nil)
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func entryPath(id int64) string { return "/api/movies-shows/" + strconv.FormatInt(id, 10) }

// do sends one request and decodes the envelope's data member into out.
func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if !gjson.ValidBytes(raw) {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	res := gjson.ParseBytes(raw)
	if resp.StatusCode >= 400 || !res.Get("success").Bool() {
		return decodeAPIError(resp.StatusCode, res)
	}
	if out == nil {
		return nil
	}
	data := res.Get("data")
	if !data.Exists() {
		return &APIError{Status: resp.StatusCode, Message: "response has no data"}
	}
	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return errors.Wrap(err, "decode response data")
	}
	return nil
}

func decodeAPIError(status int, res gjson.Result) *APIError {
	ae := &APIError{Status: status, Message: res.Get("message").String()}
	if ae.Message == "" {
		ae.Message = http.StatusText(status)
	}
	res.Get("errors").ForEach(func(_, v gjson.Result) bool {
		ae.Errors = append(ae.Errors, FieldError{Field: v.Get("field").String(), Message: v.Get("message").String()})
		return true
	})
	return ae
}
