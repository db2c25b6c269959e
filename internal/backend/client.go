// Package backend is the JSON/REST client of the benefit application API.
//
// Records travel as generic JSON objects in the backend's wire shape
// (snake_case keys, ISO dates). Conversion from and to the form's shape
// happens in the draft package.
package backend

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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
)

const (
	applicationsPath = "/v1/applications/"
	currentUserPath  = "/v1/users/me/"
	maxErrorBody     = 4096
	defaultTimeout   = 30 * time.Second
)

// Record is a backend record as decoded from JSON.
type Record = map[string]any

// Application statuses understood by the status endpoint.
const (
	StatusDraft     = "draft"
	StatusReceived  = "received"
	StatusCancelled = "cancelled"
)

// HTTPDoer is the subset of *http.Client the client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Upload is one attachment file.
type Upload struct {
	// Type is the attachment category, e.g. "employment_contract".
	Type        string
	FileName    string
	ContentType string
	Body        io.Reader
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLanguage sets the Accept-Language header.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// WithRateLimit paces requests to rps per second with the given burst. A
// non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithIdempotencyKeys overrides the generator of Idempotency-Key values.
func WithIdempotencyKeys(fn func() string) Option {
	return func(c *Client) { c.newKey = fn }
}

type idempotencyKeyCtx struct{}

// WithIdempotencyKey returns a context whose CreateApplication requests carry
// key instead of a freshly generated one. Callers retrying a failed create
// pass the same key so the server can drop the duplicate.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

// IdempotencyKey returns the key set with WithIdempotencyKey.
func IdempotencyKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyCtx{}).(string)
	return key, ok && key != ""
}

// Client talks to the applications API.
type Client struct {
	baseURL  *url.URL
	http     HTTPDoer
	token    string
	language string
	limiter  *rate.Limiter
	logger   *log.Logger
	newKey   func() string

	userAgent string
}

// New creates a client for baseURL, e.g. "https://api.example.fi".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend: base url %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logging.New("backend"),
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateApplication stores a new draft and returns it with its id.
func (c *Client) CreateApplication(ctx context.Context, rec Record) (Record, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("backend: encode application: %w", err)
	}
	key, ok := IdempotencyKey(ctx)
	if !ok {
		key = c.newKey()
	}
	headers := http.Header{"Idempotency-Key": {key}}
	return c.doRecord(ctx, http.MethodPost, applicationsPath, bytes.NewReader(body), "application/json", headers)
}

// UpdateApplication replaces the record id with rec (full PUT).
func (c *Client) UpdateApplication(ctx context.Context, id string, rec Record) (Record, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("backend: encode application: %w", err)
	}
	return c.doRecord(ctx, http.MethodPut, applicationPath(id), bytes.NewReader(body), "application/json", nil)
}

// GetApplication fetches the record id.
func (c *Client) GetApplication(ctx context.Context, id string) (Record, error) {
	return c.doRecord(ctx, http.MethodGet, applicationPath(id), nil, "", nil)
}

// DeleteApplication removes the record id.
func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, applicationPath(id), nil, "", nil)
	return err
}

// SetStatus moves the record to status, e.g. StatusReceived on submit.
func (c *Client) SetStatus(ctx context.Context, id, status string) (Record, error) {
	body, err := json.Marshal(Record{"status": status})
	if err != nil {
		return nil, fmt.Errorf("backend: encode status: %w", err)
	}
	return c.doRecord(ctx, http.MethodPatch, applicationPath(id)+"status/", bytes.NewReader(body), "application/json", nil)
}

// UploadAttachment sends one file as multipart form data with the fields
// attachment_type and attachment_file.
func (c *Client) UploadAttachment(ctx context.Context, id string, up Upload) (Record, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("attachment_type", up.Type); err != nil {
		return nil, fmt.Errorf("backend: encode attachment: %w", err)
	}
	part, err := mw.CreateFormFile("attachment_file", up.FileName)
	if err != nil {
		return nil, fmt.Errorf("backend: encode attachment: %w", err)
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return nil, fmt.Errorf("backend: read attachment %s: %w", up.FileName, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("backend: encode attachment: %w", err)
	}
	return c.doRecord(ctx, http.MethodPost, applicationPath(id)+"attachments/", &buf, mw.FormDataContentType(), nil)
}

// DeleteAttachment removes attachment attID from record id.
func (c *Client) DeleteAttachment(ctx context.Context, id, attID string) error {
	p := applicationPath(id) + "attachments/" + url.PathEscape(attID) + "/"
	_, err := c.do(ctx, http.MethodDelete, p, nil, "", nil)
	return err
}

// CurrentUser returns the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (Record, error) {
	return c.doRecord(ctx, http.MethodGet, currentUserPath, nil, "", nil)
}

func applicationPath(id string) string {
	return applicationsPath + url.PathEscape(id) + "/"
}

func (c *Client) doRecord(ctx context.Context, method, path string, body io.Reader, contentType string, headers http.Header) (Record, error) {
	data, err := c.do(ctx, method, path, body, contentType, headers)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Record{}, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("backend: %s %s: decode response: %w", method, path, err)
	}
	return rec, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, headers http.Header) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
		}
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("backend: %s %s: read body: %w", method, path, err)
		}
		return data, nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, c.statusError(method, path, resp.StatusCode, data)
}

func (c *Client) statusError(method, path string, status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthenticated)
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case http.StatusBadRequest:
		var payload any
		if err := json.Unmarshal(body, &payload); err == nil {
			if fe := parseFieldErrors(payload); fe != nil {
				return fe
			}
		}
	}
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}
}

// IsRetryable reports whether err leaves the operation worth retrying by the
// user: transport failures and 5xx responses, not validation or auth errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var fe *FieldErrors
	if errors.As(err, &fe) || errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrNotFound) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled)
}
