package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/common"
	"github.com/euronode/euronode/internal/logging"
)

const maxResponseBytes = 8 << 20

// HTTPClient talks to the backend over HTTP. It is safe for concurrent use.
type HTTPClient struct {
	base    *url.URL
	http    *http.Client
	log     logging.Logger
	strict  bool
	timeout time.Duration
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithStrictDecoding makes unexpected response shapes fail loudly instead of
// degrading to empty lists.
func WithStrictDecoding(strict bool) Option {
	return func(c *HTTPClient) { c.strict = strict }
}

// WithTimeout bounds every request. Zero means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery, u.Fragment = "", ""

	c := &HTTPClient{base: u, http: http.DefaultClient, log: logging.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns a copy of the API root, always ending in a slash.
func (c *HTTPClient) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (models.Session, error) {
	var s models.Session
	if err := c.postJSON(ctx, "login/", creds, &s); err != nil {
		return models.Session{}, err
	}
	if err := s.Validate(); err != nil {
		return models.Session{}, fmt.Errorf("%w: login: %v", ErrMalformedResponse, err)
	}
	return s, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, "signup/", reg, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) ListModels(ctx context.Context, centralAuthID int64) ([]models.Model, error) {
	var out []models.Model
	q := url.Values{"user_id": {strconv.FormatInt(centralAuthID, 10)}}
	if err := c.getJSON(ctx, "central-models/", q, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *HTTPClient) RunningIterations(ctx context.Context, centralAuthID int64) ([]models.Model, error) {
	var out []models.Model
	q := url.Values{"user_id": {strconv.FormatInt(centralAuthID, 10)}}
	if err := c.getJSON(ctx, "central-models/running/", q, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// StartIteration uploads a new model version as multipart/form-data.
func (c *HTTPClient) StartIteration(ctx context.Context, it models.StartIteration, fileName string, file io.Reader) (models.Model, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := [][2]string{
		{"central_auth", strconv.FormatInt(it.CentralAuthID, 10)},
		{"model_name", it.ModelName},
		{"dataset_domain", it.DatasetDomain},
		{"version", strconv.Itoa(it.Version)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return models.Model{}, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	part, err := mw.CreateFormFile("model_file", filepath.Base(fileName))
	if err != nil {
		return models.Model{}, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return models.Model{}, fmt.Errorf("read model file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.Model{}, fmt.Errorf("close multipart: %w", err)
	}

	data, err := c.send(ctx, http.MethodPost, "central-models/start/", nil, mw.FormDataContentType(), &body)
	if err != nil {
		return models.Model{}, err
	}

	var m models.Model
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if err := decode(data, &m); err != nil {
		return models.Model{}, err
	}
	return m, nil
}

func (c *HTTPClient) ClientDashboard(ctx context.Context, email string) (models.DashboardStats, error) {
	var st models.DashboardStats
	err := c.getJSON(ctx, "client-dashboard-data/"+url.PathEscape(email)+"/", nil, &st)
	return st, err
}

func (c *HTTPClient) SearchClients(ctx context.Context, query string) ([]models.ClientEntry, error) {
	var out []models.ClientEntry
	if err := c.getJSON(ctx, "filter_client", url.Values{"search": {query}}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *HTTPClient) ListAssignments(ctx context.Context, email string) ([]models.Assignment, error) {
	data, err := c.send(ctx, http.MethodGet, "fetch_assign/"+url.PathEscape(email)+"/", nil, "", nil)
	if err != nil {
		return nil, err
	}

	var out []models.Assignment
	if err := json.Unmarshal(data, &out); err != nil {
		if c.strict {
			return nil, fmt.Errorf("%w: assignment list: %v", ErrMalformedResponse, err)
		}
		c.log.Warn(ctx, "assignment list has unexpected shape, showing none", "email", email, "error", err)
		return []models.Assignment{}, nil
	}
	return nonNil(out), nil
}

func (c *HTTPClient) AssignClient(ctx context.Context, req models.AssignRequest) (AssignResult, error) {
	var res AssignResult
	err := c.postJSON(ctx, "assign_client/", req, &res)
	return res, err
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.send(ctx, http.MethodGet, path, query, "", nil)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	data, err := c.send(ctx, http.MethodPost, path, nil, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return decode(data, out)
}

// send performs one request and returns the body of a 2xx response.
func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) ([]byte, error) {
	target, err := c.endpoint(path, query)
	if err != nil {
		return nil, err
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, reqID)

	log := c.log.With("request_id", reqID, "method", method, "path", path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug(ctx, "api request failed", "error", err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	log.Debug(ctx, "api request", "status", resp.StatusCode, "duration", time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) (string, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	u := c.base.ResolveReference(rel)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
