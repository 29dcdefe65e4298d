package backoffice

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/nomina/internal/metrics"
	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

const maxBodySize = 1 << 20

// Config holds the settings of the backend HTTP client.
type Config struct {
	BaseURL       string        // BaseURL is the scheme://host:port of the backend
	Timeout       time.Duration // Timeout bounds a single request
	IDParam       string        // IDParam is the query parameter carrying the record identifier
	DatabaseParam string        // DatabaseParam is the query parameter carrying the database selector
}

// Request describes a single call to the backend.
type Request struct {
	Method     string
	Path       string
	ID         string     // attached as the identifier parameter when non-empty
	Database   string     // attached as the database selector parameter
	Query      url.Values // extra query parameters; ID and Database override same-named keys
	Body       any        // encoded as JSON when non-nil
	AllowEmpty bool       // accept a missing or null success body, leaving out untouched
}

// Requester is the contract record controllers depend on.
type Requester interface {
	Do(ctx context.Context, req Request, out any) error
}

// Client performs JSON requests against a fixed backend base URL.
type Client struct {
	baseURL       *url.URL
	http          *http.Client
	idParam       string
	databaseParam string
	log           *slog.Logger
	metrics       *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// NewClient creates a backend client from cfg.
func NewClient(cfg Config, log *slog.Logger, appMetrics *metrics.Metrics, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse backend base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Newf("backend base url %q must be absolute", cfg.BaseURL)
	}

	client := &Client{
		baseURL:       base,
		http:          &http.Client{Timeout: cfg.Timeout},
		idParam:       cfg.IDParam,
		databaseParam: cfg.DatabaseParam,
		log:           log,
		metrics:       appMetrics,
	}
	if client.idParam == "" {
		client.idParam = "id"
	}
	if client.databaseParam == "" {
		client.databaseParam = "DatabaseContext"
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Do sends req and decodes a successful response body into out (skipped when out is nil).
// Non-2xx answers yield a *StatusError marked ErrStatus, failures without a response are
// marked ErrTransport and undecodable success bodies are marked ErrDecode.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	startTime := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req, "transport", startTime)
		c.log.WarnContext(ctx, "Backend request failed", "method", req.Method, "path", req.Path, "error", err)
		return errors.Mark(errors.Wrapf(err, "%s %s", req.Method, req.Path), ErrTransport)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.observe(req, strconv.Itoa(resp.StatusCode), startTime)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to read response body"), ErrTransport)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := newStatusError(resp.StatusCode, body)
		c.log.WarnContext(ctx, "Backend rejected request",
			"method", req.Method, "path", req.Path, "status", resp.StatusCode, "error", statusErr)
		return statusErr
	}

	if out == nil {
		return nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if req.AllowEmpty {
			return nil
		}
		return errors.Mark(errors.Newf("%s %s: empty response body", req.Method, req.Path), ErrDecode)
	}
	if err = jsoniter.Unmarshal(trimmed, out); err != nil {
		return errors.Mark(errors.Wrapf(err, "%s %s: failed to decode response", req.Method, req.Path), ErrDecode)
	}

	return nil
}

// Ping checks that the backend answers HTTP at all; any status code counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL.String(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to build ping request")
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "backend unreachable"), ErrTransport)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL.JoinPath(req.Path)

	query := url.Values{}
	for key, values := range req.Query {
		query[key] = append([]string(nil), values...)
	}
	if req.ID != "" {
		query.Set(c.idParam, req.ID)
	}
	query.Set(c.databaseParam, req.Database)
	target.RawQuery = query.Encode()

	var body io.Reader
	if req.Body != nil {
		payload, err := jsoniter.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

func (c *Client) observe(req Request, code string, startTime time.Time) {
	c.metrics.BackendDuration.WithLabelValues(req.Method, req.Path, code).Observe(time.Since(startTime).Seconds())
}
