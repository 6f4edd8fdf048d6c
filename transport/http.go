package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/hugr-lab/dms-go/auth"
	"github.com/hugr-lab/dms-go/internal/requestid"
)

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// BaseURL is the service root, e.g. "https://api.example.com".
	// REQUIRED.
	BaseURL string

	// Project is the project the requests are scoped to.
	// REQUIRED.
	Project string

	// Client sends the requests. It is owned by the caller and never closed.
	// OPTIONAL: http.DefaultClient when nil.
	Client *http.Client

	// Tokens supplies the bearer token per request.
	// OPTIONAL: no Authorization header when nil.
	Tokens auth.TokenSource

	// Logger receives one debug record per request.
	// OPTIONAL: slog.Default() when nil.
	Logger *slog.Logger

	// Compress gzips request bodies.
	// OPTIONAL: default false.
	Compress bool

	// Metrics records request counts and latencies.
	// OPTIONAL: nothing is recorded when nil.
	Metrics *Metrics

	// UserAgent is sent as the User-Agent header.
	// OPTIONAL.
	UserAgent string
}

// HTTP is the default Transport. It is safe for concurrent use.
type HTTP struct {
	root     string
	client   *http.Client
	tokens   auth.TokenSource
	logger   *slog.Logger
	compress bool
	metrics  *Metrics
	agent    string
}

// NewHTTP creates an HTTP transport.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Project == "" {
		return nil, fmt.Errorf("project is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTP{
		root:     strings.TrimRight(cfg.BaseURL, "/") + "/api/v1/projects/" + url.PathEscape(cfg.Project),
		client:   client,
		tokens:   cfg.Tokens,
		logger:   logger,
		compress: cfg.Compress,
		metrics:  cfg.Metrics,
		agent:    cfg.UserAgent,
	}, nil
}

// URL returns the absolute URL for a project-relative path.
func (t *HTTP) URL(path string) string {
	return t.root + path
}

// Do sends the request. Non-2xx statuses are returned as responses.
func (t *HTTP) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, id := requestid.Ensure(ctx)
	method := req.method()
	start := time.Now()

	resp, err := t.do(ctx, method, id, req)

	elapsed := time.Since(start)
	status := 0
	if resp != nil {
		status = resp.Status
	}
	t.metrics.observe(method, req.endpoint(), status, elapsed)
	if err != nil {
		t.logger.Debug("Request failed",
			"method", method,
			"path", req.Path,
			"request_id", id,
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}
	t.logger.Debug("Request completed",
		"method", method,
		"path", req.Path,
		"status", status,
		"request_id", id,
		"duration", elapsed,
	)
	return resp, nil
}

func (t *HTTP) do(ctx context.Context, method, id string, req Request) (*Response, error) {
	body, err := t.encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	hreq, err := http.NewRequestWithContext(ctx, method, t.URL(req.Path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("Accept-Encoding", "gzip")
	if t.compress && len(req.Body) > 0 {
		hreq.Header.Set("Content-Encoding", "gzip")
	}
	if t.agent != "" {
		hreq.Header.Set("User-Agent", t.agent)
	}
	requestid.Set(hreq.Header, id)
	if err := auth.Apply(ctx, t.tokens, hreq); err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}

	hresp, err := t.client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer hresp.Body.Close()

	data, err := readBody(hresp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{Status: hresp.StatusCode, Header: hresp.Header, Body: data}, nil
}

func (t *HTTP) encodeBody(body []byte) ([]byte, error) {
	if !t.compress || len(body) == 0 {
		return body, nil
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, fmt.Errorf("failed to compress request body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress request body: %w", err)
	}
	return buf.Bytes(), nil
}

// readBody reads the response body, inflating it when the server gzipped it.
func readBody(resp *http.Response) ([]byte, error) {
	if !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return io.ReadAll(resp.Body)
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		if err == io.EOF {
			return []byte{}, nil
		}
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
