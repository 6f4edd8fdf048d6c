package dms

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hugr-lab/dms-go/auth"
	"github.com/hugr-lab/dms-go/internal/validate"
	"github.com/hugr-lab/dms-go/transport"
)

// ClientConfig contains configuration for a dms Client.
type ClientConfig struct {
	// BaseURL is the service root (e.g., "https://api.example.com").
	// REQUIRED unless Transport is set: MUST be an absolute URL.
	BaseURL string `json:"baseUrl" validate:"required_without=Transport,omitempty,url"`

	// Project scopes every request.
	// REQUIRED unless Transport is set.
	Project string `json:"project" validate:"required_without=Transport"`

	// Tokens supplies the bearer token for each request.
	// OPTIONAL: If nil, no Authorization header is sent.
	Tokens auth.TokenSource `json:"-" validate:"-"`

	// HTTPClient sends requests. Owned by the caller; the client never closes it.
	// OPTIONAL: Uses http.DefaultClient if nil.
	HTTPClient *http.Client `json:"-" validate:"-"`

	// Transport replaces the HTTP transport entirely (tests, custom stacks).
	// OPTIONAL: If set, BaseURL, Project, Tokens, HTTPClient, CompressRequests
	// and MetricsRegisterer are ignored.
	Transport transport.Transport `json:"-" validate:"-"`

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger `json:"-" validate:"-"`

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses the Logger as is.
	// Valid values: slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level `json:"-" validate:"-"`

	// CompressRequests gzips request bodies.
	// OPTIONAL: default false.
	CompressRequests bool `json:"compressRequests"`

	// MetricsRegisterer receives the client's request metrics.
	// OPTIONAL: If nil, no metrics are collected.
	MetricsRegisterer prometheus.Registerer `json:"-" validate:"-"`

	// SyncPollInterval is the idle wait of SyncStream after a batch with no
	// more data.
	// OPTIONAL: If 0, uses stream.DefaultPollInterval. MUST NOT be negative.
	SyncPollInterval time.Duration `json:"syncPollInterval" validate:"min=0"`
}

// Standard errors returned by the dms package.
var (
	// ErrInvalidConfig indicates ClientConfig validation failed.
	ErrInvalidConfig = errors.New("invalid client config")
)

// Environment variables read by LoadConfigFromEnv.
const (
	EnvBaseURL          = "DMS_BASE_URL"
	EnvProject          = "DMS_PROJECT"
	EnvToken            = "DMS_TOKEN"
	EnvSyncPollInterval = "DMS_SYNC_POLL_INTERVAL"
	EnvCompressRequests = "DMS_COMPRESS_REQUESTS"
)

// LoadConfigFromEnv builds a ClientConfig from environment variables.
// When envfile is not empty it is read first with godotenv; variables already
// set in the process environment take precedence over the file. The process
// environment itself is not modified.
//
// A non-empty DMS_TOKEN becomes a static token source.
// DMS_SYNC_POLL_INTERVAL uses time.ParseDuration syntax ("30s").
func LoadConfigFromEnv(envfile string) (ClientConfig, error) {
	file := map[string]string{}
	if envfile != "" {
		vals, err := godotenv.Read(envfile)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidConfig, envfile, err)
		}
		file = vals
	}
	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return file[key]
	}

	cfg := ClientConfig{
		BaseURL: get(EnvBaseURL),
		Project: get(EnvProject),
	}
	if token := get(EnvToken); token != "" {
		cfg.Tokens = auth.StaticToken(token)
	}
	if v := get(EnvSyncPollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvSyncPollInterval, err)
		}
		cfg.SyncPollInterval = d
	}
	if v := get(EnvCompressRequests); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvCompressRequests, err)
		}
		cfg.CompressRequests = b
	}
	return cfg, nil
}

// validateConfig checks that required ClientConfig fields are valid.
func validateConfig(config ClientConfig) error {
	return validate.Struct("dms", "ClientConfig", config)
}
