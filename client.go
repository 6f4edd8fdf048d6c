package dms

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/hugr-lab/dms-go/aggregate"
	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/filter"
	"github.com/hugr-lab/dms-go/graphql"
	"github.com/hugr-lab/dms-go/query"
	"github.com/hugr-lab/dms-go/search"
	"github.com/hugr-lab/dms-go/stream"
	"github.com/hugr-lab/dms-go/transport"
)

// Project-relative endpoint paths.
const (
	PathQuery     = "/models/instances/query"
	PathSync      = "/models/instances/sync"
	PathSearch    = "/models/instances/search"
	PathAggregate = "/models/instances/aggregate"
)

// Client sends assembled requests and parses the responses.
// It is safe for concurrent use; builders are not.
type Client struct {
	transport    transport.Transport
	logger       *slog.Logger
	pollInterval time.Duration
}

// NewClient creates a client.
//
// The function:
//  1. Validates the ClientConfig
//  2. Creates the HTTP transport unless one is supplied
//  3. Registers request metrics when a registerer is configured
//
// Example:
//
//	client, err := dms.NewClient(dms.ClientConfig{
//	    BaseURL: "https://api.example.com",
//	    Project: "plant",
//	    Tokens:  auth.StaticToken(token),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := client.Query(ctx, req)
func NewClient(config ClientConfig) (*Client, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
		if config.LogLevel != nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *config.LogLevel}))
		}
	}

	tr := config.Transport
	if tr == nil {
		metrics, err := transport.NewMetrics(config.MetricsRegisterer)
		if err != nil {
			return nil, fmt.Errorf("%w: metrics: %v", ErrInvalidConfig, err)
		}
		if config.MetricsRegisterer == nil {
			metrics = nil
		}
		tr, err = transport.NewHTTP(transport.HTTPConfig{
			BaseURL:  config.BaseURL,
			Project:  config.Project,
			Client:   config.HTTPClient,
			Tokens:   config.Tokens,
			Logger:   logger,
			Compress: config.CompressRequests,
			Metrics:  metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	logger.Debug("dms client created",
		"base_url", config.BaseURL,
		"project", config.Project,
		"custom_transport", config.Transport != nil,
		"compress_requests", config.CompressRequests,
	)

	return &Client{
		transport:    tr,
		logger:       logger,
		pollInterval: config.SyncPollInterval,
	}, nil
}

// Query runs a query request.
func (c *Client) Query(ctx context.Context, req *query.Request) (*query.Result, error) {
	if req == nil {
		return nil, errors.InvalidArgument("dms", "Query", "request must not be nil")
	}
	c.warnMissingParameters("Query", req.Filters(), req.Parameters)
	data, err := c.post(ctx, PathQuery, "query", req)
	if err != nil {
		return nil, err
	}
	return query.ParseResult(data)
}

// Sync runs one sync request. Use SyncStream to poll continuously.
func (c *Client) Sync(ctx context.Context, req *query.SyncRequest) (*query.Result, error) {
	if req == nil {
		return nil, errors.InvalidArgument("dms", "Sync", "request must not be nil")
	}
	c.warnMissingParameters("Sync", req.Filters(), req.Parameters)
	data, err := c.post(ctx, PathSync, "sync", req)
	if err != nil {
		return nil, err
	}
	return query.ParseResult(data)
}

// Search runs a search request. The request is validated before sending.
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Result, error) {
	if req == nil {
		return nil, errors.InvalidArgument("dms", "Search", "request must not be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Filter != nil {
		c.warnMissingParameters("Search", []filter.Filter{req.Filter}, nil)
	}
	data, err := c.post(ctx, PathSearch, "search", req)
	if err != nil {
		return nil, err
	}
	return search.ParseResult(data)
}

// Aggregate runs an aggregate request. The request is validated before sending.
func (c *Client) Aggregate(ctx context.Context, req *aggregate.Request) (*aggregate.Result, error) {
	if req == nil {
		return nil, errors.InvalidArgument("dms", "Aggregate", "request must not be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Filter != nil {
		c.warnMissingParameters("Aggregate", []filter.Filter{req.Filter}, nil)
	}
	data, err := c.post(ctx, PathAggregate, "aggregate", req)
	if err != nil {
		return nil, err
	}
	return aggregate.ParseResult(data)
}

// GraphQL sends req to the data model's GraphQL endpoint. GraphQL errors in
// a successful response are returned in Response.Errors, not as an error.
func (c *Client) GraphQL(ctx context.Context, model graphql.DataModel, req *graphql.Request) (*graphql.Response, error) {
	if req == nil {
		return nil, errors.InvalidArgument("dms", "GraphQL", "request must not be nil")
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	data, err := c.post(ctx, graphql.Endpoint(model), "graphql", req)
	if err != nil {
		return nil, err
	}
	return graphql.ParseResponse(data)
}

// SyncStream polls req continuously. See stream.Batches for the contract.
func (c *Client) SyncStream(ctx context.Context, req *query.SyncRequest) iter.Seq2[stream.Batch, error] {
	return stream.Batches(ctx, c.Sync, req, stream.Config{
		Interval: c.pollInterval,
		Logger:   c.logger,
	})
}

// Transport returns the transport the client sends through.
func (c *Client) Transport() transport.Transport {
	return c.transport
}

func (c *Client) post(ctx context.Context, path, endpoint string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WrapInvalid(err, "dms", endpoint)
	}
	req := transport.Request{Path: path, Endpoint: endpoint, Body: data}
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := transport.Check(req, resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// warnMissingParameters logs parameters referenced by filters without a value.
// Only names are logged, never values.
func (c *Client) warnMissingParameters(op string, filters []filter.Filter, params map[string]any) {
	if missing := query.MissingParameters(filters, params); len(missing) > 0 {
		c.logger.Warn("Filter references parameters without values",
			"operation", op,
			"parameters", missing,
		)
	}
}
