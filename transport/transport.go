package transport

import (
	"context"
	"net/http"

	"github.com/hugr-lab/dms-go/errors"
)

// Request is one call to the service.
type Request struct {
	// Method is the HTTP method. POST when empty.
	Method string

	// Path is relative to the project root, e.g. "/models/instances/query".
	Path string

	// Endpoint is a low-cardinality name for metrics and logs, e.g. "query".
	// Path is used when empty.
	Endpoint string

	// Body is the JSON request body.
	Body []byte
}

// Response is the raw outcome of a call. Non-success statuses are returned
// as responses, not errors; see Check.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport sends one prepared request and returns one response.
// Implementations MUST be goroutine-safe. Errors are reserved for failures
// to obtain a response at all (network, auth, cancellation).
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Func adapts a function to Transport.
//
// Example:
//
//	fake := transport.Func(func(ctx context.Context, req transport.Request) (*transport.Response, error) {
//	    return &transport.Response{Status: 200, Body: []byte(`{"items":{}}`)}, nil
//	})
type Func func(ctx context.Context, req Request) (*Response, error)

// Do calls f.
func (f Func) Do(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// method returns the request method, defaulting to POST.
func (r Request) method() string {
	if r.Method == "" {
		return http.MethodPost
	}
	return r.Method
}

// endpoint returns the metrics label for the request.
func (r Request) endpoint() string {
	if r.Endpoint == "" {
		return r.Path
	}
	return r.Endpoint
}

// Check converts a non-2xx response into a *errors.RequestError carrying the
// status and raw body. The body is not interpreted.
func Check(req Request, resp *Response) error {
	if resp == nil {
		return &errors.RequestError{Method: req.method(), Path: req.Path}
	}
	if resp.Status >= 200 && resp.Status < 300 {
		return nil
	}
	return &errors.RequestError{
		Method: req.method(),
		Path:   req.Path,
		Status: resp.Status,
		Body:   resp.Body,
	}
}
