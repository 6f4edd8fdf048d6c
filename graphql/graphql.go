package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/internal/envelope"
)

const component = "graphql"

// DataModel identifies the data model whose GraphQL endpoint is called.
type DataModel struct {
	Space      string
	ExternalID string
	Version    string
}

// Validate checks that every identifier is non-empty.
func (m DataModel) Validate() error {
	if m.Space == "" || m.ExternalID == "" || m.Version == "" {
		return errors.InvalidArgument(component, "DataModel",
			"space, externalId and version must not be empty")
	}
	return nil
}

// Endpoint returns the project-relative path of the data model's GraphQL
// endpoint. Identifiers are path-escaped.
func Endpoint(m DataModel) string {
	return fmt.Sprintf("/userapis/spaces/%s/datamodels/%s/versions/%s/graphql",
		url.PathEscape(m.Space), url.PathEscape(m.ExternalID), url.PathEscape(m.Version))
}

// Request is a GraphQL request body.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Validate checks the request syntactically. The document must parse, and
// when it holds several operations OperationName must select one of them.
// The schema is not consulted.
func (r *Request) Validate() error {
	if r.Query == "" {
		return errors.InvalidArgument(component, "Validate", "query must not be empty")
	}
	doc, err := parser.ParseQuery(&ast.Source{Name: "request", Input: r.Query})
	if err != nil {
		return errors.WrapInvalid(err, component, "Validate")
	}
	switch {
	case len(doc.Operations) == 0:
		return errors.InvalidArgument(component, "Validate", "document has no operations")
	case r.OperationName != "":
		if doc.Operations.ForName(r.OperationName) == nil {
			return errors.InvalidArgument(component, "Validate", "unknown operation %q", r.OperationName)
		}
	case len(doc.Operations) > 1:
		return errors.InvalidArgument(component, "Validate",
			"operationName is required when the document has %d operations", len(doc.Operations))
	}
	return nil
}

// Response is a GraphQL response envelope.
type Response struct {
	Data       json.RawMessage
	Errors     gqlerror.List
	Extensions map[string]any
}

// ParseResponse decodes a GraphQL response body. Absent sections stay empty.
func ParseResponse(data []byte) (*Response, error) {
	obj, err := envelope.Parse(data)
	if err != nil {
		return nil, errors.Decode(component, "ParseResponse", err)
	}
	resp := &Response{Data: obj.Raw("data")}
	for _, raw := range obj.Array("errors") {
		var e gqlerror.Error
		if json.Unmarshal(raw, &e) != nil {
			// keep the entry even when its shape is unexpected
			e = gqlerror.Error{Message: string(bytes.TrimSpace(raw))}
		}
		resp.Errors = append(resp.Errors, &e)
	}
	if ext, ok := envelope.DecodeAny(obj.Raw("extensions")).(map[string]any); ok {
		resp.Extensions = ext
	}
	return resp, nil
}

// Err returns the response errors as a single error, or nil.
func (r *Response) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors
}

// Decode unmarshals the data section into v. A response without data fails
// with its errors when it has any.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		if err := r.Err(); err != nil {
			return err
		}
		return errors.Decode(component, "Decode", errors.New("response has no data"))
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return errors.Decode(component, "Decode", err)
	}
	return nil
}
