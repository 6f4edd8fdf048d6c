package graphql

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hugr-lab/dms-go/errors"
)

func TestEndpoint(t *testing.T) {
	m := DataModel{Space: "plant", ExternalID: "Plant Model", Version: "2"}
	require.NoError(t, m.Validate())
	assert.Equal(t, "/userapis/spaces/plant/datamodels/Plant%20Model/versions/2/graphql", Endpoint(m))

	assert.True(t, errors.IsInvalidArgument(DataModel{Space: "plant"}.Validate()))
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{"single operation", Request{Query: `query { listPump { items { name } } }`}, ""},
		{"shorthand", Request{Query: `{ listPump { items { name } } }`}, ""},
		{"named selection", Request{Query: `query A { a } query B { b }`, OperationName: "B"}, ""},
		{"empty", Request{}, "query must not be empty"},
		{"syntax error", Request{Query: `query { listPump { `}, "graphql.Validate"},
		{"ambiguous", Request{Query: `query A { a } query B { b }`}, "operationName is required"},
		{"unknown operation", Request{Query: `query A { a }`, OperationName: "C"}, `unknown operation "C"`},
		{"fragment only", Request{Query: `fragment F on Pump { name }`}, "no operations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRequestJSON(t *testing.T) {
	data, err := json.Marshal(Request{Query: "{ a }"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"{ a }"}`, string(data))

	data, err = json.Marshal(Request{Query: "query Q($n: Int) { a(n: $n) }", Variables: map[string]any{"n": 1}, OperationName: "Q"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"query Q($n: Int) { a(n: $n) }","variables":{"n":1},"operationName":"Q"}`, string(data))
}

func TestParseResponse(t *testing.T) {
	resp, err := ParseResponse([]byte(`{
		"data": {"listPump": {"items": [{"name": "P-1"}]}},
		"extensions": {"cost": 3}
	}`))
	require.NoError(t, err)
	assert.NoError(t, resp.Err())
	assert.Equal(t, json.Number("3"), resp.Extensions["cost"])

	var out struct {
		ListPump struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		} `json:"listPump"`
	}
	require.NoError(t, resp.Decode(&out))
	require.Len(t, out.ListPump.Items, 1)
	assert.Equal(t, "P-1", out.ListPump.Items[0].Name)
}

func TestParseResponseErrors(t *testing.T) {
	resp, err := ParseResponse([]byte(`{
		"errors": [
			{"message": "Cannot query field \"foo\"", "locations": [{"line": 1, "column": 3}], "path": ["listPump", 0, "foo"],
			 "extensions": {"code": "GRAPHQL_VALIDATION_FAILED"}},
			"bare string"
		]
	}`))
	require.NoError(t, err)
	require.Len(t, resp.Errors, 2)

	first := resp.Errors[0]
	assert.Equal(t, `Cannot query field "foo"`, first.Message)
	assert.Equal(t, []gqlerror.Location{{Line: 1, Column: 3}}, first.Locations)
	assert.Equal(t, "GRAPHQL_VALIDATION_FAILED", first.Extensions["code"])
	assert.Len(t, first.Path, 3)

	assert.Equal(t, `"bare string"`, resp.Errors[1].Message)

	require.Error(t, resp.Err())
	var list gqlerror.List
	assert.ErrorAs(t, resp.Err(), &list)

	var out map[string]any
	assert.Equal(t, resp.Err(), resp.Decode(&out))
}

func TestParseResponseEmpty(t *testing.T) {
	resp, err := ParseResponse(nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Data)
	assert.ErrorIs(t, resp.Decode(&struct{}{}), errors.ErrDecode)

	_, err = ParseResponse([]byte(`[]`))
	assert.ErrorIs(t, err, errors.ErrDecode)
}
