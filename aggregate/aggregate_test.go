package aggregate

import (
	"encoding/json"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/filter"
)

var pump = filter.View("plant", "Pump", "v1")

func TestBuild(t *testing.T) {
	req, err := NewBuilder(pump).
		Avg("flow").
		Histogram("pressure", 10).
		GroupBy("site").
		FilterFrom(filter.NewBuilder().Equals(pump.Property("status"), "running")).
		InstanceType(InstanceTypeNode).
		Limit(50).
		Build()
	require.NoError(t, err)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"view": {"type":"view","space":"plant","externalId":"Pump","version":"v1"},
		"aggregates": [
			{"property":"flow","aggregate":"avg"},
			{"property":"pressure","aggregate":"histogram","interval":10}
		],
		"groupBy": ["site"],
		"filter": {"equals":{"property":["plant","Pump/v1","status"],"value":"running"}},
		"instanceType": "node",
		"limit": 50
	}`, string(data))
}

func TestBuildOperationCount(t *testing.T) {
	_, err := NewBuilder(pump).Build()
	assert.True(t, errors.IsInvalidArgument(err))

	b := NewBuilder(pump)
	for i := 0; i < 5; i++ {
		b.Count("externalId")
	}
	_, err = b.Build()
	assert.NoError(t, err)

	b.Sum("flow")
	_, err = b.Build()
	assert.ErrorContains(t, err, "aggregates must have at most 5 entries")

	_, err = NewBuilder(pump).
		Count("a").Count("b").Count("c").Count("d").
		Operation(Operation{Aggregate: Max}).
		Build()
	assert.ErrorContains(t, err, "property is required")
}

func TestBuildLimits(t *testing.T) {
	for _, limit := range []int{1, 10000} {
		_, err := NewBuilder(pump).Count("x").Limit(limit).Build()
		assert.NoError(t, err, "limit %d", limit)
	}
	for _, limit := range []int{0, 10001} {
		_, err := NewBuilder(pump).Count("x").Limit(limit).Build()
		assert.True(t, errors.IsInvalidArgument(err), "limit %d", limit)
	}
}

func TestBuildOperationValidation(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
	}{
		{"missing aggregate", Operation{Property: "flow"}},
		{"unknown aggregate", Operation{Property: "flow", Aggregate: "median"}},
		{"histogram without interval", Operation{Property: "flow", Aggregate: Histogram}},
		{"interval on avg", Operation{Property: "flow", Aggregate: Avg, Interval: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(pump).Operation(tt.op).Build()
			assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
		})
	}

	_, err := NewBuilder(filter.ViewRef{}).Count("x").Build()
	assert.True(t, errors.IsInvalidArgument(err))
}

const sampleResponse = `{
	"items": [
		{
			"instanceType": "node",
			"group": {"site": "north"},
			"aggregates": [
				{"aggregate": "avg", "property": "flow", "value": 12.5},
				{"aggregate": "histogram", "property": "pressure", "interval": 10,
				 "buckets": [{"start": 0, "count": 3}, {"start": 10, "count": 1}]}
			]
		},
		{
			"instanceType": "node",
			"group": {"site": "south"},
			"aggregates": [
				{"aggregate": "avg", "property": "flow"}
			]
		}
	]
}`

func TestParseResult(t *testing.T) {
	res, err := ParseResult([]byte(sampleResponse))
	require.NoError(t, err)
	require.Len(t, res.Items, 2)

	north := res.Items[0]
	assert.Equal(t, "north", north.Group["site"])
	avg, ok := north.Get(Avg, "flow")
	require.True(t, ok)
	require.NotNil(t, avg.Value)
	assert.Equal(t, 12.5, *avg.Value)

	hist, ok := north.Get(Histogram, "pressure")
	require.True(t, ok)
	assert.Nil(t, hist.Value)
	assert.Equal(t, 10.0, hist.Interval)
	assert.Equal(t, []Bucket{{Start: 0, Count: 3}, {Start: 10, Count: 1}}, hist.Buckets)

	south, ok := res.Items[1].Get(Avg, "flow")
	require.True(t, ok)
	assert.Nil(t, south.Value)

	_, ok = north.Get(Sum, "flow")
	assert.False(t, ok)
}

func TestParseResultDefensive(t *testing.T) {
	res, err := ParseResult([]byte(`{"items":[{}]}`))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Empty(t, res.Items[0].Group)
	assert.Empty(t, res.Items[0].Aggregates)

	_, err = ParseResult([]byte(`{"items":`))
	assert.ErrorIs(t, err, errors.ErrDecode)
}

func TestRecordBatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	res, err := ParseResult([]byte(sampleResponse))
	require.NoError(t, err)

	rec, err := res.RecordBatch(mem)
	require.NoError(t, err)
	defer rec.Release()

	require.Equal(t, int64(4), rec.NumCols())
	assert.Equal(t, "site", rec.ColumnName(1))
	assert.Equal(t, "avg(flow)", rec.ColumnName(2))
	assert.Equal(t, "histogram(pressure)", rec.ColumnName(3))

	avg := rec.Column(2).(*array.Float64)
	assert.Equal(t, 12.5, avg.Value(0))
	assert.True(t, avg.IsNull(1))

	hist := rec.Column(3).(*array.String)
	assert.JSONEq(t, `[{"start":0,"count":3},{"start":10,"count":1}]`, hist.Value(0))
	assert.True(t, hist.IsNull(1))
}
