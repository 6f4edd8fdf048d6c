package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/dms-go/errors"
)

var pump = View("plant", "Pump", "v1")

func mustJSON(t *testing.T, f Filter) string {
	t.Helper()
	data, err := json.Marshal(f)
	require.NoError(t, err)
	return string(data)
}

func TestBuilderEquals(t *testing.T) {
	paths := []PropertyPath{
		{"plant", "Pump/v1", "name"},
		Property("my-space", "Asset", "2", "tag"),
		pump.Property("status"),
	}
	values := []any{"running", 42, 3.5, true, int64(-7)}

	for _, p := range paths {
		for _, v := range values {
			f, err := NewBuilder().Equals(p, v).Build()
			require.NoError(t, err)

			want, err := json.Marshal(map[string]any{
				"equals": map[string]any{"property": []string(p), "value": v},
			})
			require.NoError(t, err)
			assert.JSONEq(t, string(want), mustJSON(t, f))
		}
	}
}

func TestBuilderEqualsProperty(t *testing.T) {
	f, err := NewBuilder().EqualsProperty(pump, "status", "idle").Build()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"equals":{"property":["plant","Pump/v1","status"],"value":"idle"}}`,
		mustJSON(t, f))

	_, err = NewBuilder().EqualsProperty(ViewRef{Space: "plant"}, "status", "idle").Build()
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestBuilderEqualsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		path  PropertyPath
		value any
	}{
		{"nil value", pump.Property("status"), nil},
		{"short path", PropertyPath{"plant", "status"}, "x"},
		{"long path", PropertyPath{"a", "b", "c", "d"}, "x"},
		{"empty segment", PropertyPath{"plant", "", "status"}, "x"},
		{"empty path", nil, "x"},
		{"unsupported type", pump.Property("status"), []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder().Equals(tt.path, tt.value)
			assert.True(t, errors.IsInvalidArgument(b.Err()), "error recorded at the failing call")
			_, err := b.Build()
			assert.True(t, errors.IsInvalidArgument(err))
		})
	}
}

func TestBuilderRange(t *testing.T) {
	_, err := NewBuilder().Range(pump.Property("pressure"), Bounds{}).Build()
	assert.True(t, errors.IsInvalidArgument(err))

	f, err := NewBuilder().Range(pump.Property("pressure"), Bounds{GTE: 10, LTE: 100}).Build()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"range":{"property":["plant","Pump/v1","pressure"],"gte":10,"lte":100}}`,
		mustJSON(t, f))

	var decoded map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, f)), &decoded))
	assert.Len(t, decoded["range"], 3)
	assert.NotContains(t, decoded["range"], "gt")
	assert.NotContains(t, decoded["range"], "lt")

	p, err := Parameter("low")
	require.NoError(t, err)
	f, err = NewBuilder().Range(pump.Property("pressure"), Bounds{GT: p, LT: 5.5}).Build()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"range":{"property":["plant","Pump/v1","pressure"],"gt":{"parameter":"low"},"lt":5.5}}`,
		mustJSON(t, f))
}

func TestBuilderCollections(t *testing.T) {
	path := pump.Property("tags")

	f, err := NewBuilder().In(path, "a", "b").Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"in":{"property":["plant","Pump/v1","tags"],"values":["a","b"]}}`, mustJSON(t, f))

	f, err = NewBuilder().ContainsAny(path, "a").Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"containsAny":{"property":["plant","Pump/v1","tags"],"values":["a"]}}`, mustJSON(t, f))

	f, err = NewBuilder().ContainsAll(path, "a", 1).Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"containsAll":{"property":["plant","Pump/v1","tags"],"values":["a",1]}}`, mustJSON(t, f))

	for name, b := range map[string]*Builder{
		"in":          NewBuilder().In(path),
		"containsAny": NewBuilder().ContainsAny(path),
		"containsAll": NewBuilder().ContainsAll(path),
		"nil element": NewBuilder().In(path, "a", nil),
	} {
		_, err := b.Build()
		assert.True(t, errors.IsInvalidArgument(err), name)
	}
}

func TestBuilderPrefixExists(t *testing.T) {
	f, err := NewBuilder().Prefix(pump.Property("name"), "P-").Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"prefix":{"property":["plant","Pump/v1","name"],"value":"P-"}}`, mustJSON(t, f))

	f, err = NewBuilder().Exists(pump.Property("name")).Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":{"property":["plant","Pump/v1","name"]}}`, mustJSON(t, f))

	_, err = NewBuilder().Prefix(PropertyPath{"x"}, "P-").Build()
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = NewBuilder().Exists(PropertyPath{"", "a", "b"}).Build()
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestBuilderHasData(t *testing.T) {
	_, err := NewBuilder().HasData().Build()
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = NewBuilder().HasData(ViewRef{Space: "plant", ExternalID: "Pump"}).Build()
	assert.True(t, errors.IsInvalidArgument(err))

	valve := View("plant", "Valve", "v2")
	f, err := NewBuilder().HasData(pump, valve, pump).Build()
	require.NoError(t, err)

	hd, ok := f.(HasData)
	require.True(t, ok)
	assert.Equal(t, []ViewRef{pump, valve, pump}, hd.Views)
	assert.JSONEq(t, `{"hasData":[
		{"type":"view","space":"plant","externalId":"Pump","version":"v1"},
		{"type":"view","space":"plant","externalId":"Valve","version":"v2"},
		{"type":"view","space":"plant","externalId":"Pump","version":"v1"}
	]}`, mustJSON(t, f))
}

func TestBuilderAndVariadic(t *testing.T) {
	a := NewBuilder().Equals(pump.Property("status"), "running")
	b := NewBuilder().Exists(pump.Property("name"))

	af, _ := a.Build()
	bf, _ := b.Build()

	f, err := NewBuilder().And(a, b).Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"and":[`+mustJSON(t, af)+`,`+mustJSON(t, bf)+`]}`, mustJSON(t, f))

	// Order is preserved.
	f, err = NewBuilder().And(b, a).Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"and":[`+mustJSON(t, bf)+`,`+mustJSON(t, af)+`]}`, mustJSON(t, f))

	// The variadic form replaces the current filter instead of including it.
	f, err = NewBuilder().MatchAll().And(a, b).Build()
	require.NoError(t, err)
	assert.Equal(t, And{Filters: []Filter{af, bf}}, f)

	_, err = NewBuilder().And().Build()
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestBuilderAndChain(t *testing.T) {
	other := NewBuilder().Equals(pump.Property("status"), "running")
	of, _ := other.Build()

	// Empty builder adopts other's filter without wrapping.
	f, err := NewBuilder().And(other).Build()
	require.NoError(t, err)
	assert.Equal(t, of, f)
	assert.JSONEq(t, mustJSON(t, of), mustJSON(t, f))

	// Non-empty builder wraps current and other.
	current := NewBuilder().Exists(pump.Property("name"))
	cf, _ := current.Build()
	f, err = current.And(other).Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"and":[`+mustJSON(t, cf)+`,`+mustJSON(t, of)+`]}`, mustJSON(t, f))

	// Progressive narrowing nests to the left.
	third := NewBuilder().Prefix(pump.Property("name"), "P")
	tf, _ := third.Build()
	f, err = NewBuilder().And(current).And(third).Build()
	require.NoError(t, err)
	assert.Equal(t, And{Filters: []Filter{f.(And).Filters[0], tf}}, f)

	// An empty operand propagates its Build error.
	_, err = NewBuilder().And(NewBuilder()).Build()
	assert.True(t, errors.IsInvalidState(err))
}

func TestBuilderOr(t *testing.T) {
	a := NewBuilder().Equals(pump.Property("status"), "running")
	b := NewBuilder().Equals(pump.Property("status"), "idle")

	f, err := NewBuilder().Or(a, b).Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"or":[
		{"equals":{"property":["plant","Pump/v1","status"],"value":"running"}},
		{"equals":{"property":["plant","Pump/v1","status"],"value":"idle"}}
	]}`, mustJSON(t, f))

	_, err = NewBuilder().Or(a).Build()
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = NewBuilder().Or().Build()
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = NewBuilder().Or(a, nil).Build()
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestBuilderNot(t *testing.T) {
	f, err := NewBuilder().Not(NewBuilder().Exists(pump.Property("name"))).Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"not":{"exists":{"property":["plant","Pump/v1","name"]}}}`, mustJSON(t, f))

	_, err = NewBuilder().Not(NewBuilder()).Build()
	assert.True(t, errors.IsInvalidState(err))
}

func TestBuilderNested(t *testing.T) {
	inner := NewBuilder().Equals(View("plant", "Site", "v1").Property("country"), "NO")
	f, err := NewBuilder().Nested(pump.Property("site"), inner).Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"nested":{
		"scope":["plant","Pump/v1","site"],
		"filter":{"equals":{"property":["plant","Site/v1","country"],"value":"NO"}}
	}}`, mustJSON(t, f))

	_, err = NewBuilder().Nested(PropertyPath{"plant"}, inner).Build()
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = NewBuilder().Nested(pump.Property("site"), NewBuilder()).Build()
	assert.True(t, errors.IsInvalidState(err))
}

func TestBuilderMatchAll(t *testing.T) {
	f, err := NewBuilder().MatchAll().Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"matchAll":{}}`, mustJSON(t, f))
}

func TestBuilderOverwrites(t *testing.T) {
	f, err := NewBuilder().
		Equals(pump.Property("status"), "running").
		Exists(pump.Property("name")).
		Build()
	require.NoError(t, err)
	assert.Equal(t, KindExists, f.Kind())
}

func TestBuilderStickyError(t *testing.T) {
	b := NewBuilder().Equals(pump.Property("status"), nil)
	first := b.Err()
	require.Error(t, first)

	// Later valid calls do not clear or replace the first error.
	b.MatchAll().HasData()
	assert.Same(t, first, b.Err())
	assert.True(t, b.IsEmpty())
}

func TestBuilderBuildEmpty(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.True(t, errors.IsInvalidState(err))

	f, err := NewBuilder().BuildOrNil()
	assert.NoError(t, err)
	assert.Nil(t, f)

	_, err = NewBuilder().HasData().BuildOrNil()
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestBuilderString(t *testing.T) {
	assert.Equal(t, "null", NewBuilder().String())
	assert.JSONEq(t, `{"matchAll":{}}`, NewBuilder().MatchAll().String())

	// Values that cannot be encoded produce the placeholder instead of failing.
	b := NewBuilder()
	b.filter = Equals{Property: pump.Property("x"), Value: Scalar(func() {})}
	assert.Equal(t, unserializablePlaceholder, b.String())
}

func TestParameter(t *testing.T) {
	_, err := Parameter("")
	assert.True(t, errors.IsInvalidArgument(err))

	p, err := Parameter("x")
	require.NoError(t, err)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"parameter":"x"}`, string(data))

	path := pump.Property("v")
	for name, b := range map[string]*Builder{
		"equals":      NewBuilder().Equals(path, p),
		"in":          NewBuilder().In(path, p, 1),
		"range":       NewBuilder().Range(path, Bounds{GTE: p}),
		"containsAny": NewBuilder().ContainsAny(path, p),
		"containsAll": NewBuilder().ContainsAll(path, p),
	} {
		f, err := b.Build()
		require.NoError(t, err, name)
		assert.Contains(t, mustJSON(t, f), `{"parameter":"x"}`, name)
		assert.Equal(t, []string{"x"}, ParameterNames(f), name)
	}
}
