// Package table converts parsed response rows into Arrow record batches.
//
// Column types are inferred from the values present: integers become int64,
// other numbers float64, booleans bool, time.Time a millisecond timestamp and
// strings utf8. A column mixing incompatible kinds, or holding objects and
// arrays, falls back to utf8 holding the JSON rendering. Nil values become
// nulls.
package table

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column is a named list of values, one per row.
type Column struct {
	Name   string
	Values []any
	// Type forces the column type. Inferred when nil.
	Type arrow.DataType
}

// TimestampMs is the type used for time.Time values.
var TimestampMs = &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}

// Record builds a record batch from columns of equal length.
// The caller owns the returned batch and must Release it.
func Record(mem memory.Allocator, cols []Column) (arrow.RecordBatch, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	rows := -1
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		if rows >= 0 && len(c.Values) != rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", c.Name, len(c.Values), rows)
		}
		rows = len(c.Values)
		dt := c.Type
		if dt == nil {
			dt = Infer(c.Values)
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: true}
	}

	schema := arrow.NewSchema(fields, nil)
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i, c := range cols {
		fb := builder.Field(i)
		fb.Reserve(len(c.Values))
		for _, v := range c.Values {
			appendValue(fb, v)
		}
	}
	return builder.NewRecordBatch(), nil
}

// Infer returns the narrowest Arrow type able to hold every non-nil value.
func Infer(values []any) arrow.DataType {
	var dt arrow.DataType
	for _, v := range values {
		vt := typeOf(v)
		if vt == nil {
			continue
		}
		switch {
		case dt == nil:
			dt = vt
		case arrow.TypeEqual(dt, vt):
		case isNumeric(dt) && isNumeric(vt):
			dt = arrow.PrimitiveTypes.Float64
		default:
			return arrow.BinaryTypes.String
		}
	}
	if dt == nil {
		return arrow.BinaryTypes.String
	}
	return dt
}

func typeOf(v any) arrow.DataType {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return arrow.FixedWidthTypes.Boolean
	case string:
		return arrow.BinaryTypes.String
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return arrow.PrimitiveTypes.Int64
	case float32, float64:
		return arrow.PrimitiveTypes.Float64
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return arrow.PrimitiveTypes.Int64
		}
		return arrow.PrimitiveTypes.Float64
	case time.Time:
		return TimestampMs
	default:
		// objects, arrays and anything else are rendered as JSON text
		return arrow.BinaryTypes.String
	}
}

func isNumeric(dt arrow.DataType) bool {
	return dt.ID() == arrow.INT64 || dt.ID() == arrow.FLOAT64
}

func appendValue(builder array.Builder, value any) {
	if value == nil {
		builder.AppendNull()
		return
	}
	switch b := builder.(type) {
	case *array.BooleanBuilder:
		if v, ok := value.(bool); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	case *array.Int64Builder:
		if v, ok := toInt64(value); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	case *array.Float64Builder:
		if v, ok := toFloat64(value); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	case *array.TimestampBuilder:
		switch v := value.(type) {
		case time.Time:
			if v.IsZero() {
				b.AppendNull()
			} else {
				b.Append(arrow.Timestamp(v.UnixMilli()))
			}
		case int64:
			b.Append(arrow.Timestamp(v))
		default:
			b.AppendNull()
		}
	case *array.StringBuilder:
		switch v := value.(type) {
		case string:
			b.Append(v)
		case json.Number:
			b.Append(v.String())
		default:
			data, err := json.Marshal(v)
			if err != nil {
				b.AppendNull()
				return
			}
			b.Append(string(data))
		}
	default:
		builder.AppendNull()
	}
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case json.Number:
		i, err := v.Int64()
		return i, err == nil
	}
	return 0, false
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	if i, ok := toInt64(value); ok {
		return float64(i), true
	}
	return 0, false
}
