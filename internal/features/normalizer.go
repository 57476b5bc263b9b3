package features

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/hongminglow/valuation-be/internal/models"
)

// Kind classifies a normalized value.
type Kind int

const (
	Missing Kind = iota
	Number
	String
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return "missing"
	}
}

// Value is a single normalized cell.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

// MissingValue is the canonical missing marker.
var MissingValue = Value{Kind: Missing}

// NumberValue wraps a numeric cell.
func NumberValue(f float64) Value { return Value{Kind: Number, Num: f} }

// StringValue wraps a categorical cell.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// IsMissing reports whether v carries no data.
func (v Value) IsMissing() bool { return v.Kind == Missing }

// Vector is one row of model input.
type Vector struct {
	Columns []string
	Values  []Value
}

// Len returns the number of columns.
func (v Vector) Len() int { return len(v.Columns) }

var sentinels = map[string]struct{}{
	"":     {},
	"NA":   {},
	"NaN":  {},
	"null": {},
}

// Normalize maps client fields onto the schema. Schema columns the client did
// not send, or sent as a sentinel, become MissingValue; keys outside the schema
// are dropped. Without a schema the fields pass through in client order.
func Normalize(schema Schema, fields models.Fields) Vector {
	if len(schema) == 0 {
		vec := Vector{
			Columns: make([]string, 0, len(fields)),
			Values:  make([]Value, 0, len(fields)),
		}
		for _, f := range fields {
			vec.Columns = append(vec.Columns, f.Key)
			vec.Values = append(vec.Values, normalizeValue(f.Value))
		}
		return vec
	}

	vec := Vector{
		Columns: schema.Names(),
		Values:  make([]Value, len(schema)),
	}
	position := make(map[string]int, len(schema))
	for i, col := range schema {
		position[col.Name] = i
		vec.Values[i] = MissingValue
	}
	for _, f := range fields {
		if i, ok := position[f.Key]; ok {
			vec.Values[i] = normalizeValue(f.Value)
		}
	}
	return vec
}

func normalizeValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return MissingValue
	case string:
		if _, ok := sentinels[v]; ok {
			return MissingValue
		}
		return StringValue(v)
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return StringValue(v.String())
		}
		return NumberValue(f)
	case float64:
		if math.IsNaN(v) {
			return MissingValue
		}
		return NumberValue(v)
	case int:
		return NumberValue(float64(v))
	case int64:
		return NumberValue(float64(v))
	case bool:
		if v {
			return NumberValue(1)
		}
		return NumberValue(0)
	default:
		return MissingValue
	}
}
