package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindNumber
	KindBool
	KindString
)

// Value is a scalar attribute value normalized for grouping.
// Equal values share the same Key; the typed value is kept for display.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// Null is the zero Value.
var Null = Value{}

// NewValue normalizes a raw scalar. Every Go numeric type and json.Number
// become KindNumber; unknown types fall back to their fmt representation.
func NewValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null
	case Value:
		return v
	case string:
		return Value{Kind: KindString, Str: v}
	case bool:
		return Value{Kind: KindBool, Bool: v}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return Value{Kind: KindNumber, Num: f}
		}
		return Value{Kind: KindString, Str: v.String()}
	}
	if f, ok := ToFloat(raw); ok {
		return Value{Kind: KindNumber, Num: f}
	}
	return Value{Kind: KindString, Str: fmt.Sprint(raw)}
}

// ToFloat converts Go numeric types to float64. Strings are not parsed.
func ToFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// IsEmpty reports whether the value is null or the empty string.
func (v Value) IsEmpty() bool {
	return v.Kind == KindNull || (v.Kind == KindString && v.Str == "")
}

// Key returns the canonical map key. Keys are type-tagged, so the number 1
// and the string "1" never share a bucket.
func (v Value) Key() string {
	switch v.Kind {
	case KindNumber:
		return "n:" + formatNumber(v.Num)
	case KindBool:
		return "b:" + strconv.FormatBool(v.Bool)
	case KindString:
		return "s:" + v.Str
	default:
		return "null"
	}
}

// String returns the display form of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Num)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// Raw returns the typed Go value (nil, float64, bool or string).
func (v Value) Raw() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindString:
		return v.Str
	default:
		return nil
	}
}

// MarshalJSON encodes the typed value.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber && (math.IsNaN(v.Num) || math.IsInf(v.Num, 0)) {
		return json.Marshal(formatNumber(v.Num))
	}
	return json.Marshal(v.Raw())
}

// Compare orders two values: null sorts before everything, then numbers,
// booleans and strings. Values of the same kind compare naturally.
func Compare(a, b Value) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	case KindBool:
		switch {
		case a.Bool == b.Bool:
			return 0
		case !a.Bool:
			return -1
		}
		return 1
	case KindString:
		return strings.Compare(a.Str, b.Str)
	}
	return 0
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
