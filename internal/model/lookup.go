package model

import (
	"reflect"
	"strings"

	"github.com/maypok86/otter"
	"github.com/ohler55/ojg/jp"
)

const pathCacheSize = 1024

// compiled JSONPath expressions keyed by attribute id; a nil expression
// marks an id that failed to parse
var pathCache = newPathCache()

func newPathCache() otter.Cache[string, jp.Expr] {
	cache, err := otter.MustBuilder[string, jp.Expr](pathCacheSize).Build()
	if err != nil {
		panic(err)
	}
	return cache
}

// Lookup reads an attribute value from document or link data.
// A key equal to the attribute id always wins. Otherwise ids starting with
// "$" are evaluated as JSONPath against the data and yield the first match.
func Lookup(data map[string]any, attributeID string) any {
	if data == nil {
		return nil
	}
	if v, ok := data[attributeID]; ok || !strings.HasPrefix(attributeID, "$") {
		return v
	}
	x, ok := compilePath(attributeID)
	if !ok {
		return nil
	}
	return x.First(data)
}

func compilePath(attributeID string) (jp.Expr, bool) {
	if x, ok := pathCache.Get(attributeID); ok {
		return x, x != nil
	}
	x, err := jp.ParseString(attributeID)
	if err != nil {
		pathCache.Set(attributeID, nil)
		return nil, false
	}
	pathCache.Set(attributeID, x)
	return x, true
}

// Elements returns the elements of raw when it is a list of any element
// type. Byte slices are not lists.
func Elements(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case nil, []byte:
		return nil, false
	case []any:
		return v, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// IsArray reports whether raw holds a list of values.
func IsArray(raw any) bool {
	_, ok := Elements(raw)
	return ok
}

// Expand returns the non-empty scalar values contributed by one raw attribute
// value. Arrays fan out into their elements; nested arrays are flattened.
func Expand(raw any) []Value {
	var out []Value
	expandInto(raw, &out)
	return out
}

func expandInto(raw any, out *[]Value) {
	if raw == nil {
		return
	}
	if list, ok := Elements(raw); ok {
		for _, el := range list {
			expandInto(el, out)
		}
		return
	}
	if _, ok := raw.(map[string]any); ok {
		// Objects are not groupable scalars.
		return
	}
	val := NewValue(raw)
	if !val.IsEmpty() {
		*out = append(*out, val)
	}
}
