package storage

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/oj"

	"github.com/mvp-joe/project-pivot/internal/model"
)

// encodeData serializes a document or link data map for a TEXT column.
// A nil map is stored as an empty object.
func encodeData(data map[string]any) string {
	if data == nil {
		return "{}"
	}
	return oj.JSON(data, &oj.Options{Sort: true})
}

// decodeData parses a data column. Integers come back as int64, other
// numbers as float64.
func decodeData(s string) (map[string]any, error) {
	if s == "" {
		return map[string]any{}, nil
	}
	v, err := oj.ParseString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid data JSON: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid data JSON: expected object, got %T", v)
	}
	return m, nil
}

func encodeAttributes(attrs []model.Attribute) (string, error) {
	if attrs == nil {
		return "[]", nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("failed to encode attributes: %w", err)
	}
	return string(b), nil
}

func decodeAttributes(s string) ([]model.Attribute, error) {
	var attrs []model.Attribute
	if s == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(s), &attrs); err != nil {
		return nil, fmt.Errorf("invalid attributes JSON: %w", err)
	}
	return attrs, nil
}
