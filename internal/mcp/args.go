package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is implemented by mcp.CallToolRequest.
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// bindArguments decodes tool arguments into target using json tags.
// Some MCP clients send every parameter as a string, including JSON-encoded
// objects and arrays, so strings are coerced to the target kind.
func bindArguments[T any](request ArgumentGetter, target *T) error {
	args := request.GetArguments()
	if args == nil {
		return fmt.Errorf("invalid arguments format")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(jsonStringHook),
		Result:           target,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}

func jsonStringHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch t.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice:
		if !(strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}")) &&
			!(strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]")) {
			return data, nil
		}
		var result any
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, fmt.Errorf("invalid JSON argument: %w", err)
		}
		return result, nil
	}
	return data, nil
}

// parseStringArg extracts a string argument from an MCP arguments map.
// Returns an error if the argument is required but missing or invalid.
func parseStringArg(argsMap map[string]any, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}

	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}

	return str, nil
}
