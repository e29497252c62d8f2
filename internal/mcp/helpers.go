package mcpserver

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"mushaf/internal/domain"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// intArg reads a whole-number argument. JSON numbers arrive as float64.
func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key].(float64)
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	if v != float64(int(v)) {
		return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
	}
	return int(v), nil
}

// parseColor reads #RRGGBB or #RRGGBBAA.
func parseColor(s string) (domain.RGBA, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) == 6 {
		raw += "ff"
	}
	if len(raw) != 8 {
		return domain.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return domain.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return domain.RGBA{
		R: float64(b[0]) / 255,
		G: float64(b[1]) / 255,
		B: float64(b[2]) / 255,
		A: float64(b[3]) / 255,
	}, nil
}
