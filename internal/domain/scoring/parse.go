package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ExtractJSON strips markdown code fences and any prose around the outermost
// JSON object of a completion.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	return raw
}

// DecodeObject parses a completion into a loosely typed JSON object.
func DecodeObject(raw string) (map[string]any, error) {
	cleaned := ExtractJSON(raw)
	if cleaned == "" {
		return nil, ErrEmptyCompletion
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if data == nil {
		return nil, ErrInvalidResponse
	}
	return data, nil
}

// CoerceFloat reads numbers and numeric strings; anything else is NaN.
func CoerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// CoerceString renders v as trimmed text. Non-strings are JSON encoded.
func CoerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// CoerceStrings reads a list of strings. A lone string becomes a one-item
// list; empty entries are dropped.
func CoerceStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := CoerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := CoerceString(val); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

// StringOr returns the coerced string for key, or def when missing or empty.
func StringOr(data map[string]any, key, def string) string {
	if s := CoerceString(data[key]); s != "" {
		return s
	}
	return def
}

// FloatOr returns the coerced number for key, or def when missing or not finite.
func FloatOr(data map[string]any, key string, def float64) float64 {
	f := CoerceFloat(data[key])
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}
