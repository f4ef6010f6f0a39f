// Package jsonutil handles the loose typing of JSON produced by LLMs.
package jsonutil

import (
	"fmt"
	"strconv"
)

// FlexibleString converts a decoded JSON scalar to its display string,
// handling cases where LLMs return numbers or booleans instead of strings.
// Returns empty string for nil.
func FlexibleString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FlexibleInt converts a decoded JSON scalar to an int, accepting the
// float64 that encoding/json produces for numbers as well as quoted
// numeric strings. Returns false when the value is not coercible.
func FlexibleInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
