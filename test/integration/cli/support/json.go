package support

import (
	"fmt"
	"strconv"
	"strings"
)

// checkFieldExists walks a dotted path such as "files.0.result.payloads"
// through decoded JSON.
func checkFieldExists(data any, field string) error {
	current := data
	parts := strings.Split(field, ".")
	for i, part := range parts {
		path := strings.Join(parts[:i+1], ".")
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return fmt.Errorf("field '%s' not found in JSON", path)
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return fmt.Errorf("index '%s' out of range in JSON", path)
			}
			current = node[idx]
		default:
			return fmt.Errorf("cannot navigate into non-container at '%s'", path)
		}
	}
	return nil
}

// lookupField returns the value at a dotted path.
func lookupField(data any, field string) (any, error) {
	if err := checkFieldExists(data, field); err != nil {
		return nil, err
	}
	current := data
	for _, part := range strings.Split(field, ".") {
		switch node := current.(type) {
		case map[string]any:
			current = node[part]
		case []any:
			idx, _ := strconv.Atoi(part)
			current = node[idx]
		}
	}
	return current, nil
}
