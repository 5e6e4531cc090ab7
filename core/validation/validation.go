package validation

import (
	"fmt"
	"strings"
)

// Error reports input fields that are missing, empty, or
// whitespace-only. It maps to HTTP 400 and is never retried.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation failed for fields: %s", strings.Join(e.Fields, ", "))
}

// RequireNonEmpty checks that every named value is non-empty after
// trimming whitespace. Field names are checked in the order given so
// error output is deterministic.
func RequireNonEmpty(names []string, values map[string]string) error {
	var missing []string
	for _, name := range names {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &Error{Fields: missing}
	}
	return nil
}
