package types

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel for a referenced task or prerequisite that
// does not exist. Wrap it with the missing identifier via NotFound.
var ErrNotFound = errors.New("not found")

// NotFound returns an error wrapping ErrNotFound that names the missing
// entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// ValidationError reports a structural check failure on task fields. It
// is raised before any mutation, so a failed command leaves no partial
// write behind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
