package services

import (
	"errors"
	"fmt"
)

// ErrJobNotFound is returned for queries against an unknown job id.
var ErrJobNotFound = errors.New("job not found")

// ValidationError means the request itself was malformed (empty URL or
// format id). It is always surfaced synchronously; no job is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
