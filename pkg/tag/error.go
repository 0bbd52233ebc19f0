package tag

import (
	"fmt"
	"strings"
)

// EmptyTagError is returned when raw tag text is blank after normalization.
type EmptyTagError struct {
	Raw string
}

func (e *EmptyTagError) Error() string {
	return fmt.Sprintf("empty tag: %q", e.Raw)
}

// InvalidTagError is returned when a normalized tag fails validation.
type InvalidTagError struct {
	Raw     string
	Value   string
	Reasons []string
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("invalid tag %q: %s", e.Raw, strings.Join(e.Reasons, "; "))
}
