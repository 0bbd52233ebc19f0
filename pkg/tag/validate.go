package tag

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxLength is the default maximum length of a tag, in runes.
const DefaultMaxLength = 100

// ValidationResult is the outcome of validating a normalized tag. Violations
// is empty exactly when Valid is true.
type ValidationResult struct {
	Valid      bool
	Violations []string
}

// Validator checks the shape of a normalized tag.
type Validator struct {
	// MaxLength is the maximum number of runes a tag may have. Zero means
	// DefaultMaxLength.
	MaxLength int
}

// NewValidator returns a Validator enforcing maxLength, or DefaultMaxLength
// when maxLength is not positive.
func NewValidator(maxLength int) Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return Validator{MaxLength: maxLength}
}

// Validate reports every violation found in value rather than stopping at the
// first one. It never panics on malformed input.
func (v Validator) Validate(value string) ValidationResult {
	maxLength := v.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var violations []string

	if value == "" {
		violations = append(violations, "tag must not be empty")
	}

	if n := utf8.RuneCountInString(value); n > maxLength {
		violations = append(violations, fmt.Sprintf("tag must be at most %d characters, got %d", maxLength, n))
	}

	var control, space, mark, invalid bool
	for _, r := range value {
		switch {
		case r == utf8.RuneError:
			invalid = true
		case unicode.IsControl(r):
			control = true
		case unicode.IsSpace(r):
			space = true
		case unicode.Is(unicode.Mn, r):
			mark = true
		}
	}

	if invalid {
		violations = append(violations, "tag must be valid UTF-8")
	}
	if control {
		violations = append(violations, "tag must not contain control characters")
	}
	if space {
		violations = append(violations, "tag must not contain whitespace")
	}
	if mark {
		violations = append(violations, "tag must not contain combining marks")
	}

	return ValidationResult{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}
