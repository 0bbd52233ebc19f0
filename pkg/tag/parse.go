package tag

import "strings"

// Parse splits content into candidate tags on whitespace, preserving input
// order. There is no quoting or escaping syntax. Blank content yields an
// empty, non-nil slice.
func Parse(content string) []string {
	fields := strings.Fields(content)
	if fields == nil {
		return []string{}
	}
	return fields
}
