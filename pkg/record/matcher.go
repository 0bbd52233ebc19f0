package record

import (
	"bytes"
	"fmt"
	"strings"
)

// Matches reports whether every query token is one of the record's tags.
// An empty query matches every record.
func Matches(r *Record, q Query) bool {
	for _, token := range q.Tokens {
		if !r.Tags.Contains(token) {
			return false
		}
	}
	return true
}

// SortField selects the timestamp results are ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// SortOrder is the direction results are ordered in.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ParseSortField parses a sort field name. Empty selects SortByCreatedAt.
func ParseSortField(s string) (SortField, error) {
	switch SortField(strings.ToLower(s)) {
	case "", SortByCreatedAt, "createdat", "created":
		return SortByCreatedAt, nil
	case SortByUpdatedAt, "updatedat", "updated":
		return SortByUpdatedAt, nil
	default:
		return "", fmt.Errorf("unknown sort field %q (expected created_at or updated_at)", s)
	}
}

// ParseSortOrder parses a sort order. Empty selects SortDesc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case "", SortDesc:
		return SortDesc, nil
	case SortAsc:
		return SortAsc, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (expected asc or desc)", s)
	}
}

// Compare orders a and b by field in the given direction, breaking ties by
// identifier in the same direction so pagination is deterministic.
func Compare(a, b *Record, field SortField, order SortOrder) int {
	var c int
	if field == SortByUpdatedAt {
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	} else {
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c == 0 {
		c = bytes.Compare(a.ID[:], b.ID[:])
	}
	if order == SortAsc {
		return c
	}
	return -c
}
