package tag

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Tag is a normalized tag value together with its derived identifier.
type Tag struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
}

// FromValue builds a Tag from a value that is already normalized. It does not
// validate; use a Factory for raw input.
func FromValue(value string) Tag {
	return Tag{ID: Identity(value), Value: value}
}

// Set is an unordered collection of distinct tags. It is kept in canonical
// order (ascending byte order of the normalized value) so that two sets with
// the same members are equal element by element.
type Set []Tag

// NewSet collapses tags into a Set, dropping repeated values.
func NewSet(tags ...Tag) Set {
	set := make(Set, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t.Value]; ok {
			continue
		}
		seen[t.Value] = struct{}{}
		set = append(set, t)
	}

	slices.SortFunc(set, func(a, b Tag) int {
		return strings.Compare(a.Value, b.Value)
	})
	return set
}

// SetFromValues builds a Set from normalized values.
func SetFromValues(values ...string) Set {
	tags := make([]Tag, 0, len(values))
	for _, v := range values {
		tags = append(tags, FromValue(v))
	}
	return NewSet(tags...)
}

// Values returns the normalized values in canonical order.
func (s Set) Values() []string {
	values := make([]string, len(s))
	for i, t := range s {
		values[i] = t.Value
	}
	return values
}

// IDs returns the tag identifiers in the same order as Values.
func (s Set) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s))
	for i, t := range s {
		ids[i] = t.ID
	}
	return ids
}

// Contains reports whether value is a member of the set.
func (s Set) Contains(value string) bool {
	_, found := slices.BinarySearchFunc(s, value, func(t Tag, v string) int {
		return strings.Compare(t.Value, v)
	})
	return found
}

// ContainsID reports whether a tag with identifier id is a member of the set.
func (s Set) ContainsID(id uuid.UUID) bool {
	return slices.ContainsFunc(s, func(t Tag) bool { return t.ID == id })
}

// Equal reports whether s and other hold exactly the same tags.
func (s Set) Equal(other Set) bool {
	return slices.Equal(s, other)
}

// Key returns a canonical string for the set, usable as a map key. Tags never
// contain control characters, so the unit separator cannot collide.
func (s Set) Key() string {
	return Key(s.Values())
}

// Key returns the canonical set key for normalized values, in any order and
// possibly repeated.
func Key(values []string) string {
	return strings.Join(SetFromValues(values...).Values(), "\x1f")
}
