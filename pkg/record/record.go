// Package record defines the record aggregate: a piece of content and the set
// of tags it was captured with.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/tagstash/pkg/tag"
)

// DefaultMaxTags is the default bound on the number of tags per record.
const DefaultMaxTags = 50

// Record is a stored unit of content plus its tag set. Records are replaced
// as a whole, never patched field by field.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Tags      tag.Set   `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagIDs returns the identifiers of the record's tags.
func (r *Record) TagIDs() []uuid.UUID {
	return r.Tags.IDs()
}

// TagValues returns the normalized values of the record's tags.
func (r *Record) TagValues() []string {
	return r.Tags.Values()
}

// Replace returns a copy of r carrying new content and tags, stamped with
// now. The identifier and creation time are preserved.
func (r *Record) Replace(content string, tags tag.Set, now time.Time) *Record {
	if now.Before(r.CreatedAt) {
		now = r.CreatedAt
	}
	return &Record{
		ID:        r.ID,
		Content:   content,
		Tags:      tags,
		CreatedAt: r.CreatedAt,
		UpdatedAt: now,
	}
}

// InvalidContentError is returned when content cannot form a record.
type InvalidContentError struct {
	Reason string
}

func (e *InvalidContentError) Error() string {
	return "invalid content: " + e.Reason
}

// CheckContent returns *InvalidContentError when content is empty or only
// whitespace.
func CheckContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return &InvalidContentError{Reason: "content must not be empty"}
	}
	return nil
}

// Factory creates new records. Clock and ID source are injectable for tests.
type Factory struct {
	maxTags int
	now     func() time.Time
	newID   func() uuid.UUID
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		f.now = now
	}
}

// WithIDGenerator overrides the identifier source.
func WithIDGenerator(newID func() uuid.UUID) FactoryOption {
	return func(f *Factory) {
		f.newID = newID
	}
}

// NewFactory returns a Factory bounding records to maxTags tags, or
// DefaultMaxTags when maxTags is not positive.
func NewFactory(maxTags int, opts ...FactoryOption) *Factory {
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	f := &Factory{
		maxTags: maxTags,
		now:     time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// MaxTags returns the configured bound on tags per record.
func (f *Factory) MaxTags() int {
	return f.maxTags
}

// Now returns the factory's current time, truncated to microseconds so that
// it survives a round trip through a timestamptz column unchanged.
func (f *Factory) Now() time.Time {
	return f.now().UTC().Truncate(time.Microsecond)
}

// New creates a record with a fresh identifier and both timestamps set to
// now. It does not look for duplicates.
func (f *Factory) New(content string, tags tag.Set) (*Record, error) {
	if err := f.Check(content, tags); err != nil {
		return nil, err
	}

	now := f.Now()
	return &Record{
		ID:        f.newID(),
		Content:   content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Check validates content and the tag count bound.
func (f *Factory) Check(content string, tags tag.Set) error {
	if err := CheckContent(content); err != nil {
		return err
	}
	if len(tags) > f.maxTags {
		return &InvalidContentError{
			Reason: fmt.Sprintf("at most %d tags are allowed, got %d", f.maxTags, len(tags)),
		}
	}
	return nil
}
