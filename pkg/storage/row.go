package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

// Row is the persisted shape of a record. Tags and NormalizedTags are parallel
// arrays in canonical order: NormalizedTags is the query vocabulary and the
// uniqueness key, Tags carries the opaque identifiers.
type Row struct {
	ID             uuid.UUID
	Content        string
	Tags           []uuid.UUID
	NormalizedTags []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ToRow converts a record into its persisted shape.
func ToRow(r *record.Record) Row {
	return Row{
		ID:             r.ID,
		Content:        r.Content,
		Tags:           r.TagIDs(),
		NormalizedTags: r.TagValues(),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// FromRow rebuilds a record from its persisted shape. It fails when the two
// tag arrays disagree, which means the row was written by something other
// than ToRow.
func FromRow(row Row) (*record.Record, error) {
	if len(row.Tags) != len(row.NormalizedTags) {
		return nil, fmt.Errorf("record %s: %d tag identifiers for %d normalized tags",
			row.ID, len(row.Tags), len(row.NormalizedTags))
	}

	tags := make([]tag.Tag, len(row.NormalizedTags))
	for i, value := range row.NormalizedTags {
		t := tag.FromValue(value)
		if t.ID != row.Tags[i] {
			return nil, fmt.Errorf("record %s: tag %q stored with identifier %s, expected %s",
				row.ID, value, row.Tags[i], t.ID)
		}
		tags[i] = t
	}

	return &record.Record{
		ID:        row.ID,
		Content:   row.Content,
		Tags:      tag.NewSet(tags...),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
