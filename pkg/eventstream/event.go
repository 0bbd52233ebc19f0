package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/tagstash/pkg/record"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeRecordCreated is emitted after a record is stored.
	EventTypeRecordCreated = "tagstash.record.created"

	// EventTypeRecordUpdated is emitted after a record's content is replaced.
	EventTypeRecordUpdated = "tagstash.record.updated"

	// EventTypeRecordDeleted is emitted after a record is removed.
	EventTypeRecordDeleted = "tagstash.record.deleted"
)

// RecordEvent is a transport-neutral event payload for a record change.
type RecordEvent struct {
	SchemaVersion int           `json:"schema_version"`
	EventType     string        `json:"event_type"`
	EventID       string        `json:"event_id"`
	EmittedAt     time.Time     `json:"emitted_at"`
	Record        RecordPayload `json:"record"`
}

// RecordPayload is the record state after the change. Deleted records carry
// the state they had when removed.
type RecordPayload struct {
	ID        uuid.UUID   `json:"id"`
	Content   string      `json:"content"`
	Tags      []string    `json:"tags"`
	TagIDs    []uuid.UUID `json:"tag_ids"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewRecordEvent builds an event of eventType for r, emitted at now.
func NewRecordEvent(eventType string, r *record.Record, now time.Time) *RecordEvent {
	return &RecordEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     now.UTC(),
		Record: RecordPayload{
			ID:        r.ID,
			Content:   r.Content,
			Tags:      r.TagValues(),
			TagIDs:    r.TagIDs(),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
	}
}
