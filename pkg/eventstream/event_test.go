package eventstream_test

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tagstash/pkg/eventstream"
	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

var _ = Describe("Event", func() {
	var r *record.Record

	BeforeEach(func() {
		created := time.Unix(1735689600, 0).UTC()
		r = &record.Record{
			ID:        uuid.New(),
			Content:   "ship release notes",
			Tags:      tag.SetFromValues("ship", "release", "notes"),
			CreatedAt: created,
			UpdatedAt: created.Add(time.Minute),
		}
	})

	It("marshals RecordEvent with expected top-level keys", func() {
		event := eventstream.NewRecordEvent(eventstream.EventTypeRecordCreated, r, time.Now())

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKeyWithValue("record", HaveKey("tag_ids")))
	})

	It("copies the record state", func() {
		now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
		event := eventstream.NewRecordEvent(eventstream.EventTypeRecordUpdated, r, now)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeRecordUpdated))
		Expect(strings.HasPrefix(event.EventID, "evt_")).To(BeTrue())
		Expect(event.EmittedAt.Location()).To(Equal(time.UTC))
		Expect(event.Record.ID).To(Equal(r.ID))
		Expect(event.Record.Tags).To(Equal([]string{"notes", "release", "ship"}))
		Expect(event.Record.TagIDs).To(Equal(r.TagIDs()))
	})

	It("gives every event its own identifier", func() {
		a := eventstream.NewRecordEvent(eventstream.EventTypeRecordDeleted, r, time.Now())
		b := eventstream.NewRecordEvent(eventstream.EventTypeRecordDeleted, r, time.Now())
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeRecordCreated).To(Equal("tagstash.record.created"))
		Expect(eventstream.EventTypeRecordUpdated).To(Equal("tagstash.record.updated"))
		Expect(eventstream.EventTypeRecordDeleted).To(Equal("tagstash.record.deleted"))
	})

	It("provides ErrNilRecordEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilRecordEvent).To(MatchError("nil record event"))
	})
})
