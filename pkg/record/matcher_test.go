package record_test

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

func newRecord(created time.Time, values ...string) *record.Record {
	return &record.Record{
		ID:        uuid.New(),
		Content:   "content",
		Tags:      tag.SetFromValues(values...),
		CreatedAt: created,
		UpdatedAt: created,
	}
}

var _ = Describe("NewQuery", func() {
	It("normalizes and deduplicates tokens in order", func() {
		q := record.NewQuery("  Café deadline CAFE ")
		Expect(q.Tokens).To(Equal([]string{"cafe", "deadline"}))
		Expect(q.String()).To(Equal("cafe deadline"))
	})

	It("is empty for blank text", func() {
		Expect(record.NewQuery(" \t ").IsEmpty()).To(BeTrue())
	})
})

var _ = Describe("Matches", func() {
	r := newRecord(time.Now(), "x", "y")

	DescribeTable("AND semantics",
		func(query string, expected bool) {
			Expect(record.Matches(r, record.NewQuery(query))).To(Equal(expected))
		},
		Entry("single member", "x", true),
		Entry("all members", "x y", true),
		Entry("members in another order", "Y X", true),
		Entry("one missing token", "x z", false),
		Entry("only missing tokens", "z", false),
		Entry("empty query", "", true),
	)
})

var _ = Describe("Compare", func() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	It("sorts newest first by default order", func() {
		older := newRecord(base, "a")
		newer := newRecord(base.Add(time.Minute), "b")

		records := []*record.Record{older, newer}
		slices.SortFunc(records, func(a, b *record.Record) int {
			return record.Compare(a, b, record.SortByCreatedAt, record.SortDesc)
		})
		Expect(records).To(Equal([]*record.Record{newer, older}))
	})

	It("sorts by update time when asked", func() {
		a := newRecord(base, "a")
		b := newRecord(base.Add(time.Minute), "b")
		a.UpdatedAt = base.Add(time.Hour)

		Expect(record.Compare(a, b, record.SortByUpdatedAt, record.SortDesc)).To(BeNumerically("<", 0))
		Expect(record.Compare(a, b, record.SortByUpdatedAt, record.SortAsc)).To(BeNumerically(">", 0))
	})

	It("breaks ties by identifier", func() {
		a := newRecord(base, "a")
		b := newRecord(base, "b")
		a.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
		b.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")

		Expect(record.Compare(a, b, record.SortByCreatedAt, record.SortAsc)).To(Equal(-1))
		Expect(record.Compare(a, b, record.SortByCreatedAt, record.SortDesc)).To(Equal(1))
	})
})

var _ = Describe("ParseSortField and ParseSortOrder", func() {
	It("defaults to created_at desc", func() {
		field, err := record.ParseSortField("")
		Expect(err).NotTo(HaveOccurred())
		Expect(field).To(Equal(record.SortByCreatedAt))

		order, err := record.ParseSortOrder("")
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal(record.SortDesc))
	})

	It("accepts known names in any case", func() {
		field, err := record.ParseSortField("UPDATED_AT")
		Expect(err).NotTo(HaveOccurred())
		Expect(field).To(Equal(record.SortByUpdatedAt))

		order, err := record.ParseSortOrder("ASC")
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal(record.SortAsc))
	})

	It("rejects unknown names", func() {
		_, err := record.ParseSortField("content")
		Expect(err).To(HaveOccurred())
		_, err = record.ParseSortOrder("sideways")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ScanChecker", func() {
	ctx := context.Background()
	ab := newRecord(time.Now(), "a", "b")
	abc := newRecord(time.Now(), "a", "b", "c")
	checker := record.ScanChecker{Records: []*record.Record{ab, abc}}

	It("finds the exact set in any order", func() {
		exists, err := checker.ExistsByTagSet(ctx, []string{"b", "a"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())
	})

	It("ignores subsets and supersets", func() {
		exists, err := checker.ExistsByTagSet(ctx, []string{"a"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())

		exists, err = checker.ExistsByTagSet(ctx, []string{"a", "b", "c", "d"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})

	It("skips the excluded record", func() {
		exists, err := checker.ExistsByTagSet(ctx, []string{"a", "b"}, &ab.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})
})
