// Package storagetest holds the behavior every storage.Driver must show,
// written once as ginkgo specs and run by each driver's suite.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/storage"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

// Fixture builds records with a deterministic clock: every record is one
// second younger than the one before it.
type Fixture struct {
	factory *record.Factory
	tags    *tag.Factory
}

// NewFixture returns a Fixture whose clock starts at start.
func NewFixture(start time.Time) *Fixture {
	var mu sync.Mutex
	next := start
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}

	return &Fixture{
		factory: record.NewFactory(0, record.WithClock(clock)),
		tags:    tag.NewFactory(tag.NewValidator(0)),
	}
}

// Record builds a record whose tags are parsed from content.
func (f *Fixture) Record(content string) *record.Record {
	GinkgoHelper()

	tags, err := f.tags.FromContent(content)
	Expect(err).NotTo(HaveOccurred())

	r, err := f.factory.New(content, tags)
	Expect(err).NotTo(HaveOccurred())
	return r
}

// ExpectSameRecord asserts that got carries exactly the identity, content,
// tags and timestamps of want.
func ExpectSameRecord(got, want *record.Record) {
	GinkgoHelper()

	Expect(got).NotTo(BeNil())
	Expect(got.ID).To(Equal(want.ID))
	Expect(got.Content).To(Equal(want.Content))
	Expect(got.Tags).To(Equal(want.Tags))
	Expect(got.CreatedAt).To(BeTemporally("==", want.CreatedAt))
	Expect(got.UpdatedAt).To(BeTemporally("==", want.UpdatedAt))
}

func ids(records []*record.Record) []uuid.UUID {
	out := make([]uuid.UUID, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// DriverSpecs registers the shared driver specs in the enclosing container.
// newDriver is called before every spec and must return an empty driver.
func DriverSpecs(newDriver func() storage.Driver) {
	var (
		driver  storage.Driver
		fixture *Fixture
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
		fixture = NewFixture(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	create := func(content string) *record.Record {
		GinkgoHelper()
		r := fixture.Record(content)
		Expect(driver.Create(ctx, r)).To(Succeed())
		return r
	}

	Describe("Create and Get", func() {
		It("round trips a record", func() {
			r := create("проект deadline понедельник")

			got, err := driver.Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
			ExpectSameRecord(got, r)
			Expect(got.TagValues()).To(ConsistOf("проект", "deadline", "понедельник"))
		})

		It("returns NotFoundError for an unknown identifier", func() {
			id := uuid.New()
			_, err := driver.Get(ctx, id)

			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.ID).To(Equal(id))
		})

		It("rejects the same tag set in another order", func() {
			create("проект deadline понедельник")

			dup := fixture.Record("понедельник проект deadline")
			err := driver.Create(ctx, dup)

			var dupErr *storage.DuplicateRecordError
			Expect(errors.As(err, &dupErr)).To(BeTrue())

			count, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("rejects the same tag set spelled with other case and accents", func() {
			create("cafe menu")

			err := driver.Create(ctx, fixture.Record("MENU Café"))
			var dupErr *storage.DuplicateRecordError
			Expect(errors.As(err, &dupErr)).To(BeTrue())
		})

		It("lets subsets and supersets coexist", func() {
			create("a b")
			create("a b c")
			create("a")

			count, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(3))
		})

		It("lets exactly one of many concurrent creates of one tag set win", func() {
			const writers = 8

			records := make([]*record.Record, writers)
			for i := range records {
				records[i] = fixture.Record("race condition")
			}

			errs := make([]error, writers)
			var wg sync.WaitGroup
			wg.Add(writers)
			for i := range writers {
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					errs[i] = driver.Create(ctx, records[i])
				}()
			}
			wg.Wait()

			succeeded, duplicates := 0, 0
			for _, err := range errs {
				var dupErr *storage.DuplicateRecordError
				switch {
				case err == nil:
					succeeded++
				case errors.As(err, &dupErr):
					duplicates++
				default:
					Fail("unexpected error: " + err.Error())
				}
			}
			Expect(succeeded).To(Equal(1))
			Expect(duplicates).To(Equal(writers - 1))
		})
	})

	Describe("Update", func() {
		It("replaces content and tags", func() {
			r := create("a b")

			tags := tag.SetFromValues("a", "b", "c")
			updated := r.Replace("a b c", tags, r.CreatedAt.Add(time.Hour))
			Expect(driver.Update(ctx, updated)).To(Succeed())

			got, err := driver.Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
			ExpectSameRecord(got, updated)
		})

		It("frees the previous tag set", func() {
			r := create("a b")
			Expect(driver.Update(ctx, r.Replace("a b c", tag.SetFromValues("a", "b", "c"), r.CreatedAt))).To(Succeed())

			create("b a")
		})

		It("accepts a record keeping its own tag set", func() {
			r := create("a b")
			Expect(driver.Update(ctx, r.Replace("b a", r.Tags, r.CreatedAt.Add(time.Minute)))).To(Succeed())
		})

		It("rejects taking another record's tag set", func() {
			create("a b")
			other := create("c")

			err := driver.Update(ctx, other.Replace("a b", tag.SetFromValues("a", "b"), other.CreatedAt))
			var dupErr *storage.DuplicateRecordError
			Expect(errors.As(err, &dupErr)).To(BeTrue())

			got, err := driver.Get(ctx, other.ID)
			Expect(err).NotTo(HaveOccurred())
			ExpectSameRecord(got, other)
		})

		It("returns NotFoundError for an unknown record", func() {
			r := fixture.Record("ghost")
			err := driver.Update(ctx, r)

			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes the record and frees its tag set", func() {
			r := create("a b")
			Expect(driver.Delete(ctx, r.ID)).To(Succeed())

			_, err := driver.Get(ctx, r.ID)
			Expect(errors.As(err, new(storage.NotFoundError))).To(BeTrue())

			create("a b")
		})

		It("returns NotFoundError for an unknown record", func() {
			err := driver.Delete(ctx, uuid.New())
			Expect(errors.As(err, new(storage.NotFoundError))).To(BeTrue())
		})
	})

	Describe("Search", func() {
		It("requires every query token", func() {
			xy := create("x y")

			for _, q := range []string{"x", "x y", "Y"} {
				page, err := driver.Search(ctx, storage.SearchOptions{Query: record.NewQuery(q)})
				Expect(err).NotTo(HaveOccurred())
				Expect(ids(page.Records)).To(Equal([]uuid.UUID{xy.ID}), "query %q", q)
			}

			page, err := driver.Search(ctx, storage.SearchOptions{Query: record.NewQuery("x z")})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Records).To(BeEmpty())
			Expect(page.Total).To(BeZero())
			Expect(page.HasMore).To(BeFalse())
		})

		It("returns every record newest first for an empty query", func() {
			first := create("one")
			second := create("two")
			third := create("three")

			page, err := driver.Search(ctx, storage.SearchOptions{Query: record.NewQuery("")})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(page.Records)).To(Equal([]uuid.UUID{third.ID, second.ID, first.ID}))
			Expect(page.Total).To(Equal(3))
		})

		It("paginates with total and has-more", func() {
			var created []*record.Record
			for _, c := range []string{"p a", "p b", "p c", "p d", "p e"} {
				created = append(created, create(c))
			}
			create("other")

			page, err := driver.Search(ctx, storage.SearchOptions{
				Query: record.NewQuery("p"),
				Limit: 2,
				Order: record.SortAsc,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(5))
			Expect(page.HasMore).To(BeTrue())
			Expect(ids(page.Records)).To(Equal([]uuid.UUID{created[0].ID, created[1].ID}))

			page, err = driver.Search(ctx, storage.SearchOptions{
				Query:  record.NewQuery("p"),
				Limit:  2,
				Offset: 4,
				Order:  record.SortAsc,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.HasMore).To(BeFalse())
			Expect(ids(page.Records)).To(Equal([]uuid.UUID{created[4].ID}))
		})

		It("sorts by update time", func() {
			older := create("older")
			newer := create("newer")
			Expect(driver.Update(ctx, older.Replace("older", older.Tags, newer.CreatedAt.Add(time.Hour)))).To(Succeed())

			page, err := driver.Search(ctx, storage.SearchOptions{SortBy: record.SortByUpdatedAt})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(page.Records)).To(Equal([]uuid.UUID{older.ID, newer.ID}))
		})

		It("breaks timestamp ties by identifier", func() {
			at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
			low := &record.Record{
				ID: uuid.MustParse("00000000-0000-4000-8000-000000000001"), Content: "tie low",
				Tags: tag.SetFromValues("tie", "low"), CreatedAt: at, UpdatedAt: at,
			}
			high := &record.Record{
				ID: uuid.MustParse("00000000-0000-4000-8000-000000000002"), Content: "tie high",
				Tags: tag.SetFromValues("tie", "high"), CreatedAt: at, UpdatedAt: at,
			}
			Expect(driver.Create(ctx, high)).To(Succeed())
			Expect(driver.Create(ctx, low)).To(Succeed())

			page, err := driver.Search(ctx, storage.SearchOptions{Query: record.NewQuery("tie")})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(page.Records)).To(Equal([]uuid.UUID{high.ID, low.ID}))

			page, err = driver.Search(ctx, storage.SearchOptions{Query: record.NewQuery("tie"), Order: record.SortAsc})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(page.Records)).To(Equal([]uuid.UUID{low.ID, high.ID}))
		})
	})

	Describe("SearchByTagIDs", func() {
		It("matches records sharing any identifier", func() {
			ab := create("a b")
			bc := create("b c")
			create("d")

			page, err := driver.SearchByTagIDs(ctx,
				[]uuid.UUID{tag.Identity("a"), tag.Identity("c")},
				storage.SearchOptions{Order: record.SortAsc},
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(page.Records)).To(Equal([]uuid.UUID{ab.ID, bc.ID}))
			Expect(page.Total).To(Equal(2))
		})

		It("matches nothing for no identifiers", func() {
			create("a")

			page, err := driver.SearchByTagIDs(ctx, nil, storage.SearchOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Records).To(BeEmpty())
		})
	})

	Describe("FindByTagSet and ExistsByTagSet", func() {
		It("finds the exact set in any order", func() {
			r := create("a b")
			create("a b c")

			got, err := driver.FindByTagSet(ctx, []string{"b", "a"})
			Expect(err).NotTo(HaveOccurred())
			ExpectSameRecord(got, r)
		})

		It("returns NotFoundError for an unused set", func() {
			create("a b")

			_, err := driver.FindByTagSet(ctx, []string{"a"})
			Expect(errors.As(err, new(storage.NotFoundError))).To(BeTrue())
		})

		It("honors the excluded record", func() {
			r := create("a b")

			exists, err := driver.ExistsByTagSet(ctx, []string{"a", "b"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = driver.ExistsByTagSet(ctx, []string{"b", "a"}, &r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())

			exists, err = driver.ExistsByTagSet(ctx, []string{"a", "b", "c"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("TagStatistics", func() {
		It("counts records per tag, most used first", func() {
			create("tag1")
			create("tag1 tag2")

			stats, err := driver.TagStatistics(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal([]storage.TagCount{
				{Tag: "tag1", Count: 2},
				{Tag: "tag2", Count: 1},
			}))
		})

		It("orders equal counts alphabetically", func() {
			create("zeta alpha")
			create("mid")

			stats, err := driver.TagStatistics(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal([]storage.TagCount{
				{Tag: "alpha", Count: 1},
				{Tag: "mid", Count: 1},
				{Tag: "zeta", Count: 1},
			}))
		})

		It("is empty for an empty store", func() {
			stats, err := driver.TagStatistics(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(BeEmpty())
		})
	})

	Describe("CreateBatch", func() {
		It("stores every record", func() {
			batch := []*record.Record{fixture.Record("a"), fixture.Record("b"), fixture.Record("a b")}
			Expect(driver.CreateBatch(ctx, batch)).To(Succeed())

			count, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(3))
		})

		It("stores nothing when one record duplicates a stored one", func() {
			create("a b")

			batch := []*record.Record{fixture.Record("c"), fixture.Record("b a"), fixture.Record("d")}
			err := driver.CreateBatch(ctx, batch)
			var dupErr *storage.DuplicateRecordError
			Expect(errors.As(err, &dupErr)).To(BeTrue())

			count, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("stores nothing when two records in the batch share a tag set", func() {
			batch := []*record.Record{fixture.Record("x y"), fixture.Record("y x")}
			err := driver.CreateBatch(ctx, batch)
			Expect(errors.As(err, new(*storage.DuplicateRecordError))).To(BeTrue())

			count, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("accepts an empty batch", func() {
			Expect(driver.CreateBatch(ctx, nil)).To(Succeed())
		})
	})
}
