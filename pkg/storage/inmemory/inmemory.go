// Package inmemory provides a storage.Driver backed by process memory. It is
// a complete engine for single-process use and tests: the tag set index is
// maintained under the same lock as the records, so uniqueness holds for
// concurrent callers within the process.
package inmemory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/storage"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu is a read write sync mutex guarding both maps
	mu sync.RWMutex

	// records maps record identifiers to records
	records map[uuid.UUID]*record.Record

	// byTagSet maps canonical tag set keys to the record holding that set
	byTagSet map[string]uuid.UUID
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		records:  make(map[uuid.UUID]*record.Record),
		byTagSet: make(map[string]uuid.UUID),
	}
}

// Create stores a new record.
func (d *Driver) Create(_ context.Context, r *record.Record) error {
	if r == nil {
		return errors.New("cannot store nil record")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.insertLocked(r)
}

// CreateBatch stores all records or none of them.
func (d *Driver) CreateBatch(_ context.Context, records []*record.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	inserted := make([]*record.Record, 0, len(records))
	for _, r := range records {
		if r == nil {
			d.rollbackLocked(inserted)
			return errors.New("cannot store nil record")
		}
		if err := d.insertLocked(r); err != nil {
			d.rollbackLocked(inserted)
			return err
		}
		inserted = append(inserted, r)
	}
	return nil
}

// Update replaces an existing record.
func (d *Driver) Update(_ context.Context, r *record.Record) error {
	if r == nil {
		return errors.New("cannot store nil record")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.records[r.ID]
	if !ok {
		return storage.NotFoundError{ID: r.ID}
	}

	key := r.Tags.Key()
	if owner, taken := d.byTagSet[key]; taken && owner != r.ID {
		return &storage.DuplicateRecordError{Tags: r.TagValues()}
	}

	delete(d.byTagSet, current.Tags.Key())
	d.byTagSet[key] = r.ID
	d.records[r.ID] = clone(r)
	return nil
}

// Delete removes a record.
func (d *Driver) Delete(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.records[id]
	if !ok {
		return storage.NotFoundError{ID: id}
	}

	delete(d.byTagSet, current.Tags.Key())
	delete(d.records, id)
	return nil
}

// Get retrieves a record by its identifier.
func (d *Driver) Get(_ context.Context, id uuid.UUID) (*record.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.records[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}
	return clone(r), nil
}

// Search returns the records whose tags contain every query token.
func (d *Driver) Search(_ context.Context, opts storage.SearchOptions) (*storage.Page, error) {
	return d.page(opts, func(r *record.Record) bool {
		return record.Matches(r, opts.Query)
	}), nil
}

// SearchByTagIDs returns the records sharing at least one tag identifier
// with ids.
func (d *Driver) SearchByTagIDs(_ context.Context, ids []uuid.UUID, opts storage.SearchOptions) (*storage.Page, error) {
	return d.page(opts, func(r *record.Record) bool {
		return slices.ContainsFunc(ids, r.Tags.ContainsID)
	}), nil
}

// FindByTagSet returns the record with exactly the given tag set.
func (d *Driver) FindByTagSet(_ context.Context, values []string) (*record.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byTagSet[tag.Key(values)]
	if !ok {
		return nil, storage.NotFoundError{}
	}
	return clone(d.records[id]), nil
}

// ExistsByTagSet reports whether a record other than exclude has exactly the
// given tag set.
func (d *Driver) ExistsByTagSet(_ context.Context, values []string, exclude *uuid.UUID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byTagSet[tag.Key(values)]
	if !ok {
		return false, nil
	}
	return exclude == nil || id != *exclude, nil
}

// Count returns the number of stored records.
func (d *Driver) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records), nil
}

// TagStatistics counts records per tag.
func (d *Driver) TagStatistics(_ context.Context) ([]storage.TagCount, error) {
	d.mu.RLock()
	counts := make(map[string]int)
	for _, r := range d.records {
		for _, t := range r.Tags {
			counts[t.Value]++
		}
	}
	d.mu.RUnlock()

	stats := make([]storage.TagCount, 0, len(counts))
	for value, n := range counts {
		stats = append(stats, storage.TagCount{Tag: value, Count: n})
	}
	slices.SortFunc(stats, func(a, b storage.TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	return stats, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) insertLocked(r *record.Record) error {
	if _, ok := d.records[r.ID]; ok {
		return &storage.ConstraintViolationError{
			Constraint: "records_pkey",
			Err:        errors.New("record " + r.ID.String() + " already exists"),
		}
	}

	key := r.Tags.Key()
	if _, taken := d.byTagSet[key]; taken {
		return &storage.DuplicateRecordError{Tags: r.TagValues()}
	}

	d.records[r.ID] = clone(r)
	d.byTagSet[key] = r.ID
	return nil
}

func (d *Driver) rollbackLocked(inserted []*record.Record) {
	for _, r := range inserted {
		delete(d.byTagSet, r.Tags.Key())
		delete(d.records, r.ID)
	}
}

func (d *Driver) page(opts storage.SearchOptions, match func(*record.Record) bool) *storage.Page {
	opts = opts.Normalized()

	d.mu.RLock()
	matched := make([]*record.Record, 0)
	for _, r := range d.records {
		if match(r) {
			matched = append(matched, r)
		}
	}
	d.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *record.Record) int {
		return record.Compare(a, b, opts.SortBy, opts.Order)
	})

	total := len(matched)
	start := min(opts.Offset, total)
	end := min(start+opts.Limit, total)

	records := make([]*record.Record, 0, end-start)
	for _, r := range matched[start:end] {
		records = append(records, clone(r))
	}
	return storage.NewPage(records, total, opts.Offset)
}

func clone(r *record.Record) *record.Record {
	c := *r
	c.Tags = slices.Clone(r.Tags)
	return &c
}
