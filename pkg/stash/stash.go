// Package stash is the entry point outer layers use to capture and retrieve
// records. It turns raw content into tags, runs the duplicate pre-check and
// hands records to a storage driver, which holds the final word on
// uniqueness.
package stash

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/tagstash/pkg/eventstream"
	"github.com/papercomputeco/tagstash/pkg/eventstream/nop"
	"github.com/papercomputeco/tagstash/pkg/logger"
	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/storage"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

// Service implements the record lifecycle on top of a storage.Driver.
type Service struct {
	driver    storage.Driver
	tags      *tag.Factory
	records   *record.Factory
	publisher eventstream.Publisher
	logger    *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithPublisher sets the publisher record events are sent to.
func WithPublisher(p eventstream.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithTagFactory replaces the tag factory, e.g. to change the maximum tag
// length.
func WithTagFactory(f *tag.Factory) Option {
	return func(s *Service) {
		s.tags = f
	}
}

// WithRecordFactory replaces the record factory, e.g. to inject a clock.
func WithRecordFactory(f *record.Factory) Option {
	return func(s *Service) {
		s.records = f
	}
}

// New creates a Service storing records in driver.
func New(driver storage.Driver, opts ...Option) *Service {
	s := &Service{
		driver:    driver,
		tags:      tag.NewFactory(tag.NewValidator(tag.DefaultMaxLength)),
		records:   record.NewFactory(record.DefaultMaxTags),
		publisher: nop.NewPublisher(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create captures content as a new record tagged with its words. It fails
// with *storage.DuplicateRecordError when a record with the same tag set
// exists, whether the pre-check or the storage constraint catches it.
func (s *Service) Create(ctx context.Context, content string) (*record.Record, error) {
	r, err := s.build(content)
	if err != nil {
		return nil, err
	}

	if err := s.checkDuplicate(ctx, r.TagValues(), nil); err != nil {
		return nil, err
	}

	if err := s.driver.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Debug("record created", "id", r.ID, "tags", len(r.Tags))
	s.publish(ctx, eventstream.EventTypeRecordCreated, r)
	return r, nil
}

// Update replaces the content, and with it the tags, of an existing record.
// A record may keep its own tag set; taking another record's set fails with
// *storage.DuplicateRecordError.
func (s *Service) Update(ctx context.Context, id uuid.UUID, content string) (*record.Record, error) {
	tags, err := s.parse(content)
	if err != nil {
		return nil, err
	}

	current, err := s.driver.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := current.Replace(content, tags, s.records.Now())
	if err := s.checkDuplicate(ctx, updated.TagValues(), &id); err != nil {
		return nil, err
	}

	if err := s.driver.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Debug("record updated", "id", id, "tags", len(updated.Tags))
	s.publish(ctx, eventstream.EventTypeRecordUpdated, updated)
	return updated, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.driver.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.driver.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Debug("record deleted", "id", id)
	s.publish(ctx, eventstream.EventTypeRecordDeleted, current)
	return nil
}

// Get returns a record by identifier.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	return s.driver.Get(ctx, id)
}

// SearchRequest is a search as outer layers express it. Empty fields take
// the defaults: every record, 50 per page, newest first.
type SearchRequest struct {
	Query     string
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// Search returns the page of records tagged with every word of the query.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*storage.Page, error) {
	opts, err := s.searchOptions(req)
	if err != nil {
		return nil, err
	}
	return s.driver.Search(ctx, opts)
}

// SearchByTagIDs returns the page of records carrying any of ids.
func (s *Service) SearchByTagIDs(ctx context.Context, ids []uuid.UUID, req SearchRequest) (*storage.Page, error) {
	opts, err := s.searchOptions(req)
	if err != nil {
		return nil, err
	}
	return s.driver.SearchByTagIDs(ctx, ids, opts)
}

// FindByTags returns the record whose tag set is exactly the words of text.
func (s *Service) FindByTags(ctx context.Context, text string) (*record.Record, error) {
	tags, err := s.tags.FromContent(text)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, &InvalidQueryError{Param: "q", Reason: "at least one tag is required"}
	}
	return s.driver.FindByTagSet(ctx, tags.Values())
}

// TagStatistics returns how many records use each tag, most used first.
func (s *Service) TagStatistics(ctx context.Context) ([]storage.TagCount, error) {
	return s.driver.TagStatistics(ctx)
}

// Count returns the number of stored records.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.driver.Count(ctx)
}

// Import captures every content as a record in one transaction. Every
// content is validated first, so a bad entry aborts the import before
// anything is stored. Entries sharing a tag set are rejected up front.
func (s *Service) Import(ctx context.Context, contents []string) ([]*record.Record, error) {
	batch := make([]*record.Record, 0, len(contents))
	for i, content := range contents {
		r, err := s.build(content)
		if err != nil {
			return nil, &ImportError{Index: i, Err: err}
		}

		seen := record.ScanChecker{Records: batch}
		dup, err := seen.ExistsByTagSet(ctx, r.TagValues(), nil)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, &ImportError{Index: i, Err: &storage.DuplicateRecordError{Tags: r.TagValues()}}
		}
		batch = append(batch, r)
	}

	if err := s.driver.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("records imported", "count", len(batch))
	for _, r := range batch {
		s.publish(ctx, eventstream.EventTypeRecordCreated, r)
	}
	return batch, nil
}

func (s *Service) parse(content string) (tag.Set, error) {
	if err := record.CheckContent(content); err != nil {
		return nil, err
	}
	tags, err := s.tags.FromContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.records.Check(content, tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Service) build(content string) (*record.Record, error) {
	tags, err := s.parse(content)
	if err != nil {
		return nil, err
	}
	return s.records.New(content, tags)
}

// checkDuplicate fails fast on a known duplicate. A miss proves nothing
// under concurrency; the storage constraint settles races.
func (s *Service) checkDuplicate(ctx context.Context, values []string, exclude *uuid.UUID) error {
	exists, err := s.driver.ExistsByTagSet(ctx, values, exclude)
	if err != nil {
		return err
	}
	if exists {
		return &storage.DuplicateRecordError{Tags: values}
	}
	return nil
}

func (s *Service) searchOptions(req SearchRequest) (storage.SearchOptions, error) {
	sortBy, err := record.ParseSortField(req.SortBy)
	if err != nil {
		return storage.SearchOptions{}, &InvalidQueryError{Param: "sort_by", Reason: err.Error()}
	}
	order, err := record.ParseSortOrder(req.SortOrder)
	if err != nil {
		return storage.SearchOptions{}, &InvalidQueryError{Param: "order", Reason: err.Error()}
	}
	if req.Limit < 0 {
		return storage.SearchOptions{}, &InvalidQueryError{Param: "limit", Reason: "must not be negative"}
	}
	if req.Offset < 0 {
		return storage.SearchOptions{}, &InvalidQueryError{Param: "offset", Reason: "must not be negative"}
	}

	return storage.SearchOptions{
		Query:  record.NewQuery(req.Query),
		Limit:  req.Limit,
		Offset: req.Offset,
		SortBy: sortBy,
		Order:  order,
	}.Normalized(), nil
}

// publish emits an event for a committed write. The write stands even when
// publishing fails, so failures are only logged.
func (s *Service) publish(ctx context.Context, eventType string, r *record.Record) {
	event := eventstream.NewRecordEvent(eventType, r, time.Now())
	if err := s.publisher.PublishRecord(ctx, event); err != nil {
		s.logger.Warn("failed to publish record event",
			"event_type", eventType,
			"id", r.ID,
			"error", err,
		)
	}
}

// InvalidQueryError is returned for a malformed search parameter.
type InvalidQueryError struct {
	Param  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// ImportError locates the entry that made an import fail.
type ImportError struct {
	Index int
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index+1, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
