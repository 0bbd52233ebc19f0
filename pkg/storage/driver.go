// Package storage defines the persistence contract for records and the error
// taxonomy every storage driver translates its engine errors into.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/papercomputeco/tagstash/pkg/record"
)

// Driver persists records and answers tag-set queries. The driver's engine is
// the single authority on tag-set uniqueness: Create, Update and CreateBatch
// must fail with *DuplicateRecordError when another live record already has
// exactly the same tag set, even under concurrent writers.
type Driver interface {
	// Create stores a new record.
	Create(ctx context.Context, r *record.Record) error

	// CreateBatch stores all records in one transaction. Either every record
	// is stored or none is.
	CreateBatch(ctx context.Context, records []*record.Record) error

	// Update replaces the content, tags and update time of an existing record.
	// Returns NotFoundError if the record does not exist.
	Update(ctx context.Context, r *record.Record) error

	// Delete removes a record. Returns NotFoundError if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Get retrieves a record by its identifier.
	Get(ctx context.Context, id uuid.UUID) (*record.Record, error)

	// Search returns the page of records whose tags contain every query token.
	Search(ctx context.Context, opts SearchOptions) (*Page, error)

	// SearchByTagIDs returns the page of records sharing at least one tag
	// identifier with ids.
	SearchByTagIDs(ctx context.Context, ids []uuid.UUID, opts SearchOptions) (*Page, error)

	// FindByTagSet returns the record whose tag set is exactly values.
	// Returns NotFoundError when there is none.
	FindByTagSet(ctx context.Context, values []string) (*record.Record, error)

	// ExistsByTagSet reports whether a record other than exclude has exactly
	// the tag set values.
	ExistsByTagSet(ctx context.Context, values []string, exclude *uuid.UUID) (bool, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// TagStatistics returns how many records use each tag, most used first
	// and alphabetically among equals.
	TagStatistics(ctx context.Context) ([]TagCount, error)

	// Close releases the driver's resources.
	Close() error
}

// Migrator is implemented by drivers backed by a versioned schema.
type Migrator interface {
	// Migrate applies every pending schema migration.
	Migrate(ctx context.Context) error

	// MigrateDown reverts every applied schema migration, dropping all
	// stored records.
	MigrateDown(ctx context.Context) error
}
