// Package sqlite provides a SQLite-backed storage driver. Queries are built
// with ent's dialect-aware SQL builder and tag arrays are stored as JSON text.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/storage"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

const table = "records"

var columns = []string{"id", "content", "tags", "normalized_tags", "created_at", "updated_at"}

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
	sb *entsql.DialectBuilder
}

// NewDriver opens the database at dbPath and applies pending migrations.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer, and every connection to ":memory:" opens
	// a distinct database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	d := &Driver{
		db: db,
		sb: entsql.Dialect(dialect.SQLite),
	}

	if err := d.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// Create stores a new record.
func (d *Driver) Create(ctx context.Context, r *record.Record) error {
	if r == nil {
		return errors.New("cannot store nil record")
	}

	query, args, err := d.insert(r)
	if err != nil {
		return err
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return translate("create", err, r.TagValues())
	}
	return nil
}

// CreateBatch stores all records in one transaction, or none of them.
func (d *Driver) CreateBatch(ctx context.Context, records []*record.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("begin batch", err, nil)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range records {
		if r == nil {
			return errors.New("cannot store nil record")
		}
		query, args, err := d.insert(r)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return translate("create batch", err, r.TagValues())
		}
	}

	if err := tx.Commit(); err != nil {
		return translate("commit batch", err, nil)
	}
	return nil
}

// Update replaces the content, tags and update time of an existing record.
func (d *Driver) Update(ctx context.Context, r *record.Record) error {
	if r == nil {
		return errors.New("cannot update nil record")
	}

	tags, normalized, err := encodeTags(r)
	if err != nil {
		return err
	}

	query, args := d.sb.Update(table).
		Set("content", r.Content).
		Set("tags", tags).
		Set("normalized_tags", normalized).
		Set("updated_at", r.UpdatedAt.UnixNano()).
		Where(entsql.EQ("id", r.ID.String())).
		Query()

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate("update", err, r.TagValues())
	}
	return expectOne(res, r.ID)
}

// Delete removes a record.
func (d *Driver) Delete(ctx context.Context, id uuid.UUID) error {
	query, args := d.sb.Delete(table).
		Where(entsql.EQ("id", id.String())).
		Query()

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate("delete", err, nil)
	}
	return expectOne(res, id)
}

// Get retrieves a record by its identifier.
func (d *Driver) Get(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	query, args := d.sb.Select(columns...).
		From(d.sb.Table(table)).
		Where(entsql.EQ("id", id.String())).
		Query()

	return d.queryOne(ctx, "get", id, query, args)
}

// Search returns the page of records carrying every query token.
func (d *Driver) Search(ctx context.Context, opts storage.SearchOptions) (*storage.Page, error) {
	opts = opts.Normalized()

	var where *entsql.Predicate
	if !opts.Query.IsEmpty() {
		where = containsAll("normalized_tags", opts.Query.Tokens)
	}
	return d.page(ctx, "search", where, opts)
}

// SearchByTagIDs returns the page of records carrying any of the given tag
// identifiers.
func (d *Driver) SearchByTagIDs(ctx context.Context, ids []uuid.UUID, opts storage.SearchOptions) (*storage.Page, error) {
	opts = opts.Normalized()
	if len(ids) == 0 {
		return storage.NewPage(nil, 0, opts.Offset), nil
	}

	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return d.page(ctx, "search by tag ids", containsAny("tags", values), opts)
}

// FindByTagSet returns the record with exactly the given tag set.
func (d *Driver) FindByTagSet(ctx context.Context, values []string) (*record.Record, error) {
	key, err := canonicalJSON(values)
	if err != nil {
		return nil, err
	}

	query, args := d.sb.Select(columns...).
		From(d.sb.Table(table)).
		Where(entsql.EQ("normalized_tags", key)).
		Query()

	return d.queryOne(ctx, "find by tag set", uuid.Nil, query, args)
}

// ExistsByTagSet reports whether a record other than exclude has exactly the
// given tag set.
func (d *Driver) ExistsByTagSet(ctx context.Context, values []string, exclude *uuid.UUID) (bool, error) {
	key, err := canonicalJSON(values)
	if err != nil {
		return false, err
	}

	where := entsql.EQ("normalized_tags", key)
	if exclude != nil {
		where = entsql.And(where, entsql.NEQ("id", exclude.String()))
	}

	query, args := d.sb.Select("id").
		From(d.sb.Table(table)).
		Where(where).
		Limit(1).
		Query()

	var id string
	err = d.db.QueryRowContext(ctx, query, args...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, translate("exists by tag set", err, nil)
	}
	return true, nil
}

// Count returns the number of stored records.
func (d *Driver) Count(ctx context.Context) (int, error) {
	return d.count(ctx, "count", nil)
}

// TagStatistics returns how many records use each tag, most used first and
// alphabetical among equals.
func (d *Driver) TagStatistics(ctx context.Context) ([]storage.TagCount, error) {
	const query = `SELECT je.value AS tag, COUNT(*) AS n
FROM records, json_each(records.normalized_tags) AS je
GROUP BY je.value
ORDER BY n DESC, tag ASC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translate("tag statistics", err, nil)
	}
	defer rows.Close()

	stats := []storage.TagCount{}
	for rows.Next() {
		var tc storage.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count: %w", err)
		}
		stats = append(stats, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("tag statistics", err, nil)
	}
	return stats, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

func (d *Driver) insert(r *record.Record) (string, []any, error) {
	tags, normalized, err := encodeTags(r)
	if err != nil {
		return "", nil, err
	}

	query, args := d.sb.Insert(table).
		Columns(columns...).
		Values(r.ID.String(), r.Content, tags, normalized, r.CreatedAt.UnixNano(), r.UpdatedAt.UnixNano()).
		Query()
	return query, args, nil
}

func (d *Driver) page(ctx context.Context, op string, where *entsql.Predicate, opts storage.SearchOptions) (*storage.Page, error) {
	total, err := d.count(ctx, op, where)
	if err != nil {
		return nil, err
	}

	order := entsql.Desc
	if opts.Order == record.SortAsc {
		order = entsql.Asc
	}

	selector := d.sb.Select(columns...).
		From(d.sb.Table(table)).
		OrderBy(order(string(opts.SortBy)), order("id")).
		Limit(opts.Limit).
		Offset(opts.Offset)
	if where != nil {
		selector.Where(where)
	}

	records, err := d.queryAll(ctx, op, selector)
	if err != nil {
		return nil, err
	}
	return storage.NewPage(records, total, opts.Offset), nil
}

func (d *Driver) count(ctx context.Context, op string, where *entsql.Predicate) (int, error) {
	selector := d.sb.Select(entsql.Count("*")).From(d.sb.Table(table))
	if where != nil {
		selector.Where(where)
	}
	query, args := selector.Query()

	var n int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, translate(op, err, nil)
	}
	return n, nil
}

func (d *Driver) queryOne(ctx context.Context, op string, id uuid.UUID, query string, args []any) (*record.Record, error) {
	r, err := scanRecord(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, translate(op, err, nil)
	}
	return r, nil
}

func (d *Driver) queryAll(ctx context.Context, op string, selector *entsql.Selector) ([]*record.Record, error) {
	query, args := selector.Query()
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(op, err, nil)
	}
	defer rows.Close()

	var records []*record.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(op, err, nil)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*record.Record, error) {
	var (
		id, content, tags, normalized string
		createdAt, updatedAt          int64
	)
	if err := s.Scan(&id, &content, &tags, &normalized, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	row := storage.Row{
		Content:   content,
		CreatedAt: time.Unix(0, createdAt).UTC(),
		UpdatedAt: time.Unix(0, updatedAt).UTC(),
	}

	var err error
	if row.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse record id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tags), &row.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of record %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(normalized), &row.NormalizedTags); err != nil {
		return nil, fmt.Errorf("failed to decode normalized tags of record %s: %w", id, err)
	}
	return storage.FromRow(row)
}

func encodeTags(r *record.Record) (string, string, error) {
	row := storage.ToRow(r)

	tags, err := json.Marshal(row.Tags)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode tags: %w", err)
	}
	normalized, err := json.Marshal(row.NormalizedTags)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode normalized tags: %w", err)
	}
	return string(tags), string(normalized), nil
}

// canonicalJSON encodes values the way encodeTags stores a tag set, so the
// result can be compared to the normalized_tags column directly.
func canonicalJSON(values []string) (string, error) {
	b, err := json.Marshal(tag.SetFromValues(values...).Values())
	if err != nil {
		return "", fmt.Errorf("failed to encode tag set: %w", err)
	}
	return string(b), nil
}

// containsAll matches rows whose JSON array column holds every value.
func containsAll(column string, values []string) *entsql.Predicate {
	args := make([]any, 0, len(values)+1)
	for _, v := range values {
		args = append(args, v)
	}
	args = append(args, len(values))

	return entsql.ExprP(fmt.Sprintf(
		"(SELECT COUNT(DISTINCT je.value) FROM json_each(%s.%s) AS je WHERE je.value IN (%s)) = ?",
		table, column, placeholders(len(values)),
	), args...)
}

// containsAny matches rows whose JSON array column holds at least one value.
func containsAny(column string, values []string) *entsql.Predicate {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}

	return entsql.ExprP(fmt.Sprintf(
		"EXISTS (SELECT 1 FROM json_each(%s.%s) AS je WHERE je.value IN (%s))",
		table, column, placeholders(len(values)),
	), args...)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func expectOne(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.NotFoundError{ID: id}
	}
	return nil
}
