package sqlite

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/tagstash/pkg/storage"
)

// translate maps a go-sqlite3 error into the storage error taxonomy.
func translate(op string, err error, tags []string) error {
	return storage.Translate(op, classify(err), tags)
}

// classify sorts a native error into an engine error kind. SQLite reports the
// offending column rather than a constraint name, for example
// "UNIQUE constraint failed: records.normalized_tags".
func classify(err error) storage.EngineError {
	if errors.Is(err, context.DeadlineExceeded) {
		return storage.EngineError{Kind: storage.EngineConnection, Err: err}
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return storage.EngineError{Kind: storage.EngineUnknown, Err: err}
	}

	e := storage.EngineError{
		Code: strconv.Itoa(int(sqliteErr.ExtendedCode)),
		Err:  err,
	}

	switch sqliteErr.Code {
	case sqlite3.ErrConstraint:
		e.Kind = storage.EngineConstraintViolation
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			e.Kind = storage.EngineUniqueViolation
		}
		e.Constraint = constraintOf(sqliteErr.Error())
	case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen:
		e.Kind = storage.EngineConnection
	default:
		e.Kind = storage.EngineUnknown
	}
	return e
}

func constraintOf(msg string) string {
	_, after, found := strings.Cut(msg, "failed: ")
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}
