package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/papercomputeco/tagstash/pkg/storage"
)

// withConn runs fn on a pooled connection. Waiting for a free connection is
// bounded by the connect timeout; fn itself runs under ctx.
func (d *Driver) withConn(ctx context.Context, fn func(*pgxpool.Conn) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, d.connectTimeout)
	defer cancel()

	conn, err := d.pool.Acquire(acquireCtx)
	if err != nil {
		return &acquireError{err: err}
	}
	defer conn.Release()

	return fn(conn)
}

// withTx runs fn in a transaction, committing when fn succeeds and rolling
// back otherwise.
func (d *Driver) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return d.withConn(ctx, func(conn *pgxpool.Conn) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}

// acquireError marks a failure to obtain a pooled connection.
type acquireError struct {
	err error
}

func (e *acquireError) Error() string { return "acquire connection: " + e.err.Error() }

func (e *acquireError) Unwrap() error { return e.err }

func translate(op string, err error, tags []string) error {
	return storage.Translate(op, classify(err), tags)
}

// classify sorts a pgx error into an engine error kind by SQLSTATE class.
func classify(err error) storage.EngineError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e := storage.EngineError{
			Code:       pgErr.Code,
			Constraint: pgErr.ConstraintName,
			Err:        err,
		}
		switch {
		case pgErr.Code == "23505":
			e.Kind = storage.EngineUniqueViolation
		case strings.HasPrefix(pgErr.Code, "23"):
			e.Kind = storage.EngineConstraintViolation
		case strings.HasPrefix(pgErr.Code, "08"),
			strings.HasPrefix(pgErr.Code, "57P0"),
			pgErr.Code == "53300":
			e.Kind = storage.EngineConnection
		default:
			e.Kind = storage.EngineUnknown
		}
		return e
	}

	var (
		acqErr  *acquireError
		connErr *pgconn.ConnectError
	)
	switch {
	case errors.As(err, &acqErr),
		errors.As(err, &connErr),
		pgconn.Timeout(err),
		errors.Is(err, context.DeadlineExceeded):
		return storage.EngineError{Kind: storage.EngineConnection, Err: err}
	}
	return storage.EngineError{Kind: storage.EngineUnknown, Err: err}
}
