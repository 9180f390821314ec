package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"timecore/internal/db"
)

// FailOnNthExecUoW injects an error on the Nth write it sees, counted across
// every transaction it begins. Pointing FailOn at a write deep inside a
// multi-statement operation exercises that operation's rollback path; when
// transactions run concurrently, exactly one of them absorbs the failure.
//
// ExecContext calls are counted starting at 1; reads pass through uncounted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	count atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if fnErr := fn(ctx, &failingExec{DBTX: tx, uow: u}); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failingExec struct {
	db.DBTX
	uow *FailOnNthExecUoW
}

func (f *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.count.Add(1) == f.uow.FailOn {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
