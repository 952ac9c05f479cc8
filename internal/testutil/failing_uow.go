package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/timeledger/internal/db"
)

// FailingExecUoW runs each transaction against DB but makes one statement
// fail with Err. Only ExecContext calls whose SQL contains Match are counted
// (an empty Match counts every write); the FailOn'th of them fails, starting
// at 1. Reads always pass through.
//
// The counter spans transactions, so a retried unit of work sees the failure
// only once.
type FailingExecUoW struct {
	DB     *sql.DB
	Match  string
	FailOn int32
	Err    error

	calls atomic.Int32
}

// Calls reports how many matching writes have been attempted so far.
func (u *FailingExecUoW) Calls() int {
	return int(u.calls.Load())
}

func (u *FailingExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(ctx, &failingTx{DBTX: tx, uow: u}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type failingTx struct {
	db.DBTX
	uow *FailingExecUoW
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.Contains(query, f.uow.Match) && f.uow.calls.Add(1) == f.uow.FailOn {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
