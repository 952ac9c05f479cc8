package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAccess_OneRunningTimer races many inserts of a running timer
// for the same user across pooled connections: exactly one must win and the
// rest must see ErrConflict.
func TestConcurrentAccess_OneRunningTimer(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	u := seedUser(t, database, "")
	_, task := seedTask(t, database, "")
	repo := NewSQLiteTimeEntryRepo(database)

	const racers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	start := testutil.ReferenceTime()
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := testutil.NewRunningEntry(u.ID, task.ID, start.Add(time.Duration(i)*time.Millisecond))
			err := repo.Create(ctx, e)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("racer %d: unexpected error: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, conflicts)

	var running int
	require.NoError(t, database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM time_entries WHERE user_id = ? AND end_time IS NULL`, u.ID).Scan(&running))
	assert.Equal(t, 1, running)
}

// TestConcurrentAccess_ReportsDuringWrites verifies reporting reads stay
// consistent while entries are being written.
func TestConcurrentAccess_ReportsDuringWrites(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	u := seedUser(t, database, "")
	_, task := seedTask(t, database, "")
	repo := NewSQLiteTimeEntryRepo(database)

	day := testutil.ReferenceTime()
	q := ReportQuery{UserID: u.ID, From: day.Add(-time.Hour), To: day.Add(24 * time.Hour)}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			e := testutil.NewManualEntry(u.ID, task.ID, 60, day.Add(time.Duration(i)*time.Minute),
				testutil.WithNotes(fmt.Sprintf("entry-%d", i)))
			if err := repo.Create(ctx, e); err != nil {
				t.Errorf("writer: create entry %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				rows, err := repo.ListReportable(ctx, q)
				if err != nil {
					t.Errorf("reader %d: list reportable: %v", reader, err)
					return
				}
				for _, row := range rows {
					if row.Entry.ID == 0 || row.ProjectID == 0 {
						t.Errorf("reader %d: got row with empty id", reader)
					}
				}
			}
		}(r)
	}
	wg.Wait()

	rows, err := repo.ListReportable(ctx, q)
	require.NoError(t, err)
	assert.Len(t, rows, 20)
}
