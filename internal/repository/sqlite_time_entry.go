package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
)

const entryColumns = `e.id, e.user_id, e.task_id, e.start_time, e.end_time,
	e.manual_duration_seconds, e.notes, e.created_at, e.updated_at`

// runningPredicate matches the one-running-timer partial index.
const runningPredicate = `start_time IS NOT NULL AND end_time IS NULL AND manual_duration_seconds IS NULL`

// effectiveTimeExpr places an entry on the calendar: start time, or creation
// time for manual entries.
const effectiveTimeExpr = `CASE WHEN e.manual_duration_seconds IS NULL AND e.start_time IS NOT NULL
	THEN e.start_time ELSE e.created_at END`

// SQLiteTimeEntryRepo implements TimeEntryRepo using a SQLite database.
type SQLiteTimeEntryRepo struct {
	db db.DBTX
}

// NewSQLiteTimeEntryRepo creates a new SQLiteTimeEntryRepo.
func NewSQLiteTimeEntryRepo(db db.DBTX) *SQLiteTimeEntryRepo {
	return &SQLiteTimeEntryRepo{db: db}
}

// Create inserts e and sets its ID. Inserting a second running timer for
// the same user violates idx_time_entries_one_running and returns
// ErrConflict, whichever process got there first.
func (r *SQLiteTimeEntryRepo) Create(ctx context.Context, e *domain.TimeEntry) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO time_entries (user_id, task_id, start_time, end_time, manual_duration_seconds, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.TaskID,
		nullableTS(e.StartTime), nullableTS(e.EndTime), nullableInt64(e.ManualDurationSeconds),
		e.Notes, formatTS(e.CreatedAt), formatTS(e.UpdatedAt),
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("user %d already has a running timer: %w", e.UserID, domain.ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("task %d or user %d: %w", e.TaskID, e.UserID, domain.ErrNotFound)
	case err != nil:
		return fmt.Errorf("inserting time entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading time entry id: %w", err)
	}
	e.ID = id
	return nil
}

func (r *SQLiteTimeEntryRepo) GetByID(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM time_entries e WHERE e.id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time entry %d: %w", id, domain.ErrNotFound)
	}
	return e, err
}

// FindRunning returns the user's running timer, or nil when idle.
func (r *SQLiteTimeEntryRepo) FindRunning(ctx context.Context, userID int64) (*domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries e
		WHERE e.user_id = ? AND e.start_time IS NOT NULL AND e.end_time IS NULL AND e.manual_duration_seconds IS NULL`, userID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// Finish stamps end on a timer that is still running and owned by userID.
// A nil notes leaves the stored notes unchanged. A timer that is missing,
// owned by someone else or already stopped yields ErrNotFound.
func (r *SQLiteTimeEntryRepo) Finish(ctx context.Context, id, userID int64, end time.Time, notes *string, now time.Time) error {
	var notesArg any
	if notes != nil {
		notesArg = *notes
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET end_time = ?, notes = COALESCE(?, notes), updated_at = ?
		WHERE id = ? AND user_id = ? AND `+runningPredicate,
		formatTS(end), notesArg, formatTS(now), id, userID,
	)
	if err != nil {
		return fmt.Errorf("finishing timer: %w", err)
	}
	return requireAffected(res, "running timer", id)
}

// DeleteRunning discards a running timer owned by userID.
func (r *SQLiteTimeEntryRepo) DeleteRunning(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM time_entries WHERE id = ? AND user_id = ? AND `+runningPredicate, id, userID)
	if err != nil {
		return fmt.Errorf("discarding timer: %w", err)
	}
	return requireAffected(res, "running timer", id)
}

// Delete removes any entry owned by userID.
func (r *SQLiteTimeEntryRepo) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting time entry: %w", err)
	}
	return requireAffected(res, "time entry", id)
}

// ListByUser returns the user's entries whose effective time falls in
// [from, to], oldest first. Running timers are included.
func (r *SQLiteTimeEntryRepo) ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]*domain.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries e
		WHERE e.user_id = ? AND `+effectiveTimeExpr+` BETWEEN ? AND ?
		ORDER BY `+effectiveTimeExpr+`, e.id`,
		userID, formatTS(from), formatTS(to),
	)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteTimeEntryRepo) ListReportable(ctx context.Context, q ReportQuery) ([]ReportableEntry, error) {
	query := `SELECT ` + entryColumns + `,
			t.title, p.id, p.name, u.pay_rate,
			(t.archived = 1 OR p.archived = 1 OR COALESCE(c.archived, 0) = 1)
		FROM time_entries e
		JOIN tasks t ON t.id = e.task_id
		JOIN projects p ON p.id = t.project_id
		LEFT JOIN clients c ON c.id = p.client_id
		JOIN users u ON u.id = e.user_id
		WHERE ` + effectiveTimeExpr + ` BETWEEN ? AND ?`
	args := []any{formatTS(q.From), formatTS(q.To)}
	if q.UserID != 0 {
		query += ` AND e.user_id = ?`
		args = append(args, q.UserID)
	}
	query += ` ORDER BY ` + effectiveTimeExpr + `, e.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reportable entries: %w", err)
	}
	defer rows.Close()

	var out []ReportableEntry
	for rows.Next() {
		var (
			re       ReportableEntry
			raw      rawEntry
			payRate  sql.NullFloat64
			archived int
		)
		dest := append(raw.dest(), &re.TaskTitle, &re.ProjectID, &re.ProjectName, &payRate, &archived)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning reportable entry: %w", err)
		}
		e, err := raw.entry()
		if err != nil {
			return nil, err
		}
		re.Entry = *e
		re.UserPayRate = float64Ptr(payRate)
		re.Archived = intToBool(archived)
		out = append(out, re)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reportable entries: %w", err)
	}
	return out, nil
}

// NormalizeLegacy clears timestamps on rows that also carry a manual
// duration and returns how many rows changed.
func (r *SQLiteTimeEntryRepo) NormalizeLegacy(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET start_time = NULL, end_time = NULL, updated_at = ?
		WHERE manual_duration_seconds IS NOT NULL
		  AND (start_time IS NOT NULL OR end_time IS NOT NULL)`,
		formatTS(now),
	)
	if err != nil {
		return 0, fmt.Errorf("normalizing legacy entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return n, nil
}

// rawEntry holds the nullable column values of one time_entries row.
type rawEntry struct {
	e         domain.TimeEntry
	start     sql.NullString
	end       sql.NullString
	manual    sql.NullInt64
	createdAt string
	updatedAt string
}

func (r *rawEntry) dest() []any {
	return []any{
		&r.e.ID, &r.e.UserID, &r.e.TaskID, &r.start, &r.end,
		&r.manual, &r.e.Notes, &r.createdAt, &r.updatedAt,
	}
}

func (r *rawEntry) entry() (*domain.TimeEntry, error) {
	e := r.e
	var err error
	if e.StartTime, err = parseNullableTS(r.start); err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	if e.EndTime, err = parseNullableTS(r.end); err != nil {
		return nil, fmt.Errorf("parsing end_time: %w", err)
	}
	e.ManualDurationSeconds = int64Ptr(r.manual)
	if e.CreatedAt, err = parseTS(r.createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTS(r.updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &e, nil
}

func scanEntry(s rowScanner) (*domain.TimeEntry, error) {
	var raw rawEntry
	if err := s.Scan(raw.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning time entry: %w", err)
	}
	return raw.entry()
}
