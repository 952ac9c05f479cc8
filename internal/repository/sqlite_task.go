package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
)

const taskColumns = `t.id, t.project_id, t.team_id, t.title, t.archived, t.is_system, t.created_at`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(db db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (project_id, team_id, title, archived, is_system, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ProjectID, nullableInt64(t.TeamID), t.Title,
		boolToInt(t.Archived), boolToInt(t.IsSystem), formatTS(t.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("project or team for task %q: %w", t.Title, domain.ErrNotFound)
		}
		return fmt.Errorf("inserting task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading task id: %w", err)
	}
	t.ID = id
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}
	return t, err
}

// ListByProject returns the project's unarchived tasks. System tasks are
// hidden unless includeSystem is set.
func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID int64, includeSystem bool) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t
		WHERE t.project_id = ? AND t.archived = 0`
	if !includeSystem {
		query += ` AND t.is_system = 0`
	}
	query += ` ORDER BY t.title`
	return r.list(ctx, query, projectID)
}

// ListForUser returns unarchived tasks in active projects that the user is
// directly assigned to, plus every system task. This is the candidate list
// for timer pickers; the access resolver still has the final say.
func (r *SQLiteTaskRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.archived = 0 AND p.archived = 0
		  AND (t.is_system = 1
		       OR EXISTS (SELECT 1 FROM task_assignments a WHERE a.task_id = t.id AND a.user_id = ?))
		ORDER BY p.name, t.is_system DESC, t.title`
	return r.list(ctx, query, userID)
}

func (r *SQLiteTaskRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *SQLiteTaskRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET archived = ? WHERE id = ?`, boolToInt(archived), id)
	if err != nil {
		return fmt.Errorf("archiving task: %w", err)
	}
	return requireAffected(res, "task", id)
}

func scanTask(s rowScanner) (*domain.Task, error) {
	var (
		t         domain.Task
		teamID    sql.NullInt64
		archived  int
		isSystem  int
		createdAt string
	)
	if err := s.Scan(&t.ID, &t.ProjectID, &teamID, &t.Title, &archived, &isSystem, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	t.TeamID = int64Ptr(teamID)
	t.Archived = intToBool(archived)
	t.IsSystem = intToBool(isSystem)
	var err error
	if t.CreatedAt, err = parseTS(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// SQLiteAssignmentRepo implements AssignmentRepo using a SQLite database.
type SQLiteAssignmentRepo struct {
	db db.DBTX
}

// NewSQLiteAssignmentRepo creates a new SQLiteAssignmentRepo.
func NewSQLiteAssignmentRepo(db db.DBTX) *SQLiteAssignmentRepo {
	return &SQLiteAssignmentRepo{db: db}
}

func (r *SQLiteAssignmentRepo) Create(ctx context.Context, a *domain.TaskAssignment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO task_assignments (task_id, user_id, created_at) VALUES (?, ?, ?)`,
		a.TaskID, a.UserID, formatTS(a.CreatedAt),
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("user %d already assigned to task %d: %w", a.UserID, a.TaskID, domain.ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("task %d or user %d: %w", a.TaskID, a.UserID, domain.ErrNotFound)
	case err != nil:
		return fmt.Errorf("inserting assignment: %w", err)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) Delete(ctx context.Context, taskID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM task_assignments WHERE task_id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return fmt.Errorf("deleting assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("assignment of user %d to task %d: %w", userID, taskID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) Exists(ctx context.Context, taskID, userID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM task_assignments WHERE task_id = ? AND user_id = ?`, taskID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking assignment: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteAssignmentRepo) ListByTask(ctx context.Context, taskID int64) ([]domain.TaskAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id, user_id, created_at FROM task_assignments WHERE task_id = ? ORDER BY user_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.TaskAssignment
	for rows.Next() {
		var (
			a         domain.TaskAssignment
			createdAt string
		)
		if err := rows.Scan(&a.TaskID, &a.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		if a.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
