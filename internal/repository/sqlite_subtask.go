package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
)

// SQLiteSubtaskRepo implements SubtaskRepo using a SQLite database.
type SQLiteSubtaskRepo struct {
	db db.DBTX
}

// NewSQLiteSubtaskRepo creates a new SQLiteSubtaskRepo.
func NewSQLiteSubtaskRepo(db db.DBTX) *SQLiteSubtaskRepo {
	return &SQLiteSubtaskRepo{db: db}
}

func (r *SQLiteSubtaskRepo) CreateDiscussion(ctx context.Context, d *domain.Discussion) error {
	var author any
	if d.AuthorID != 0 {
		author = d.AuthorID
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO discussions (task_id, author_id, body, created_at) VALUES (?, ?, ?, ?)`,
		d.TaskID, author, d.Body, formatTS(d.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("task %d for discussion: %w", d.TaskID, domain.ErrNotFound)
		}
		return fmt.Errorf("inserting discussion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading discussion id: %w", err)
	}
	d.ID = id
	return nil
}

// Create inserts the subtask and its assignee rows.
func (r *SQLiteSubtaskRepo) Create(ctx context.Context, s *domain.Subtask) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO subtasks (discussion_id, title, done) VALUES (?, ?, ?)`,
		s.DiscussionID, s.Title, boolToInt(s.Done),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("discussion %d for subtask: %w", s.DiscussionID, domain.ErrNotFound)
		}
		return fmt.Errorf("inserting subtask: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading subtask id: %w", err)
	}
	s.ID = id
	for _, userID := range s.Assignees {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO subtask_assignees (subtask_id, user_id) VALUES (?, ?)`, id, userID,
		); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("subtask assignee %d: %w", userID, domain.ErrNotFound)
			}
			return fmt.Errorf("inserting subtask assignee: %w", err)
		}
	}
	return nil
}

func (r *SQLiteSubtaskRepo) GetByID(ctx context.Context, id int64) (*domain.Subtask, error) {
	var (
		s    domain.Subtask
		done int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, discussion_id, title, done FROM subtasks WHERE id = ?`, id,
	).Scan(&s.ID, &s.DiscussionID, &s.Title, &done)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subtask %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning subtask: %w", err)
	}
	s.Done = intToBool(done)

	assignees, err := r.assignees(ctx, `SELECT subtask_id, user_id FROM subtask_assignees
		WHERE subtask_id = ? ORDER BY user_id`, id)
	if err != nil {
		return nil, err
	}
	s.Assignees = assignees[id]
	return &s, nil
}

// ListByTask returns every subtask under the task's discussions with
// assignees populated.
func (r *SQLiteSubtaskRepo) ListByTask(ctx context.Context, taskID int64) ([]*domain.Subtask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.discussion_id, s.title, s.done
		FROM subtasks s JOIN discussions d ON d.id = s.discussion_id
		WHERE d.task_id = ? ORDER BY s.id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing subtasks: %w", err)
	}
	var subtasks []*domain.Subtask
	for rows.Next() {
		var (
			s    domain.Subtask
			done int
		)
		if err := rows.Scan(&s.ID, &s.DiscussionID, &s.Title, &done); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning subtask: %w", err)
		}
		s.Done = intToBool(done)
		subtasks = append(subtasks, &s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subtasks: %w", err)
	}

	assignees, err := r.assignees(ctx,
		`SELECT sa.subtask_id, sa.user_id FROM subtask_assignees sa
		JOIN subtasks s ON s.id = sa.subtask_id
		JOIN discussions d ON d.id = s.discussion_id
		WHERE d.task_id = ? ORDER BY sa.subtask_id, sa.user_id`, taskID)
	if err != nil {
		return nil, err
	}
	for _, s := range subtasks {
		s.Assignees = assignees[s.ID]
	}
	return subtasks, nil
}

func (r *SQLiteSubtaskRepo) assignees(ctx context.Context, query string, arg int64) (map[int64][]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing subtask assignees: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]int64)
	for rows.Next() {
		var subtaskID, userID int64
		if err := rows.Scan(&subtaskID, &userID); err != nil {
			return nil, fmt.Errorf("scanning subtask assignee: %w", err)
		}
		out[subtaskID] = append(out[subtaskID], userID)
	}
	return out, rows.Err()
}

// RemoveAssigneeUnderTask drops userID from every subtask under the task's
// discussions and returns the number of subtasks that changed.
func (r *SQLiteSubtaskRepo) RemoveAssigneeUnderTask(ctx context.Context, taskID, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM subtask_assignees
		WHERE user_id = ?
		  AND subtask_id IN (
		      SELECT s.id FROM subtasks s
		      JOIN discussions d ON d.id = s.discussion_id
		      WHERE d.task_id = ?)`,
		userID, taskID,
	)
	if err != nil {
		return 0, fmt.Errorf("removing subtask assignee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return n, nil
}
