package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
)

// SQLiteAccessRepo answers the individual questions the access resolver
// asks about a user and a task. Each method is a single query so that
// rules evaluated later in the chain cost nothing when an earlier one
// already allowed.
type SQLiteAccessRepo struct {
	db db.DBTX
}

// NewSQLiteAccessRepo creates a new SQLiteAccessRepo.
func NewSQLiteAccessRepo(db db.DBTX) *SQLiteAccessRepo {
	return &SQLiteAccessRepo{db: db}
}

func (r *SQLiteAccessRepo) UserRole(ctx context.Context, userID int64) (domain.Role, error) {
	var role string
	err := r.db.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading user role: %w", err)
	}
	return domain.Role(role), nil
}

func (r *SQLiteAccessRepo) Task(ctx context.Context, taskID int64) (*domain.Task, error) {
	return NewSQLiteTaskRepo(r.db).GetByID(ctx, taskID)
}

func (r *SQLiteAccessRepo) IsAssigned(ctx context.Context, userID, taskID int64) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM task_assignments WHERE task_id = ? AND user_id = ?`, taskID, userID)
}

func (r *SQLiteAccessRepo) IsTeamMember(ctx context.Context, userID, teamID int64) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID)
}

// InProjectTeam reports whether the user belongs to any team linked to the
// project.
func (r *SQLiteAccessRepo) InProjectTeam(ctx context.Context, userID, projectID int64) (bool, error) {
	return r.exists(ctx,
		`SELECT 1 FROM team_members m JOIN teams t ON t.id = m.team_id
		WHERE t.project_id = ? AND m.user_id = ?`, projectID, userID)
}

// HasProjectHistory reports whether the user has any time entry against
// any task of the project.
func (r *SQLiteAccessRepo) HasProjectHistory(ctx context.Context, userID, projectID int64) (bool, error) {
	return r.exists(ctx,
		`SELECT 1 FROM time_entries e JOIN tasks t ON t.id = e.task_id
		WHERE t.project_id = ? AND e.user_id = ?`, projectID, userID)
}

func (r *SQLiteAccessRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (`+query+`)`, args...).Scan(&one)
	if err != nil {
		return false, fmt.Errorf("checking access fact: %w", err)
	}
	return one == 1, nil
}
