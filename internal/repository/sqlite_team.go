package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
)

// SQLiteTeamRepo implements TeamRepo using a SQLite database.
type SQLiteTeamRepo struct {
	db db.DBTX
}

// NewSQLiteTeamRepo creates a new SQLiteTeamRepo.
func NewSQLiteTeamRepo(db db.DBTX) *SQLiteTeamRepo {
	return &SQLiteTeamRepo{db: db}
}

func (r *SQLiteTeamRepo) Create(ctx context.Context, t *domain.Team) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (name, project_id, created_at) VALUES (?, ?, ?)`,
		t.Name, nullableInt64(t.ProjectID), formatTS(t.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("project for team %q: %w", t.Name, domain.ErrNotFound)
		}
		return fmt.Errorf("inserting team: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading team id: %w", err)
	}
	t.ID = id
	return nil
}

func (r *SQLiteTeamRepo) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	var (
		t         domain.Team
		projectID sql.NullInt64
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, project_id, created_at FROM teams WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &projectID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning team: %w", err)
	}
	t.ProjectID = int64Ptr(projectID)
	if t.CreatedAt, err = parseTS(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SQLiteTeamRepo) AddMember(ctx context.Context, m domain.TeamMembership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id, role) VALUES (?, ?, ?)`,
		m.TeamID, m.UserID, string(m.Role),
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("user %d already in team %d: %w", m.UserID, m.TeamID, domain.ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("team %d or user %d: %w", m.TeamID, m.UserID, domain.ErrNotFound)
	case err != nil:
		return fmt.Errorf("inserting team member: %w", err)
	}
	return nil
}

func (r *SQLiteTeamRepo) RemoveMember(ctx context.Context, teamID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID)
	if err != nil {
		return fmt.Errorf("removing team member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d in team %d: %w", userID, teamID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteTeamRepo) ListMembers(ctx context.Context, teamID int64) ([]domain.TeamMembership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id, user_id, role FROM team_members WHERE team_id = ? ORDER BY user_id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	var out []domain.TeamMembership
	for rows.Next() {
		var (
			m    domain.TeamMembership
			role string
		)
		if err := rows.Scan(&m.TeamID, &m.UserID, &role); err != nil {
			return nil, fmt.Errorf("scanning team member: %w", err)
		}
		m.Role = domain.TeamRole(role)
		out = append(out, m)
	}
	return out, rows.Err()
}
