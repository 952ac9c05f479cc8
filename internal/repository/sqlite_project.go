package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
)

const projectColumns = `id, client_id, name, archived, created_at`

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(db db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: db}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (client_id, name, archived, created_at) VALUES (?, ?, ?, ?)`,
		nullableInt64(p.ClientID), p.Name, boolToInt(p.Archived), formatTS(p.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("client for project %q: %w", p.Name, domain.ErrNotFound)
		}
		return fmt.Errorf("inserting project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading project id: %w", err)
	}
	p.ID = id
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	return p, err
}

func (r *SQLiteProjectRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE archived = 0 ORDER BY name`
	if includeArchived {
		query = `SELECT ` + projectColumns + ` FROM projects ORDER BY name`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLiteProjectRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE projects SET archived = ? WHERE id = ?`, boolToInt(archived), id)
	if err != nil {
		return fmt.Errorf("archiving project: %w", err)
	}
	return requireAffected(res, "project", id)
}

func scanProject(s rowScanner) (*domain.Project, error) {
	var (
		p         domain.Project
		clientID  sql.NullInt64
		archived  int
		createdAt string
	)
	if err := s.Scan(&p.ID, &clientID, &p.Name, &archived, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.ClientID = int64Ptr(clientID)
	p.Archived = intToBool(archived)
	var err error
	if p.CreatedAt, err = parseTS(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// SQLiteClientRepo implements ClientRepo using a SQLite database.
type SQLiteClientRepo struct {
	db db.DBTX
}

// NewSQLiteClientRepo creates a new SQLiteClientRepo.
func NewSQLiteClientRepo(db db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: db}
}

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (name, archived, created_at) VALUES (?, ?, ?)`,
		c.Name, boolToInt(c.Archived), formatTS(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading client id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	var (
		c         domain.Client
		archived  int
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, archived, created_at FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &archived, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning client: %w", err)
	}
	c.Archived = intToBool(archived)
	if c.CreatedAt, err = parseTS(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteClientRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE clients SET archived = ? WHERE id = ?`, boolToInt(archived), id)
	if err != nil {
		return fmt.Errorf("archiving client: %w", err)
	}
	return requireAffected(res, "client", id)
}
