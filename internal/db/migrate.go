package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillSubtasks(db, slog.Default()); err != nil {
		return fmt.Errorf("backfilling subtasks: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL UNIQUE,
		role       TEXT NOT NULL DEFAULT 'user'
		           CHECK(role IN ('admin','developer','user')),
		status     TEXT NOT NULL DEFAULT 'active'
		           CHECK(status IN ('active','inactive')),
		pay_rate   REAL CHECK(pay_rate IS NULL OR pay_rate >= 0),
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS clients (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		archived   INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id  INTEGER REFERENCES clients(id) ON DELETE SET NULL,
		name       TEXT NOT NULL,
		archived   INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		project_id INTEGER REFERENCES projects(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_teams_project ON teams(project_id)`,

	`CREATE TABLE IF NOT EXISTS team_members (
		team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role    TEXT NOT NULL DEFAULT 'member'
		        CHECK(role IN ('lead','member')),
		PRIMARY KEY (team_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_team_members_user ON team_members(user_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		team_id    INTEGER REFERENCES teams(id) ON DELETE SET NULL,
		title      TEXT NOT NULL,
		archived   INTEGER NOT NULL DEFAULT 0,
		is_system  INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_team ON tasks(team_id)`,

	`CREATE TABLE IF NOT EXISTS task_assignments (
		task_id    INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TEXT NOT NULL,
		PRIMARY KEY (task_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_assignments_user ON task_assignments(user_id)`,

	`CREATE TABLE IF NOT EXISTS time_entries (
		id                      INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id                 INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		task_id                 INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		start_time              TEXT,
		end_time                TEXT,
		manual_duration_seconds INTEGER
		                        CHECK(manual_duration_seconds IS NULL OR manual_duration_seconds >= 0),
		notes                   TEXT NOT NULL DEFAULT '',
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_time_entries_user_start ON time_entries(user_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_task ON time_entries(task_id)`,

	// At most one running timer per user, enforced by the store so that
	// concurrent starts from different processes cannot both succeed.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_time_entries_one_running ON time_entries(user_id)
		WHERE start_time IS NOT NULL AND end_time IS NULL AND manual_duration_seconds IS NULL`,

	`CREATE TABLE IF NOT EXISTS discussions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id    INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		author_id  INTEGER REFERENCES users(id) ON DELETE SET NULL,
		body       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_discussions_task ON discussions(task_id)`,

	// Legacy serialized subtask lists; migrated into the child tables below.
	`ALTER TABLE discussions ADD COLUMN subtasks_json TEXT`,

	`CREATE TABLE IF NOT EXISTS subtasks (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		discussion_id INTEGER NOT NULL REFERENCES discussions(id) ON DELETE CASCADE,
		title         TEXT NOT NULL,
		done          INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_subtasks_discussion ON subtasks(discussion_id)`,

	`CREATE TABLE IF NOT EXISTS subtask_assignees (
		subtask_id INTEGER NOT NULL REFERENCES subtasks(id) ON DELETE CASCADE,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (subtask_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_subtask_assignees_user ON subtask_assignees(user_id)`,
}

// legacySubtask is one element of a discussions.subtasks_json blob.
type legacySubtask struct {
	Title     string   `json:"title"`
	Assignees []string `json:"assignees"`
	Done      bool     `json:"done"`
}

// migrateBackfillSubtasks moves serialized subtask blobs into the subtasks
// and subtask_assignees tables. Assignees are stored by user name in the
// blob and resolved to ids; unknown names are dropped. A blob that fails to
// parse is logged and left in place, it never aborts the migration.
// Idempotent: a migrated discussion has its blob cleared.
func migrateBackfillSubtasks(db *sql.DB, logger *slog.Logger) error {
	ctx := context.Background()

	rows, err := db.QueryContext(ctx,
		`SELECT id, subtasks_json FROM discussions
		WHERE subtasks_json IS NOT NULL AND subtasks_json != ''
		ORDER BY id`)
	if err != nil {
		return fmt.Errorf("listing legacy subtask blobs: %w", err)
	}
	type blob struct {
		discussionID int64
		raw          string
	}
	var blobs []blob
	for rows.Next() {
		var b blob
		if err := rows.Scan(&b.discussionID, &b.raw); err != nil {
			rows.Close()
			return fmt.Errorf("scanning legacy subtask blob: %w", err)
		}
		blobs = append(blobs, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating legacy subtask blobs: %w", err)
	}

	for _, b := range blobs {
		var items []legacySubtask
		if err := json.Unmarshal([]byte(b.raw), &items); err != nil {
			logger.Warn("skipping malformed subtask blob",
				"discussion_id", b.discussionID, "error", err.Error())
			continue
		}
		if err := backfillDiscussionSubtasks(ctx, db, b.discussionID, items); err != nil {
			return fmt.Errorf("backfilling discussion %d: %w", b.discussionID, err)
		}
	}
	return nil
}

func backfillDiscussionSubtasks(ctx context.Context, db *sql.DB, discussionID int64, items []legacySubtask) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting backfill transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, item := range items {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO subtasks (discussion_id, title, done) VALUES (?, ?, ?)`,
			discussionID, item.Title, item.Done)
		if err != nil {
			return fmt.Errorf("inserting subtask: %w", err)
		}
		subtaskID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("subtask id: %w", err)
		}
		for _, name := range item.Assignees {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO subtask_assignees (subtask_id, user_id)
				SELECT ?, id FROM users WHERE name = ?`, subtaskID, name); err != nil {
				return fmt.Errorf("inserting subtask assignee %q: %w", name, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE discussions SET subtasks_json = NULL WHERE id = ?`, discussionID); err != nil {
		return fmt.Errorf("clearing subtask blob: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing subtask backfill: %w", err)
	}
	committed = true
	return nil
}
