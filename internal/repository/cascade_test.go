package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCascadeDelete_TaskToEntriesAndAssignments verifies tasks -> time_entries
// and tasks -> task_assignments cascades.
func TestCascadeDelete_TaskToEntriesAndAssignments(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	u := seedUser(t, db, "")
	_, task := seedTask(t, db, "Doomed")
	entries := NewSQLiteTimeEntryRepo(db)
	assignments := NewSQLiteAssignmentRepo(db)

	e := testutil.NewManualEntry(u.ID, task.ID, 600, testutil.ReferenceTime())
	require.NoError(t, entries.Create(ctx, e))
	require.NoError(t, assignments.Create(ctx, &domain.TaskAssignment{TaskID: task.ID, UserID: u.ID}))

	_, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, task.ID)
	require.NoError(t, err)

	_, err = entries.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "entry should be cascade-deleted with its task")
	ok, err := assignments.Exists(ctx, task.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, ok, "assignment should be cascade-deleted with its task")
}

// TestCascadeDelete_DiscussionToSubtaskAssignees verifies discussions ->
// subtasks -> subtask_assignees cascade.
func TestCascadeDelete_DiscussionToSubtaskAssignees(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	u := seedUser(t, db, "")
	_, task := seedTask(t, db, "")
	repo := NewSQLiteSubtaskRepo(db)

	d := &domain.Discussion{TaskID: task.ID, AuthorID: u.ID, CreatedAt: testutil.ReferenceTime()}
	require.NoError(t, repo.CreateDiscussion(ctx, d))
	s := &domain.Subtask{DiscussionID: d.ID, Title: "Check", Assignees: []int64{u.ID}}
	require.NoError(t, repo.Create(ctx, s))

	_, err := db.ExecContext(ctx, `DELETE FROM discussions WHERE id = ?`, d.ID)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subtask_assignees`).Scan(&n))
	assert.Zero(t, n)
}

// TestSetNull_ClientDeleteKeepsProject verifies projects.client_id is nulled
// rather than cascading.
func TestSetNull_ClientDeleteKeepsProject(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	clients := NewSQLiteClientRepo(db)
	projects := NewSQLiteProjectRepo(db)

	c := &domain.Client{Name: "Acme", CreatedAt: testutil.ReferenceTime()}
	require.NoError(t, clients.Create(ctx, c))
	p := testutil.NewTestProject("Site", testutil.WithClientID(c.ID))
	require.NoError(t, projects.Create(ctx, p))

	_, err := db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, c.ID)
	require.NoError(t, err)

	got, err := projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ClientID)
}
