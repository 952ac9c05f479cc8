package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_CreateAddsGeneralTask(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.user(t, "")

	p, general := h.project(t, "Website")
	assert.NotZero(t, p.ID)
	assert.True(t, general.IsSystem)
	assert.Equal(t, domain.SystemTaskTitle, general.Title)
	assert.Equal(t, p.ID, general.ProjectID)

	visible, err := h.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, visible, "system tasks stay out of normal listings")

	forUser, err := h.tasks.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, forUser, 1)
	assert.Equal(t, general.ID, forUser[0].ID)
}

func TestProject_CreateRollsBackOnTaskFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	h := newHarness(t, database)
	ctx := context.Background()
	uow := &testutil.FailingExecUoW{DB: database, Match: "INSERT INTO tasks", FailOn: 1, Err: assert.AnError}
	h.projects = NewProjectService(nil, nil, uow, Clock(h.clock.NowFunc()))

	p := testutil.NewTestProject("Doomed")
	_, err := h.projects.Create(ctx, p)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, uow.Calls(), "the General task insert is the one that fails")
	assert.Zero(t, p.ID)

	var n int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n))
	assert.Zero(t, n)
}

func TestProject_ArchiveHidesAssignedTasks(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.user(t, "")
	task := h.assignedTask(t, u)

	before, err := h.tasks.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, before, 2)

	require.NoError(t, h.projects.Archive(ctx, task.ProjectID))
	after, err := h.tasks.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, after)

	require.NoError(t, h.projects.Unarchive(ctx, task.ProjectID))
	listed, err := h.projects.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestProject_ClientAndValidation(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	assert.Equal(t, domain.KindValidation, domain.Kind(h.projects.CreateClient(ctx, &domain.Client{Name: "  "})))
	c := &domain.Client{Name: "Acme"}
	require.NoError(t, h.projects.CreateClient(ctx, c))
	require.NoError(t, h.projects.ArchiveClient(ctx, c.ID))
	assert.ErrorIs(t, h.projects.ArchiveClient(ctx, 9999), domain.ErrNotFound)

	_, err := h.projects.Create(ctx, &domain.Project{Name: ""})
	assert.Equal(t, domain.KindValidation, domain.Kind(err))

	p, _ := h.project(t, "")
	err = h.tasks.Create(ctx, testutil.NewTestTask(p.ID, "Sneaky", testutil.WithSystemTask()))
	assert.Equal(t, domain.KindValidation, domain.Kind(err))
}

func TestUser_CreateDefaultsAndStatus(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	u := &domain.User{Name: "Dana"}
	require.NoError(t, h.users.Create(ctx, u))
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, domain.UserActive, u.Status)
	assert.ErrorIs(t, h.users.Create(ctx, &domain.User{Name: "Dana"}), domain.ErrConflict)

	require.NoError(t, h.users.SetStatus(ctx, u.ID, domain.UserInactive))
	active, err := h.users.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := h.users.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	got, err := h.users.GetByName(ctx, "Dana")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, domain.KindValidation, domain.Kind(h.users.SetStatus(ctx, u.ID, "gone")))
}
