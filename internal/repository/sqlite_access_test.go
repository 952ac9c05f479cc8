package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessRepo_Facts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "", testutil.WithRole(domain.RoleDeveloper))
	proj, task := seedTask(t, db, "")
	repo := NewSQLiteAccessRepo(db)

	role, err := repo.UserRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, role)
	_, err = repo.UserRole(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := repo.Task(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, proj.ID, got.ProjectID)

	for name, check := range map[string]func() (bool, error){
		"assigned":     func() (bool, error) { return repo.IsAssigned(ctx, u.ID, task.ID) },
		"project team": func() (bool, error) { return repo.InProjectTeam(ctx, u.ID, proj.ID) },
		"history":      func() (bool, error) { return repo.HasProjectHistory(ctx, u.ID, proj.ID) },
	} {
		ok, err := check()
		require.NoError(t, err, name)
		assert.False(t, ok, name)
	}

	require.NoError(t, NewSQLiteAssignmentRepo(db).Create(ctx, &domain.TaskAssignment{TaskID: task.ID, UserID: u.ID}))
	team := &domain.Team{Name: "Linked", ProjectID: &proj.ID, CreatedAt: testutil.ReferenceTime()}
	teams := NewSQLiteTeamRepo(db)
	require.NoError(t, teams.Create(ctx, team))
	require.NoError(t, teams.AddMember(ctx, domain.TeamMembership{TeamID: team.ID, UserID: u.ID, Role: domain.TeamMember}))
	require.NoError(t, NewSQLiteTimeEntryRepo(db).Create(ctx, testutil.NewManualEntry(u.ID, task.ID, 60, testutil.ReferenceTime())))

	ok, err := repo.IsAssigned(ctx, u.ID, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.IsTeamMember(ctx, u.ID, team.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.InProjectTeam(ctx, u.ID, proj.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.HasProjectHistory(ctx, u.ID, proj.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
