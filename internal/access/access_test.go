package access

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFacts answers from fixed values and records which lookups ran.
type fakeFacts struct {
	role        domain.Role
	task        *domain.Task
	assigned    bool
	teamMember  bool
	projectTeam bool
	history     bool
	failOn      string
	calls       []string
}

func (f *fakeFacts) record(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeFacts) UserRole(_ context.Context, userID int64) (domain.Role, error) {
	if userID == 404 {
		return "", domain.ErrNotFound
	}
	return f.role, f.record("role")
}

func (f *fakeFacts) Task(_ context.Context, taskID int64) (*domain.Task, error) {
	if f.task == nil || f.task.ID != taskID {
		return nil, domain.ErrNotFound
	}
	return f.task, nil
}

func (f *fakeFacts) IsAssigned(context.Context, int64, int64) (bool, error) {
	return f.assigned, f.record("assignment")
}

func (f *fakeFacts) IsTeamMember(context.Context, int64, int64) (bool, error) {
	return f.teamMember, f.record("team")
}

func (f *fakeFacts) InProjectTeam(context.Context, int64, int64) (bool, error) {
	return f.projectTeam, f.record("project_team")
}

func (f *fakeFacts) HasProjectHistory(context.Context, int64, int64) (bool, error) {
	return f.history, f.record("history")
}

func teamID(id int64) *int64 { return &id }

func TestDecide_RuleOrder(t *testing.T) {
	tests := []struct {
		name      string
		facts     fakeFacts
		wantAllow bool
		wantRule  string
	}{
		{
			name:      "admin allowed by role",
			facts:     fakeFacts{role: domain.RoleAdmin},
			wantAllow: true, wantRule: RuleRole,
		},
		{
			name:      "developer allowed by role",
			facts:     fakeFacts{role: domain.RoleDeveloper, assigned: true},
			wantAllow: true, wantRule: RuleRole,
		},
		{
			name:      "direct assignment",
			facts:     fakeFacts{role: domain.RoleUser, assigned: true, history: true},
			wantAllow: true, wantRule: RuleAssignment,
		},
		{
			name:      "member of the task's team",
			facts:     fakeFacts{role: domain.RoleUser, teamMember: true, task: &domain.Task{ID: 1, TeamID: teamID(7)}},
			wantAllow: true, wantRule: RuleTeam,
		},
		{
			name:      "project team ignored when task has a team",
			facts:     fakeFacts{role: domain.RoleUser, projectTeam: true, task: &domain.Task{ID: 1, TeamID: teamID(7)}},
			wantAllow: false,
		},
		{
			name:      "project team when task has no team",
			facts:     fakeFacts{role: domain.RoleUser, projectTeam: true},
			wantAllow: true, wantRule: RuleProjectTeam,
		},
		{
			name:      "historical time entry",
			facts:     fakeFacts{role: domain.RoleUser, history: true},
			wantAllow: true, wantRule: RuleHistory,
		},
		{
			name:      "nothing matches",
			facts:     fakeFacts{role: domain.RoleUser},
			wantAllow: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.facts
			if f.task == nil {
				f.task = &domain.Task{ID: 1, ProjectID: 3}
			}
			d, err := NewResolver(&f).Decide(context.Background(), 5, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllow, d.Allowed)
			assert.Equal(t, tt.wantRule, d.Rule)
		})
	}
}

func TestDecide_StopsAtFirstAllow(t *testing.T) {
	f := &fakeFacts{role: domain.RoleUser, assigned: true, history: true, task: &domain.Task{ID: 1}}
	d, err := NewResolver(f).Decide(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	// The up-front user lookup plus the role and assignment rules; nothing later.
	assert.Equal(t, []string{"role", "role", "assignment"}, f.calls)
}

func TestDecide_TeamRuleSkipsLookupWithoutTeam(t *testing.T) {
	f := &fakeFacts{role: domain.RoleUser, task: &domain.Task{ID: 1}}
	_, err := NewResolver(f).Decide(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.NotContains(t, f.calls, "team")
	assert.Contains(t, f.calls, "project_team")
}

func TestDecide_UnknownTaskOrUser(t *testing.T) {
	f := &fakeFacts{role: domain.RoleAdmin, task: &domain.Task{ID: 1}}
	r := NewResolver(f)

	_, err := r.Decide(context.Background(), 5, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.Decide(context.Background(), 404, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecide_RuleErrorNamesTheRule(t *testing.T) {
	f := &fakeFacts{role: domain.RoleUser, failOn: "history", task: &domain.Task{ID: 1}}
	_, err := NewResolver(f).Decide(context.Background(), 5, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access rule history")
}

func TestDecide_CustomChain(t *testing.T) {
	f := &fakeFacts{role: domain.RoleAdmin, history: true, task: &domain.Task{ID: 1}}
	d, err := NewResolver(f, History()).Decide(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, RuleHistory, d.Rule)
}
