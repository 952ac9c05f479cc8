package service

import (
	"context"
	"strings"

	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/repository"
)

type userService struct {
	users repository.UserRepo
	now   Clock
}

func NewUserService(users repository.UserRepo, now Clock) UserService {
	return &userService{users: users, now: clockOrDefault(now)}
}

func (s *userService) Create(ctx context.Context, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	if err := u.Validate(); err != nil {
		return err
	}
	u.CreatedAt = s.now()
	return s.users.Create(ctx, u)
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) GetByName(ctx context.Context, name string) (*domain.User, error) {
	return s.users.GetByName(ctx, name)
}

func (s *userService) List(ctx context.Context, activeOnly bool) ([]*domain.User, error) {
	if activeOnly {
		return s.users.ListActive(ctx)
	}
	return s.users.List(ctx)
}

func (s *userService) SetStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.Status = status
	if err := u.Validate(); err != nil {
		return err
	}
	return s.users.Update(ctx, u)
}

type taskService struct {
	tasks repository.TaskRepo
	now   Clock
}

func NewTaskService(tasks repository.TaskRepo, now Clock) TaskService {
	return &taskService{tasks: tasks, now: clockOrDefault(now)}
}

// Create adds a regular task. System tasks only come from project creation.
func (s *taskService) Create(ctx context.Context, t *domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.IsSystem {
		return domain.NewValidationError("is_system", "system tasks are created with their project")
	}
	t.CreatedAt = s.now()
	return s.tasks.Create(ctx, t)
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) ListByProject(ctx context.Context, projectID int64) ([]*domain.Task, error) {
	return s.tasks.ListByProject(ctx, projectID, false)
}

func (s *taskService) ListForUser(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.tasks.ListForUser(ctx, userID)
}

func (s *taskService) Archive(ctx context.Context, id int64) error {
	return s.tasks.SetArchived(ctx, id, true)
}

type teamService struct {
	teams repository.TeamRepo
	now   Clock
}

func NewTeamService(teams repository.TeamRepo, now Clock) TeamService {
	return &teamService{teams: teams, now: clockOrDefault(now)}
}

func (s *teamService) Create(ctx context.Context, t *domain.Team) error {
	if strings.TrimSpace(t.Name) == "" {
		return domain.NewValidationError("name", "name is required")
	}
	t.CreatedAt = s.now()
	return s.teams.Create(ctx, t)
}

func (s *teamService) AddMember(ctx context.Context, m domain.TeamMembership) error {
	if m.Role == "" {
		m.Role = domain.TeamMember
	}
	if !domain.ValidTeamRoles[string(m.Role)] {
		return domain.NewValidationError("role", "role must be lead or member")
	}
	return s.teams.AddMember(ctx, m)
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, userID int64) error {
	return s.teams.RemoveMember(ctx, teamID, userID)
}

func (s *teamService) ListMembers(ctx context.Context, teamID int64) ([]domain.TeamMembership, error) {
	return s.teams.ListMembers(ctx, teamID)
}

type subtaskService struct {
	subtasks repository.SubtaskRepo
	now      Clock
}

func NewSubtaskService(subtasks repository.SubtaskRepo, now Clock) SubtaskService {
	return &subtaskService{subtasks: subtasks, now: clockOrDefault(now)}
}

func (s *subtaskService) StartDiscussion(ctx context.Context, d *domain.Discussion) error {
	d.CreatedAt = s.now()
	return s.subtasks.CreateDiscussion(ctx, d)
}

func (s *subtaskService) Add(ctx context.Context, st *domain.Subtask) error {
	if strings.TrimSpace(st.Title) == "" {
		return domain.NewValidationError("title", "title is required")
	}
	return s.subtasks.Create(ctx, st)
}

func (s *subtaskService) ListByTask(ctx context.Context, taskID int64) ([]*domain.Subtask, error) {
	return s.subtasks.ListByTask(ctx, taskID)
}
