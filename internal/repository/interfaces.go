package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/timeledger/internal/domain"
)

// ReportableEntry is a completed or manual time entry joined with the task,
// project and owner context the aggregation engine needs.
type ReportableEntry struct {
	Entry       domain.TimeEntry
	TaskTitle   string
	ProjectID   int64
	ProjectName string
	UserPayRate *float64
	// Archived is set when the task, its project or the project's client
	// is archived.
	Archived bool
}

// ReportQuery selects candidate entries for reporting. UserID 0 selects
// every user. Entries are matched on their effective time (start time, or
// creation time for manual entries) in [From, To]. Archival and running
// timers are not filtered here.
type ReportQuery struct {
	UserID int64
	From   time.Time
	To     time.Time
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	ListActive(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID int64, includeSystem bool) ([]*domain.Task, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.Task, error)
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type AssignmentRepo interface {
	Create(ctx context.Context, a *domain.TaskAssignment) error
	Delete(ctx context.Context, taskID, userID int64) error
	Exists(ctx context.Context, taskID, userID int64) (bool, error)
	ListByTask(ctx context.Context, taskID int64) ([]domain.TaskAssignment, error)
}

type TeamRepo interface {
	Create(ctx context.Context, t *domain.Team) error
	GetByID(ctx context.Context, id int64) (*domain.Team, error)
	AddMember(ctx context.Context, m domain.TeamMembership) error
	RemoveMember(ctx context.Context, teamID, userID int64) error
	ListMembers(ctx context.Context, teamID int64) ([]domain.TeamMembership, error)
}

type TimeEntryRepo interface {
	Create(ctx context.Context, e *domain.TimeEntry) error
	GetByID(ctx context.Context, id int64) (*domain.TimeEntry, error)
	FindRunning(ctx context.Context, userID int64) (*domain.TimeEntry, error)
	Finish(ctx context.Context, id, userID int64, end time.Time, notes *string, now time.Time) error
	DeleteRunning(ctx context.Context, id, userID int64) error
	Delete(ctx context.Context, id, userID int64) error
	ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]*domain.TimeEntry, error)
	ListReportable(ctx context.Context, q ReportQuery) ([]ReportableEntry, error)
	NormalizeLegacy(ctx context.Context, now time.Time) (int64, error)
}

type SubtaskRepo interface {
	CreateDiscussion(ctx context.Context, d *domain.Discussion) error
	Create(ctx context.Context, s *domain.Subtask) error
	GetByID(ctx context.Context, id int64) (*domain.Subtask, error)
	ListByTask(ctx context.Context, taskID int64) ([]*domain.Subtask, error)
	RemoveAssigneeUnderTask(ctx context.Context, taskID, userID int64) (int64, error)
}
