package service

import (
	"context"

	"github.com/alexanderramin/timeledger/internal/access"
	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/importer"
	"github.com/alexanderramin/timeledger/internal/report"
)

type TimerService interface {
	Start(ctx context.Context, req app.StartTimerRequest) (*app.TimerSnapshot, error)
	Stop(ctx context.Context, req app.StopTimerRequest) (*app.StoppedTimer, error)
	ForceStop(ctx context.Context, userID, timerID int64) error
	Current(ctx context.Context, userID int64) (*app.TimerSnapshot, error)
}

type ReportService interface {
	DailyTotals(ctx context.Context, req app.ReportRequest) (*app.DailyReport, error)
	TaskTotals(ctx context.Context, req app.ReportRequest) (*app.TaskReport, error)
	ProjectTotals(ctx context.Context, req app.ReportRequest) (*app.ProjectReport, error)
}

type AccessService interface {
	CanAct(ctx context.Context, userID, taskID int64) (bool, error)
	Explain(ctx context.Context, userID, taskID int64) (access.Decision, error)
	ExplainFor(ctx context.Context, callerID, userID, taskID int64) (access.Decision, error)
	Authorize(ctx context.Context, userID, taskID int64) error
}

type AssignmentService interface {
	Assign(ctx context.Context, callerID, userID, taskID int64) error
	Unassign(ctx context.Context, callerID, userID, taskID int64) (*app.UnassignResult, error)
	AssignDefault(ctx context.Context, callerID, taskID int64) (int, error)
	ListByTask(ctx context.Context, taskID int64) ([]domain.TaskAssignment, error)
}

type EntryService interface {
	Log(ctx context.Context, req app.LogEntryRequest) (*domain.TimeEntry, error)
	ListForUser(ctx context.Context, userID int64, w report.Window) ([]*domain.TimeEntry, error)
	Delete(ctx context.Context, userID, entryID int64) error
	NormalizeLegacy(ctx context.Context) (int64, error)
}

type UserService interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.User, error)
	SetStatus(ctx context.Context, id int64, status domain.UserStatus) error
}

type ProjectService interface {
	CreateClient(ctx context.Context, c *domain.Client) error
	ArchiveClient(ctx context.Context, id int64) error
	Create(ctx context.Context, p *domain.Project) (*domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Archive(ctx context.Context, id int64) error
	Unarchive(ctx context.Context, id int64) error
}

type TaskService interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]*domain.Task, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.Task, error)
	Archive(ctx context.Context, id int64) error
}

type TeamService interface {
	Create(ctx context.Context, t *domain.Team) error
	AddMember(ctx context.Context, m domain.TeamMembership) error
	RemoveMember(ctx context.Context, teamID, userID int64) error
	ListMembers(ctx context.Context, teamID int64) ([]domain.TeamMembership, error)
}

type SubtaskService interface {
	StartDiscussion(ctx context.Context, d *domain.Discussion) error
	Add(ctx context.Context, s *domain.Subtask) error
	ListByTask(ctx context.Context, taskID int64) ([]*domain.Subtask, error)
}

type ImportService interface {
	ImportProject(ctx context.Context, schema *importer.ImportSchema) (*app.ImportResult, error)
}
