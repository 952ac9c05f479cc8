package service

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/timeledger/internal/access"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/report"
	"github.com/alexanderramin/timeledger/internal/repository"
	"github.com/alexanderramin/timeledger/internal/testutil"
	"github.com/stretchr/testify/require"
)

// harness wires every service against one test database and clock.
type harness struct {
	db       *sql.DB
	clock    *testutil.Clock
	logs     *bytes.Buffer
	timers   TimerService
	reports  ReportService
	access   AccessService
	assign   AssignmentService
	entries  EntryService
	users    UserService
	projects ProjectService
	tasks    TaskService
	teams    TeamService
	subtasks SubtaskService
	imports  ImportService
}

func newHarness(t *testing.T, database *sql.DB) *harness {
	t.Helper()
	if database == nil {
		database = testutil.NewTestDB(t)
	}
	clock := testutil.NewClock(testutil.ReferenceTime())
	now := Clock(clock.NowFunc())
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	uow := testutil.NewTestUoW(database)

	entryRepo := repository.NewSQLiteTimeEntryRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	userRepo := repository.NewSQLiteUserRepo(database)
	accessSvc := NewAccessService(access.NewResolver(repository.NewSQLiteAccessRepo(database)))

	return &harness{
		db:      database,
		clock:   clock,
		logs:    logs,
		timers:  NewTimerService(entryRepo, taskRepo, accessSvc, now),
		reports: NewReportService(entryRepo, userRepo, now),
		access:  accessSvc,
		assign: NewAssignmentService(repository.NewSQLiteAssignmentRepo(database),
			repository.NewSQLiteSubtaskRepo(database), accessSvc, uow, now, logger),
		entries:  NewEntryService(entryRepo, taskRepo, accessSvc, now),
		users:    NewUserService(userRepo, now),
		projects: NewProjectService(repository.NewSQLiteProjectRepo(database), repository.NewSQLiteClientRepo(database), uow, now),
		tasks:    NewTaskService(taskRepo, now),
		teams:    NewTeamService(repository.NewSQLiteTeamRepo(database), now),
		subtasks: NewSubtaskService(repository.NewSQLiteSubtaskRepo(database), now),
		imports:  NewImportService(uow, now, logger),
	}
}

func (h *harness) user(t *testing.T, name string, opts ...testutil.UserOption) *domain.User {
	t.Helper()
	u := testutil.NewTestUser(name, opts...)
	require.NoError(t, h.users.Create(context.Background(), u))
	return u
}

// project creates a project and returns it with its General task.
func (h *harness) project(t *testing.T, name string) (*domain.Project, *domain.Task) {
	t.Helper()
	p := testutil.NewTestProject(name)
	general, err := h.projects.Create(context.Background(), p)
	require.NoError(t, err)
	return p, general
}

func (h *harness) task(t *testing.T, projectID int64, title string, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	task := testutil.NewTestTask(projectID, title, opts...)
	require.NoError(t, h.tasks.Create(context.Background(), task))
	return task
}

// assignedTask creates a regular task and assigns u to it. The row is
// written straight to the store so setup needs no authorized caller.
func (h *harness) assignedTask(t *testing.T, u *domain.User) *domain.Task {
	t.Helper()
	p, _ := h.project(t, "")
	task := h.task(t, p.ID, "")
	a := &domain.TaskAssignment{TaskID: task.ID, UserID: u.ID, CreatedAt: h.clock.Now()}
	require.NoError(t, repository.NewSQLiteAssignmentRepo(h.db).Create(context.Background(), a))
	return task
}

// windowAround spans a day either side of t.
func windowAround(t time.Time) report.Window {
	return report.Window{Start: t.Add(-24 * time.Hour), End: t.Add(24 * time.Hour)}
}
