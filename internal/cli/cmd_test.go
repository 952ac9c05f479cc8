package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timeledger/internal/access"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/repository"
	"github.com/alexanderramin/timeledger/internal/service"
	"github.com/alexanderramin/timeledger/internal/testutil"
)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) (*App, *testutil.Clock) {
	t.Helper()
	database := testutil.NewTestDB(t)
	clock := testutil.NewClock(testutil.ReferenceTime())
	now := service.Clock(clock.NowFunc())
	uow := testutil.NewTestUoW(database)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	entryRepo := repository.NewSQLiteTimeEntryRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	userRepo := repository.NewSQLiteUserRepo(database)
	subtaskRepo := repository.NewSQLiteSubtaskRepo(database)
	accessSvc := service.NewAccessService(access.NewResolver(repository.NewSQLiteAccessRepo(database)))

	return &App{
		Timers:      service.NewTimerService(entryRepo, taskRepo, accessSvc, now),
		Entries:     service.NewEntryService(entryRepo, taskRepo, accessSvc, now),
		Reports:     service.NewReportService(entryRepo, userRepo, now),
		Access:      accessSvc,
		Assignments: service.NewAssignmentService(repository.NewSQLiteAssignmentRepo(database), subtaskRepo, accessSvc, uow, now, logger),
		Users:       service.NewUserService(userRepo, now),
		Projects:    service.NewProjectService(repository.NewSQLiteProjectRepo(database), repository.NewSQLiteClientRepo(database), uow, now),
		Tasks:       service.NewTaskService(taskRepo, now),
		Teams:       service.NewTeamService(repository.NewSQLiteTeamRepo(database), now),
		Subtasks:    service.NewSubtaskService(subtaskRepo, now),
		Imports:     service.NewImportService(uow, now, logger),
		Logger:      logger,
		Now:         clock.NowFunc(),
	}, clock
}

// seeded is a small organisation: an admin, two plain users and a project
// with its General task plus one regular task assigned to ann.
type seeded struct {
	admin, ann, bob *domain.User
	general, build  *domain.Task
}

func seedOrg(t *testing.T, a *App) seeded {
	t.Helper()
	ctx := context.Background()
	var s seeded
	s.admin = testutil.NewTestUser("root", testutil.WithRole(domain.RoleAdmin))
	s.ann = testutil.NewTestUser("ann", testutil.WithPayRate(20))
	s.bob = testutil.NewTestUser("bob")
	for _, u := range []*domain.User{s.admin, s.ann, s.bob} {
		require.NoError(t, a.Users.Create(ctx, u))
	}

	p := testutil.NewTestProject("Website")
	general, err := a.Projects.Create(ctx, p)
	require.NoError(t, err)
	s.general = general
	s.build = testutil.NewTestTask(p.ID, "Build")
	require.NoError(t, a.Tasks.Create(ctx, s.build))
	require.NoError(t, a.Assignments.Assign(ctx, s.admin.ID, s.ann.ID, s.build.ID))
	return s
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(a)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return plain(buf.String()), err
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

// lineWith returns the first output line starting with prefix once box
// borders are trimmed.
func lineWith(out, prefix string) string {
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.Trim(l, "│ "), prefix) {
			return l
		}
	}
	return ""
}

func id(n int64) string { return fmt.Sprint(n) }

// --- Timers ---

func TestTimerCmd_StartStatusStop(t *testing.T) {
	a, clock := testApp(t)
	s := seedOrg(t, a)

	out, err := executeCmd(t, a, "--as", "ann", "timer", "start", id(s.build.ID), "--notes", "homepage")
	require.NoError(t, err)
	assert.Contains(t, out, "Started timer #")
	assert.Contains(t, out, "Website / Build")
	assert.Contains(t, out, "Mon Mar 4 09:00")

	clock.Advance(90 * time.Minute)
	out, err = executeCmd(t, a, "--as", "ann", "timer", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "RUNNING")
	assert.Contains(t, out, "1:30:00")
	assert.Contains(t, out, "homepage")

	out, err = executeCmd(t, a, "--as", "ann", "timer", "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "Stopped")
	assert.Contains(t, out, "1h 30m")

	out, err = executeCmd(t, a, "--as", "ann", "timer", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No timer running.")
}

func TestTimerCmd_ExplicitTimesAtOffset(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	// 01:00 at UTC+1 is 00:00 UTC.
	_, err := executeCmd(t, a, "--as", "ann", "--tz", "UTC+1", "timer", "start", id(s.build.ID), "--at", "01:00")
	require.NoError(t, err)
	out, err := executeCmd(t, a, "--as", "ann", "timer", "stop", "--at", "2024-03-04T02:30:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "2h 30m")
}

func TestTimerCmd_StartTwiceIsConflict(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	_, err := executeCmd(t, a, "--as", "ann", "timer", "start", id(s.general.ID))
	require.NoError(t, err)
	_, err = executeCmd(t, a, "--as", "ann", "timer", "start", id(s.build.ID))
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.Kind(err))
	assert.True(t, strings.HasPrefix(ExitMessage(err), "conflict:"))
	assert.Equal(t, 1, ExitCode(err))
}

func TestTimerCmd_Errors(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	_, err := executeCmd(t, a, "timer", "status")
	assert.ErrorIs(t, err, errNoUser)

	_, err = executeCmd(t, a, "--as", "ann", "timer", "start")
	assert.ErrorContains(t, err, "task id is required")

	_, err = executeCmd(t, a, "--as", "bob", "timer", "start", id(s.build.ID))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(ExitMessage(err), "not allowed:"))

	_, err = executeCmd(t, a, "--as", "ann", "timer", "stop")
	assert.Equal(t, domain.KindNotFound, domain.Kind(err))

	_, err = executeCmd(t, a, "--as", "nobody", "timer", "status")
	assert.Equal(t, domain.KindNotFound, domain.Kind(err))
}

func TestTimerCmd_CancelDiscards(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	_, err := executeCmd(t, a, "--as", "ann", "timer", "start", id(s.build.ID))
	require.NoError(t, err)
	out, err := executeCmd(t, a, "--as", "ann", "timer", "cancel", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Discarded")

	out, err = executeCmd(t, a, "--as", "ann", "entry", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries in this window.")
}

func TestTimerCmd_WatchNeedsTerminal(t *testing.T) {
	a, _ := testApp(t)
	seedOrg(t, a)

	_, err := executeCmd(t, a, "--as", "ann", "timer", "watch")
	assert.ErrorContains(t, err, "interactive terminal")
}

// --- Entries ---

func TestEntryCmd_LogListRemove(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	out, err := executeCmd(t, a, "--as", "ann", "entry", "log", id(s.build.ID), "--duration", "45m", "--notes", "review")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 45m on Website / Build")

	out, err = executeCmd(t, a, "--as", "ann", "entry", "log", id(s.build.ID), "--start", "09:00", "--end", "10:15")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 1h 15m")

	out, err = executeCmd(t, a, "--as", "ann", "entry", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "manual")
	assert.Contains(t, out, "1h15m0s")
	assert.Contains(t, out, "review")

	out, err = executeCmd(t, a, "--as", "ann", "entry", "list", "--start", "2024-03-05", "--end", "2024-03-05")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries in this window.")

	_, err = executeCmd(t, a, "--as", "bob", "entry", "rm", "1")
	assert.Equal(t, domain.KindNotFound, domain.Kind(err))
	out, err = executeCmd(t, a, "--as", "ann", "entry", "rm", "#1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted entry #1")
}

func TestEntryCmd_InvalidInput(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	_, err := executeCmd(t, a, "--as", "ann", "entry", "log", id(s.build.ID))
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
	assert.Contains(t, ExitMessage(err), "invalid input:")

	_, err = executeCmd(t, a, "--as", "ann", "entry", "log", id(s.build.ID), "--duration", "1h", "--seconds", "60")
	assert.ErrorContains(t, err, "not both")

	_, err = executeCmd(t, a, "--as", "ann", "entry", "log", "abc", "--seconds", "60")
	assert.ErrorContains(t, err, "invalid task id")

	_, err = executeCmd(t, a, "--as", "ann", "entry", "list", "--start", "2024-03-01")
	assert.ErrorContains(t, err, "together")
}

func TestEntryCmd_Normalize(t *testing.T) {
	a, _ := testApp(t)
	seedOrg(t, a)

	out, err := executeCmd(t, a, "entry", "normalize")
	require.NoError(t, err)
	assert.Contains(t, out, "Normalized 0 legacy entries")
}

// --- Reports ---

func TestReportCmd_DailyBucketsByOffset(t *testing.T) {
	a, clock := testApp(t)
	s := seedOrg(t, a)

	// Monday 00:00 UTC is still Sunday on the US west coast.
	clock.Set(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC))
	_, err := executeCmd(t, a, "--as", "ann", "entry", "log", id(s.build.ID), "--seconds", "7200")
	require.NoError(t, err)

	out, err := executeCmd(t, a, "--as", "ann", "--tz", "480", "report", "daily")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-03 → 2024-03-09 (UTC-8)")
	assert.Contains(t, lineWith(out, "Sun"), "2h")
	assert.NotContains(t, lineWith(out, "Mon"), "2h")

	out, err = executeCmd(t, a, "--as", "ann", "report", "daily")
	require.NoError(t, err)
	assert.Contains(t, lineWith(out, "Mon"), "2h")
}

func TestReportCmd_TaskCostsAndScope(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	_, err := executeCmd(t, a, "--as", "ann", "entry", "log", id(s.build.ID), "--duration", "1h30m")
	require.NoError(t, err)

	out, err := executeCmd(t, a, "--as", "ann", "report", "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "Build")
	assert.Contains(t, out, "1.50")
	assert.NotContains(t, out, "30.00")

	out, err = executeCmd(t, a, "--as", "root", "report", "tasks", "--user", "ann")
	require.NoError(t, err)
	assert.Contains(t, out, "30.00")

	out, err = executeCmd(t, a, "--as", "root", "report", "projects", "--user", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Website")

	_, err = executeCmd(t, a, "--as", "bob", "report", "tasks", "--user", "ann")
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))

	_, err = executeCmd(t, a, "--as", "ann", "report", "daily", "--start", "2024-03-09", "--end", "2024-03-03")
	assert.Equal(t, domain.KindValidation, domain.Kind(err))
}

// --- Tasks, assignment and access ---

func TestTaskCmd_AssignExplainUnassign(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	out, err := executeCmd(t, a, "--as", "bob", "task", "can", id(s.build.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "bob may not act on Website / Build")

	out, err = executeCmd(t, a, "--as", "root", "task", "assign", id(s.build.ID), "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Assigned bob to Website / Build")

	out, err = executeCmd(t, a, "--as", "root", "task", "can", id(s.build.ID), "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "(via assignment)")

	_, err = executeCmd(t, a, "--as", "root", "task", "assign", id(s.build.ID), "bob")
	assert.Equal(t, domain.KindConflict, domain.Kind(err))

	out, err = executeCmd(t, a, "--as", "root", "subtask", "add", id(s.build.ID), "Review copy", "--assignee", "bob", "--assignee", "ann")
	require.NoError(t, err)
	assert.Contains(t, out, "Created subtask #")

	out, err = executeCmd(t, a, "--as", "root", "task", "unassign", id(s.build.ID), "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 subtasks updated)")

	out, err = executeCmd(t, a, "subtask", "list", id(s.build.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Review copy")
	assert.Contains(t, out, "ann")
	assert.NotContains(t, out, "bob")
}

func TestTaskCmd_AssignmentChangesNeedAccess(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	_, err := executeCmd(t, a, "task", "assign", id(s.build.ID), "bob")
	assert.ErrorIs(t, err, errNoUser, "assignment changes need a caller")

	_, err = executeCmd(t, a, "--as", "bob", "task", "assign", id(s.build.ID), "bob")
	require.Error(t, err)
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))
	assert.Contains(t, ExitMessage(err), "not allowed:")

	_, err = executeCmd(t, a, "--as", "bob", "task", "unassign", id(s.build.ID), "ann")
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))
	_, err = executeCmd(t, a, "--as", "bob", "task", "assign", id(s.build.ID), "--all")
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))

	// ann is assigned, so she may manage the task's assignments herself.
	out, err := executeCmd(t, a, "--as", "ann", "task", "assign", id(s.build.ID), "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Assigned bob to Website / Build")
}

func TestTaskCmd_CanAboutOthersIsAdminOnly(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	_, err := executeCmd(t, a, "--as", "bob", "task", "can", id(s.build.ID), "ann")
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))

	out, err := executeCmd(t, a, "--as", "ann", "task", "can", id(s.build.ID), "ann")
	require.NoError(t, err)
	assert.Contains(t, out, "(via assignment)")
}

func TestTaskCmd_AssignAll(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	out, err := executeCmd(t, a, "--as", "root", "task", "assign", id(s.build.ID), "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Assigned 2 active users")

	_, err = executeCmd(t, a, "--as", "root", "task", "assign", id(s.build.ID))
	assert.ErrorContains(t, err, "--all")
}

func TestTaskCmd_AddAndList(t *testing.T) {
	a, _ := testApp(t)
	s := seedOrg(t, a)

	out, err := executeCmd(t, a, "task", "add", id(s.general.ProjectID), "Deploy")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task #")

	out, err = executeCmd(t, a, "task", "list", "--project", id(s.general.ProjectID))
	require.NoError(t, err)
	assert.Contains(t, out, "Deploy")
	assert.NotContains(t, out, "General")

	out, err = executeCmd(t, a, "--as", "ann", "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Build")
	assert.Contains(t, out, "General")
	assert.NotContains(t, out, "Deploy")
}

// --- Catalog ---

func TestCatalogCmds(t *testing.T) {
	a, _ := testApp(t)

	out, err := executeCmd(t, a, "user", "add", "dana", "--role", "developer", "--rate", "42.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user #1 dana")

	_, err = executeCmd(t, a, "user", "add", "eve", "--role", "boss")
	assert.Equal(t, domain.KindValidation, domain.Kind(err))

	out, err = executeCmd(t, a, "user", "deactivate", "dana")
	require.NoError(t, err)
	assert.Contains(t, out, "inactive")

	out, err = executeCmd(t, a, "user", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "dana")
	out, err = executeCmd(t, a, "user", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "42.50")

	out, err = executeCmd(t, a, "project", "client", "Acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Created client #1 Acme")

	out, err = executeCmd(t, a, "project", "add", "Intranet", "--client", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "(General task #")

	out, err = executeCmd(t, a, "project", "archive", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Archived project #1")
	out, err = executeCmd(t, a, "project", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Intranet")

	out, err = executeCmd(t, a, "team", "add", "Platform")
	require.NoError(t, err)
	assert.Contains(t, out, "Created team #1")
	out, err = executeCmd(t, a, "team", "join", "1", "dana", "--lead")
	require.NoError(t, err)
	assert.Contains(t, out, "as lead")
	out, err = executeCmd(t, a, "team", "members", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "dana")
	_, err = executeCmd(t, a, "team", "leave", "1", "dana")
	require.NoError(t, err)
	out, err = executeCmd(t, a, "team", "members", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "No members.")
}

func TestProjectImportCmd(t *testing.T) {
	a, _ := testApp(t)
	seedOrg(t, a)

	path := filepath.Join(t.TempDir(), "timesheet.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"project": {"name": "Mobile"},
		"tasks": [{"ref": "ios", "title": "iOS build", "assignees": ["bob"]}],
		"entries": [
			{"task_ref": "ios", "user": "bob", "start": "2024-03-04T08:00:00Z", "end": "2024-03-04T08:45:00Z"},
			{"task_ref": "general", "user": "ann", "seconds": 900}
		]
	}`), 0o600))

	out, err := executeCmd(t, a, "project", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported project #2 Mobile: 1 tasks, 1 assignments, 2 entries")

	out, err = executeCmd(t, a, "--as", "bob", "entry", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Mobile / iOS build")
	assert.Contains(t, out, "45m")

	_, err = executeCmd(t, a, "project", "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
