package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timeledger/internal/access"
	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/importer"
	"github.com/alexanderramin/timeledger/internal/testutil"
)

func ptrStr(s string) *string { return &s }
func ptrI64(i int64) *int64   { return &i }

func timesheet() *importer.ImportSchema {
	return &importer.ImportSchema{
		Project: importer.ProjectImport{Name: "Website"},
		Tasks: []importer.TaskImport{
			{Ref: "build", Title: "Build", Assignees: []string{"ann", "bob"}},
			{Ref: "qa", Title: "QA"},
		},
		Entries: []importer.EntryImport{
			{TaskRef: "build", User: "ann", Start: ptrStr("2024-03-04T09:00:00Z"), End: ptrStr("2024-03-04T10:30:00Z")},
			{TaskRef: "general", User: "bob", Seconds: ptrI64(600), RecordedAt: ptrStr("2024-03-04T12:00:00Z")},
		},
	}
}

func TestImportService_CreatesEverythingAtomically(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ann := h.user(t, "ann")
	bob := h.user(t, "bob")

	res, err := h.imports.ImportProject(ctx, timesheet())
	require.NoError(t, err)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 2, res.Assignments)
	assert.Equal(t, 2, res.Entries)
	assert.Contains(t, h.logs.String(), "project imported")

	general, err := h.tasks.GetByID(ctx, res.GeneralTaskID)
	require.NoError(t, err)
	assert.True(t, general.IsSystem)
	assert.Equal(t, res.ProjectID, general.ProjectID)

	ok, err := h.access.CanAct(ctx, bob.ID, res.TaskIDs["build"])
	require.NoError(t, err)
	assert.True(t, ok, "imported assignment grants access")
	// ann's imported entry is in the project, so history lets her onto qa.
	d, err := h.access.Explain(ctx, ann.ID, res.TaskIDs["qa"])
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, access.RuleHistory, d.Rule)
	newcomer := h.user(t, "cy")
	ok, err = h.access.CanAct(ctx, newcomer.ID, res.TaskIDs["qa"])
	require.NoError(t, err)
	assert.False(t, ok, "no assignment and no history in the project")

	w := windowAround(testutil.ReferenceTime())
	annEntries, err := h.entries.ListForUser(ctx, ann.ID, w)
	require.NoError(t, err)
	require.Len(t, annEntries, 1)
	assert.Equal(t, int64(5400), domain.ElapsedSeconds(annEntries[0]))

	bobEntries, err := h.entries.ListForUser(ctx, bob.ID, w)
	require.NoError(t, err)
	require.Len(t, bobEntries, 1)
	assert.Equal(t, res.GeneralTaskID, bobEntries[0].TaskID)
}

func TestImportService_UnknownUserRollsBack(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.user(t, "ann")

	schema := timesheet()
	_, err := h.imports.ImportProject(ctx, schema)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.Kind(err))
	assert.ErrorContains(t, err, `unknown user "bob"`)

	projects, err := h.projects.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, projects, "nothing from a failed import is kept")
}

func TestImportService_SchemaErrorsAreFieldErrors(t *testing.T) {
	h := newHarness(t, nil)

	schema := timesheet()
	schema.Project.Name = ""
	schema.Entries[0].TaskRef = "missing"

	_, err := h.imports.ImportProject(context.Background(), schema)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "project.name")
	assert.Contains(t, vErr.FieldErrors, "entries[0].task_ref")
}

func TestImportService_EntriesFeedReports(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	admin := h.user(t, "root", testutil.WithRole(domain.RoleAdmin))
	h.user(t, "ann", testutil.WithPayRate(40))
	h.user(t, "bob")

	res, err := h.imports.ImportProject(ctx, timesheet())
	require.NoError(t, err)

	rep, err := h.reports.ProjectTotals(ctx, app.ReportRequest{CallerID: admin.ID})
	require.NoError(t, err)
	require.Len(t, rep.Projects, 1)
	assert.Equal(t, res.ProjectID, rep.Projects[0].ProjectID)
	assert.Equal(t, int64(6000), rep.Projects[0].TotalSeconds)
	assert.InDelta(t, 60.0, rep.Projects[0].Cost, 0.001)
}

// busyOnceUoW hands the real unit of work a tx whose first entry insert
// reports SQLITE_BUSY, so the import runs twice.
type busyOnceUoW struct {
	inner    db.UnitOfWork
	attempts int
	failed   bool
}

func (u *busyOnceUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return u.inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		u.attempts++
		return fn(ctx, &busyOnceTx{DBTX: tx, uow: u})
	})
}

type busyOnceTx struct {
	db.DBTX
	uow *busyOnceUoW
}

func (b *busyOnceTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if !b.uow.failed && strings.Contains(query, "INSERT INTO time_entries") {
		b.uow.failed = true
		return nil, errors.New("database is locked (5) (SQLITE_BUSY)")
	}
	return b.DBTX.ExecContext(ctx, query, args...)
}

func TestImportService_RetriedImportCountsOnce(t *testing.T) {
	database := testutil.NewTestDB(t)
	h := newHarness(t, database)
	ctx := context.Background()
	h.user(t, "ann")
	h.user(t, "bob")

	uow := &busyOnceUoW{inner: testutil.NewTestUoW(database)}
	svc := NewImportService(uow, Clock(h.clock.NowFunc()), nil)

	res, err := svc.ImportProject(ctx, timesheet())
	require.NoError(t, err)
	assert.Equal(t, 2, uow.attempts)
	assert.Equal(t, 2, res.Assignments)
	assert.Equal(t, 2, res.Entries)

	var projects int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&projects))
	assert.Equal(t, 1, projects, "the busy attempt was rolled back")
}
