package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/report"
	"github.com/alexanderramin/timeledger/internal/repository"
)

// localDaySlack widens the store query for local-day reports. No UTC offset
// exceeds a day, so entries on the window's edge days are always loaded.
const localDaySlack = 24 * time.Hour

type reportService struct {
	entries  repository.TimeEntryRepo
	users    repository.UserRepo
	now      Clock
	observer UseCaseObserver
}

func NewReportService(
	entries repository.TimeEntryRepo,
	users repository.UserRepo,
	now Clock,
	observers ...UseCaseObserver,
) ReportService {
	return &reportService{
		entries:  entries,
		users:    users,
		now:      clockOrDefault(now),
		observer: useCaseObserverOrNoop(observers),
	}
}

// reportScope is a resolved request: who is asking, about whom, over what.
type reportScope struct {
	caller *domain.User
	userID int64
	window report.Window
	offset int
}

func (s *reportService) DailyTotals(ctx context.Context, req app.ReportRequest) (out *app.DailyReport, err error) {
	defer observe(ctx, s.observer, "report-daily", time.Now(),
		map[string]any{"caller_id": req.CallerID, "user_id": req.UserID}, &err)

	sc, err := s.scope(ctx, req)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, sc.userID, widen(sc.window))
	if err != nil {
		return nil, err
	}
	return &app.DailyReport{
		UserID:        sc.userID,
		Window:        sc.window,
		OffsetMinutes: sc.offset,
		Days:          report.DailyTotals(rows, sc.userID, sc.window, sc.offset),
	}, nil
}

func (s *reportService) TaskTotals(ctx context.Context, req app.ReportRequest) (out *app.TaskReport, err error) {
	defer observe(ctx, s.observer, "report-tasks", time.Now(),
		map[string]any{"caller_id": req.CallerID, "user_id": req.UserID}, &err)

	sc, err := s.scope(ctx, req)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, sc.userID, widen(sc.window))
	if err != nil {
		return nil, err
	}
	tasks := report.TaskTotals(rows, sc.userID, sc.window, sc.offset)
	visible := sc.caller.Role == domain.RoleAdmin
	if !visible {
		report.WithholdCost(tasks)
	}
	return &app.TaskReport{
		UserID:        sc.userID,
		Window:        sc.window,
		OffsetMinutes: sc.offset,
		Tasks:         tasks,
		CostVisible:   visible,
	}, nil
}

// ProjectTotals filters by raw instant. A zero UserID from an admin covers
// every user, each entry costed at its owner's rate.
func (s *reportService) ProjectTotals(ctx context.Context, req app.ReportRequest) (out *app.ProjectReport, err error) {
	defer observe(ctx, s.observer, "report-projects", time.Now(),
		map[string]any{"caller_id": req.CallerID, "user_id": req.UserID}, &err)

	sc, err := s.scope(ctx, req)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, sc.userID, sc.window)
	if err != nil {
		return nil, err
	}
	projects := report.ProjectTotals(rows, sc.userID, sc.window)
	visible := sc.caller.Role == domain.RoleAdmin
	if !visible {
		report.WithholdCost(projects)
	}
	return &app.ProjectReport{
		UserID:      sc.userID,
		Window:      sc.window,
		Projects:    projects,
		CostVisible: visible,
	}, nil
}

// scope resolves the caller and target user and the reporting window.
// Only admins may report on someone else; an admin's UserID 0 means
// everyone, anyone else's means themselves.
func (s *reportService) scope(ctx context.Context, req app.ReportRequest) (reportScope, error) {
	if err := requireIDs(map[string]int64{"caller_id": req.CallerID}); err != nil {
		return reportScope{}, err
	}
	caller, err := s.users.GetByID(ctx, req.CallerID)
	if err != nil {
		return reportScope{}, err
	}

	userID := req.UserID
	switch {
	case caller.Role == domain.RoleAdmin:
	case userID == 0:
		userID = caller.ID
	case userID != caller.ID:
		return reportScope{}, fmt.Errorf("user %d may not report on user %d: %w", caller.ID, userID, domain.ErrUnauthorized)
	}

	w, err := s.window(req)
	if err != nil {
		return reportScope{}, err
	}
	return reportScope{caller: caller, userID: userID, window: w, offset: report.OffsetOrZero(req.OffsetMinutes)}, nil
}

func (s *reportService) window(req app.ReportRequest) (report.Window, error) {
	switch {
	case req.Start == nil && req.End == nil:
		return report.DefaultWeek(s.now(), req.OffsetMinutes), nil
	case req.Start == nil || req.End == nil:
		return report.Window{}, domain.NewValidationError("window", "start and end must be given together")
	}
	w := report.DayWindow(*req.Start, *req.End, report.OffsetOrZero(req.OffsetMinutes))
	if err := w.Validate(); err != nil {
		return report.Window{}, domain.NewValidationError("window", err.Error())
	}
	return w, nil
}

func (s *reportService) rows(ctx context.Context, userID int64, w report.Window) ([]report.Row, error) {
	found, err := s.entries.ListReportable(ctx, repository.ReportQuery{UserID: userID, From: w.Start, To: w.End})
	if err != nil {
		return nil, err
	}
	rows := make([]report.Row, 0, len(found))
	for _, f := range found {
		rows = append(rows, report.Row{
			Entry:       f.Entry,
			TaskTitle:   f.TaskTitle,
			ProjectID:   f.ProjectID,
			ProjectName: f.ProjectName,
			PayRate:     f.UserPayRate,
			Archived:    f.Archived,
		})
	}
	return rows, nil
}

func widen(w report.Window) report.Window {
	return report.Window{Start: w.Start.Add(-localDaySlack), End: w.End.Add(localDaySlack)}
}
