package service

import (
	"context"
	"time"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/report"
	"github.com/alexanderramin/timeledger/internal/repository"
)

type entryService struct {
	entries  repository.TimeEntryRepo
	tasks    repository.TaskRepo
	access   AccessService
	now      Clock
	observer UseCaseObserver
}

func NewEntryService(
	entries repository.TimeEntryRepo,
	tasks repository.TaskRepo,
	access AccessService,
	now Clock,
	observers ...UseCaseObserver,
) EntryService {
	return &entryService{
		entries:  entries,
		tasks:    tasks,
		access:   access,
		now:      clockOrDefault(now),
		observer: useCaseObserverOrNoop(observers),
	}
}

// Log records finished work, either as a bare duration or as a start/end
// pair. It is gated by the access resolver the same way starting a timer is.
func (s *entryService) Log(ctx context.Context, req app.LogEntryRequest) (e *domain.TimeEntry, err error) {
	fields := map[string]any{"user_id": req.UserID, "task_id": req.TaskID}
	defer observe(ctx, s.observer, "log-entry", time.Now(), fields, &err)

	span, err := logSpan(req)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Archived {
		return nil, domain.NewValidationError("task_id", "task is archived")
	}
	if !task.IsSystem {
		if err = s.access.Authorize(ctx, req.UserID, req.TaskID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	e = &domain.TimeEntry{
		UserID:    req.UserID,
		TaskID:    req.TaskID,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.SetSpan(span)
	if err = s.entries.Create(ctx, e); err != nil {
		return nil, err
	}
	fields["entry_id"] = e.ID
	fields["seconds"] = domain.ElapsedSeconds(e)
	return e, nil
}

// logSpan validates the request shape and converts it to a span.
func logSpan(req app.LogEntryRequest) (domain.Span, error) {
	v := &domain.ValidationError{}
	if req.UserID <= 0 {
		v.Add("user_id", "must be a positive id")
	}
	if req.TaskID <= 0 {
		v.Add("task_id", "must be a positive id")
	}

	hasPair := req.Start != nil || req.End != nil
	var span domain.Span
	switch {
	case req.Seconds != nil && hasPair:
		v.Add("seconds", "give either seconds or a start/end pair, not both")
	case req.Seconds != nil:
		if *req.Seconds < 0 {
			v.Add("seconds", "must not be negative")
		}
		span = domain.Manual{Seconds: *req.Seconds}
	case req.Start != nil && req.End != nil:
		if req.End.Before(*req.Start) {
			v.Add("end_time", "end time precedes start time")
		}
		span = domain.Completed{Start: req.Start.UTC(), End: req.End.UTC()}
	case hasPair:
		v.Add("end_time", "start and end must be given together")
	default:
		v.Add("seconds", "seconds or a start/end pair is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return span, nil
}

func (s *entryService) ListForUser(ctx context.Context, userID int64, w report.Window) ([]*domain.TimeEntry, error) {
	if err := requireIDs(map[string]int64{"user_id": userID}); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, domain.NewValidationError("window", err.Error())
	}
	return s.entries.ListByUser(ctx, userID, w.Start, w.End)
}

func (s *entryService) Delete(ctx context.Context, userID, entryID int64) (err error) {
	defer observe(ctx, s.observer, "delete-entry", time.Now(),
		map[string]any{"user_id": userID, "entry_id": entryID}, &err)

	if err = requireIDs(map[string]int64{"user_id": userID, "entry_id": entryID}); err != nil {
		return err
	}
	return s.entries.Delete(ctx, entryID, userID)
}

// NormalizeLegacy rewrites stored entries that carry both a manual duration
// and timestamps so that only the manual duration remains.
func (s *entryService) NormalizeLegacy(ctx context.Context) (n int64, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "normalize-legacy", time.Now(), fields, &err)

	n, err = s.entries.NormalizeLegacy(ctx, s.now())
	fields["rows"] = n
	return n, err
}
