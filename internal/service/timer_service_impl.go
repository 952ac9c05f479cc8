package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/repository"
)

type timerService struct {
	entries  repository.TimeEntryRepo
	tasks    repository.TaskRepo
	access   AccessService
	now      Clock
	observer UseCaseObserver
}

// NewTimerService builds the per-user timer state machine. Nothing is cached
// between calls; every operation re-reads the store.
func NewTimerService(
	entries repository.TimeEntryRepo,
	tasks repository.TaskRepo,
	access AccessService,
	now Clock,
	observers ...UseCaseObserver,
) TimerService {
	return &timerService{
		entries:  entries,
		tasks:    tasks,
		access:   access,
		now:      clockOrDefault(now),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *timerService) Start(ctx context.Context, req app.StartTimerRequest) (snap *app.TimerSnapshot, err error) {
	fields := map[string]any{"user_id": req.UserID, "task_id": req.TaskID}
	defer observe(ctx, s.observer, "timer-start", time.Now(), fields, &err)

	if err = requireIDs(map[string]int64{"user_id": req.UserID, "task_id": req.TaskID}); err != nil {
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

	running, err := s.entries.FindRunning(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if running != nil {
		err = fmt.Errorf("timer %d is already running: %w", running.ID, domain.ErrConflict)
		return nil, err
	}

	now := s.now()
	start := domain.FirstNonNil(now, req.ClientTime).UTC()
	e := &domain.TimeEntry{
		UserID:    req.UserID,
		TaskID:    req.TaskID,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.SetSpan(domain.Ongoing{Start: start})
	// The partial unique index decides races the pre-read above missed.
	if err = s.entries.Create(ctx, e); err != nil {
		return nil, err
	}
	fields["timer_id"] = e.ID

	return &app.TimerSnapshot{
		TimerID:   e.ID,
		UserID:    e.UserID,
		TaskID:    e.TaskID,
		Notes:     e.Notes,
		StartTime: start,
	}, nil
}

func (s *timerService) Stop(ctx context.Context, req app.StopTimerRequest) (stopped *app.StoppedTimer, err error) {
	fields := map[string]any{"user_id": req.UserID, "timer_id": req.TimerID}
	defer observe(ctx, s.observer, "timer-stop", time.Now(), fields, &err)

	if err = requireIDs(map[string]int64{"user_id": req.UserID, "timer_id": req.TimerID}); err != nil {
		return nil, err
	}
	e, err := s.runningTimer(ctx, req.UserID, req.TimerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	end := domain.FirstNonNil(now, req.EndTime, req.ClientTime).UTC()
	if end.Before(*e.StartTime) {
		err = domain.NewValidationError("end_time", "end time precedes start time")
		return nil, err
	}
	if err = s.entries.Finish(ctx, e.ID, req.UserID, end, req.Notes, now); err != nil {
		return nil, err
	}

	e, err = s.entries.GetByID(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	duration := domain.ElapsedSeconds(e)
	fields["duration_seconds"] = duration
	return &app.StoppedTimer{Entry: e, DurationSeconds: duration}, nil
}

func (s *timerService) ForceStop(ctx context.Context, userID, timerID int64) (err error) {
	defer observe(ctx, s.observer, "timer-force-stop", time.Now(),
		map[string]any{"user_id": userID, "timer_id": timerID}, &err)

	if err = requireIDs(map[string]int64{"user_id": userID, "timer_id": timerID}); err != nil {
		return err
	}
	return s.entries.DeleteRunning(ctx, timerID, userID)
}

func (s *timerService) Current(ctx context.Context, userID int64) (*app.TimerSnapshot, error) {
	if err := requireIDs(map[string]int64{"user_id": userID}); err != nil {
		return nil, err
	}
	e, err := s.entries.FindRunning(ctx, userID)
	if err != nil || e == nil {
		return nil, err
	}
	return &app.TimerSnapshot{
		TimerID:        e.ID,
		UserID:         e.UserID,
		TaskID:         e.TaskID,
		Notes:          e.Notes,
		StartTime:      *e.StartTime,
		ElapsedSeconds: domain.RunningSeconds(*e.StartTime, s.now()),
	}, nil
}

// runningTimer loads timerID and checks that it is a running timer owned by
// userID. Anything else is reported as not found.
func (s *timerService) runningTimer(ctx context.Context, userID, timerID int64) (*domain.TimeEntry, error) {
	e, err := s.entries.GetByID(ctx, timerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil || e.UserID != userID || !e.IsOngoing() {
		return nil, fmt.Errorf("running timer %d: %w", timerID, domain.ErrNotFound)
	}
	return e, nil
}
