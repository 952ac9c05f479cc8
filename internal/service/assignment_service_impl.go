package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/repository"
)

// assignmentService treats every assignment change as a task mutation: the
// caller must pass the access rules for the task before anything is written.
type assignmentService struct {
	assignments repository.AssignmentRepo
	subtasks    repository.SubtaskRepo
	access      AccessService
	uow         db.UnitOfWork
	now         Clock
	logger      *slog.Logger
	observer    UseCaseObserver
}

func NewAssignmentService(
	assignments repository.AssignmentRepo,
	subtasks repository.SubtaskRepo,
	access AccessService,
	uow db.UnitOfWork,
	now Clock,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) AssignmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &assignmentService{
		assignments: assignments,
		subtasks:    subtasks,
		access:      access,
		uow:         uow,
		now:         clockOrDefault(now),
		logger:      logger,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *assignmentService) Assign(ctx context.Context, callerID, userID, taskID int64) (err error) {
	defer observe(ctx, s.observer, "assign", time.Now(),
		map[string]any{"caller_id": callerID, "user_id": userID, "task_id": taskID}, &err)

	if err = requireIDs(map[string]int64{"caller_id": callerID, "user_id": userID, "task_id": taskID}); err != nil {
		return err
	}
	if err = s.access.Authorize(ctx, callerID, taskID); err != nil {
		return err
	}
	return s.assignments.Create(ctx, &domain.TaskAssignment{TaskID: taskID, UserID: userID, CreatedAt: s.now()})
}

// Unassign removes the assignment and then, best effort, drops the user
// from every subtask under the task. The two steps are not atomic: the
// assignment stays removed even when the subtask cleanup fails, in which
// case the failure is logged and the cascade count is zero.
func (s *assignmentService) Unassign(ctx context.Context, callerID, userID, taskID int64) (res *app.UnassignResult, err error) {
	fields := map[string]any{"caller_id": callerID, "user_id": userID, "task_id": taskID}
	defer observe(ctx, s.observer, "unassign", time.Now(), fields, &err)

	if err = requireIDs(map[string]int64{"caller_id": callerID, "user_id": userID, "task_id": taskID}); err != nil {
		return nil, err
	}
	if err = s.access.Authorize(ctx, callerID, taskID); err != nil {
		return nil, err
	}
	if err = s.assignments.Delete(ctx, taskID, userID); err != nil {
		return nil, err
	}

	n, cascadeErr := s.subtasks.RemoveAssigneeUnderTask(ctx, taskID, userID)
	if cascadeErr != nil {
		s.logger.WarnContext(ctx, "subtask cascade failed",
			"user_id", userID, "task_id", taskID, "error", cascadeErr.Error())
		n = 0
	}
	fields["cascaded_subtasks"] = n
	return &app.UnassignResult{CascadedSubtasksUpdated: int(n)}, nil
}

// AssignDefault assigns every active user not yet on the task and returns
// how many were added.
func (s *assignmentService) AssignDefault(ctx context.Context, callerID, taskID int64) (added int, err error) {
	defer observe(ctx, s.observer, "assign-default", time.Now(),
		map[string]any{"caller_id": callerID, "task_id": taskID}, &err)

	if err = requireIDs(map[string]int64{"caller_id": callerID, "task_id": taskID}); err != nil {
		return 0, err
	}
	if err = s.access.Authorize(ctx, callerID, taskID); err != nil {
		return 0, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		added = 0
		if _, err := repository.NewSQLiteTaskRepo(tx).GetByID(ctx, taskID); err != nil {
			return err
		}
		users, err := repository.NewSQLiteUserRepo(tx).ListActive(ctx)
		if err != nil {
			return err
		}
		assignments := repository.NewSQLiteAssignmentRepo(tx)
		now := s.now()
		for _, u := range users {
			exists, err := assignments.Exists(ctx, taskID, u.ID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := assignments.Create(ctx, &domain.TaskAssignment{TaskID: taskID, UserID: u.ID, CreatedAt: now}); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *assignmentService) ListByTask(ctx context.Context, taskID int64) ([]domain.TaskAssignment, error) {
	return s.assignments.ListByTask(ctx, taskID)
}
