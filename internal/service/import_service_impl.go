package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/importer"
	"github.com/alexanderramin/timeledger/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	now      Clock
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, now Clock, logger *slog.Logger, observers ...UseCaseObserver) ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &importService{
		uow:      uow,
		now:      clockOrDefault(now),
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

// ImportProject creates a project with its General task, the listed tasks,
// their assignments and finished entries in one transaction. Any unknown
// user name or store failure rolls the whole import back.
func (s *importService) ImportProject(ctx context.Context, schema *importer.ImportSchema) (res *app.ImportResult, err error) {
	fields := map[string]any{"project": schema.Project.Name, "tasks": len(schema.Tasks), "entries": len(schema.Entries)}
	defer observe(ctx, s.observer, "project-import", time.Now(), fields, &err)

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, importValidationError(errs)
	}
	plan, err := importer.Convert(schema, s.now())
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		res = &app.ImportResult{BatchID: plan.BatchID, TaskIDs: make(map[string]int64, len(plan.Tasks)+1)}
		tasks := repository.NewSQLiteTaskRepo(tx)
		assignments := repository.NewSQLiteAssignmentRepo(tx)
		entries := repository.NewSQLiteTimeEntryRepo(tx)
		users := userLookup(repository.NewSQLiteUserRepo(tx))

		if err := repository.NewSQLiteProjectRepo(tx).Create(ctx, plan.Project); err != nil {
			return err
		}
		general := domain.NewSystemTask(plan.Project.ID, plan.Project.CreatedAt)
		if err := tasks.Create(ctx, general); err != nil {
			return err
		}
		res.ProjectID, res.GeneralTaskID = plan.Project.ID, general.ID
		res.TaskIDs[importer.GeneralRef] = general.ID

		for _, pt := range plan.Tasks {
			pt.Task.ProjectID = plan.Project.ID
			if err := tasks.Create(ctx, pt.Task); err != nil {
				return fmt.Errorf("task %q: %w", pt.Ref, err)
			}
			res.TaskIDs[pt.Ref] = pt.Task.ID
			for _, name := range pt.Assignees {
				userID, err := users(ctx, name)
				if err != nil {
					return err
				}
				a := &domain.TaskAssignment{TaskID: pt.Task.ID, UserID: userID, CreatedAt: plan.Project.CreatedAt}
				if err := assignments.Create(ctx, a); err != nil {
					return fmt.Errorf("assigning %q to %q: %w", name, pt.Ref, err)
				}
				res.Assignments++
			}
		}

		for i, pe := range plan.Entries {
			userID, err := users(ctx, pe.User)
			if err != nil {
				return err
			}
			pe.Entry.UserID = userID
			pe.Entry.TaskID = res.TaskIDs[pe.TaskRef]
			if err := entries.Create(ctx, pe.Entry); err != nil {
				return fmt.Errorf("entries[%d]: %w", i, err)
			}
			res.Entries++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "project imported",
		"batch_id", res.BatchID,
		"project_id", res.ProjectID,
		"tasks", len(plan.Tasks),
		"assignments", res.Assignments,
		"entries", res.Entries)
	return res, nil
}

// userLookup resolves user names once per import.
func userLookup(users repository.UserRepo) func(context.Context, string) (int64, error) {
	ids := map[string]int64{}
	return func(ctx context.Context, name string) (int64, error) {
		if id, ok := ids[name]; ok {
			return id, nil
		}
		u, err := users.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return 0, domain.NewValidationError("user", fmt.Sprintf("unknown user %q", name))
			}
			return 0, err
		}
		ids[name] = u.ID
		return u.ID, nil
	}
}

func importValidationError(errs []error) error {
	v := &domain.ValidationError{}
	for _, err := range errs {
		var fe importer.FieldError
		if errors.As(err, &fe) {
			v.Add(fe.Field, fe.Message)
			continue
		}
		v.Add("import", err.Error())
	}
	return v.OrNil()
}
