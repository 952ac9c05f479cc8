package service

import (
	"context"
	"strings"

	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
	clients  repository.ClientRepo
	uow      db.UnitOfWork
	now      Clock
}

func NewProjectService(projects repository.ProjectRepo, clients repository.ClientRepo, uow db.UnitOfWork, now Clock) ProjectService {
	return &projectService{projects: projects, clients: clients, uow: uow, now: clockOrDefault(now)}
}

func (s *projectService) CreateClient(ctx context.Context, c *domain.Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return domain.NewValidationError("name", "name is required")
	}
	c.CreatedAt = s.now()
	return s.clients.Create(ctx, c)
}

func (s *projectService) ArchiveClient(ctx context.Context, id int64) error {
	return s.clients.SetArchived(ctx, id, true)
}

// Create inserts the project together with its "General" system task and
// returns that task.
func (s *projectService) Create(ctx context.Context, p *domain.Project) (*domain.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.CreatedAt = s.now()

	var general *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteProjectRepo(tx).Create(ctx, p); err != nil {
			return err
		}
		general = domain.NewSystemTask(p.ID, p.CreatedAt)
		return repository.NewSQLiteTaskRepo(tx).Create(ctx, general)
	})
	if err != nil {
		p.ID = 0
		return nil, err
	}
	return general, nil
}

func (s *projectService) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	return s.projects.List(ctx, includeArchived)
}

func (s *projectService) Archive(ctx context.Context, id int64) error {
	return s.projects.SetArchived(ctx, id, true)
}

func (s *projectService) Unarchive(ctx context.Context, id int64) error {
	return s.projects.SetArchived(ctx, id, false)
}
