package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/timeledger/internal/access"
	"github.com/alexanderramin/timeledger/internal/cli"
	"github.com/alexanderramin/timeledger/internal/config"
	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/logging"
	"github.com/alexanderramin/timeledger/internal/repository"
	"github.com/alexanderramin/timeledger/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.ExitMessage(err))
		os.Exit(max(cli.ExitCode(err), 1))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if cfg.File != "" {
		logger.Debug("config file loaded", "path", cfg.File)
	}

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	userRepo := repository.NewSQLiteUserRepo(database)
	projectRepo := repository.NewSQLiteProjectRepo(database)
	clientRepo := repository.NewSQLiteClientRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	teamRepo := repository.NewSQLiteTeamRepo(database)
	entryRepo := repository.NewSQLiteTimeEntryRepo(database)
	assignmentRepo := repository.NewSQLiteAssignmentRepo(database)
	subtaskRepo := repository.NewSQLiteSubtaskRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}

	// Wire services
	accessSvc := service.NewAccessService(access.NewResolver(repository.NewSQLiteAccessRepo(database)), observers...)

	app := &cli.App{
		Timers:      service.NewTimerService(entryRepo, taskRepo, accessSvc, nil, observers...),
		Entries:     service.NewEntryService(entryRepo, taskRepo, accessSvc, nil, observers...),
		Reports:     service.NewReportService(entryRepo, userRepo, nil, observers...),
		Access:      accessSvc,
		Assignments: service.NewAssignmentService(assignmentRepo, subtaskRepo, accessSvc, uow, nil, logger, observers...),
		Users:       service.NewUserService(userRepo, nil),
		Projects:    service.NewProjectService(projectRepo, clientRepo, uow, nil),
		Tasks:       service.NewTaskService(taskRepo, nil),
		Teams:       service.NewTeamService(teamRepo, nil),
		Subtasks:    service.NewSubtaskService(subtaskRepo, nil),
		Imports:     service.NewImportService(uow, nil, logger, observers...),
		Config:      cfg,
		Logger:      logger,
	}

	// Prompts only on an interactive terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}
