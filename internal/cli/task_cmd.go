package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timeledger/internal/cli/formatter"
	"github.com/alexanderramin/timeledger/internal/domain"
)

func newTaskCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks, assignments and access",
	}

	cmd.AddCommand(
		newTaskAddCmd(a),
		newTaskListCmd(a),
		newTaskArchiveCmd(a),
		newTaskAssignCmd(a),
		newTaskUnassignCmd(a),
		newTaskCanCmd(a),
	)

	return cmd
}

func newTaskAddCmd(a *App) *cobra.Command {
	var teamID int64

	cmd := &cobra.Command{
		Use:   "add PROJECT_ID TITLE",
		Short: "Add a task to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseIDArg("project", args[0])
			if err != nil {
				return err
			}
			t := &domain.Task{ProjectID: projectID, Title: args[1]}
			if teamID > 0 {
				t.TeamID = &teamID
			}
			if err := a.Tasks.Create(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d %s\n", t.ID, formatter.Bold(t.Title))
			return nil
		},
	}

	cmd.Flags().Int64Var(&teamID, "team", 0, "Team that owns the task")

	return cmd
}

func newTaskListCmd(a *App) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks you can track time on, or a project's tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				tasks []*domain.Task
				err   error
			)
			if projectID > 0 {
				tasks, err = a.Tasks.ListByProject(ctx, projectID)
			} else {
				u, cerr := a.caller(ctx)
				if cerr != nil {
					return cerr
				}
				tasks, err = a.Tasks.ListForUser(ctx, u.ID)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks))
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "List this project's regular tasks instead")

	return cmd
}

func newTaskArchiveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive TASK_ID",
		Short: "Archive a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("task", args[0])
			if err != nil {
				return err
			}
			if err := a.Tasks.Archive(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived task #%d\n", id)
			return nil
		},
	}
}

func newTaskAssignCmd(a *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "assign TASK_ID [USER]",
		Short: "Assign a user to a task, or every active user with --all",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := parseIDArg("task", args[0])
			if err != nil {
				return err
			}
			caller, err := a.caller(ctx)
			if err != nil {
				return err
			}
			if all {
				n, err := a.Assignments.AssignDefault(ctx, caller.ID, taskID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Assigned %d active users to task #%d\n", n, taskID)
				return nil
			}
			if len(args) < 2 {
				return errors.New("a user is required unless --all is given")
			}
			u, err := resolveUser(ctx, a, args[1])
			if err != nil {
				return err
			}
			if err := a.Assignments.Assign(ctx, caller.ID, u.ID, taskID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s\n", formatter.Bold(u.Name), taskLabels(ctx, a)(taskID))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Assign every active user not yet assigned")

	return cmd
}

func newTaskUnassignCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign TASK_ID USER",
		Short: "Remove a user from a task and from its subtasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := parseIDArg("task", args[0])
			if err != nil {
				return err
			}
			caller, err := a.caller(ctx)
			if err != nil {
				return err
			}
			u, err := resolveUser(ctx, a, args[1])
			if err != nil {
				return err
			}
			res, err := a.Assignments.Unassign(ctx, caller.ID, u.ID, taskID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unassigned %s from %s", formatter.Bold(u.Name), taskLabels(ctx, a)(taskID))
			if res.CascadedSubtasksUpdated > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d subtasks updated)", res.CascadedSubtasksUpdated)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newTaskCanCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "can TASK_ID [USER]",
		Short: "Explain whether a user may track time on a task",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := parseIDArg("task", args[0])
			if err != nil {
				return err
			}
			caller, err := a.caller(ctx)
			if err != nil {
				return err
			}
			u := caller
			if len(args) == 2 {
				if u, err = resolveUser(ctx, a, args[1]); err != nil {
					return err
				}
			}
			d, err := a.Access.ExplainFor(ctx, caller.ID, u.ID, taskID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDecision(u.Name, taskLabels(ctx, a)(taskID), d))
			return nil
		},
	}
}
