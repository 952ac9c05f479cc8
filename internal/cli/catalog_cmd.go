package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timeledger/internal/cli/formatter"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/importer"
)

func newUserCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "Manage users",
	}
	cmd.AddCommand(newUserAddCmd(a), newUserListCmd(a), newUserStatusCmd(a, "deactivate", domain.UserInactive), newUserStatusCmd(a, "activate", domain.UserActive))
	return cmd
}

func newUserAddCmd(a *App) *cobra.Command {
	var (
		role string
		rate float64
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := &domain.User{Name: args[0], Role: domain.Role(strings.ToLower(role))}
			if cmd.Flags().Changed("rate") {
				u.PayRate = &rate
			}
			if err := a.Users.Create(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user #%d %s %s\n", u.ID, formatter.Bold(u.Name), formatter.RoleBadge(u.Role))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "admin, developer or user (default user)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Hourly pay rate")

	return cmd
}

func newUserListCmd(a *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.Users.List(cmd.Context(), !all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUserList(users))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive users")

	return cmd
}

func newUserStatusCmd(a *App, verb string, status domain.UserStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " USER",
		Short: "Mark a user " + string(status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := resolveUser(ctx, a, args[0])
			if err != nil {
				return err
			}
			if err := a.Users.SetStatus(ctx, u.ID, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", formatter.Bold(u.Name), formatter.StatusPill(status))
			return nil
		},
	}
}

func newProjectCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage clients and projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(a),
		newProjectListCmd(a),
		newProjectArchiveCmd(a, "archive", true),
		newProjectArchiveCmd(a, "unarchive", false),
		newClientAddCmd(a),
		newProjectImportCmd(a),
	)
	return cmd
}

func newProjectImportCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a project with tasks, assignments and entries from a JSON timesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := importer.LoadImportSchema(args[0])
			if err != nil {
				return err
			}
			res, err := a.Imports.ImportProject(cmd.Context(), schema)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported project #%d %s: %d tasks, %d assignments, %d entries %s\n",
				res.ProjectID, formatter.Bold(schema.Project.Name), len(res.TaskIDs)-1, res.Assignments, res.Entries,
				formatter.Dim("(batch "+res.BatchID+")"))
			return nil
		},
	}
}

func newProjectAddCmd(a *App) *cobra.Command {
	var clientID int64

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a project and its General task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &domain.Project{Name: args[0]}
			if clientID > 0 {
				p.ClientID = &clientID
			}
			general, err := a.Projects.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project #%d %s %s\n",
				p.ID, formatter.Bold(p.Name), formatter.Dim(fmt.Sprintf("(%s task #%d)", general.Title, general.ID)))
			return nil
		},
	}

	cmd.Flags().Int64Var(&clientID, "client", 0, "Client id")

	return cmd
}

func newProjectListCmd(a *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.Projects.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")

	return cmd
}

func newProjectArchiveCmd(a *App, verb string, archive bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " PROJECT_ID",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("project", args[0])
			if err != nil {
				return err
			}
			if archive {
				err = a.Projects.Archive(cmd.Context(), id)
			} else {
				err = a.Projects.Unarchive(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sd project #%d\n", strings.ToUpper(verb[:1])+verb[1:], id)
			return nil
		},
	}
}

func newClientAddCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "client NAME",
		Short: "Add a client that projects can belong to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &domain.Client{Name: args[0]}
			if err := a.Projects.CreateClient(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created client #%d %s\n", c.ID, formatter.Bold(c.Name))
			return nil
		},
	}
}

func newTeamCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "team",
		Aliases: []string{"teams"},
		Short:   "Manage teams and membership",
	}
	cmd.AddCommand(newTeamAddCmd(a), newTeamJoinCmd(a), newTeamLeaveCmd(a), newTeamMembersCmd(a))
	return cmd
}

func newTeamAddCmd(a *App) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a team, optionally bound to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := &domain.Team{Name: args[0]}
			if projectID > 0 {
				t.ProjectID = &projectID
			}
			if err := a.Teams.Create(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created team #%d %s\n", t.ID, formatter.Bold(t.Name))
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project the team works on")

	return cmd
}

func newTeamJoinCmd(a *App) *cobra.Command {
	var lead bool

	cmd := &cobra.Command{
		Use:   "join TEAM_ID USER",
		Short: "Add a user to a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			teamID, err := parseIDArg("team", args[0])
			if err != nil {
				return err
			}
			u, err := resolveUser(ctx, a, args[1])
			if err != nil {
				return err
			}
			m := domain.TeamMembership{TeamID: teamID, UserID: u.ID, Role: domain.TeamMember}
			if lead {
				m.Role = domain.TeamLead
			}
			if err := a.Teams.AddMember(ctx, m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s joined team #%d as %s\n", formatter.Bold(u.Name), teamID, m.Role)
			return nil
		},
	}

	cmd.Flags().BoolVar(&lead, "lead", false, "Join as team lead")

	return cmd
}

func newTeamLeaveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "leave TEAM_ID USER",
		Short: "Remove a user from a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			teamID, err := parseIDArg("team", args[0])
			if err != nil {
				return err
			}
			u, err := resolveUser(ctx, a, args[1])
			if err != nil {
				return err
			}
			if err := a.Teams.RemoveMember(ctx, teamID, u.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s left team #%d\n", formatter.Bold(u.Name), teamID)
			return nil
		},
	}
}

func newTeamMembersCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "members TEAM_ID",
		Short: "List a team's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			teamID, err := parseIDArg("team", args[0])
			if err != nil {
				return err
			}
			members, err := a.Teams.ListMembers(ctx, teamID)
			if err != nil {
				return err
			}
			names := userNames(ctx, a)
			rows := make([][]string, 0, len(members))
			for _, m := range members {
				rows = append(rows, []string{fmt.Sprintf("#%d", m.UserID), names(m.UserID), string(m.Role)})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No members."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"ID", "NAME", "ROLE"}, rows))
			return nil
		},
	}
}

func newSubtaskCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtask",
		Aliases: []string{"subtasks"},
		Short:   "Manage checklist subtasks under a task",
	}
	cmd.AddCommand(newSubtaskAddCmd(a), newSubtaskListCmd(a))
	return cmd
}

func newSubtaskAddCmd(a *App) *cobra.Command {
	var (
		assignees []string
		body      string
	)

	cmd := &cobra.Command{
		Use:   "add TASK_ID TITLE",
		Short: "Start a discussion on a task with one subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			author, err := a.caller(ctx)
			if err != nil {
				return err
			}
			taskID, err := parseIDArg("task", args[0])
			if err != nil {
				return err
			}
			ids := make([]int64, 0, len(assignees))
			for _, raw := range assignees {
				u, err := resolveUser(ctx, a, raw)
				if err != nil {
					return err
				}
				ids = append(ids, u.ID)
			}

			d := &domain.Discussion{TaskID: taskID, AuthorID: author.ID, Body: domain.CoalesceStr(body, args[1])}
			if err := a.Subtasks.StartDiscussion(ctx, d); err != nil {
				return err
			}
			s := &domain.Subtask{DiscussionID: d.ID, Title: args[1], Assignees: ids}
			if err := a.Subtasks.Add(ctx, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created subtask #%d %s\n", s.ID, formatter.Bold(s.Title))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&assignees, "assignee", nil, "Assign a user (repeatable)")
	cmd.Flags().StringVar(&body, "body", "", "Discussion text; defaults to the title")

	return cmd
}

func newSubtaskListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list TASK_ID",
		Short: "List a task's subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := parseIDArg("task", args[0])
			if err != nil {
				return err
			}
			subtasks, err := a.Subtasks.ListByTask(ctx, taskID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSubtaskList(subtasks, userNames(ctx, a)))
			return nil
		},
	}
}
