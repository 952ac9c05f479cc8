package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/timeledger/internal/access"
	"github.com/alexanderramin/timeledger/internal/domain"
)

// FormatUserList renders users with role, status and pay rate.
func FormatUserList(users []*domain.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rate := Dim("--")
		if u.PayRate != nil {
			rate = fmt.Sprintf("%.2f", *u.PayRate)
		}
		rows = append(rows, []string{Dim(fmt.Sprintf("#%d", u.ID)), Bold(u.Name), RoleBadge(u.Role), StatusPill(u.Status), rate})
	}
	return Table{
		Headers: []string{"ID", "NAME", "ROLE", "STATUS", "RATE"},
		Rows:    rows,
		Align:   []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}.Render()
}

// FormatProjectList renders projects with their archive state.
func FormatProjectList(projects []*domain.Project) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		client := Dim("--")
		if p.ClientID != nil {
			client = fmt.Sprintf("#%d", *p.ClientID)
		}
		rows = append(rows, []string{Dim(fmt.Sprintf("#%d", p.ID)), Bold(p.Name), client, ArchivedPill(p.Archived)})
	}
	return Table{
		Headers: []string{"ID", "NAME", "CLIENT", "STATE"},
		Rows:    rows,
		Align:   []Align{AlignRight},
	}.Render()
}

// FormatTaskList renders tasks; system tasks are marked.
func FormatTaskList(tasks []*domain.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		title := Bold(t.Title)
		if t.IsSystem {
			title = StyleBlue.Render(t.Title) + Dim(" (system)")
		}
		team := Dim("--")
		if t.TeamID != nil {
			team = fmt.Sprintf("#%d", *t.TeamID)
		}
		rows = append(rows, []string{Dim(fmt.Sprintf("#%d", t.ID)), Dim(fmt.Sprintf("#%d", t.ProjectID)), title, team, ArchivedPill(t.Archived)})
	}
	return Table{
		Headers: []string{"ID", "PROJECT", "TITLE", "TEAM", "STATE"},
		Rows:    rows,
		Align:   []Align{AlignRight, AlignRight},
	}.Render()
}

// FormatSubtaskList renders a task's checklist with assignee names.
func FormatSubtaskList(subtasks []*domain.Subtask, users func(int64) string) string {
	if len(subtasks) == 0 {
		return Dim("No subtasks.") + "\n"
	}
	var b strings.Builder
	for _, s := range subtasks {
		box := StyleDim.Render("[ ]")
		if s.Done {
			box = StyleGreen.Render("[✔]")
		}
		names := make([]string, 0, len(s.Assignees))
		for _, id := range s.Assignees {
			names = append(names, users(id))
		}
		line := fmt.Sprintf("%s %s", box, s.Title)
		if len(names) > 0 {
			line += Dim(" → " + strings.Join(names, ", "))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatDecision explains an access decision.
func FormatDecision(userName, taskTitle string, d access.Decision) string {
	if d.Allowed {
		return fmt.Sprintf("%s %s may act on %s %s\n",
			StyleGreen.Render("✔"), Bold(userName), Bold(taskTitle), Dim("(via "+d.Rule+")"))
	}
	return fmt.Sprintf("%s %s may not act on %s\n", StyleRed.Render("✖"), Bold(userName), Bold(taskTitle))
}
