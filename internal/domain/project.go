package domain

import (
	"strings"
	"time"
)

type Client struct {
	ID        int64
	Name      string
	Archived  bool
	CreatedAt time.Time
}

type Project struct {
	ID        int64
	ClientID  *int64
	Name      string
	Archived  bool
	CreatedAt time.Time
}

// Validate checks the fields required to persist a project.
func (p *Project) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		v.Add("name", "name is required")
	}
	return v.OrNil()
}

// Task is a unit of billable work. System tasks are the auto-generated
// "General" catch-alls: hidden from normal listings, valid timer targets.
type Task struct {
	ID        int64
	ProjectID int64
	TeamID    *int64
	Title     string
	Archived  bool
	IsSystem  bool
	CreatedAt time.Time
}

// Validate checks the fields required to persist a task.
func (t *Task) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(t.Title) == "" {
		v.Add("title", "title is required")
	}
	if t.ProjectID <= 0 {
		v.Add("project_id", "project id must be positive")
	}
	return v.OrNil()
}

// NewSystemTask builds the catch-all task for a project.
func NewSystemTask(projectID int64, now time.Time) *Task {
	return &Task{
		ProjectID: projectID,
		Title:     SystemTaskTitle,
		IsSystem:  true,
		CreatedAt: now,
	}
}

type TaskAssignment struct {
	TaskID    int64
	UserID    int64
	CreatedAt time.Time
}
