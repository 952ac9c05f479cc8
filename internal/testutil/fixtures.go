package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/timeledger/internal/domain"
)

var testNameCounter atomic.Int64

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%03d", prefix, testNameCounter.Add(1))
}

// User options
type UserOption func(*domain.User)

func WithRole(r domain.Role) UserOption {
	return func(u *domain.User) {
		u.Role = r
	}
}

func WithPayRate(rate float64) UserOption {
	return func(u *domain.User) {
		u.PayRate = &rate
	}
}

func WithUserStatus(s domain.UserStatus) UserOption {
	return func(u *domain.User) {
		u.Status = s
	}
}

// NewTestUser builds an active user with the plain "user" role. An empty
// name gets a unique generated one.
func NewTestUser(name string, opts ...UserOption) *domain.User {
	if name == "" {
		name = uniqueName("user")
	}
	u := &domain.User{
		Name:      name,
		Role:      domain.RoleUser,
		Status:    domain.UserActive,
		CreatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Project options
type ProjectOption func(*domain.Project)

func WithClientID(id int64) ProjectOption {
	return func(p *domain.Project) {
		p.ClientID = &id
	}
}

func WithProjectArchived() ProjectOption {
	return func(p *domain.Project) {
		p.Archived = true
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	if name == "" {
		name = uniqueName("project")
	}
	p := &domain.Project{
		Name:      name,
		CreatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithTeamID(id int64) TaskOption {
	return func(t *domain.Task) {
		t.TeamID = &id
	}
}

func WithTaskArchived() TaskOption {
	return func(t *domain.Task) {
		t.Archived = true
	}
}

func WithSystemTask() TaskOption {
	return func(t *domain.Task) {
		t.IsSystem = true
	}
}

func NewTestTask(projectID int64, title string, opts ...TaskOption) *domain.Task {
	if title == "" {
		title = uniqueName("task")
	}
	t := &domain.Task{
		ProjectID: projectID,
		Title:     title,
		CreatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Time entry options
type EntryOption func(*domain.TimeEntry)

func WithNotes(n string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Notes = n
	}
}

func WithCreatedAt(t time.Time) EntryOption {
	return func(e *domain.TimeEntry) {
		e.CreatedAt = t
		e.UpdatedAt = t
	}
}

// NewCompletedEntry builds a finished entry spanning start to end.
func NewCompletedEntry(userID, taskID int64, start, end time.Time, opts ...EntryOption) *domain.TimeEntry {
	e := &domain.TimeEntry{UserID: userID, TaskID: taskID, CreatedAt: end, UpdatedAt: end}
	e.SetSpan(domain.Completed{Start: start, End: end})
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewManualEntry builds a manual entry recorded at createdAt.
func NewManualEntry(userID, taskID, seconds int64, createdAt time.Time, opts ...EntryOption) *domain.TimeEntry {
	e := &domain.TimeEntry{UserID: userID, TaskID: taskID, CreatedAt: createdAt, UpdatedAt: createdAt}
	e.SetSpan(domain.Manual{Seconds: seconds})
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewRunningEntry builds a running timer started at start.
func NewRunningEntry(userID, taskID int64, start time.Time, opts ...EntryOption) *domain.TimeEntry {
	e := &domain.TimeEntry{UserID: userID, TaskID: taskID, CreatedAt: start, UpdatedAt: start}
	e.SetSpan(domain.Ongoing{Start: start})
	for _, opt := range opts {
		opt(e)
	}
	return e
}
