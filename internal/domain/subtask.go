package domain

import "time"

type Discussion struct {
	ID        int64
	TaskID    int64
	AuthorID  int64
	Body      string
	CreatedAt time.Time
}

// Subtask is a checklist item attached to a discussion under a task.
// Assignees holds user ids from the subtask_assignees child table.
type Subtask struct {
	ID           int64
	DiscussionID int64
	Title        string
	Done         bool
	Assignees    []int64
}
