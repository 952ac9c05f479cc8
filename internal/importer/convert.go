package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/timeledger/internal/domain"
)

// Plan is a converted import: domain objects without ids, plus the
// name/ref links the importing service resolves inside one transaction.
type Plan struct {
	// BatchID tags the import in logs.
	BatchID string
	Project *domain.Project
	Tasks   []PlannedTask
	Entries []PlannedEntry
}

type PlannedTask struct {
	Ref       string
	Task      *domain.Task
	Assignees []string
}

// PlannedEntry targets a task by ref; GeneralRef means the project's
// system task.
type PlannedEntry struct {
	TaskRef string
	User    string
	Entry   *domain.TimeEntry
}

// Convert transforms a validated ImportSchema into domain objects ready for
// persistence. Call ValidateImportSchema first; Convert assumes the schema is
// valid. now stamps creation times.
func Convert(schema *ImportSchema, now time.Time) (*Plan, error) {
	plan := &Plan{
		BatchID: uuid.NewString(),
		Project: &domain.Project{
			Name:      strings.TrimSpace(schema.Project.Name),
			ClientID:  schema.Project.ClientID,
			CreatedAt: now,
		},
	}

	for _, t := range schema.Tasks {
		plan.Tasks = append(plan.Tasks, PlannedTask{
			Ref: t.Ref,
			Task: &domain.Task{
				TeamID:    t.TeamID,
				Title:     strings.TrimSpace(t.Title),
				CreatedAt: now,
			},
			Assignees: t.Assignees,
		})
	}

	for i, e := range schema.Entries {
		entry, err := convertEntry(e, now)
		if err != nil {
			return nil, fmt.Errorf("entries[%d]: %w", i, err)
		}
		ref := e.TaskRef
		if strings.EqualFold(ref, GeneralRef) {
			ref = GeneralRef
		}
		plan.Entries = append(plan.Entries, PlannedEntry{TaskRef: ref, User: e.User, Entry: entry})
	}

	return plan, nil
}

func convertEntry(e EntryImport, now time.Time) (*domain.TimeEntry, error) {
	entry := &domain.TimeEntry{Notes: e.Notes, CreatedAt: now, UpdatedAt: now}

	if e.Seconds != nil {
		entry.SetSpan(domain.Manual{Seconds: *e.Seconds})
		if e.RecordedAt != nil {
			at, err := parseInstant("recorded_at", *e.RecordedAt)
			if err != nil {
				return nil, err
			}
			entry.CreatedAt, entry.UpdatedAt = at, at
		}
		return entry, nil
	}

	if e.Start == nil || e.End == nil {
		return nil, fmt.Errorf("missing start or end")
	}
	start, err := parseInstant("start", *e.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseInstant("end", *e.End)
	if err != nil {
		return nil, err
	}
	entry.SetSpan(domain.Completed{Start: start, End: end})
	entry.CreatedAt, entry.UpdatedAt = end, end
	return entry, nil
}
