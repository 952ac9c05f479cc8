package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// GeneralRef addresses the project's auto-created General task in
// entries[].task_ref.
const GeneralRef = "general"

// ImportSchema is the top-level JSON structure for a timesheet import: one
// project, its tasks and their assignees, and finished time entries.
type ImportSchema struct {
	Project ProjectImport `json:"project"`
	Tasks   []TaskImport  `json:"tasks"`
	Entries []EntryImport `json:"entries,omitempty"`
}

// ProjectImport defines the project-level fields in the import file.
type ProjectImport struct {
	Name     string `json:"name"`
	ClientID *int64 `json:"client_id,omitempty"`
}

// TaskImport defines a task in the import file. Assignees are user names.
type TaskImport struct {
	Ref       string   `json:"ref"`
	Title     string   `json:"title"`
	TeamID    *int64   `json:"team_id,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

// EntryImport is one finished entry: either seconds or a start/end pair,
// both RFC 3339. RecordedAt places a duration-only entry on the calendar.
type EntryImport struct {
	TaskRef    string  `json:"task_ref"`
	User       string  `json:"user"`
	Seconds    *int64  `json:"seconds,omitempty"`
	Start      *string `json:"start,omitempty"`
	End        *string `json:"end,omitempty"`
	RecordedAt *string `json:"recorded_at,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// ParseImportSchema decodes an import document.
func ParseImportSchema(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}

// LoadImportSchema reads and parses a timesheet import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}
