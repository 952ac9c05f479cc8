package importer

import (
	"fmt"
	"strings"
	"time"
)

// FieldError is one problem in an import document, addressed by its JSON
// path.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldErr(field, format string, args ...any) error {
	return FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	if strings.TrimSpace(schema.Project.Name) == "" {
		errs = append(errs, fieldErr("project.name", "is required"))
	}
	if schema.Project.ClientID != nil && *schema.Project.ClientID <= 0 {
		errs = append(errs, fieldErr("project.client_id", "must be positive"))
	}

	taskRefs := make(map[string]bool)
	errs = append(errs, validateTasks(schema.Tasks, taskRefs)...)
	errs = append(errs, validateEntries(schema.Entries, taskRefs)...)

	return errs
}

func validateTasks(tasks []TaskImport, taskRefs map[string]bool) []error {
	var errs []error

	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)

		switch {
		case t.Ref == "":
			errs = append(errs, fieldErr(prefix+".ref", "is required"))
		case strings.EqualFold(t.Ref, GeneralRef):
			errs = append(errs, fieldErr(prefix+".ref", "%q is reserved for the General task", t.Ref))
		case taskRefs[t.Ref]:
			errs = append(errs, fieldErr(prefix+".ref", "duplicate ref %q", t.Ref))
		default:
			taskRefs[t.Ref] = true
		}

		if strings.TrimSpace(t.Title) == "" {
			errs = append(errs, fieldErr(prefix+".title", "is required"))
		}
		if t.TeamID != nil && *t.TeamID <= 0 {
			errs = append(errs, fieldErr(prefix+".team_id", "must be positive"))
		}

		seen := make(map[string]bool)
		for j, name := range t.Assignees {
			field := fmt.Sprintf("%s.assignees[%d]", prefix, j)
			if strings.TrimSpace(name) == "" {
				errs = append(errs, fieldErr(field, "is empty"))
			} else if seen[name] {
				errs = append(errs, fieldErr(field, "duplicate assignee %q", name))
			}
			seen[name] = true
		}
	}

	return errs
}

func validateEntries(entries []EntryImport, taskRefs map[string]bool) []error {
	var errs []error

	for i, e := range entries {
		prefix := fmt.Sprintf("entries[%d]", i)

		if e.TaskRef == "" {
			errs = append(errs, fieldErr(prefix+".task_ref", "is required"))
		} else if !taskRefs[e.TaskRef] && !strings.EqualFold(e.TaskRef, GeneralRef) {
			errs = append(errs, fieldErr(prefix+".task_ref", "ref %q not found in tasks", e.TaskRef))
		}
		if strings.TrimSpace(e.User) == "" {
			errs = append(errs, fieldErr(prefix+".user", "is required"))
		}

		hasPair := e.Start != nil || e.End != nil
		switch {
		case e.Seconds != nil && hasPair:
			errs = append(errs, fieldErr(prefix, "give either seconds or start/end, not both"))
		case e.Seconds != nil:
			if *e.Seconds < 0 {
				errs = append(errs, fieldErr(prefix+".seconds", "must not be negative"))
			}
		case e.Start == nil || e.End == nil:
			errs = append(errs, fieldErr(prefix, "needs seconds or both start and end"))
		default:
			start, startErr := parseInstant(prefix+".start", *e.Start)
			end, endErr := parseInstant(prefix+".end", *e.End)
			if startErr != nil {
				errs = append(errs, startErr)
			}
			if endErr != nil {
				errs = append(errs, endErr)
			}
			if startErr == nil && endErr == nil && end.Before(start) {
				errs = append(errs, fieldErr(prefix+".end", "must not be before start"))
			}
		}

		if e.RecordedAt != nil {
			if _, err := parseInstant(prefix+".recorded_at", *e.RecordedAt); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errs
}

func parseInstant(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fieldErr(field, "invalid time %q (expected RFC 3339)", s)
	}
	return t.UTC(), nil
}
