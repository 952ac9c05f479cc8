package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/timeledger/internal/domain"
)

// ExitMessage renders err for the terminal, phrased by error kind.
func ExitMessage(err error) string {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) && vErr.HasErrors() {
		fields := make([]string, 0, len(vErr.FieldErrors))
		for f := range vErr.FieldErrors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		var b strings.Builder
		b.WriteString("invalid input:")
		for _, f := range fields {
			fmt.Fprintf(&b, "\n  %s: %s", f, vErr.FieldErrors[f])
		}
		return b.String()
	}

	switch domain.Kind(err) {
	case domain.KindConflict:
		return "conflict: " + err.Error()
	case domain.KindNotFound:
		return "not found: " + err.Error()
	case domain.KindUnauthorized:
		return "not allowed: " + err.Error()
	default:
		return err.Error()
	}
}

// ExitCode maps err to a process exit status: 2 for bad input, 1 otherwise.
func ExitCode(err error) int {
	switch domain.Kind(err) {
	case domain.KindNone:
		return 0
	case domain.KindValidation:
		return 2
	default:
		return 1
	}
}
