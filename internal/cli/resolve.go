package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/timeledger/internal/cli/formatter"
	"github.com/alexanderramin/timeledger/internal/domain"
)

// errNoUser is returned when a command needs a caller and none was chosen.
var errNoUser = errors.New("no user selected: pass --as or set TIMELEDGER_USER")

// caller resolves the acting user from --as, falling back to the config.
func (a *App) caller(ctx context.Context) (*domain.User, error) {
	input := domain.CoalesceStr(a.as, a.Config.User)
	if input == "" {
		return nil, errNoUser
	}
	return resolveUser(ctx, a, input)
}

// resolveUser accepts a numeric id or an exact user name.
func resolveUser(ctx context.Context, a *App, input string) (*domain.User, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("user is required")
	}
	if id, err := strconv.ParseInt(input, 10, 64); err == nil {
		return a.Users.GetByID(ctx, id)
	}
	u, err := a.Users.GetByName(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", input, err)
	}
	return u, nil
}

// parseIDArg parses a positional id argument.
func parseIDArg(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", name, raw)
	}
	return id, nil
}

// taskLabels returns a memoizing lookup from task id to "Project / Task".
func taskLabels(ctx context.Context, a *App) formatter.TaskLabel {
	cache := map[int64]string{}
	projects := map[int64]string{}
	return func(taskID int64) string {
		if l, ok := cache[taskID]; ok {
			return l
		}
		t, err := a.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return ""
		}
		name, ok := projects[t.ProjectID]
		if !ok {
			if p, err := a.Projects.GetByID(ctx, t.ProjectID); err == nil {
				name = p.Name
			}
			projects[t.ProjectID] = name
		}
		l := t.Title
		if name != "" {
			l = name + " / " + t.Title
		}
		cache[taskID] = l
		return l
	}
}

// userNames returns a memoizing lookup from user id to name.
func userNames(ctx context.Context, a *App) func(int64) string {
	cache := map[int64]string{}
	return func(id int64) string {
		if n, ok := cache[id]; ok {
			return n
		}
		n := fmt.Sprintf("#%d", id)
		if u, err := a.Users.GetByID(ctx, id); err == nil {
			n = u.Name
		}
		cache[id] = n
		return n
	}
}

// parseInstant accepts RFC 3339 or a local "HH:MM" on the caller's current
// day at the --tz offset.
func (a *App) parseInstant(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	clock, err := time.Parse("15:04", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339 or HH:MM", raw)
	}
	off := a.tz.OrZero()
	day := domain.LocalDate(a.now(), off)
	return day.Midnight(off).Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), nil
}

// parseDay parses a YYYY-MM-DD flag value; empty means unset.
func parseDay(flag, raw string) (*domain.LocalDay, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseLocalDay(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", flag, raw)
	}
	return &d, nil
}
