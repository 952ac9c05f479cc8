package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/timeledger/internal/cli/formatter"
)

// maxOffsetMinutes bounds real-world UTC offsets (UTC-12 to UTC+14).
const maxOffsetMinutes = 14 * 60

// offsetFlag is a pflag.Value holding a UTC offset in minutes behind UTC,
// the getTimezoneOffset() convention. Unset means "not supplied".
type offsetFlag struct {
	minutes int
	set     bool
	// now is consulted for "local"; nil means time.Now.
	now func() time.Time
}

var _ pflag.Value = (*offsetFlag)(nil)

func (f *offsetFlag) String() string {
	if !f.set {
		return ""
	}
	return formatter.ZoneName(f.minutes)
}

func (f *offsetFlag) Type() string { return "offset" }

func (f *offsetFlag) Set(s string) error {
	m, err := f.parse(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if m < -maxOffsetMinutes || m > maxOffsetMinutes {
		return fmt.Errorf("offset %q is out of range", s)
	}
	f.minutes, f.set = m, true
	return nil
}

func (f *offsetFlag) parse(s string) (int, error) {
	upper := strings.ToUpper(s)
	switch {
	case upper == "LOCAL":
		now := time.Now
		if f.now != nil {
			now = f.now
		}
		_, east := now().Zone()
		return -east / 60, nil
	case upper == "UTC" || upper == "Z":
		return 0, nil
	case strings.HasPrefix(upper, "UTC"):
		east, err := parseEast(upper[3:])
		if err != nil {
			return 0, fmt.Errorf("invalid offset %q: %w", s, err)
		}
		return -east, nil
	}
	m, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: use minutes behind UTC, UTC±H[:MM] or local", s)
	}
	return m, nil
}

// parseEast reads "+5:30" or "-8" as minutes east of UTC.
func parseEast(s string) (int, error) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, fmt.Errorf("expected a sign and hours")
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	hh, mm, hasMinutes := strings.Cut(s[1:], ":")
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("bad hours %q", hh)
	}
	m := 0
	if hasMinutes {
		if m, err = strconv.Atoi(mm); err != nil || m < 0 || m >= 60 {
			return 0, fmt.Errorf("bad minutes %q", mm)
		}
	}
	return sign * (h*60 + m), nil
}

// Ptr returns the offset, or nil when the flag was not given.
func (f *offsetFlag) Ptr() *int {
	if !f.set {
		return nil
	}
	m := f.minutes
	return &m
}

// OrZero returns the offset with the UTC fallback.
func (f *offsetFlag) OrZero() int {
	if !f.set {
		return 0
	}
	return f.minutes
}
