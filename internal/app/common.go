package app

import (
	"time"

	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/report"
)

type StartTimerRequest struct {
	UserID int64
	TaskID int64
	Notes  string
	// ClientTime, when set, is the authoritative start instant.
	ClientTime *time.Time
}

type StopTimerRequest struct {
	UserID  int64
	TimerID int64
	// EndTime wins over ClientTime; the server clock is the fallback.
	EndTime    *time.Time
	ClientTime *time.Time
	// Notes replaces the stored notes when non-nil.
	Notes *string
}

// TimerSnapshot is a running timer as seen at query time.
type TimerSnapshot struct {
	TimerID        int64
	UserID         int64
	TaskID         int64
	Notes          string
	StartTime      time.Time
	ElapsedSeconds int64
}

type StoppedTimer struct {
	Entry           *domain.TimeEntry
	DurationSeconds int64
}

// LogEntryRequest records finished work directly. Exactly one of Seconds or
// the Start/End pair must be given.
type LogEntryRequest struct {
	UserID  int64
	TaskID  int64
	Seconds *int64
	Start   *time.Time
	End     *time.Time
	Notes   string
}

// ReportRequest selects a reporting window. Without Start/End the current
// week is used. OffsetMinutes follows the getTimezoneOffset() sign
// convention; nil means UTC for day bucketing.
type ReportRequest struct {
	CallerID      int64
	UserID        int64
	Start         *domain.LocalDay
	End           *domain.LocalDay
	OffsetMinutes *int
}

type DailyReport struct {
	UserID        int64
	Window        report.Window
	OffsetMinutes int
	Days          [7]report.DayTotal
}

type TaskReport struct {
	UserID        int64
	Window        report.Window
	OffsetMinutes int
	Tasks         []report.TaskTotal
	// CostVisible is false when costs were zeroed for a non-admin caller.
	CostVisible bool
}

type ProjectReport struct {
	UserID      int64
	Window      report.Window
	Projects    []report.ProjectTotal
	CostVisible bool
}

type UnassignResult struct {
	CascadedSubtasksUpdated int
}

// ImportResult summarises a committed timesheet import.
type ImportResult struct {
	BatchID       string
	ProjectID     int64
	GeneralTaskID int64
	// TaskIDs maps import refs to created task ids.
	TaskIDs     map[string]int64
	Assignments int
	Entries     int
}
