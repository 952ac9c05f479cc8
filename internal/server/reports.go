package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/report"
)

type windowJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type dayJSON struct {
	Weekday      string `json:"weekday"`
	TotalSeconds int64  `json:"total_seconds"`
}

type taskTotalJSON struct {
	TaskID       int64    `json:"task_id"`
	TaskTitle    string   `json:"task_title"`
	ProjectID    int64    `json:"project_id"`
	ProjectName  string   `json:"project_name"`
	TotalSeconds int64    `json:"total_seconds"`
	DayTotals    [7]int64 `json:"day_totals"`
	Cost         float64  `json:"cost"`
}

type projectTotalJSON struct {
	ProjectID    int64   `json:"project_id"`
	ProjectName  string  `json:"project_name"`
	TotalSeconds int64   `json:"total_seconds"`
	Cost         float64 `json:"cost"`
}

func toWindowJSON(w report.Window) windowJSON {
	return windowJSON{Start: w.Start, End: w.End}
}

// parseReportQuery reads user_id, start, end (YYYY-MM-DD local dates) and
// tz (minutes behind UTC) from the query string.
func parseReportQuery(c *gin.Context) (app.ReportRequest, error) {
	req := app.ReportRequest{CallerID: callerID(c)}
	v := &domain.ValidationError{}

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			v.Add("user_id", "must be a non-negative integer")
		}
		req.UserID = id
	}
	if raw := c.Query("start"); raw != "" {
		d, err := domain.ParseLocalDay(raw)
		if err != nil {
			v.Add("start", "must be YYYY-MM-DD")
		}
		req.Start = &d
	}
	if raw := c.Query("end"); raw != "" {
		d, err := domain.ParseLocalDay(raw)
		if err != nil {
			v.Add("end", "must be YYYY-MM-DD")
		}
		req.End = &d
	}
	if (req.Start == nil) != (req.End == nil) {
		v.Add("window", "start and end must be given together")
	}
	if raw := c.Query("tz"); raw != "" {
		off, err := strconv.Atoi(raw)
		if err != nil || off < -14*60 || off > 14*60 {
			v.Add("tz", "must be an offset in minutes between -840 and 840")
		}
		req.OffsetMinutes = &off
	}
	return req, v.OrNil()
}

func (s *Server) handleDailyReport(c *gin.Context) {
	req, err := parseReportQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	rep, err := s.svc.Reports.DailyTotals(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	days := make([]dayJSON, 0, len(rep.Days))
	for _, d := range rep.Days {
		days = append(days, dayJSON{Weekday: d.Weekday.String(), TotalSeconds: d.TotalSeconds})
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":        rep.UserID,
		"window":         toWindowJSON(rep.Window),
		"offset_minutes": rep.OffsetMinutes,
		"days":           days,
	})
}

func (s *Server) handleTaskReport(c *gin.Context) {
	req, err := parseReportQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	rep, err := s.svc.Reports.TaskTotals(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	tasks := make([]taskTotalJSON, 0, len(rep.Tasks))
	for _, t := range rep.Tasks {
		tasks = append(tasks, taskTotalJSON(t))
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":        rep.UserID,
		"window":         toWindowJSON(rep.Window),
		"offset_minutes": rep.OffsetMinutes,
		"tasks":          tasks,
		"cost_visible":   rep.CostVisible,
	})
}

func (s *Server) handleProjectReport(c *gin.Context) {
	req, err := parseReportQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	rep, err := s.svc.Reports.ProjectTotals(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	projects := make([]projectTotalJSON, 0, len(rep.Projects))
	for _, p := range rep.Projects {
		projects = append(projects, projectTotalJSON(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":      rep.UserID,
		"window":       toWindowJSON(rep.Window),
		"projects":     projects,
		"cost_visible": rep.CostVisible,
	})
}
