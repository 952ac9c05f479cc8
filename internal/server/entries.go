package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/report"
)

type logEntryRequest struct {
	TaskID    int64      `json:"task_id"`
	Seconds   *int64     `json:"seconds"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     string     `json:"notes"`
}

func (s *Server) handleLogEntry(c *gin.Context) {
	var req logEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "body", err)
		return
	}
	e, err := s.svc.Entries.Log(c.Request.Context(), app.LogEntryRequest{
		UserID:  callerID(c),
		TaskID:  req.TaskID,
		Seconds: req.Seconds,
		Start:   req.StartTime,
		End:     req.EndTime,
		Notes:   req.Notes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": toEntryJSON(e)})
}

// handleListEntries lists the caller's entries over the same start/end/tz
// window the reports use.
func (s *Server) handleListEntries(c *gin.Context) {
	q, err := parseReportQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var w report.Window
	if q.Start == nil {
		w = report.DefaultWeek(time.Now().UTC(), q.OffsetMinutes)
	} else {
		w = report.DayWindow(*q.Start, *q.End, report.OffsetOrZero(q.OffsetMinutes))
	}
	entries, err := s.svc.Entries.ListForUser(c.Request.Context(), callerID(c), w)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryJSON(e))
	}
	c.JSON(http.StatusOK, gin.H{"entries": out, "window": toWindowJSON(w)})
}

func (s *Server) handleDeleteEntry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Entries.Delete(c.Request.Context(), callerID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
