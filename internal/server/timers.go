package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/domain"
)

type startTimerRequest struct {
	TaskID     int64      `json:"task_id"`
	Notes      string     `json:"notes"`
	ClientTime *time.Time `json:"client_time"`
}

type stopTimerRequest struct {
	EndTime    *time.Time `json:"end_time"`
	ClientTime *time.Time `json:"client_time"`
	Notes      *string    `json:"notes"`
}

type timerJSON struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	TaskID         int64     `json:"task_id"`
	Notes          string    `json:"notes"`
	StartTime      time.Time `json:"start_time"`
	ElapsedSeconds int64     `json:"elapsed_seconds"`
}

type entryJSON struct {
	ID                    int64      `json:"id"`
	UserID                int64      `json:"user_id"`
	TaskID                int64      `json:"task_id"`
	StartTime             *time.Time `json:"start_time"`
	EndTime               *time.Time `json:"end_time"`
	ManualDurationSeconds *int64     `json:"manual_duration_seconds"`
	DurationSeconds       int64      `json:"duration_seconds"`
	Notes                 string     `json:"notes"`
	CreatedAt             time.Time  `json:"created_at"`
}

func toTimerJSON(s *app.TimerSnapshot) timerJSON {
	return timerJSON{
		ID:             s.TimerID,
		UserID:         s.UserID,
		TaskID:         s.TaskID,
		Notes:          s.Notes,
		StartTime:      s.StartTime,
		ElapsedSeconds: s.ElapsedSeconds,
	}
}

func toEntryJSON(e *domain.TimeEntry) entryJSON {
	return entryJSON{
		ID:                    e.ID,
		UserID:                e.UserID,
		TaskID:                e.TaskID,
		StartTime:             e.StartTime,
		EndTime:               e.EndTime,
		ManualDurationSeconds: e.ManualDurationSeconds,
		DurationSeconds:       domain.ElapsedSeconds(e),
		Notes:                 e.Notes,
		CreatedAt:             e.CreatedAt,
	}
}

func (s *Server) handleStartTimer(c *gin.Context) {
	var req startTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "body", err)
		return
	}
	snap, err := s.svc.Timers.Start(c.Request.Context(), app.StartTimerRequest{
		UserID:     callerID(c),
		TaskID:     req.TaskID,
		Notes:      req.Notes,
		ClientTime: req.ClientTime,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"timer": toTimerJSON(snap)})
}

func (s *Server) handleStopTimer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req stopTimerRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, "body", err)
			return
		}
	}
	stopped, err := s.svc.Timers.Stop(c.Request.Context(), app.StopTimerRequest{
		UserID:     callerID(c),
		TimerID:    id,
		EndTime:    req.EndTime,
		ClientTime: req.ClientTime,
		Notes:      req.Notes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": toEntryJSON(stopped.Entry), "duration_seconds": stopped.DurationSeconds})
}

// handleForceStopTimer discards a running timer without recording time.
func (s *Server) handleForceStopTimer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Timers.ForceStop(c.Request.Context(), callerID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCurrentTimer(c *gin.Context) {
	snap, err := s.svc.Timers.Current(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if snap == nil {
		c.JSON(http.StatusOK, gin.H{"timer": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"timer": toTimerJSON(snap)})
}
