package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/timeledger/internal/domain"
)

type assignRequest struct {
	UserID int64 `json:"user_id"`
	// AllActive assigns every active user instead of UserID.
	AllActive bool `json:"all_active"`
}

type assignmentJSON struct {
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// handleTaskAccess explains whether a user may act on the task. The user
// defaults to the caller; asking about someone else takes an admin.
func (s *Server) handleTaskAccess(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID := callerID(c)
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.badRequest(c, "user_id", err)
			return
		}
		userID = id
	}
	d, err := s.svc.Access.ExplainFor(c.Request.Context(), callerID(c), userID, taskID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "task_id": taskID, "allowed": d.Allowed, "rule": d.Rule})
}

func (s *Server) handleListAssignees(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := s.svc.Assignments.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]assignmentJSON, 0, len(list))
	for _, a := range list {
		out = append(out, assignmentJSON{TaskID: a.TaskID, UserID: a.UserID, CreatedAt: a.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"assignees": out})
}

func (s *Server) handleAssign(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "body", err)
		return
	}
	if req.AllActive {
		added, err := s.svc.Assignments.AssignDefault(c.Request.Context(), callerID(c), taskID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"added": added})
		return
	}
	if req.UserID <= 0 {
		s.respondError(c, domain.NewValidationError("user_id", "must be a positive id"))
		return
	}
	if err := s.svc.Assignments.Assign(c.Request.Context(), callerID(c), req.UserID, taskID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task_id": taskID, "user_id": req.UserID})
}

func (s *Server) handleUnassign(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userID")
	if !ok {
		return
	}
	res, err := s.svc.Assignments.Unassign(c.Request.Context(), callerID(c), userID, taskID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cascaded_subtasks_updated": res.CascadedSubtasksUpdated})
}
