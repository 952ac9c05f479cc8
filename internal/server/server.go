package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/logging"
	"github.com/alexanderramin/timeledger/internal/service"
)

// Services is the set of use cases the HTTP API exposes.
type Services struct {
	Timers      service.TimerService
	Entries     service.EntryService
	Reports     service.ReportService
	Access      service.AccessService
	Assignments service.AssignmentService
}

// Server provides the JSON API over the time-tracking services.
type Server struct {
	engine *gin.Engine
	svc    Services
	logger *slog.Logger
}

const (
	headerUserID    = "X-User-ID"
	headerRequestID = "X-Request-ID"
	callerKey       = "caller_id"
)

// New constructs the HTTP server with routes and middleware configured.
func New(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{engine: router, svc: svc, logger: logger}
	router.Use(srv.requestLogger())
	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.GET("/healthz", s.handleHealth)

	authed := api.Group("", s.requireCaller)
	{
		timers := authed.Group("/timers")
		timers.POST("", s.handleStartTimer)
		timers.GET("/current", s.handleCurrentTimer)
		timers.POST("/:id/stop", s.handleStopTimer)
		timers.DELETE("/:id", s.handleForceStopTimer)

		authed.POST("/entries", s.handleLogEntry)
		authed.GET("/entries", s.handleListEntries)
		authed.DELETE("/entries/:id", s.handleDeleteEntry)

		reports := authed.Group("/reports")
		reports.GET("/daily", s.handleDailyReport)
		reports.GET("/tasks", s.handleTaskReport)
		reports.GET("/projects", s.handleProjectReport)

		tasks := authed.Group("/tasks/:id")
		tasks.GET("/access", s.handleTaskAccess)
		tasks.GET("/assignees", s.handleListAssignees)
		tasks.POST("/assignees", s.handleAssign)
		tasks.DELETE("/assignees/:userID", s.handleUnassign)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within timeout.
func (s *Server) Run(ctx context.Context, addr string, timeout time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger tags each request with an id, carries a request-scoped
// logger in the context and logs the outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)

		logger := s.logger.With(slog.String("request_id", id))
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), logger))
		c.Next()

		logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}

// requireCaller reads the caller's user id from X-User-ID. Authentication is
// out of scope; the header is trusted as-is.
func (s *Server) requireCaller(c *gin.Context) {
	raw := c.GetHeader(headerUserID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": headerUserID + " header with a positive user id is required"})
		return
	}
	c.Set(callerKey, id)
	c.Next()
}

func callerID(c *gin.Context) int64 {
	return c.GetInt64(callerKey)
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier", "kind": domain.KindValidation})
		return 0, false
	}
	return id, true
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload. Internal errors
// are not echoed to the client.
func (s *Server) respondError(c *gin.Context, err error) {
	kind := domain.Kind(err)
	status := statusFor(kind)
	logger := logging.FromContext(c.Request.Context())

	body := gin.H{"error": err.Error(), "kind": kind}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		body["fields"] = vErr.FieldErrors
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		body["error"] = "internal error"
	} else {
		logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, body)
}

// badRequest reports a malformed request body or query.
func (s *Server) badRequest(c *gin.Context, field string, err error) {
	s.respondError(c, domain.NewValidationError(field, err.Error()))
}
