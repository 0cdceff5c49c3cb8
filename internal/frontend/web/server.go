package web

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/septivank/mine-safety-console/internal/controller"
	"github.com/septivank/mine-safety-console/internal/logging"
	"go.uber.org/zap"
)

// Options configures the HTTP front end
type Options struct {
	ServiceName string
	ReportPath  string
}

// sessionResponse is returned by every session endpoint
type sessionResponse struct {
	ID   string          `json:"id"`
	View controller.View `json:"view"`
}

// Server exposes the console state machine over HTTP, one view per session
type Server struct {
	echo     *echo.Echo
	ctrl     *controller.Controller
	sessions *SessionManager
	opts     Options
	logger   *zap.Logger
}

// NewServer creates the echo instance and registers all routes
func NewServer(ctrl *controller.Controller, sessions *SessionManager, opts Options, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	s := &Server{
		echo:     e,
		ctrl:     ctrl,
		sessions: sessions,
		opts:     opts,
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.POST("/sessions", s.handleCreateSession)
	api.GET("/sessions/:id", s.handleGetSession)
	api.POST("/sessions/:id/events", s.handleEvent)
	api.GET("/report", s.handleReport)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.logger.Info("http front end listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"service":  s.opts.ServiceName,
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) handleCreateSession(c echo.Context) error {
	session := s.sessions.Create(s.ctrl.Start())
	logging.WithSession(s.logger, session.ID).Info("session created")

	return c.JSON(http.StatusCreated, sessionResponse{ID: session.ID, View: session.View()})
}

func (s *Server) handleGetSession(c echo.Context) error {
	id := c.Param("id")
	session, ok := s.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, sessionResponse{ID: id, View: session.View()})
}

func (s *Server) handleEvent(c echo.Context) error {
	id := c.Param("id")
	session, ok := s.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	var ev controller.Event
	if err := c.Bind(&ev); err != nil {
		return NewBadRequestError("invalid event body", err)
	}
	if ev.Action == "" {
		return NewBadRequestError("action is required", nil)
	}

	logger := logging.WithSession(s.logger, id)
	ctx := c.Request().Context()

	view, err := session.Update(func(current controller.View) (controller.View, error) {
		return s.ctrl.Dispatch(ctx, current, ev)
	})
	if errors.Is(err, controller.ErrInvalidAction) {
		return NewConflictError("action not available in current view", err)
	}
	if err != nil {
		logger.Error("event failed", zap.String("action", string(ev.Action)), zap.Error(err))
		return NewInternalError("failed to process event", err)
	}

	if view.Done() {
		s.sessions.Delete(id)
		logger.Info("session exited")
	}

	return c.JSON(http.StatusOK, sessionResponse{ID: id, View: view})
}

func (s *Server) handleReport(c echo.Context) error {
	content, err := os.ReadFile(s.opts.ReportPath)
	if errors.Is(err, os.ErrNotExist) {
		return NewNotFoundError("report", s.opts.ReportPath)
	}
	if err != nil {
		return NewInternalError("failed to read report", err)
	}

	return c.Blob(http.StatusOK, mimetype.Detect(content).String(), content)
}
