package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Splendour-K/Opp/internal/dashboard"
	"github.com/Splendour-K/Opp/internal/models"
)

// MatchAnalyzer explains how an opportunity fits the user's profile.
type MatchAnalyzer interface {
	AnalyzeMatch(ctx context.Context, opportunityTitle, bio string) string
}

type Options struct {
	AllowedOrigins []string
	Logger         *logrus.Logger
	// Sources lists the configured sync sources for GET /sources.
	Sources []string
}

type Server struct {
	Dashboard *dashboard.Controller
	Advisor   MatchAnalyzer
	Echo      *echo.Echo

	sources []string
	log     *logrus.Entry
}

func NewServer(ctrl *dashboard.Controller, advisor MatchAnalyzer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	log := opts.Logger.WithField("component", "api")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:4200"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		Dashboard: ctrl,
		Advisor:   advisor,
		Echo:      e,
		sources:   opts.Sources,
		log:       log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/latest", s.handleLatest)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.GET("/opportunities/:id/related", s.handleRelated)
	api.POST("/opportunities/:id/analysis", s.handleAnalysis)
	api.GET("/deadlines", s.handleDeadlines)
	api.GET("/sources", s.handleGetSources)

	api.GET("/saved", s.handleGetSaved)
	api.POST("/saved/:id/toggle", s.handleToggleSaved)

	api.GET("/tasks", s.handleListTasks)
	api.POST("/tasks", s.handleAddTask)
	api.PATCH("/tasks/:id", s.handleUpdateTask)
	api.DELETE("/tasks/:id", s.handleRemoveTask)

	api.GET("/notifications", s.handleNotifications)
	api.POST("/notifications/:id/dismiss", s.handleDismiss)
	api.POST("/notifications/reset", s.handleResetDismissed)

	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handleUpdateSettings)
	api.GET("/profile", s.handleGetProfile)
	api.PUT("/profile", s.handleUpdateProfile)

	api.GET("/detail", s.handleGetDetail)
	api.POST("/detail/scroll", s.handleScroll)
	api.POST("/detail/:id", s.handleOpenDetail)
	api.DELETE("/detail", s.handleCloseDetail)

	api.POST("/sync", s.handleStartSync)
	api.GET("/sync/runs", s.handleListSyncRuns)
	api.GET("/sync/runs/:id", s.handleSyncRun)
	api.GET("/citations", s.handleCitations)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

// fail maps dashboard errors onto HTTP statuses.
func (s *Server) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, dashboard.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, dashboard.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.log.WithError(err).WithField("path", c.Path()).Error("request failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	f := dashboard.Filter{Type: strings.TrimSpace(c.QueryParam("type"))}
	if raw := strings.TrimSpace(c.QueryParam("min_score")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "min_score must be an integer"})
		}
		f.MinScore = v
	}
	if f.Type != "" && f.Type != dashboard.AllTypes {
		t, ok := models.ParseOpportunityType(f.Type)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown type %q", f.Type)})
		}
		f.Type = string(t)
	}
	return c.JSON(http.StatusOK, s.Dashboard.Opportunities(f))
}

func (s *Server) handleLatest(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Dashboard.Latest())
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	opp, err := s.Dashboard.Opportunity(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleRelated(c echo.Context) error {
	related, err := s.Dashboard.Related(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, related)
}

func (s *Server) handleAnalysis(c echo.Context) error {
	opp, err := s.Dashboard.Opportunity(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if s.Advisor == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "advisor not configured"})
	}
	analysis := s.Advisor.AnalyzeMatch(c.Request().Context(), opp.Title, s.Dashboard.Bio())
	return c.JSON(http.StatusOK, map[string]string{"opportunityId": opp.ID, "analysis": analysis})
}

func (s *Server) handleDeadlines(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Dashboard.Deadlines())
}

func (s *Server) handleGetSources(c echo.Context) error {
	sources := s.sources
	if sources == nil {
		sources = []string{}
	}
	return c.JSON(http.StatusOK, sources)
}

func (s *Server) handleCitations(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Dashboard.Citations())
}
