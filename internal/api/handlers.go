package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Splendour-K/Opp/internal/dashboard"
	"github.com/Splendour-K/Opp/internal/models"
)

type addTaskRequest struct {
	OpportunityID string `json:"opportunityId"`
}

type updateTaskRequest struct {
	Status string `json:"status"`
}

type profileRequest struct {
	Bio string `json:"bio"`
}

// Saved

func (s *Server) handleGetSaved(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Dashboard.Saved())
}

func (s *Server) handleToggleSaved(c echo.Context) error {
	id := c.Param("id")
	if _, err := s.Dashboard.Opportunity(id); err != nil {
		return s.fail(c, err)
	}
	saved := s.Dashboard.ToggleSave(id)
	return c.JSON(http.StatusOK, map[string]any{"id": id, "saved": saved})
}

// Tasks

func (s *Server) handleListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Dashboard.Tasks())
}

func (s *Server) handleAddTask(c echo.Context) error {
	var req addTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.OpportunityID) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "opportunityId is required"})
	}

	task, created, err := s.Dashboard.AddTask(req.OpportunityID)
	if err != nil {
		return s.fail(c, err)
	}
	if !created {
		return c.JSON(http.StatusOK, task)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	task, err := s.Dashboard.UpdateTaskStatus(c.Param("id"), req.Status)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// handleRemoveTask is idempotent: removing an unknown task is a no-op.
func (s *Server) handleRemoveTask(c echo.Context) error {
	if s.Dashboard.RemoveTask(c.Param("id")) {
		s.log.WithField("task_id", c.Param("id")).Debug("task removed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Notifications

func (s *Server) handleNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Dashboard.Notifications())
}

func (s *Server) handleDismiss(c echo.Context) error {
	s.Dashboard.Dismiss(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleResetDismissed(c echo.Context) error {
	s.Dashboard.ResetDismissed()
	return c.NoContent(http.StatusNoContent)
}

// Settings and profile

func (s *Server) handleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Dashboard.Settings())
}

func (s *Server) handleUpdateSettings(c echo.Context) error {
	var req models.UserSettings
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	return c.JSON(http.StatusOK, s.Dashboard.UpdateSettings(req))
}

func (s *Server) handleGetProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, profileRequest{Bio: s.Dashboard.Bio()})
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	s.Dashboard.SetBio(req.Bio)
	return c.JSON(http.StatusOK, profileRequest{Bio: s.Dashboard.Bio()})
}

// Detail view

func (s *Server) handleOpenDetail(c echo.Context) error {
	view, err := s.Dashboard.OpenDetail(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleGetDetail(c echo.Context) error {
	view, err := s.Dashboard.Detail()
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleScroll(c echo.Context) error {
	var m dashboard.ScrollMetrics
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	view, err := s.Dashboard.ObserveScroll(m)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleCloseDetail(c echo.Context) error {
	s.Dashboard.CloseDetail()
	return c.NoContent(http.StatusNoContent)
}

// Sync

func (s *Server) handleStartSync(c echo.Context) error {
	run, err := s.Dashboard.StartSync(c.Request().Context())
	if errors.Is(err, dashboard.ErrSyncInProgress) {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":  "A sync is already running",
			"run_id": run.ID,
		})
	}
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusAccepted, map[string]any{
		"message": "Sync started",
		"run_id":  run.ID,
		"poll":    fmt.Sprintf("/api/v1/sync/runs/%s", run.ID),
	})
}

func (s *Server) handleListSyncRuns(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Dashboard.SyncRuns())
}

func (s *Server) handleSyncRun(c echo.Context) error {
	run, err := s.Dashboard.SyncRun(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, run)
}
