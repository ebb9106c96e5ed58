package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Splendour-K/Opp/internal/dashboard"
	"github.com/Splendour-K/Opp/internal/models"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type stubSyncer struct {
	result  models.SyncResult
	started chan struct{}
	release chan struct{}
}

func (s *stubSyncer) Sync(ctx context.Context) models.SyncResult {
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return s.result
}

type stubAdvisor struct {
	gotTitle, gotBio string
}

func (a *stubAdvisor) AnalyzeMatch(_ context.Context, title, bio string) string {
	a.gotTitle, a.gotBio = title, bio
	return "Great fit."
}

func newTestServer(t *testing.T, syncer dashboard.Syncer) (*Server, *stubAdvisor) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctrl := dashboard.NewController(dashboard.Options{
		Syncer:    syncer,
		Now:       func() time.Time { return testNow },
		Logger:    logger,
		PublicURL: "http://localhost:4200",
		Settings:  models.UserSettings{ReminderThreshold: dashboard.DefaultReminderThreshold},
		Seed:      true,
	})
	t.Cleanup(func() {
		ctrl.Close()
		ctrl.Wait()
	})

	advisor := &stubAdvisor{}
	return NewServer(ctrl, advisor, Options{Logger: logger, Sources: []string{"ai_search"}}), advisor
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestListOpportunities(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/opportunities", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Opportunity](t, rec), 4)

	rec = do(t, s, http.MethodGet, "/api/v1/opportunities?type=grant&min_score=90", "")
	require.Equal(t, http.StatusOK, rec.Code)
	opps := decode[[]models.Opportunity](t, rec)
	require.Len(t, opps, 1)
	assert.Equal(t, "1", opps[0].ID)

	rec = do(t, s, http.MethodGet, "/api/v1/opportunities?min_score=high", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/v1/opportunities?type=Hackathon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/opportunities/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Opportunity](t, rec), dashboard.LatestCount)
}

func TestGetOpportunityAndRelated(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/opportunities/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Global Venture Fund", decode[models.Opportunity](t, rec).Title)

	rec = do(t, s, http.MethodGet, "/api/v1/opportunities/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "not found")

	rec = do(t, s, http.MethodGet, "/api/v1/opportunities/1/related", "")
	require.Equal(t, http.StatusOK, rec.Code)
	related := decode[[]dashboard.Related](t, rec)
	assert.LessOrEqual(t, len(related), 3)
	for _, r := range related {
		assert.NotEqual(t, "1", r.Opportunity.ID)
	}
}

func TestAnalysis(t *testing.T) {
	s, advisor := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, "/api/v1/profile", `{"bio":"Climate founder"}`).Code)

	rec := do(t, s, http.MethodPost, "/api/v1/opportunities/1/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Great fit.", decode[map[string]string](t, rec)["analysis"])
	assert.Equal(t, "Tech Innovation Grant 2024", advisor.gotTitle)
	assert.Equal(t, "Climate founder", advisor.gotBio)

	rec = do(t, s, http.MethodPost, "/api/v1/opportunities/zzz/analysis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSavedToggle(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/saved/3/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["saved"])

	rec = do(t, s, http.MethodGet, "/api/v1/saved", "")
	saved := decode[[]models.Opportunity](t, rec)
	require.Len(t, saved, 1)
	assert.Equal(t, "3", saved[0].ID)

	rec = do(t, s, http.MethodPost, "/api/v1/saved/3/toggle", "")
	assert.Equal(t, false, decode[map[string]any](t, rec)["saved"])

	rec = do(t, s, http.MethodPost, "/api/v1/saved/missing/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasksLifecycle(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/tasks", `{"opportunityId":"2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[models.UserTask](t, rec)
	assert.Equal(t, models.StatusYetToStart, task.Status)

	rec = do(t, s, http.MethodPost, "/api/v1/tasks", `{"opportunityId":"2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/tasks", `{"opportunityId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/v1/tasks", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPatch, "/api/v1/tasks/"+task.ID, `{"status":"started"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusStarted, decode[models.UserTask](t, rec).Status)

	rec = do(t, s, http.MethodPatch, "/api/v1/tasks/"+task.ID, `{"status":"Abandoned"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/tasks", "")
	views := decode[[]dashboard.TaskView](t, rec)
	require.Len(t, views, 1)
	assert.Equal(t, "Global Venture Fund", views[0].Opportunity.Title)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/tasks/"+task.ID, "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/tasks/"+task.ID, "").Code)
	assert.Empty(t, decode[[]dashboard.TaskView](t, do(t, s, http.MethodGet, "/api/v1/tasks", "")))
}

func TestNotificationsAndSettings(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dashboard.Reminder](t, rec), 3)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodPost, "/api/v1/notifications/d1/dismiss", "").Code)
	rec = do(t, s, http.MethodGet, "/api/v1/notifications", "")
	assert.Len(t, decode[[]dashboard.Reminder](t, rec), 2)

	rec = do(t, s, http.MethodPut, "/api/v1/settings", `{"reminderThreshold":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, decode[models.UserSettings](t, rec).ReminderThreshold)

	rec = do(t, s, http.MethodGet, "/api/v1/notifications", "")
	assert.Len(t, decode[[]dashboard.Reminder](t, rec), 3)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodPost, "/api/v1/notifications/reset", "").Code)
	rec = do(t, s, http.MethodGet, "/api/v1/notifications", "")
	assert.Len(t, decode[[]dashboard.Reminder](t, rec), 4)

	rec = do(t, s, http.MethodPut, "/api/v1/settings", `{"reminderThreshold":-2}`)
	assert.Equal(t, 0, decode[models.UserSettings](t, rec).ReminderThreshold)

	rec = do(t, s, http.MethodGet, "/api/v1/deadlines", "")
	assert.Len(t, decode[[]models.Deadline](t, rec), 2)
}

func TestDetailView(t *testing.T) {
	s, _ := newTestServer(t, nil)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/detail", "").Code)

	rec := do(t, s, http.MethodPost, "/api/v1/detail/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[dashboard.DetailView](t, rec)
	assert.Equal(t, "http://localhost:4200/#/dashboard?opp=1", view.ShareLink)
	assert.False(t, view.ActionsEnabled)

	rec = do(t, s, http.MethodPost, "/api/v1/detail/scroll", `{"scrollTop":1000,"scrollHeight":1000,"clientHeight":500,"endVisible":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[dashboard.DetailView](t, rec)
	assert.True(t, view.ActionsEnabled)
	assert.Equal(t, float64(100), view.Reading.Progress)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/detail", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/v1/detail/scroll", `{"scrollTop":1}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/v1/detail/nope", "").Code)
}

func TestSync(t *testing.T) {
	syncer := &stubSyncer{result: models.SyncResult{
		Opportunities: []models.Opportunity{{
			ID: "ext-1", Title: "Fresh Fellowship", Type: models.TypeFellowship,
			Organization: "Org", Description: "New.", Amount: "See details",
		}},
		Citations: []models.Citation{{Title: "Desk", URI: "https://opportunitydesk.org"}},
	}}
	s, _ := newTestServer(t, syncer)

	rec := do(t, s, http.MethodPost, "/api/v1/sync", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode[map[string]string](t, rec)
	runID := body["run_id"]
	require.NotEmpty(t, runID)
	assert.Equal(t, "/api/v1/sync/runs/"+runID, body["poll"])

	s.Dashboard.Wait()

	rec = do(t, s, http.MethodGet, body["poll"], "")
	require.Equal(t, http.StatusOK, rec.Code)
	run := decode[dashboard.SyncRun](t, rec)
	assert.Equal(t, dashboard.SyncCompleted, run.Status)
	assert.Equal(t, 1, run.Found)

	rec = do(t, s, http.MethodGet, "/api/v1/sync/runs", "")
	assert.Len(t, decode[[]dashboard.SyncRun](t, rec), 1)

	rec = do(t, s, http.MethodGet, "/api/v1/citations", "")
	assert.Len(t, decode[[]models.Citation](t, rec), 1)

	rec = do(t, s, http.MethodGet, "/api/v1/opportunities", "")
	assert.Len(t, decode[[]models.Opportunity](t, rec), 5)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/sync/runs/missing", "").Code)
}

func TestSync_Conflict(t *testing.T) {
	syncer := &stubSyncer{started: make(chan struct{}), release: make(chan struct{})}
	s, _ := newTestServer(t, syncer)

	rec := do(t, s, http.MethodPost, "/api/v1/sync", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	first := decode[map[string]string](t, rec)["run_id"]
	<-syncer.started

	rec = do(t, s, http.MethodPost, "/api/v1/sync", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, first, decode[map[string]string](t, rec)["run_id"])

	close(syncer.release)
	s.Dashboard.Wait()
	assert.False(t, s.Dashboard.Syncing())
}

func TestSync_NoSyncer(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/v1/sync", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSources(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/v1/sources", "")
	assert.Equal(t, []string{"ai_search"}, decode[[]string](t, rec))
}
