package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Splendour-K/Opp/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrSyncInProgress = errors.New("a sync is already running")
	ErrClosed         = errors.New("dashboard closed")
)

const (
	DefaultReminderThreshold = 3
	DefaultSyncTimeout       = 90 * time.Second

	maxSyncRuns = 20
)

// Syncer fetches fresh opportunities. It reports failure as an empty result.
type Syncer interface {
	Sync(ctx context.Context) models.SyncResult
}

type SyncStatus string

const (
	SyncRunning   SyncStatus = "running"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
	SyncDiscarded SyncStatus = "discarded"
)

// SyncRun is the bookkeeping record of one sync.
type SyncRun struct {
	ID        string     `json:"id"`
	Status    SyncStatus `json:"status"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Found     int        `json:"found"`
	Added     int        `json:"added"`
	Replaced  int        `json:"replaced"`
	Citations int        `json:"citations"`
	Error     string     `json:"error,omitempty"`

	cancel context.CancelFunc
}

type Options struct {
	Syncer      Syncer
	Now         func() time.Time
	Logger      *logrus.Logger
	PublicURL   string
	SyncTimeout time.Duration
	Settings    models.UserSettings
	Bio         string
	// Seed loads the starter opportunities and deadlines.
	Seed bool
}

// DetailView is the state of the opportunity detail screen.
type DetailView struct {
	Opportunity    models.Opportunity `json:"opportunity"`
	Paragraphs     []string           `json:"paragraphs"`
	ReadingMinutes int                `json:"readingMinutes"`
	Related        []Related          `json:"related"`
	Saved          bool               `json:"saved"`
	InTracker      bool               `json:"inTracker"`
	ShareLink      string             `json:"shareLink"`
	ApplyURL       string             `json:"applyUrl,omitempty"`
	Reading        ReadingState       `json:"reading"`
	ActionsEnabled bool               `json:"actionsEnabled"`
}

type detailState struct {
	opportunityID string
	reading       ReadingState
}

// Controller owns the whole dashboard state. Its methods are safe to call from
// concurrent HTTP handlers.
type Controller struct {
	mu sync.Mutex

	store     *Store
	tracker   *Tracker
	deadlines []models.Deadline
	saved     IDSet
	dismissed IDSet
	settings  models.UserSettings
	bio       string
	citations []models.Citation
	detail    *detailState

	syncer      Syncer
	syncTimeout time.Duration
	runs        []*SyncRun
	syncing     *SyncRun
	closed      bool
	wg          sync.WaitGroup

	now       func() time.Time
	publicURL string
	log       *logrus.Entry
}

func NewController(opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = DefaultSyncTimeout
	}
	if opts.Bio == "" {
		opts.Bio = DefaultBio
	}

	c := &Controller{
		store:       NewStore(nil),
		tracker:     NewTracker(opts.Now),
		settings:    clampSettings(opts.Settings),
		bio:         opts.Bio,
		syncer:      opts.Syncer,
		syncTimeout: opts.SyncTimeout,
		now:         opts.Now,
		publicURL:   strings.TrimRight(opts.PublicURL, "/"),
		log:         opts.Logger.WithField("component", "dashboard"),
	}
	if opts.Seed {
		now := opts.Now()
		c.store.ReplaceOrSeed(SeedOpportunities(now))
		c.deadlines = SeedDeadlines(now)
	}
	return c
}

func clampSettings(s models.UserSettings) models.UserSettings {
	if s.ReminderThreshold < 0 {
		s.ReminderThreshold = 0
	}
	return s
}

// Browsing

func (c *Controller) Opportunities(f Filter) []models.Opportunity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Filter(f)
}

func (c *Controller) Opportunity(id string) (models.Opportunity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	opp, ok := c.store.Get(id)
	if !ok {
		return models.Opportunity{}, fmt.Errorf("opportunity %q: %w", id, ErrNotFound)
	}
	return opp, nil
}

func (c *Controller) Latest() []models.Opportunity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Latest(LatestCount)
}

func (c *Controller) Deadlines() []models.Deadline {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Deadline(nil), c.deadlines...)
}

// SetDeadlines replaces the standalone deadline strip.
func (c *Controller) SetDeadlines(deadlines []models.Deadline) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadlines = append([]models.Deadline(nil), deadlines...)
}

// ReplaceOpportunities swaps the whole collection.
func (c *Controller) ReplaceOpportunities(records []models.Opportunity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.ReplaceOrSeed(records)
}

func (c *Controller) Related(id string) ([]Related, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	opp, ok := c.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("opportunity %q: %w", id, ErrNotFound)
	}
	return RelatedTo(opp, c.store.All()), nil
}

// Saved

// ToggleSave flips membership of id in the saved set and reports whether it is
// now saved.
func (c *Controller) ToggleSave(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = c.saved.Toggle(id)
	return c.saved.Has(id)
}

func (c *Controller) IsSaved(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved.Has(id)
}

// Saved lists saved opportunities in store order.
func (c *Controller) Saved() []models.Opportunity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Select(c.saved)
}

// Tasks

// AddTask tracks an existing opportunity. The bool is false when a task for it
// already existed.
func (c *Controller) AddTask(opportunityID string) (models.UserTask, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store.Get(opportunityID); !ok {
		return models.UserTask{}, false, fmt.Errorf("opportunity %q: %w", opportunityID, ErrNotFound)
	}
	task, created := c.tracker.AddTask(opportunityID)
	return task, created, nil
}

func (c *Controller) UpdateTaskStatus(taskID, status string) (models.UserTask, error) {
	parsed, err := ParseTaskStatus(status)
	if err != nil {
		return models.UserTask{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	task, ok := c.tracker.UpdateStatus(taskID, parsed)
	if !ok {
		return models.UserTask{}, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	return task, nil
}

func (c *Controller) RemoveTask(taskID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.RemoveTask(taskID)
}

func (c *Controller) Tasks() []TaskView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Project(c.store)
}

// Notifications

func (c *Controller) Notifications() []Reminder {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := ReminderCandidates(c.store.All(), c.deadlines)
	return DueReminders(items, c.settings.ReminderThreshold, c.dismissed, c.now())
}

func (c *Controller) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dismissed = c.dismissed.With(id)
}

func (c *Controller) ResetDismissed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dismissed = IDSet{}
}

func (c *Controller) Dismissed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dismissed.IDs()
}

// Settings and profile

func (c *Controller) Settings() models.UserSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

func (c *Controller) UpdateSettings(s models.UserSettings) models.UserSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = clampSettings(s)
	return c.settings
}

func (c *Controller) Bio() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bio
}

func (c *Controller) SetBio(bio string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bio = bio
}

func (c *Controller) Citations() []models.Citation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Citation{}, c.citations...)
}

// Detail view

// OpenDetail shows id in the detail view with a fresh reading state.
func (c *Controller) OpenDetail(id string) (DetailView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store.Get(id); !ok {
		return DetailView{}, fmt.Errorf("opportunity %q: %w", id, ErrNotFound)
	}
	c.detail = &detailState{opportunityID: id}
	return c.detailViewLocked()
}

// ObserveScroll feeds one scroll observation into the open detail view.
func (c *Controller) ObserveScroll(m ScrollMetrics) (DetailView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail == nil {
		return DetailView{}, fmt.Errorf("detail view: %w", ErrNotFound)
	}
	c.detail.reading.Observe(m)
	return c.detailViewLocked()
}

func (c *Controller) Detail() (DetailView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail == nil {
		return DetailView{}, fmt.Errorf("detail view: %w", ErrNotFound)
	}
	return c.detailViewLocked()
}

func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = nil
}

// ShareLink is the deep link into the dashboard for id.
func (c *Controller) ShareLink(id string) string {
	return c.publicURL + "/#/dashboard?opp=" + id
}

func (c *Controller) detailViewLocked() (DetailView, error) {
	opp, ok := c.store.Get(c.detail.opportunityID)
	if !ok {
		c.detail = nil
		return DetailView{}, fmt.Errorf("detail view: %w", ErrNotFound)
	}

	body := opp.Body()
	view := DetailView{
		Opportunity:    opp,
		Paragraphs:     Paragraphs(body),
		ReadingMinutes: ReadingMinutes(body),
		Related:        RelatedTo(opp, c.store.All()),
		Saved:          c.saved.Has(opp.ID),
		InTracker:      c.tracker.HasOpportunity(opp.ID),
		ShareLink:      c.ShareLink(opp.ID),
		Reading:        c.detail.reading,
		ActionsEnabled: c.detail.reading.ActionsUnlocked(),
	}
	if opp.Source != nil && opp.Source.URL != "" {
		view.ApplyURL = opp.Source.URL
	}
	return view, nil
}

// Sync

// StartSync runs a sync in the background and returns its run record
// immediately. While a sync is outstanding it returns ErrSyncInProgress along
// with the running record.
func (c *Controller) StartSync(ctx context.Context) (SyncRun, error) {
	run, syncCtx, err := c.beginSync(context.WithoutCancel(ctx))
	if err != nil {
		return run, err
	}

	go func() {
		defer c.wg.Done()
		c.runSync(syncCtx, run.ID)
	}()
	return run, nil
}

// SyncNow runs a sync and waits for it to be applied. Cancelling ctx cancels
// the sync.
func (c *Controller) SyncNow(ctx context.Context) (SyncRun, error) {
	run, syncCtx, err := c.beginSync(ctx)
	if err != nil {
		return run, err
	}
	defer c.wg.Done()
	return c.runSync(syncCtx, run.ID), nil
}

func (c *Controller) beginSync(ctx context.Context) (SyncRun, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return SyncRun{}, nil, ErrClosed
	}
	if c.syncer == nil {
		return SyncRun{}, nil, errors.New("no syncer configured")
	}
	if c.syncing != nil {
		return *c.syncing, nil, ErrSyncInProgress
	}

	syncCtx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	run := &SyncRun{
		ID:        uuid.New().String()[:8],
		Status:    SyncRunning,
		StartedAt: c.now().UTC(),
		cancel:    cancel,
	}
	c.syncing = run
	c.runs = append([]*SyncRun{run}, c.runs...)
	if len(c.runs) > maxSyncRuns {
		c.runs = c.runs[:maxSyncRuns]
	}
	c.wg.Add(1)
	c.log.WithField("run_id", run.ID).Info("sync started")
	return *run, syncCtx, nil
}

func (c *Controller) runSync(ctx context.Context, runID string) SyncRun {
	result := c.syncer.Sync(ctx)
	ctxErr := ctx.Err()

	c.mu.Lock()
	defer c.mu.Unlock()

	run := c.findRunLocked(runID)
	run.cancel()
	ended := c.now().UTC()
	run.EndedAt = &ended
	if c.syncing == run {
		c.syncing = nil
	}
	run.Found = len(result.Opportunities)
	run.Citations = len(result.Citations)

	entry := c.log.WithField("run_id", run.ID)
	switch {
	case c.closed:
		run.Status = SyncDiscarded
		entry.Info("sync result discarded, dashboard closed")
	case len(result.Opportunities) == 0 && ctxErr != nil:
		run.Status = SyncFailed
		run.Error = ctxErr.Error()
		c.citations = nil
		entry.WithError(ctxErr).Warn("sync failed")
	default:
		c.applySyncLocked(run, result)
		run.Status = SyncCompleted
		entry.WithFields(logrus.Fields{
			"found":    run.Found,
			"added":    run.Added,
			"replaced": run.Replaced,
		}).Info("sync completed")
	}
	return *run
}

func (c *Controller) applySyncLocked(run *SyncRun, result models.SyncResult) {
	c.citations = append([]models.Citation(nil), result.Citations...)
	if len(result.Opportunities) == 0 {
		return
	}

	replaced := c.store.MergeSynced(result.Opportunities)
	for oldID, newID := range replaced {
		c.saved = c.saved.Rename(oldID, newID)
		c.dismissed = c.dismissed.Rename(oldID, newID)
		c.tracker.Repoint(oldID, newID)
		if c.detail != nil && c.detail.opportunityID == oldID {
			c.detail.opportunityID = newID
		}
	}
	run.Replaced = len(replaced)

	for _, opp := range result.Opportunities {
		if got, ok := c.store.Get(opp.ID); ok && got.Title == opp.Title {
			run.Added++
		}
	}
}

func (c *Controller) findRunLocked(id string) *SyncRun {
	for _, run := range c.runs {
		if run.ID == id {
			return run
		}
	}
	// Trimmed from history while running; keep bookkeeping consistent.
	if c.syncing != nil && c.syncing.ID == id {
		return c.syncing
	}
	return &SyncRun{ID: id, cancel: func() {}}
}

func (c *Controller) SyncRun(id string) (SyncRun, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, run := range c.runs {
		if run.ID == id {
			return *run, nil
		}
	}
	return SyncRun{}, fmt.Errorf("sync run %q: %w", id, ErrNotFound)
}

// SyncRuns lists recent runs, newest first.
func (c *Controller) SyncRuns() []SyncRun {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SyncRun, 0, len(c.runs))
	for _, run := range c.runs {
		out = append(out, *run)
	}
	return out
}

func (c *Controller) Syncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncing != nil
}

// Close stops accepting syncs and cancels the one in flight. A result that
// still arrives afterwards is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.syncing != nil {
		c.syncing.cancel()
	}
}

// Wait blocks until background syncs have returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}
