package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Splendour-K/Opp/internal/models"
)

var ErrInvalidStatus = errors.New("invalid task status")

// ParseTaskStatus maps user input onto the status enum.
func ParseTaskStatus(s string) (models.TaskStatus, error) {
	for _, status := range models.TaskStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Tracker keeps the user's application tasks, most recent first.
type Tracker struct {
	tasks []models.UserTask
	now   func() time.Time
	newID func() string
}

func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		now:   now,
		newID: func() string { return "task-" + uuid.NewString() },
	}
}

// AddTask tracks opportunityID. At most one task may reference an opportunity,
// so a second call returns the existing task and reports false.
func (t *Tracker) AddTask(opportunityID string) (models.UserTask, bool) {
	if existing, ok := t.ByOpportunity(opportunityID); ok {
		return existing, false
	}

	task := models.UserTask{
		ID:            t.newID(),
		OpportunityID: opportunityID,
		Status:        models.StatusYetToStart,
		AddedAt:       t.now().UTC(),
	}
	t.tasks = append([]models.UserTask{task}, t.tasks...)
	return task, true
}

// UpdateStatus sets the status of taskID. Any status may follow any other.
func (t *Tracker) UpdateStatus(taskID string, status models.TaskStatus) (models.UserTask, bool) {
	for i := range t.tasks {
		if t.tasks[i].ID == taskID {
			t.tasks[i].Status = status
			return t.tasks[i], true
		}
	}
	return models.UserTask{}, false
}

// RemoveTask deletes taskID. Unknown ids are ignored.
func (t *Tracker) RemoveTask(taskID string) bool {
	for i := range t.tasks {
		if t.tasks[i].ID == taskID {
			t.tasks = append(t.tasks[:i:i], t.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Tracker) ByOpportunity(opportunityID string) (models.UserTask, bool) {
	for _, task := range t.tasks {
		if task.OpportunityID == opportunityID {
			return task, true
		}
	}
	return models.UserTask{}, false
}

func (t *Tracker) HasOpportunity(opportunityID string) bool {
	_, ok := t.ByOpportunity(opportunityID)
	return ok
}

func (t *Tracker) Tasks() []models.UserTask {
	return append([]models.UserTask(nil), t.tasks...)
}

// Repoint moves tasks that reference oldID onto newID. If newID is already
// tracked the task for oldID is kept as is so the one-task-per-opportunity
// rule holds.
func (t *Tracker) Repoint(oldID, newID string) {
	if t.HasOpportunity(newID) {
		return
	}
	for i := range t.tasks {
		if t.tasks[i].OpportunityID == oldID {
			t.tasks[i].OpportunityID = newID
		}
	}
}

// TaskView pairs a task with the opportunity it tracks.
type TaskView struct {
	Task        models.UserTask    `json:"task"`
	Opportunity models.Opportunity `json:"opportunity"`
}

// Project resolves every task against the store. Tasks whose opportunity is
// gone are skipped, not deleted.
func (t *Tracker) Project(store *Store) []TaskView {
	out := make([]TaskView, 0, len(t.tasks))
	for _, task := range t.tasks {
		opp, ok := store.Get(task.OpportunityID)
		if !ok {
			continue
		}
		out = append(out, TaskView{Task: task, Opportunity: opp})
	}
	return out
}
