package dashboard

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Splendour-K/Opp/internal/models"
)

func newTestTracker() *Tracker {
	tr := NewTracker(func() time.Time { return fixedNow })
	n := 0
	tr.newID = func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	}
	return tr
}

func TestTracker_AddTaskIsUniquePerOpportunity(t *testing.T) {
	tr := newTestTracker()

	first, created := tr.AddTask("1")
	require.True(t, created)
	assert.Equal(t, models.StatusYetToStart, first.Status)
	assert.Equal(t, fixedNow, first.AddedAt)

	again, created := tr.AddTask("1")
	assert.False(t, created)
	assert.Equal(t, first, again)
	assert.Len(t, tr.Tasks(), 1)
}

func TestTracker_AddTaskPrepends(t *testing.T) {
	tr := newTestTracker()
	tr.AddTask("1")
	tr.AddTask("2")

	tasks := tr.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "2", tasks[0].OpportunityID)
	assert.Equal(t, "1", tasks[1].OpportunityID)
}

func TestTracker_UpdateAndRemove(t *testing.T) {
	tr := newTestTracker()
	task, _ := tr.AddTask("1")

	updated, ok := tr.UpdateStatus(task.ID, models.StatusSubmitted)
	require.True(t, ok)
	assert.Equal(t, models.StatusSubmitted, updated.Status)

	// Any status may follow any other.
	updated, ok = tr.UpdateStatus(task.ID, models.StatusYetToStart)
	require.True(t, ok)
	assert.Equal(t, models.StatusYetToStart, updated.Status)

	_, ok = tr.UpdateStatus("missing", models.StatusStarted)
	assert.False(t, ok)

	assert.False(t, tr.RemoveTask("missing"))
	assert.Len(t, tr.Tasks(), 1)
	assert.True(t, tr.RemoveTask(task.ID))
	assert.Empty(t, tr.Tasks())
}

func TestTracker_ProjectSkipsDangling(t *testing.T) {
	store := NewStore(SeedOpportunities(fixedNow))
	tr := newTestTracker()
	tr.AddTask("1")
	tr.AddTask("gone")

	views := tr.Project(store)
	require.Len(t, views, 1)
	assert.Equal(t, "1", views[0].Opportunity.ID)
	assert.Len(t, tr.Tasks(), 2)
}

func TestTracker_Repoint(t *testing.T) {
	tr := newTestTracker()
	tr.AddTask("old")
	tr.Repoint("old", "new")
	assert.True(t, tr.HasOpportunity("new"))
	assert.False(t, tr.HasOpportunity("old"))

	tr.AddTask("other")
	tr.Repoint("other", "new")
	assert.True(t, tr.HasOpportunity("other"))
}

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    models.TaskStatus
		wantErr bool
	}{
		{"Yet to Start", models.StatusYetToStart, false},
		{"submitted", models.StatusSubmitted, false},
		{" Started ", models.StatusStarted, false},
		{"Done", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTaskStatus(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidStatus))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
