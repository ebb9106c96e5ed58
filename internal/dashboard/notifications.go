package dashboard

import (
	"time"

	"github.com/Splendour-K/Opp/internal/models"
)

const dayMillis int64 = 24 * 60 * 60 * 1000

type ReminderKind string

const (
	KindOpportunity ReminderKind = "opportunity"
	KindDeadline    ReminderKind = "deadline"
)

// Dated is anything that can raise a deadline reminder.
type Dated struct {
	ID           string
	Title        string
	DeadlineDate *time.Time
	Kind         ReminderKind
}

type Reminder struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Kind         ReminderKind `json:"kind"`
	DeadlineDate time.Time    `json:"deadlineDate"`
	DaysLeft     int          `json:"daysLeft"`
}

// ReminderCandidates lists opportunities first, then standalone deadlines.
func ReminderCandidates(opps []models.Opportunity, deadlines []models.Deadline) []Dated {
	out := make([]Dated, 0, len(opps)+len(deadlines))
	for _, o := range opps {
		out = append(out, Dated{ID: o.ID, Title: o.Title, DeadlineDate: o.DeadlineDate, Kind: KindOpportunity})
	}
	for _, d := range deadlines {
		out = append(out, Dated{ID: d.ID, Title: d.Title, DeadlineDate: d.DeadlineDate, Kind: KindDeadline})
	}
	return out
}

// DaysUntil is the ceiling of the millisecond distance from now to deadline in
// whole days. A deadline 30 minutes away is 1 day out; one 30 minutes past is 0.
func DaysUntil(deadline, now time.Time) int {
	diff := deadline.Sub(now).Milliseconds()
	if diff > 0 {
		return int((diff + dayMillis - 1) / dayMillis)
	}
	// Go division truncates toward zero, which is the ceiling for negatives.
	return int(diff / dayMillis)
}

// DueReminders returns, in input order, the items whose deadline falls within
// threshold days of now and that have not been dismissed.
func DueReminders(items []Dated, threshold int, dismissed IDSet, now time.Time) []Reminder {
	out := make([]Reminder, 0)
	for _, item := range items {
		if item.DeadlineDate == nil || dismissed.Has(item.ID) {
			continue
		}
		days := DaysUntil(*item.DeadlineDate, now)
		if days < 0 || days > threshold {
			continue
		}
		out = append(out, Reminder{
			ID:           item.ID,
			Title:        item.Title,
			Kind:         item.Kind,
			DeadlineDate: *item.DeadlineDate,
			DaysLeft:     days,
		})
	}
	return out
}
