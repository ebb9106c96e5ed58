package models

import (
	"strings"
	"time"
)

type OpportunityType string

const (
	TypeGrant       OpportunityType = "Grant"
	TypeInvestment  OpportunityType = "Investment"
	TypeInternship  OpportunityType = "Internship"
	TypeGrowth      OpportunityType = "Growth"
	TypeAccelerator OpportunityType = "Accelerator"
	TypeFellowship  OpportunityType = "Fellowship"
	TypeConference  OpportunityType = "Conference"
	TypeJob         OpportunityType = "Job"
	TypeScholarship OpportunityType = "Scholarship"
)

// OpportunityTypes lists every type in display order.
var OpportunityTypes = []OpportunityType{
	TypeGrant, TypeInvestment, TypeInternship, TypeGrowth, TypeAccelerator,
	TypeFellowship, TypeConference, TypeJob, TypeScholarship,
}

// ParseOpportunityType matches s against the known types, ignoring case and
// surrounding whitespace.
func ParseOpportunityType(s string) (OpportunityType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range OpportunityTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Opportunity struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Type         OpportunityType `json:"type"`
	Description  string          `json:"description"`
	Content      string          `json:"content,omitempty"` // Long-form body
	Organization string          `json:"organization"`
	Amount       string          `json:"amount"`
	Deadline     string          `json:"deadline,omitempty"` // Display label only
	DeadlineDate *time.Time      `json:"deadlineDate,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	ImageURLs    []string        `json:"imageUrls,omitempty"`
	IsUrgent     bool            `json:"isUrgent,omitempty"`
	Source       *Source         `json:"source,omitempty"`
	MatchScore   *int            `json:"matchScore,omitempty"`
}

// Score returns the match score, treating a missing score as 0.
func (o Opportunity) Score() int {
	if o.MatchScore == nil {
		return 0
	}
	return *o.MatchScore
}

// Body is the text shown in the detail view.
func (o Opportunity) Body() string {
	if strings.TrimSpace(o.Content) != "" {
		return o.Content
	}
	return o.Description
}

// Deadline is a standalone deadline record shown next to the opportunity feed.
type Deadline struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Organization string     `json:"organization"`
	TimeLeft     string     `json:"timeLeft"`
	DeadlineDate *time.Time `json:"deadlineDate,omitempty"`
	Progress     int        `json:"progress"`
	IsUrgent     bool       `json:"isUrgent,omitempty"`
}

type UserSettings struct {
	ReminderThreshold int `json:"reminderThreshold"` // in days
}

func IntPtr(v int) *int {
	return &v
}

func TimePtr(t time.Time) *time.Time {
	return &t
}
