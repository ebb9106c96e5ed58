package models

import (
	"time"
)

type TaskStatus string

const (
	StatusYetToStart TaskStatus = "Yet to Start"
	StatusStarted    TaskStatus = "Started"
	StatusFinished   TaskStatus = "Finished"
	StatusSubmitted  TaskStatus = "Submitted"
)

var TaskStatuses = []TaskStatus{StatusYetToStart, StatusStarted, StatusFinished, StatusSubmitted}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type UserTask struct {
	ID            string     `json:"id"`
	OpportunityID string     `json:"opportunityId"`
	Status        TaskStatus `json:"status"`
	AddedAt       time.Time  `json:"addedAt"`
}
