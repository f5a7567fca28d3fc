package models

import "time"

// ProcessSnapshot is an immutable deep copy of all submissions and schedules,
// captured before a destructive bulk action.
type ProcessSnapshot struct {
	Submissions []Submission `json:"submissions"`
	Schedules   []Schedule   `json:"schedules"`
	TakenAt     time.Time    `json:"taken_at"`
}

// ProcessStats summarises workflow progress for the dashboard.
type ProcessStats struct {
	Total           int `json:"total"`
	ProposalPassed  int `json:"proposal_passed"`
	SkripsiPassed   int `json:"skripsi_passed"`
	PendingRevision int `json:"pending_revision"`
	UpcomingExams   int `json:"upcoming_exams"`
}
