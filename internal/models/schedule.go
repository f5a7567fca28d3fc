package models

import "strings"

// ScheduleStatus tracks whether a defense session has taken place.
type ScheduleStatus string

const (
	ScheduleUpcoming  ScheduleStatus = "upcoming"
	ScheduleCompleted ScheduleStatus = "completed"
)

// Schedule is a room/time/committee allocation for a student's defense.
// It back-references its submission by id; deleting the schedule resets the
// submission independently.
type Schedule struct {
	ID           string         `json:"id"`
	SubmissionID string         `json:"submission_id"`
	Phase        Phase          `json:"phase"`
	Date         string         `json:"date"`
	StartTime    string         `json:"start_time"`
	EndTime      string         `json:"end_time"`
	Room         string         `json:"room"`
	StudentName  string         `json:"student_name"`
	Title        string         `json:"title"`
	Advisor1     string         `json:"advisor1"`
	Advisor2     string         `json:"advisor2"`
	Examiner1    string         `json:"examiner1"`
	Examiner2    string         `json:"examiner2"`
	Status       ScheduleStatus `json:"status"`
	AcademicYear string         `json:"academic_year,omitempty"`
}

// placeholder committee names imported from the student master template.
var placeholderNames = map[string]struct{}{
	"dosen p1": {},
	"dosen p2": {},
	"dosen u1": {},
	"dosen u2": {},
}

// Committee returns the advisor/examiner set with blank and placeholder
// names removed.
func (s *Schedule) Committee() []string {
	raw := []string{s.Advisor1, s.Advisor2, s.Examiner1, s.Examiner2}
	members := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		if _, ok := placeholderNames[strings.ToLower(name)]; ok {
			continue
		}
		members = append(members, name)
	}
	return members
}

// ScheduleConflict describes the existing session that blocks a proposal.
type ScheduleConflict struct {
	ScheduleID  string `json:"schedule_id"`
	StudentName string `json:"student_name"`
	Phase       Phase  `json:"phase"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Room        string `json:"room"`
	Dimension   string `json:"dimension"`
	Person      string `json:"person,omitempty"`
}

// ScheduleConflictError is returned when a proposed session collides with an
// existing one. Message is human readable and names the blocking session.
type ScheduleConflictError struct {
	Type     string           `json:"type"`
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
