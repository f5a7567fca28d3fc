package dto

// CreateScheduleRequest proposes a defense session for a validated submission.
type CreateScheduleRequest struct {
	SubmissionID string `json:"submission_id" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string `json:"end_time" validate:"required,datetime=15:04"`
	Room         string `json:"room" validate:"required"`
	Title        string `json:"title"`
	Advisor1     string `json:"advisor1"`
	Advisor2     string `json:"advisor2"`
	Examiner1    string `json:"examiner1"`
	Examiner2    string `json:"examiner2"`
}

// ResetScheduleRequest removes a schedule and resets the owning submission.
type ResetScheduleRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AddRoomRequest registers a defense room.
type AddRoomRequest struct {
	Name string `json:"name" validate:"required"`
}
