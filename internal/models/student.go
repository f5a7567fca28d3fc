package models

// Student is a record in the faculty's student master directory.
// The workflow core reads it but never mutates it except through the
// explicit directory-management endpoints.
type Student struct {
	NPM          string `db:"npm" json:"npm"`
	Name         string `db:"name" json:"name"`
	StudyProgram string `db:"study_program" json:"study_program"`
	ThesisTitle  string `db:"thesis_title" json:"thesis_title"`
	Advisor1     string `db:"advisor1" json:"advisor1"`
	Advisor2     string `db:"advisor2" json:"advisor2"`
	Examiner1    string `db:"examiner1" json:"examiner1"`
	Examiner2    string `db:"examiner2" json:"examiner2"`
}

// StudentFilter constrains directory listings.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}
