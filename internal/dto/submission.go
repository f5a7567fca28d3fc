package dto

import "github.com/noah-isme/defense-portal-api/internal/models"

// RegisterSubmissionRequest creates or overwrites the registration for a
// (student, phase) pair.
type RegisterSubmissionRequest struct {
	StudentNPM  string                       `json:"student_npm" validate:"required"`
	StudentName string                       `json:"student_name"`
	Phase       models.Phase                 `json:"phase" validate:"required,oneof=proposal skripsi"`
	Files       map[string]models.FileRecord `json:"files" validate:"required,min=1"`
}

// ValidateFileRequest records a staff decision for one requirement.
type ValidateFileRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes"`
}

// SubmitRevisionRequest merges corrected documents into a submission.
type SubmitRevisionRequest struct {
	Files map[string]models.FileRecord `json:"files" validate:"required,min=1"`
}

// SubmissionQuery filters submission listings.
type SubmissionQuery struct {
	Phase  string `form:"phase"`
	Status string `form:"status"`
	NPM    string `form:"npm"`
}
