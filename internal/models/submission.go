package models

import (
	"sort"
	"time"
)

// Phase identifies the registration track a submission belongs to.
type Phase string

const (
	PhaseProposal Phase = "proposal"
	PhaseSkripsi  Phase = "skripsi"
)

// Valid reports whether the phase is one of the known tracks.
func (p Phase) Valid() bool {
	return p == PhaseProposal || p == PhaseSkripsi
}

// Status captures the registration workflow state of a submission.
// It is the single source of truth for what students and staff may do next.
type Status string

const (
	StatusPending                 Status = "pending"
	StatusRejected                Status = "rejected"
	StatusValidated               Status = "validated"
	StatusScheduled               Status = "scheduled"
	StatusRevisionProposalPending Status = "revision_proposal_pending"
	StatusProposalCompleted       Status = "proposal_completed"
	StatusRevisionSkripsiPending  Status = "revision_skripsi_pending"
	StatusSkripsiCompleted        Status = "skripsi_completed"
)

// InRevision reports whether the submission is waiting on post-defense revisions.
func (s Status) InRevision() bool {
	return s == StatusRevisionProposalPending || s == StatusRevisionSkripsiPending
}

// Completed reports whether the submission reached a terminal clearance state.
func (s Status) Completed() bool {
	return s == StatusProposalCompleted || s == StatusSkripsiCompleted
}

// PreSchedule reports whether the submission is still in the document-review
// stage, where file validation recomputes the aggregate status.
func (s Status) PreSchedule() bool {
	switch s {
	case StatusPending, StatusRejected, StatusValidated:
		return true
	default:
		return false
	}
}

// ReviewState is the explicit three-valued outcome of a per-file review.
// A requirement absent from the validations map is unreviewed.
type ReviewState string

const (
	ReviewUnreviewed ReviewState = "unreviewed"
	ReviewApproved   ReviewState = "approved"
	ReviewRejected   ReviewState = "rejected"
)

// ValidationItem records a staff decision for a single requirement.
type ValidationItem struct {
	State ReviewState `json:"state"`
	Notes string      `json:"notes,omitempty"`
}

// FileRecord references a stored document returned by the storage collaborator.
type FileRecord struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Path     string `json:"path"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// Submission is the central workflow entity: one live record per
// (student NPM, phase) pair.
type Submission struct {
	ID               string                    `json:"id"`
	StudentNPM       string                    `json:"student_npm"`
	StudentName      string                    `json:"student_name"`
	Phase            Phase                     `json:"phase"`
	Files            map[string]FileRecord     `json:"files"`
	Validations      map[string]ValidationItem `json:"validations"`
	Status           Status                    `json:"status"`
	HardcopyReceived bool                      `json:"hardcopy_received"`
	SubmittedAt      time.Time                 `json:"submitted_at"`
	AcademicYear     string                    `json:"academic_year,omitempty"`
}

// ReviewOf returns the recorded validation for a requirement, or an
// unreviewed item when staff have not decided yet.
func (s *Submission) ReviewOf(reqID string) ValidationItem {
	if item, ok := s.Validations[reqID]; ok {
		return item
	}
	return ValidationItem{State: ReviewUnreviewed}
}

// FirstFileRequirementID returns the lexicographically smallest requirement id
// that has a stored file, or "" when no files exist.
func (s *Submission) FirstFileRequirementID() string {
	if len(s.Files) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.Files))
	for k := range s.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

// Clone returns a deep copy of the submission.
func (s Submission) Clone() Submission {
	out := s
	out.Files = make(map[string]FileRecord, len(s.Files))
	for k, v := range s.Files {
		out.Files[k] = v
	}
	out.Validations = make(map[string]ValidationItem, len(s.Validations))
	for k, v := range s.Validations {
		out.Validations[k] = v
	}
	return out
}

// SubmissionFilter constrains submission listings.
type SubmissionFilter struct {
	Phase    Phase
	Status   []Status
	NPM      string
	InReview bool
}
