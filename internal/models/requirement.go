package models

// CatalogStage distinguishes the two requirement lists kept per phase.
type CatalogStage string

const (
	StageRegistration CatalogStage = "registration"
	StageRevision     CatalogStage = "revision"
)

// Valid reports whether the stage is known.
func (s CatalogStage) Valid() bool {
	return s == StageRegistration || s == StageRevision
}

// Requirement is a named document a student must upload for a given phase.
// Identity is the id; content is editable by staff.
type Requirement struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	Description   string `json:"description,omitempty"`
	Required      bool   `json:"required"`
	AcceptedTypes string `json:"accepted_types,omitempty"`
}
