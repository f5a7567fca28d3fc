package dto

// UpsertRequirementRequest creates or edits a catalog entry.
type UpsertRequirementRequest struct {
	ID            string `json:"id" validate:"required"`
	Label         string `json:"label" validate:"required"`
	Description   string `json:"description"`
	Required      bool   `json:"required"`
	AcceptedTypes string `json:"accepted_types"`
}
