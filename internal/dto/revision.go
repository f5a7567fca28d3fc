package dto

// HardcopyRequest records the physical-document check.
type HardcopyRequest struct {
	Received bool `json:"received"`
}

// RepairStatus surfaces per-file rejections so staff can ask the student to
// re-submit. It encodes no state change of its own.
type RepairStatus struct {
	HasRejection           bool     `json:"has_rejection"`
	RejectedRequirementIDs []string `json:"rejected_requirement_ids,omitempty"`
}
