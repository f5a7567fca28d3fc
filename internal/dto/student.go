package dto

// BulkDeleteStudentsRequest removes students from the master directory.
type BulkDeleteStudentsRequest struct {
	NPMs []string `json:"npms" validate:"required,min=1"`
}

// ImportStudentsResult summarises a master-data import.
type ImportStudentsResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// UndoDeleteResult reports how many records a merge-absent restore re-added.
type UndoDeleteResult struct {
	Restored int `json:"restored"`
}
