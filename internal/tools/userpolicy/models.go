// internal/tools/userpolicy/models.go
package userpolicy

import "policy-assistant/internal/models"

// Params are the lookup identifiers. All optional; QueryType defaults to full.
type Params struct {
	PolicyID    string
	UserName    string
	ProductName string
	QueryType   models.QueryType
}

// Result is the lookup outcome. Error is set instead of raising: a miss is a
// normal result with an empty record, not a failure of the tool itself.
type Result struct {
	Result *models.PolicyRecord `json:"result"`
	Error  string               `json:"error,omitempty"`
}

// Found reports whether the result carries a usable, non-empty record.
func (r Result) Found() bool {
	return r.Error == "" && !r.Result.Empty()
}

// CoverageResult is the outcome of a coverage-detail lookup.
type CoverageResult struct {
	Coverage  *models.Coverage  `json:"coverage,omitempty"`
	Coverages []models.Coverage `json:"coverages,omitempty"`
	Error     string            `json:"error,omitempty"`
}
