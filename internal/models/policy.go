// internal/models/policy.go
package models

// QueryType selects which subset of a policy record a lookup returns.
type QueryType string

const (
	QueryFull     QueryType = "full"
	QueryCoverage QueryType = "coverage"
	QueryProposer QueryType = "proposer"
	QueryPolicy   QueryType = "policy"
	QueryInsured  QueryType = "insured"
)

// ValidQueryType reports whether qt is one of the supported subsets.
func ValidQueryType(qt QueryType) bool {
	switch qt {
	case QueryFull, QueryCoverage, QueryProposer, QueryPolicy, QueryInsured:
		return true
	}
	return false
}

// Coverage is one cover block of a policy.
type Coverage struct {
	CoverName   string `json:"cover_name"`
	Benefits    string `json:"benefits,omitempty"`
	SumInsured  string `json:"sum_insured,omitempty"`
	Deductibles string `json:"deductibles,omitempty"`
}

// PolicyRecord is an externally sourced, immutable policy document. The
// detail sections are open maps because upstream records carry arbitrary
// fields per product line.
type PolicyRecord struct {
	PolicyDetails   map[string]interface{} `json:"policy_details,omitempty"`
	ProposerDetails map[string]interface{} `json:"proposer_details,omitempty"`
	InsuredDetails  map[string]interface{} `json:"insured_details,omitempty"`
	Coverages       []Coverage             `json:"coverages,omitempty"`
}

// Empty reports whether the record carries no data at all.
func (p *PolicyRecord) Empty() bool {
	if p == nil {
		return true
	}
	return len(p.PolicyDetails) == 0 &&
		len(p.ProposerDetails) == 0 &&
		len(p.InsuredDetails) == 0 &&
		len(p.Coverages) == 0
}

// Subset filters the record down to the requested query type. QueryFull
// returns the record unchanged.
func (p *PolicyRecord) Subset(qt QueryType) *PolicyRecord {
	switch qt {
	case QueryCoverage:
		return &PolicyRecord{Coverages: p.Coverages}
	case QueryProposer:
		return &PolicyRecord{ProposerDetails: p.ProposerDetails}
	case QueryPolicy:
		return &PolicyRecord{PolicyDetails: p.PolicyDetails}
	case QueryInsured:
		return &PolicyRecord{InsuredDetails: p.InsuredDetails}
	default:
		return p
	}
}

// ProductName returns the product_name field of the policy details, if set.
func (p *PolicyRecord) ProductName() string {
	if p == nil || p.PolicyDetails == nil {
		return ""
	}
	if name, ok := p.PolicyDetails["product_name"].(string); ok {
		return name
	}
	return ""
}

// ProductInfo describes one insurance product from the product mapping.
type ProductInfo struct {
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	DocType     string `json:"doc_type,omitempty"`
}
