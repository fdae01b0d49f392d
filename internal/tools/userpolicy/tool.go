// internal/tools/userpolicy/tool.go
package userpolicy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
	"policy-assistant/internal/policystore"
)

const errNoMatch = "No matching policy found"

// Tool answers questions about the caller's own policy by scanning the
// policy store. Matching is first-match-wins in storage order.
type Tool struct {
	store  policystore.Store
	logger logger.Logger
}

func NewTool(store policystore.Store, log logger.Logger) *Tool {
	return &Tool{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "user-policy"}),
	}
}

// Lookup finds the first matching record and filters it to the requested
// query type subset. Misses and store failures both come back in the Error
// field with an empty record.
func (t *Tool) Lookup(ctx context.Context, p Params) Result {
	qt := p.QueryType
	if qt == "" {
		qt = models.QueryFull
	}
	if !models.ValidQueryType(qt) {
		return Result{
			Result: &models.PolicyRecord{},
			Error:  fmt.Sprintf("unsupported query type: %s", qt),
		}
	}

	rec, err := t.store.FindPolicy(ctx, policystore.Query{
		PolicyID:    p.PolicyID,
		UserID:      p.UserName,
		ProductName: p.ProductName,
	})
	if errors.Is(err, policystore.ErrNotFound) {
		t.logger.Debug("no matching policy", map[string]interface{}{
			"policy_id": p.PolicyID,
			"product":   p.ProductName,
		})
		return Result{Result: &models.PolicyRecord{}, Error: errNoMatch}
	}
	if err != nil {
		t.logger.Warn("policy store lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
		return Result{Result: &models.PolicyRecord{}, Error: err.Error()}
	}

	return Result{Result: rec.Subset(qt)}
}

// CoverageDetails narrows a matched policy's coverages to those whose
// cover_name contains coverageName. An empty coverageName returns all.
func (t *Tool) CoverageDetails(ctx context.Context, policyID, coverageName string) CoverageResult {
	res := t.Lookup(ctx, Params{PolicyID: policyID, QueryType: models.QueryCoverage})
	if res.Error != "" {
		return CoverageResult{Error: "Policy not found"}
	}

	coverages := res.Result.Coverages
	if coverageName == "" {
		return CoverageResult{Coverages: coverages}
	}

	needle := strings.ToLower(coverageName)
	for i := range coverages {
		if strings.Contains(strings.ToLower(coverages[i].CoverName), needle) {
			return CoverageResult{Coverage: &coverages[i]}
		}
	}
	return CoverageResult{Error: fmt.Sprintf("Coverage '%s' not found in policy", coverageName)}
}

func (t *Tool) Type() models.ToolType { return models.ToolUserPolicy }

func (t *Tool) ParameterSchema() string {
	return `{
		"type": "object",
		"properties": {
			"policy_id": {"type": ["string", "null"]},
			"user_name": {"type": ["string", "null"]},
			"product_name": {"type": ["string", "null"]},
			"query_type": {"type": "string", "enum": ["full", "coverage", "proposer", "policy", "insured"]}
		}
	}`
}

func (t *Tool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	p := Params{
		PolicyID:    stringParam(params, "policy_id"),
		UserName:    stringParam(params, "user_name"),
		ProductName: stringParam(params, "product_name"),
		QueryType:   models.QueryType(stringParam(params, "query_type")),
	}
	return t.Lookup(ctx, p), nil
}

func stringParam(params map[string]interface{}, key string) string {
	if params == nil {
		return ""
	}
	if s, ok := params[key].(string); ok {
		return s
	}
	return ""
}
