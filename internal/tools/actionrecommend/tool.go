// internal/tools/actionrecommend/tool.go
package actionrecommend

import (
	"context"
	"regexp"
	"strings"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

// Recommender maps a raw query to an ordered tool-call plan using pattern
// matching only. It never fails: any internal problem degrades to a single
// vector-search call.
type Recommender struct {
	logger logger.Logger
}

func NewRecommender(log logger.Logger) *Recommender {
	return &Recommender{
		logger: log.WithFields(map[string]interface{}{"component": "action-recommender"}),
	}
}

// Recommend returns the tool calls for the query. A user-policy call, when
// triggered, always precedes the vector-search call; the vector-search call
// is always present.
func (r *Recommender) Recommend(query string) []models.ToolCall {
	lower := strings.ToLower(query)

	var calls []models.ToolCall

	policyID := extractPolicyID(lower)
	personal := matchesAny(lower, personalPolicyPatterns) || containsAny(lower, personalKeywords)

	if policyID != "" || personal {
		params := map[string]interface{}{
			"query_type": string(decideQueryType(lower)),
		}
		if policyID != "" {
			params["policy_id"] = policyID
		}
		if line := extractProductLine(lower); line == "travel" || line == "health" {
			params["product_name"] = line
		}
		calls = append(calls, models.ToolCall{Type: models.ToolUserPolicy, Parameters: params})
	}

	calls = append(calls, models.ToolCall{
		Type: models.ToolVectorSearch,
		Parameters: map[string]interface{}{
			"query": query,
			"top_k": defaultTopK,
		},
	})

	r.logger.Debug("tools recommended", map[string]interface{}{
		"count":     len(calls),
		"policy_id": policyID,
	})
	return calls
}

// Type and Execute let the recommender double as a registered tool.
func (r *Recommender) Type() models.ToolType { return models.ToolActionRecommender }

func (r *Recommender) ParameterSchema() string {
	return `{
		"type": "object",
		"properties": {
			"query": {"type": "string"}
		},
		"required": ["query"]
	}`
}

func (r *Recommender) Execute(_ context.Context, params map[string]interface{}) (interface{}, error) {
	query, _ := params["query"].(string)
	return r.Recommend(query), nil
}

func extractPolicyID(lower string) string {
	m := policyIDPattern.FindStringSubmatch(lower)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// ExtractCoverageName pulls the coverage name out of "coverage/benefit for X"
// phrasing, or returns "".
func ExtractCoverageName(query string) string {
	m := coveragePattern.FindStringSubmatch(strings.ToLower(query))
	if len(m) < 4 {
		return ""
	}
	return m[3]
}

func decideQueryType(lower string) models.QueryType {
	switch {
	case coverageTypePattern.MatchString(lower):
		return models.QueryCoverage
	case proposerTypePattern.MatchString(lower):
		return models.QueryProposer
	default:
		return models.QueryFull
	}
}

func extractProductLine(lower string) string {
	for _, pl := range productLineKeywords {
		for _, kw := range pl.Keywords {
			if strings.Contains(lower, kw) {
				return pl.Line
			}
		}
	}
	return defaultProductLine
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
