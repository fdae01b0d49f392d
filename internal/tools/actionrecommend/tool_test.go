// internal/tools/actionrecommend/tool_test.go
package actionrecommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

func TestRecommender_PersonalPolicyQuery(t *testing.T) {
	r := NewRecommender(logger.NewNoOpLogger())

	calls := r.Recommend("What is my policy number for travel insurance?")
	require.Len(t, calls, 2)

	// user-policy lookup always precedes the vector search
	assert.Equal(t, models.ToolUserPolicy, calls[0].Type)
	assert.Equal(t, string(models.QueryFull), calls[0].Parameters["query_type"])
	assert.Equal(t, "travel", calls[0].Parameters["product_name"])

	assert.Equal(t, models.ToolVectorSearch, calls[1].Type)
	assert.Equal(t, "What is my policy number for travel insurance?", calls[1].Parameters["query"])
	assert.Equal(t, defaultTopK, calls[1].Parameters["top_k"])
}

func TestRecommender_InformationalQuery(t *testing.T) {
	r := NewRecommender(logger.NewNoOpLogger())

	calls := r.Recommend("Tell me about trip cancellation rules")
	require.Len(t, calls, 1)
	assert.Equal(t, models.ToolVectorSearch, calls[0].Type)
}

func TestRecommender_PolicyIDExtraction(t *testing.T) {
	r := NewRecommender(logger.NewNoOpLogger())

	calls := r.Recommend("Show coverages on policy number: TRV/2024/001")
	require.Len(t, calls, 2)
	assert.Equal(t, models.ToolUserPolicy, calls[0].Type)
	assert.Equal(t, "trv/2024/001", calls[0].Parameters["policy_id"])
	assert.Equal(t, string(models.QueryCoverage), calls[0].Parameters["query_type"])
}

func TestRecommender_QueryTypeDecision(t *testing.T) {
	r := NewRecommender(logger.NewNoOpLogger())

	tests := []struct {
		name     string
		query    string
		wantType models.QueryType
	}{
		{"coverage wording", "what benefits does my plan include", models.QueryCoverage},
		{"proposer wording", "show my details on my insurance", models.QueryProposer},
		{"default full", "my policy number please", models.QueryFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := r.Recommend(tt.query)
			require.Equal(t, models.ToolUserPolicy, calls[0].Type)
			assert.Equal(t, string(tt.wantType), calls[0].Parameters["query_type"])
		})
	}
}

func TestRecommender_ProductLine(t *testing.T) {
	r := NewRecommender(logger.NewNoOpLogger())

	tests := []struct {
		query string
		want  interface{}
	}{
		{"my medical insurance plan", "health"},
		{"my trip insurance", "travel"},
		// motor and home are recognized lines but the policy store only
		// carries travel and health products
		{"my car insurance", nil},
		{"my policy", "travel"},
	}

	for _, tt := range tests {
		calls := r.Recommend(tt.query)
		require.Equal(t, models.ToolUserPolicy, calls[0].Type, tt.query)
		assert.Equal(t, tt.want, calls[0].Parameters["product_name"], tt.query)
	}
}

func TestExtractCoverageName(t *testing.T) {
	assert.Equal(t, "baggage", ExtractCoverageName("what are the benefits for baggage loss"))
	assert.Equal(t, "", ExtractCoverageName("what does travel insurance cover"))
}

func TestRecommender_AsRegisteredTool(t *testing.T) {
	r := NewRecommender(logger.NewNoOpLogger())
	assert.Equal(t, models.ToolActionRecommender, r.Type())

	result, err := r.Execute(context.Background(), map[string]interface{}{
		"query": "explain trip delay cover",
	})
	require.NoError(t, err)

	calls, ok := result.([]models.ToolCall)
	require.True(t, ok)
	assert.NotEmpty(t, calls)
}
