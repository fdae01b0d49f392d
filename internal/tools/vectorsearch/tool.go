// internal/tools/vectorsearch/tool.go
package vectorsearch

import (
	"context"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/embedding"
	"policy-assistant/internal/models"
	"policy-assistant/internal/vectorindex"
)

// Tool retrieves grounding passages for a query. It embeds the query and
// runs a nearest-neighbour search; any failure along the way yields an empty
// result set, never an error, so retrieval problems degrade silently.
type Tool struct {
	embedder embedding.Embedder
	index    vectorindex.Searcher
	logger   logger.Logger
}

func NewTool(embedder embedding.Embedder, index vectorindex.Searcher, log logger.Logger) *Tool {
	return &Tool{
		embedder: embedder,
		index:    index,
		logger:   log.WithFields(map[string]interface{}{"component": "vector-search"}),
	}
}

// Search returns up to topK context items for the query, or an empty slice
// on any failure.
func (t *Tool) Search(ctx context.Context, query string, topK int) []models.ContextItem {
	if topK <= 0 {
		topK = defaultTopK
	}

	vector, err := t.embedder.Embed(ctx, query)
	if err != nil {
		t.logger.Warn("query embedding failed, returning no context", map[string]interface{}{
			"error": err.Error(),
		})
		return []models.ContextItem{}
	}

	items, err := t.index.Search(ctx, vector, topK)
	if err != nil {
		t.logger.Warn("index search failed, returning no context", map[string]interface{}{
			"error": err.Error(),
		})
		return []models.ContextItem{}
	}
	if items == nil {
		items = []models.ContextItem{}
	}
	return items
}

func (t *Tool) Type() models.ToolType { return models.ToolVectorSearch }

func (t *Tool) ParameterSchema() string {
	return `{
		"type": "object",
		"properties": {
			"query": {"type": "string"},
			"top_k": {"type": "integer", "minimum": 1},
			"filter": {"type": "object"}
		},
		"required": ["query"]
	}`
}

func (t *Tool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	query, _ := params["query"].(string)
	topK := defaultTopK
	if v, ok := params["top_k"].(float64); ok {
		topK = int(v)
	} else if v, ok := params["top_k"].(int); ok {
		topK = v
	}
	return t.Search(ctx, query, topK), nil
}
