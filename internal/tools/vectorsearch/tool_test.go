// internal/tools/vectorsearch/tool_test.go
package vectorsearch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

type stubEmbedder struct {
	vector []float64
	err    error
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float64, error) {
	return s.vector, s.err
}

type stubIndex struct {
	items    []models.ContextItem
	err      error
	lastTopK int
}

func (s *stubIndex) Search(_ context.Context, _ []float64, topK int) ([]models.ContextItem, error) {
	s.lastTopK = topK
	return s.items, s.err
}

func TestTool_Search(t *testing.T) {
	idx := &stubIndex{items: []models.ContextItem{
		{Text: "Trip delay pays USD 50.", Source: "Travel Elite Wordings", DocType: "Travel Insurance", Score: 0.9},
	}}
	tool := NewTool(&stubEmbedder{vector: []float64{0.1}}, idx, logger.NewNoOpLogger())

	items := tool.Search(context.Background(), "trip delay", 3)
	require.Len(t, items, 1)
	assert.Equal(t, 3, idx.lastTopK)
}

func TestTool_Search_EmbedderFailureReturnsEmpty(t *testing.T) {
	tool := NewTool(&stubEmbedder{err: errors.New("embed down")}, &stubIndex{}, logger.NewNoOpLogger())

	items := tool.Search(context.Background(), "q", 3)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestTool_Search_IndexFailureReturnsEmpty(t *testing.T) {
	tool := NewTool(&stubEmbedder{vector: []float64{0.1}},
		&stubIndex{err: errors.New("index down")}, logger.NewNoOpLogger())

	items := tool.Search(context.Background(), "q", 3)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestTool_Search_DefaultTopK(t *testing.T) {
	idx := &stubIndex{}
	tool := NewTool(&stubEmbedder{vector: []float64{0.1}}, idx, logger.NewNoOpLogger())

	tool.Search(context.Background(), "q", 0)
	assert.Equal(t, defaultTopK, idx.lastTopK)
}

func TestTool_Execute_JSONNumericTopK(t *testing.T) {
	idx := &stubIndex{}
	tool := NewTool(&stubEmbedder{vector: []float64{0.1}}, idx, logger.NewNoOpLogger())

	// JSON-decoded parameters arrive as float64
	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"query": "q",
		"top_k": float64(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, idx.lastTopK)
}
