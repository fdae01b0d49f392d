// internal/vectorindex/elasticsearch.go
package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

// Searcher retrieves the topK nearest document chunks for a query vector.
type Searcher interface {
	Search(ctx context.Context, vector []float64, topK int) ([]models.ContextItem, error)
}

// ElasticsearchIndex runs kNN queries against a dense-vector index. Each
// indexed document carries text, source and doc_type fields alongside the
// embedding.
type ElasticsearchIndex struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchIndex(es *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchIndex {
	return &ElasticsearchIndex{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "vectorindex"}),
	}
}

type knnQuery struct {
	KNN    knnClause `json:"knn"`
	Source []string  `json:"_source"`
}

type knnClause struct {
	Field         string    `json:"field"`
	QueryVector   []float64 `json:"query_vector"`
	K             int       `json:"k"`
	NumCandidates int       `json:"num_candidates"`
}

type searchResult struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				Text    string `json:"text"`
				Source  string `json:"source"`
				DocType string `json:"doc_type"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns up to topK context items ordered by descending score.
func (i *ElasticsearchIndex) Search(ctx context.Context, vector []float64, topK int) ([]models.ContextItem, error) {
	if topK <= 0 {
		topK = 3
	}

	query := knnQuery{
		KNN: knnClause{
			Field:         "embedding",
			QueryVector:   vector,
			K:             topK,
			NumCandidates: topK * 10,
		},
		Source: []string{"text", "source", "doc_type"},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal knn query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("vector search error: %s", res.Status())
	}

	var parsed searchResult
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	items := make([]models.ContextItem, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, models.ContextItem{
			Text:    hit.Source.Text,
			Source:  hit.Source.Source,
			DocType: hit.Source.DocType,
			Score:   hit.Score,
		})
	}

	i.logger.Debug("vector search completed", map[string]interface{}{
		"hits":  len(items),
		"top_k": topK,
	})
	return items, nil
}
