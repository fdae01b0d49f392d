// cmd/tools/policy-ingest/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"policy-assistant/internal/common/config"
	"policy-assistant/internal/common/database"
	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/embedding"
)

// chunk windows for plain-text wordings
const (
	chunkWords   = 200
	chunkOverlap = 50
)

type document struct {
	Text    string `json:"text"`
	Source  string `json:"source"`
	DocType string `json:"doc_type"`
}

type indexedDoc struct {
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	DocType   string    `json:"doc_type"`
	Embedding []float64 `json:"embedding"`
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of .txt/.json policy wording files")
		index   = flag.String("index", "", "target index (defaults to the configured one)")
		docType = flag.String("doc-type", "Policy Wording", "doc_type metadata for .txt files")
	)
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: policy-ingest -dir <documents-dir> [-index name] [-doc-type type]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	targetIndex := *index
	if targetIndex == "" {
		targetIndex = cfg.Database.Elasticsearch.Index
	}

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch client failed", zap.Error(err))
	}
	if err := esClient.Ping(); err != nil {
		zapLog.Fatal("elasticsearch unreachable", zap.Error(err))
	}

	embedder := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.APIs.Embedding.BaseURL,
		APIKey:    cfg.APIs.Embedding.APIKey,
		Model:     cfg.APIs.Embedding.Model,
		Dimension: cfg.APIs.Embedding.Dimension,
		Timeout:   time.Duration(cfg.APIs.Embedding.Timeout) * time.Millisecond,
	}, log)

	ctx := context.Background()

	docs, err := collectDocuments(*dir, *docType)
	if err != nil {
		zapLog.Fatal("document collection failed", zap.Error(err))
	}
	zapLog.Info("documents collected", zap.Int("count", len(docs)), zap.String("index", targetIndex))

	var buf bytes.Buffer
	indexed := 0
	for _, doc := range docs {
		vector, err := embedder.Embed(ctx, doc.Text)
		if err != nil {
			zapLog.Warn("embedding failed, skipping chunk",
				zap.String("source", doc.Source), zap.Error(err))
			continue
		}

		meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, targetIndex, uuid.NewString())
		line, err := json.Marshal(indexedDoc{
			Text:      doc.Text,
			Source:    doc.Source,
			DocType:   doc.DocType,
			Embedding: vector,
		})
		if err != nil {
			zapLog.Fatal("chunk encode failed", zap.Error(err))
		}

		buf.WriteString(meta)
		buf.WriteByte('\n')
		buf.Write(line)
		buf.WriteByte('\n')
		indexed++
	}

	if indexed == 0 {
		zapLog.Fatal("nothing to index")
	}

	es := esClient.GetClient()
	res, err := es.Bulk(bytes.NewReader(buf.Bytes()), es.Bulk.WithContext(ctx))
	if err != nil {
		zapLog.Fatal("bulk index failed", zap.Error(err))
	}
	defer res.Body.Close()
	if res.IsError() {
		zapLog.Fatal("bulk index error", zap.String("status", res.Status()))
	}

	zapLog.Info("ingest complete", zap.Int("chunks", indexed))
}

// collectDocuments walks the directory and turns each .txt file into
// overlapping word-window chunks and each .json file into its listed
// documents. Other file types are skipped.
func collectDocuments(dir, docType string) ([]document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var docs []document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt":
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			source := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			for _, chunk := range chunkText(string(data), chunkWords, chunkOverlap) {
				docs = append(docs, document{Text: chunk, Source: source, DocType: docType})
			}
		case ".json":
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			var listed []document
			if err := json.Unmarshal(data, &listed); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			docs = append(docs, listed...)
		}
	}
	return docs, nil
}

// chunkText splits text into overlapping windows of size words, stepping
// size-overlap words at a time.
func chunkText(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= overlap {
		size = overlap + 1
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
