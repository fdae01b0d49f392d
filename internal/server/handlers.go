// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"policy-assistant/internal/assistant"
	apperrors "policy-assistant/internal/common/errors"
	"policy-assistant/internal/common/metrics"
	"policy-assistant/internal/generation"
	"policy-assistant/internal/models"
	"policy-assistant/pkg/catalog"
)

// plainSystemPrompt grounds the retrieval-only endpoint. Unlike the
// session-aware pipeline it asks the model to cite the document line, since
// no structured source list post-processing distinguishes user policy data.
const plainSystemPrompt = `You are an insurance policy assistant. Your task is to answer questions about insurance policies based on the provided context.
Use only the information from the policy documents when answering. If the information needed to answer is not available in the context,
state that you don't have enough information to provide an accurate answer rather than making up information.
Always cite your sources by indicating which policy document (Travel or Health) your information comes from.`

var defaultSource = models.Source{Name: "No specific source", Type: "General Information"}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Message: fmt.Sprintf("Policy Assistant API %s is running", s.appVersion),
	})
}

// handleQuery is the plain retrieval path: vector search plus generation,
// no session, no tools. It always answers 200 with a valid envelope except
// for an empty question.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.QueriesProcessed.WithLabelValues("query", "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		metrics.QueriesProcessed.WithLabelValues("query", "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Question cannot be empty"})
		return
	}

	items := s.searcher.Search(r.Context(), req.Question, 3)

	answer, err := s.generator.Generate(r.Context(), generation.Request{
		SystemPrompt: plainSystemPrompt,
		Query:        req.Question,
		Context:      contextTexts(items),
		History:      req.ChatHistory,
		Temperature:  req.Temperature,
	})
	if err != nil {
		metrics.GenerationFailures.Inc()
		s.logger.Error("generation failed", map[string]interface{}{"error": err.Error()})
		answer = fmt.Sprintf("I apologize, but I encountered an error while processing your question: %v", err)
	}

	sources := dedupeSources(items)
	if len(sources) == 0 {
		sources = []models.Source{defaultSource}
	}

	metrics.QueriesProcessed.WithLabelValues("query", "success").Inc()
	metrics.PipelineDuration.WithLabelValues("query").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, QueryResponse{Answer: answer, Sources: sources})
}

// handleAssistantQuery runs the full tool-orchestrated pipeline.
func (s *Server) handleAssistantQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AssistantQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.QueriesProcessed.WithLabelValues("mcp_query", "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}

	resp, err := s.processor.Process(r.Context(), assistant.Request{
		Query:       req.Question,
		History:     req.ChatHistory,
		Tools:       req.Tools,
		SessionID:   req.SessionID,
		Temperature: req.Temperature,
	})
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodeEmptyQuestion {
			metrics.QueriesProcessed.WithLabelValues("mcp_query", "bad_request").Inc()
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Question cannot be empty"})
			return
		}
		metrics.QueriesProcessed.WithLabelValues("mcp_query", "error").Inc()
		s.logger.Error("assistant query failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Error processing query"})
		return
	}

	metrics.QueriesProcessed.WithLabelValues("mcp_query", "success").Inc()
	metrics.PipelineDuration.WithLabelValues("mcp_query").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, AssistantQueryResponse{
		Answer:         resp.Answer,
		Sources:        resp.Sources,
		SessionID:      resp.SessionID,
		DetectedIntent: resp.DetectedIntent,
		ToolResults:    resp.ToolResults,
	})
}

// toolDescriptions backs the discovery endpoint. Only registered tools are
// advertised.
var toolDescriptions = map[models.ToolType]string{
	models.ToolVectorSearch:      "Retrieves relevant policy document passages for a query",
	models.ToolIntentDetection:   "Classifies the query intent via the intent service",
	models.ToolUserPolicy:        "Looks up the caller's own policy record",
	models.ToolActionRecommender: "Plans which tools a query should trigger",
}

func (s *Server) handleToolCatalog(w http.ResponseWriter, _ *http.Request) {
	types := s.registry.Types()
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	entries := make([]catalog.ToolEntry, 0, len(types))
	for _, t := range types {
		entries = append(entries, catalog.ToolEntry{
			ID:          string(t),
			DisplayName: titleFromType(t),
			Description: toolDescriptions[t],
			InputSchema: catalog.ParseSchema(s.registry.SchemaFor(t)),
		})
	}
	writeJSON(w, http.StatusOK, catalog.New(s.appVersion, entries))
}

func titleFromType(t models.ToolType) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func contextTexts(items []models.ContextItem) []string {
	texts := make([]string, 0, len(items))
	for _, it := range items {
		texts = append(texts, it.Text)
	}
	return texts
}

func dedupeSources(items []models.ContextItem) []models.Source {
	sources := make([]models.Source, 0, len(items))
	seen := map[models.Source]bool{}
	for _, it := range items {
		name := it.Source
		if name == "" {
			name = "Unknown"
		}
		docType := it.DocType
		if docType == "" {
			docType = "Unknown"
		}
		src := models.Source{Name: name, Type: docType}
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return sources
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
