// internal/assistant/controller.go
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "policy-assistant/internal/common/errors"
	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/common/metrics"
	"policy-assistant/internal/generation"
	"policy-assistant/internal/models"
	"policy-assistant/internal/session"
	"policy-assistant/internal/tools/userpolicy"
)

const (
	contextTopK = 3

	catchAllApology = "I apologize, but I encountered an error while processing your question. Please try again later."
)

// IntentDetector classifies a query. Implementations never fail: a failed
// detection is the sentinel ranking.
type IntentDetector interface {
	Detect(ctx context.Context, query string) models.DetectedIntent
}

// ContextSearcher retrieves grounding passages. Implementations never fail:
// a failed search is an empty slice.
type ContextSearcher interface {
	Search(ctx context.Context, query string, topK int) []models.ContextItem
}

// ToolExecutor dispatches one tool call, folding every failure mode into the
// response.
type ToolExecutor interface {
	Execute(ctx context.Context, call models.ToolCall) models.ToolResponse
}

// Recommender plans tool calls for a query.
type Recommender interface {
	Recommend(query string) []models.ToolCall
}

// Request is one question against the assistant.
type Request struct {
	Query       string
	History     []models.Turn
	Tools       []models.ToolCall
	SessionID   string
	Temperature float64
}

// Response is the structured answer.
type Response struct {
	Answer         string                `json:"answer"`
	Sources        []models.Source       `json:"sources"`
	SessionID      string                `json:"session_id"`
	DetectedIntent models.DetectedIntent `json:"detected_intent"`
	ToolResults    []models.ToolResponse `json:"tool_results,omitempty"`
}

// Controller orchestrates the full answer pipeline: session resolution, tool
// planning and execution, retrieval, prompt assembly, generation and source
// extraction. Collaborator failures degrade to defaults; nothing in the
// pipeline retries.
type Controller struct {
	sessions    session.Store
	recommender Recommender
	detector    IntentDetector
	searcher    ContextSearcher
	executor    ToolExecutor
	generator   generation.Generator
	logger      logger.Logger
}

func NewController(
	sessions session.Store,
	recommender Recommender,
	detector IntentDetector,
	searcher ContextSearcher,
	executor ToolExecutor,
	generator generation.Generator,
	log logger.Logger,
) *Controller {
	return &Controller{
		sessions:    sessions,
		recommender: recommender,
		detector:    detector,
		searcher:    searcher,
		executor:    executor,
		generator:   generator,
		logger:      log.WithFields(map[string]interface{}{"component": "controller"}),
	}
}

// Process answers one request. An empty query is the only input rejected with
// an error; every other failure produces a best-effort response. The
// catch-all path answers with an apology and the Error/System source and
// leaves session history untouched.
func (c *Controller) Process(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, apperrors.NewEmptyQuestionError()
	}

	resp, err := c.run(ctx, req)
	if err != nil {
		c.logger.Error("pipeline failed", map[string]interface{}{
			"error":      err.Error(),
			"session_id": req.SessionID,
		})
		return &Response{
			Answer:         catchAllApology,
			Sources:        []models.Source{models.ErrorSource},
			SessionID:      req.SessionID,
			DetectedIntent: models.SentinelIntent(),
		}, nil
	}
	return resp, nil
}

func (c *Controller) run(ctx context.Context, req Request) (*Response, error) {
	// Session resolution: an unknown id gets a freshly minted one, and the
	// caller-supplied history seeds only a new session.
	sessionID := req.SessionID
	if sessionID != "" {
		if _, err := c.sessions.Get(ctx, sessionID); err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				return nil, fmt.Errorf("session lookup: %w", err)
			}
			sessionID = ""
		}
	}

	var seed []models.Turn
	if sessionID == "" {
		sessionID = uuid.NewString()
		seed = req.History
	}

	unlock := c.sessions.Lock(sessionID)
	defer unlock()

	sess, err := c.sessions.GetOrCreate(ctx, sessionID, seed)
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	// Tool planning: the recommender only runs when the caller supplied no
	// explicit calls.
	workingTools := req.Tools
	if len(workingTools) == 0 {
		workingTools = c.recommender.Recommend(req.Query)
	}

	// Intent detection always runs and never aborts the pipeline.
	detected := c.detector.Detect(ctx, req.Query)

	toolResults := make([]models.ToolResponse, 0, len(workingTools))
	for _, call := range workingTools {
		toolResults = append(toolResults, c.executor.Execute(ctx, call))
	}

	// Retrieval for the raw query runs unconditionally, independent of any
	// vector-search call in the working list.
	contextItems := c.searcher.Search(ctx, req.Query, contextTopK)

	contextItems, policyFused := fusePolicyContext(contextItems, toolResults)

	instruction := BuildSystemInstruction(detected)
	answer := c.generate(ctx, req, instruction, contextItems, sess.History)

	sources := extractSources(contextItems, policyFused)

	err = c.sessions.AppendTurns(ctx, sessionID,
		models.Turn{Role: models.RoleUser, Content: req.Query},
		models.Turn{Role: models.RoleAssistant, Content: answer},
	)
	if err != nil {
		return nil, fmt.Errorf("session append: %w", err)
	}

	return &Response{
		Answer:         answer,
		Sources:        sources,
		SessionID:      sessionID,
		DetectedIntent: detected,
		ToolResults:    toolResults,
	}, nil
}

// generate calls the generation engine and converts failures into the
// component-level apology. This path keeps the context-derived sources and
// still appends history.
func (c *Controller) generate(ctx context.Context, req Request, instruction string, items []models.ContextItem, history []models.Turn) string {
	texts := make([]string, 0, len(items))
	for _, it := range items {
		texts = append(texts, it.Text)
	}

	answer, err := c.generator.Generate(ctx, generation.Request{
		SystemPrompt: instruction,
		Query:        req.Query,
		Context:      texts,
		History:      history,
		Temperature:  req.Temperature,
	})
	if err != nil {
		metrics.GenerationFailures.Inc()
		c.logger.Error("generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Sprintf("I apologize, but I encountered an error while processing your question: %v", err)
	}
	return answer
}

// fusePolicyContext inserts the rendered user policy at context index 0 when
// a user-policy tool call succeeded with a non-empty record.
func fusePolicyContext(items []models.ContextItem, toolResults []models.ToolResponse) ([]models.ContextItem, bool) {
	for _, tr := range toolResults {
		if tr.Type != models.ToolUserPolicy || tr.Failed() {
			continue
		}
		res, ok := tr.Result.(userpolicy.Result)
		if !ok || !res.Found() {
			continue
		}

		label := res.Result.ProductName()
		if label == "" {
			label = "Personal Policy"
		}
		item := models.ContextItem{
			Text:    RenderPolicy(res.Result),
			Source:  "User Policy: " + label,
			DocType: "User Policy Details",
		}
		return append([]models.ContextItem{item}, items...), true
	}
	return items, false
}

// extractSources de-duplicates (source, doc_type) pairs in first-seen order
// and prepends the synthetic user-policy source when policy data was fused.
func extractSources(items []models.ContextItem, policyFused bool) []models.Source {
	sources := make([]models.Source, 0, len(items))
	seen := map[models.Source]bool{}

	for _, it := range items {
		s := models.Source{
			Name: defaultString(it.Source, "Unknown"),
			Type: defaultString(it.DocType, "Unknown"),
		}
		if !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}

	if policyFused && !seen[models.UserPolicySource] {
		sources = append([]models.Source{models.UserPolicySource}, sources...)
	}
	return sources
}
