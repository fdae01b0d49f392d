// internal/assistant/controller_test.go
package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "policy-assistant/internal/common/errors"
	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/generation"
	"policy-assistant/internal/models"
	"policy-assistant/internal/session"
	"policy-assistant/internal/tools/userpolicy"
)

// --- collaborator stubs ---

type stubRecommender struct {
	calls []models.ToolCall
	runs  int
}

func (s *stubRecommender) Recommend(string) []models.ToolCall {
	s.runs++
	return s.calls
}

type stubDetector struct {
	detected models.DetectedIntent
}

func (s *stubDetector) Detect(context.Context, string) models.DetectedIntent {
	if s.detected == nil {
		return models.SentinelIntent()
	}
	return s.detected
}

type stubSearcher struct {
	items []models.ContextItem
	runs  int
}

func (s *stubSearcher) Search(_ context.Context, _ string, topK int) []models.ContextItem {
	s.runs++
	if s.items == nil {
		return []models.ContextItem{}
	}
	return s.items
}

type stubExecutor struct {
	responses map[models.ToolType]models.ToolResponse
	executed  []models.ToolCall
}

func (s *stubExecutor) Execute(_ context.Context, call models.ToolCall) models.ToolResponse {
	s.executed = append(s.executed, call)
	if resp, ok := s.responses[call.Type]; ok {
		return resp
	}
	return models.ToolResponse{Type: call.Type}
}

type stubGenerator struct {
	answer  string
	err     error
	lastReq generation.Request
	runs    int
}

func (s *stubGenerator) Generate(_ context.Context, req generation.Request) (string, error) {
	s.runs++
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	if s.answer == "" {
		return "generated answer", nil
	}
	return s.answer, nil
}

type failingStore struct{}

func (failingStore) GetOrCreate(context.Context, string, []models.Turn) (*models.Session, error) {
	return nil, errors.New("session backend down")
}
func (failingStore) Get(context.Context, string) (*models.Session, error) {
	return nil, errors.New("session backend down")
}
func (failingStore) AppendTurns(context.Context, string, ...models.Turn) error {
	return errors.New("session backend down")
}
func (failingStore) Lock(string) func() { return func() {} }

type fixture struct {
	controller  *Controller
	store       *session.MemoryStore
	recommender *stubRecommender
	detector    *stubDetector
	searcher    *stubSearcher
	executor    *stubExecutor
	generator   *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := session.NewMemoryStore(time.Minute, 100, logger.NewNoOpLogger())
	t.Cleanup(store.Close)

	f := &fixture{
		store:       store,
		recommender: &stubRecommender{},
		detector:    &stubDetector{},
		searcher: &stubSearcher{items: []models.ContextItem{
			{Text: "Trip delay pays USD 50.", Source: "Travel Elite Wordings", DocType: "Travel Insurance", Score: 0.9},
		}},
		executor:  &stubExecutor{},
		generator: &stubGenerator{},
	}
	f.controller = NewController(store, f.recommender, f.detector, f.searcher,
		f.executor, f.generator, logger.NewNoOpLogger())
	return f
}

func policyToolResult() models.ToolResponse {
	return models.ToolResponse{
		Type: models.ToolUserPolicy,
		Result: userpolicy.Result{Result: &models.PolicyRecord{
			PolicyDetails: map[string]interface{}{
				"policy_number": "TRV/2024/001",
				"product_name":  "Travel Elite Plan",
			},
		}},
	}
}

// --- tests ---

func TestProcess_EmptyQueryRejectedBeforePipeline(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.Process(context.Background(), Request{Query: "   "})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeEmptyQuestion, stdErr.Code)

	// nothing downstream ran and no session exists
	assert.Zero(t, f.recommender.runs)
	assert.Zero(t, f.searcher.runs)
	assert.Zero(t, f.generator.runs)
}

func TestProcess_MintsSessionAndAppendsHistory(t *testing.T) {
	f := newFixture(t)

	resp, err := f.controller.Process(context.Background(), Request{Query: "what is covered?"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)

	sess, err := f.store.Get(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.History, 2)
	assert.Equal(t, models.Turn{Role: models.RoleUser, Content: "what is covered?"}, sess.History[0])
	assert.Equal(t, models.Turn{Role: models.RoleAssistant, Content: resp.Answer}, sess.History[1])
}

func TestProcess_UnknownSessionIDGetsFreshOne(t *testing.T) {
	f := newFixture(t)

	resp, err := f.controller.Process(context.Background(), Request{
		Query:     "q",
		SessionID: "never-seen",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "never-seen", resp.SessionID)
}

func TestProcess_CallerHistorySeedsNewSession(t *testing.T) {
	f := newFixture(t)

	seed := []models.Turn{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}
	_, err := f.controller.Process(context.Background(), Request{Query: "follow-up", History: seed})
	require.NoError(t, err)

	assert.Equal(t, seed, f.generator.lastReq.History)
}

func TestProcess_SecondRequestSeesFirstTurns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.controller.Process(ctx, Request{Query: "first question"})
	require.NoError(t, err)

	_, err = f.controller.Process(ctx, Request{Query: "second question", SessionID: first.SessionID})
	require.NoError(t, err)

	require.Len(t, f.generator.lastReq.History, 2)
	assert.Equal(t, "first question", f.generator.lastReq.History[0].Content)
	assert.Equal(t, first.Answer, f.generator.lastReq.History[1].Content)
}

func TestProcess_RecommenderOnlyWhenNoExplicitTools(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.controller.Process(ctx, Request{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.recommender.runs)

	_, err = f.controller.Process(ctx, Request{
		Query: "q",
		Tools: []models.ToolCall{{Type: models.ToolVectorSearch, Parameters: map[string]interface{}{"query": "q"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.recommender.runs)
	require.Len(t, f.executor.executed, 1)
}

func TestProcess_MandatoryVectorSearchAlwaysRuns(t *testing.T) {
	f := newFixture(t)

	// explicit vector-search call does not replace the forced retrieval
	_, err := f.controller.Process(context.Background(), Request{
		Query: "q",
		Tools: []models.ToolCall{{Type: models.ToolVectorSearch, Parameters: map[string]interface{}{"query": "q"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.searcher.runs)
	assert.Len(t, f.executor.executed, 1)
}

func TestProcess_PolicyContextFusion(t *testing.T) {
	f := newFixture(t)
	f.recommender.calls = []models.ToolCall{
		{Type: models.ToolUserPolicy, Parameters: map[string]interface{}{"query_type": "full"}},
		{Type: models.ToolVectorSearch, Parameters: map[string]interface{}{"query": "q", "top_k": 3}},
	}
	f.executor.responses = map[models.ToolType]models.ToolResponse{
		models.ToolUserPolicy: policyToolResult(),
	}

	resp, err := f.controller.Process(context.Background(),
		Request{Query: "What is my policy number for travel insurance?"})
	require.NoError(t, err)

	// rendered policy text is the first grounding block
	require.NotEmpty(t, f.generator.lastReq.Context)
	assert.Contains(t, f.generator.lastReq.Context[0], "POLICY DETAILS:")
	assert.Contains(t, f.generator.lastReq.Context[0], "TRV/2024/001")

	// synthetic source leads the citation list
	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, models.UserPolicySource, resp.Sources[0])

	// instruction carries the policy-priority grounding rule
	assert.Contains(t, f.generator.lastReq.SystemPrompt, "User Policy")
}

func TestProcess_FailedPolicyToolDoesNotFuse(t *testing.T) {
	f := newFixture(t)
	f.recommender.calls = []models.ToolCall{{Type: models.ToolUserPolicy}}
	f.executor.responses = map[models.ToolType]models.ToolResponse{
		models.ToolUserPolicy: {
			Type:   models.ToolUserPolicy,
			Result: userpolicy.Result{Result: &models.PolicyRecord{}, Error: "No matching policy found"},
		},
	}

	resp, err := f.controller.Process(context.Background(), Request{Query: "my policy"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Sources)
	assert.NotEqual(t, models.UserPolicySource, resp.Sources[0])
}

func TestProcess_SourceDedupe(t *testing.T) {
	f := newFixture(t)
	f.searcher.items = []models.ContextItem{
		{Text: "a", Source: "Travel Elite Wordings", DocType: "Travel Insurance"},
		{Text: "b", Source: "Travel Elite Wordings", DocType: "Travel Insurance"},
		{Text: "c", Source: "Health Elevate Wordings", DocType: "Health Insurance"},
	}

	resp, err := f.controller.Process(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "Travel Elite Wordings", resp.Sources[0].Name)
	assert.Equal(t, "Health Elevate Wordings", resp.Sources[1].Name)
}

func TestProcess_IntentFailureStillAnswers(t *testing.T) {
	f := newFixture(t)
	// stubDetector with nil detected returns the sentinel, mirroring a
	// timed-out classifier

	resp, err := f.controller.Process(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	require.Len(t, resp.DetectedIntent, 1)
	assert.Nil(t, resp.DetectedIntent[0].Intent)
	assert.Nil(t, resp.DetectedIntent[0].Route)
	assert.Equal(t, 0.0, resp.DetectedIntent[0].Score)
	assert.Equal(t, "generated answer", resp.Answer)
}

func TestProcess_GenerationFailureIsComponentLevel(t *testing.T) {
	f := newFixture(t)
	f.generator.err = errors.New("model unavailable")

	resp, err := f.controller.Process(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	// apology carries the failure description
	assert.Contains(t, resp.Answer, "I apologize")
	assert.Contains(t, resp.Answer, "model unavailable")

	// context-derived sources are kept, not replaced by the error sentinel
	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "Travel Elite Wordings", resp.Sources[0].Name)

	// history is still appended on this failure depth
	sess, err := f.store.Get(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Len(t, sess.History, 2)
}

func TestProcess_CatchAllOnSessionStoreFailure(t *testing.T) {
	f := newFixture(t)
	controller := NewController(failingStore{}, f.recommender, f.detector,
		f.searcher, f.executor, f.generator, logger.NewNoOpLogger())

	resp, err := controller.Process(context.Background(), Request{Query: "q", SessionID: "s1"})
	require.NoError(t, err)

	assert.Contains(t, resp.Answer, "I apologize")
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, models.ErrorSource, resp.Sources[0])
}

func TestProcess_ToolResultsReturned(t *testing.T) {
	f := newFixture(t)
	f.recommender.calls = []models.ToolCall{
		{Type: models.ToolUserPolicy},
		{Type: models.ToolVectorSearch, Parameters: map[string]interface{}{"query": "q"}},
	}

	resp, err := f.controller.Process(context.Background(), Request{Query: "my policy"})
	require.NoError(t, err)
	require.Len(t, resp.ToolResults, 2)
	assert.Equal(t, models.ToolUserPolicy, resp.ToolResults[0].Type)
	assert.Equal(t, models.ToolVectorSearch, resp.ToolResults[1].Type)
}
