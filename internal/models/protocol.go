// internal/models/protocol.go
package models

import "time"

// ToolType identifies a tool registered with the assistant.
type ToolType string

const (
	ToolVectorSearch       ToolType = "vector_search"
	ToolIntentDetection    ToolType = "intent_detection"
	ToolPolicyLookup       ToolType = "policy_lookup"
	ToolFaqLookup          ToolType = "faq_lookup"
	ToolCoverageComparison ToolType = "coverage_comparison"
	ToolActionRecommender  ToolType = "action_recommender"
	ToolUserPolicy         ToolType = "user_policy"
)

// ToolCall is a request to execute a specific tool with parameters.
type ToolCall struct {
	Type       ToolType               `json:"tool_type"`
	Parameters map[string]interface{} `json:"parameters"`
}

// ToolResponse is the result of executing one ToolCall. Error is checked
// first; a non-empty Error marks the call as failed even if Result is set.
type ToolResponse struct {
	Type   ToolType    `json:"tool_type"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Failed reports whether the tool call produced an error.
func (r ToolResponse) Failed() bool {
	return r.Error != ""
}

// IntentPrediction is one entry of a detected-intent ranking. Intent and
// Route are pointers so the null sentinel serializes as JSON null.
type IntentPrediction struct {
	Intent *string `json:"intent"`
	Route  *string `json:"route"`
	Score  float64 `json:"score"`
}

// DetectedIntent is an ordered ranking, highest score first, at most 3
// entries, never empty: a failed or empty detection yields the sentinel.
type DetectedIntent []IntentPrediction

// SentinelIntent returns the fixed placeholder used when intent detection
// yields nothing.
func SentinelIntent() DetectedIntent {
	return DetectedIntent{{Intent: nil, Route: nil, Score: 0.0}}
}

// ContextItem is a unit of grounding text with provenance metadata.
type ContextItem struct {
	Text    string  `json:"text"`
	Source  string  `json:"source"`
	DocType string  `json:"doc_type"`
	Score   float64 `json:"score,omitempty"`
}

// Source is a de-duplicated citation shown to the end user.
type Source struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// UserPolicySource is the synthetic citation prepended when personal policy
// data was fused into the context.
var UserPolicySource = Source{Name: "User Policy", Type: "Personal Policy Details"}

// ErrorSource is the sentinel citation attached to catch-all failure responses.
var ErrorSource = Source{Name: "Error", Type: "System"}

// Turn is one message of a conversation transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is a server-side conversation transcript keyed by an opaque id.
// History is append-only: exactly two turns per successfully answered request.
type Session struct {
	ID           string                 `json:"session_id"`
	History      []Turn                 `json:"history"`
	Context      map[string]interface{} `json:"context,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	LastActivity time.Time              `json:"last_activity"`
}
