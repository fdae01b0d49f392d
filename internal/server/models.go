// internal/server/models.go
package server

import "policy-assistant/internal/models"

// QueryRequest is the body of the plain retrieval endpoint.
type QueryRequest struct {
	Question    string        `json:"question"`
	ChatHistory []models.Turn `json:"chat_history,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Model       string        `json:"model,omitempty"`
}

// QueryResponse is the plain endpoint's answer envelope.
type QueryResponse struct {
	Answer  string          `json:"answer"`
	Sources []models.Source `json:"sources"`
}

// AssistantQueryRequest is the body of the session-aware assistant endpoint.
type AssistantQueryRequest struct {
	Question    string            `json:"question"`
	ChatHistory []models.Turn     `json:"chat_history,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
	Tools       []models.ToolCall `json:"tools,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

// AssistantQueryResponse mirrors assistant.Response on the wire.
type AssistantQueryResponse struct {
	Answer         string                `json:"answer"`
	Sources        []models.Source       `json:"sources"`
	SessionID      string                `json:"session_id"`
	DetectedIntent models.DetectedIntent `json:"detected_intent,omitempty"`
	ToolResults    []models.ToolResponse `json:"tool_results,omitempty"`
}

// errorResponse is the body of 4xx/5xx replies.
type errorResponse struct {
	Detail string `json:"detail"`
}

// healthResponse is the body of the health endpoint.
type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
