// Package errors provides standardized error handling for the assistant pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEmptyQuestion ErrorCode = "EMPTY_QUESTION"

	ErrCodeIntentDetectionFailed ErrorCode = "INTENT_DETECTION_FAILED"
	ErrCodeIntentAPITimeout      ErrorCode = "INTENT_API_TIMEOUT"

	ErrCodeVectorSearchFailed    ErrorCode = "VECTOR_SEARCH_FAILED"
	ErrCodeEmbeddingFailed       ErrorCode = "EMBEDDING_FAILED"
	ErrCodeIndexConnectionFailed ErrorCode = "INDEX_CONNECTION_FAILED"

	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"

	ErrCodePolicyNotFound      ErrorCode = "POLICY_NOT_FOUND"
	ErrCodePolicyStoreFailed   ErrorCode = "POLICY_STORE_FAILED"
	ErrCodeCoverageNotFound    ErrorCode = "COVERAGE_NOT_FOUND"
	ErrCodeSessionStoreFailed  ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeToolNotRegistered   ErrorCode = "TOOL_NOT_REGISTERED"
	ErrCodeInvalidToolParams   ErrorCode = "INVALID_TOOL_PARAMETERS"
	ErrCodePipelineFailed      ErrorCode = "PIPELINE_FAILED"
	ErrCodeInvalidQueryType    ErrorCode = "INVALID_QUERY_TYPE"
	ErrCodeResourceLoadFailed  ErrorCode = "RESOURCE_LOAD_FAILED"
	ErrCodeIngestFailed        ErrorCode = "INGEST_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewEmptyQuestionError creates a non-retryable client input error.
func NewEmptyQuestionError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyQuestion,
		Message:   "Question cannot be empty",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIntentDetectionFailedError creates an intent service error.
func NewIntentDetectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentDetectionFailed,
		Message:   "Intent detection service error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIntentAPITimeoutError creates an intent API timeout error.
func NewIntentAPITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentAPITimeout,
		Message:   "Intent detection API timeout",
		Details:   "API call exceeded 5 second timeout",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVectorSearchFailedError creates a vector index query error.
func NewVectorSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVectorSearchFailed,
		Message:   "Vector index query error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmbeddingFailedError creates an embedding service error.
func NewEmbeddingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmbeddingFailed,
		Message:   "Embedding service error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a generation engine error.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Generation engine error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPolicyNotFoundError creates a non-retryable lookup miss.
func NewPolicyNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePolicyNotFound,
		Message:   "No matching policy found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPolicyStoreFailedError creates a policy store access error.
func NewPolicyStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePolicyStoreFailed,
		Message:   "Policy store access error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a session store access error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store access error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolNotRegisteredError creates an explicit error for unknown tool types.
func NewToolNotRegisteredError(toolType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolNotRegistered,
		Message:   "Tool type is not registered",
		Details:   fmt.Sprintf("toolType: %s", toolType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidToolParamsError creates a tool parameter validation error.
func NewInvalidToolParamsError(toolType, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidToolParams,
		Message:   "Tool parameters failed validation",
		Details:   fmt.Sprintf("toolType: %s, %s", toolType, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidQueryTypeError creates a non-retryable invalid query type error.
func NewInvalidQueryTypeError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQueryType,
		Message:   "Unsupported query type",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResourceLoadFailedError creates a resource loading error.
func NewResourceLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceLoadFailed,
		Message:   "Resource file load failed",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "GENERATION"):
		return "AI"
	case strings.Contains(codeStr, "VECTOR") || strings.Contains(codeStr, "EMBEDDING") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "POLICY") || strings.Contains(codeStr, "COVERAGE"):
		return "POLICY"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "TOOL"):
		return "TOOL"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "EMPTY"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
