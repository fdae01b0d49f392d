// internal/tools/registry.go
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	apperrors "policy-assistant/internal/common/errors"
	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/common/metrics"
	"policy-assistant/internal/models"
)

// Tool is one executable capability of the assistant. ParameterSchema returns
// a JSON schema document used to validate call parameters before dispatch; an
// empty schema skips validation.
type Tool interface {
	Type() models.ToolType
	ParameterSchema() string
	Execute(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// Registry maps tool types to implementations. The map is fixed at startup;
// Execute never panics and never returns a Go error: every failure mode is
// folded into the ToolResponse.
type Registry struct {
	tools   map[models.ToolType]Tool
	schemas map[models.ToolType]*gojsonschema.Schema
	logger  logger.Logger
}

func NewRegistry(log logger.Logger, tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:   map[models.ToolType]Tool{},
		schemas: map[models.ToolType]*gojsonschema.Schema{},
		logger:  log.WithFields(map[string]interface{}{"component": "tool-registry"}),
	}

	for _, t := range tools {
		if _, dup := r.tools[t.Type()]; dup {
			return nil, fmt.Errorf("duplicate tool registration: %s", t.Type())
		}
		r.tools[t.Type()] = t

		if raw := t.ParameterSchema(); raw != "" {
			schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
			if err != nil {
				return nil, fmt.Errorf("invalid parameter schema for %s: %w", t.Type(), err)
			}
			r.schemas[t.Type()] = schema
		}
	}

	r.logger.Info("tool registry built", map[string]interface{}{"tools": len(r.tools)})
	return r, nil
}

// Registered reports whether the tool type has an implementation.
func (r *Registry) Registered(t models.ToolType) bool {
	_, ok := r.tools[t]
	return ok
}

// Types returns the registered tool types.
func (r *Registry) Types() []models.ToolType {
	out := make([]models.ToolType, 0, len(r.tools))
	for t := range r.tools {
		out = append(out, t)
	}
	return out
}

// SchemaFor returns the raw parameter schema for a registered tool type, or
// "" when the tool is unknown or carries no schema.
func (r *Registry) SchemaFor(t models.ToolType) string {
	tool, ok := r.tools[t]
	if !ok {
		return ""
	}
	return tool.ParameterSchema()
}

// Execute runs one tool call. Unregistered types and parameter validation
// failures come back as error-bearing responses rather than silent skips.
func (r *Registry) Execute(ctx context.Context, call models.ToolCall) models.ToolResponse {
	tool, ok := r.tools[call.Type]
	if !ok {
		metrics.ToolInvocations.WithLabelValues(string(call.Type), "unregistered").Inc()
		return models.ToolResponse{
			Type:  call.Type,
			Error: apperrors.NewToolNotRegisteredError(string(call.Type)).Error(),
		}
	}

	if schema, ok := r.schemas[call.Type]; ok {
		if resp, invalid := r.validate(schema, call); invalid {
			metrics.ToolInvocations.WithLabelValues(string(call.Type), "invalid_params").Inc()
			return resp
		}
	}

	result, err := tool.Execute(ctx, call.Parameters)
	if err != nil {
		metrics.ToolInvocations.WithLabelValues(string(call.Type), "error").Inc()
		r.logger.Warn("tool execution failed", map[string]interface{}{
			"tool":  string(call.Type),
			"error": err.Error(),
		})
		return models.ToolResponse{Type: call.Type, Error: err.Error()}
	}

	metrics.ToolInvocations.WithLabelValues(string(call.Type), "success").Inc()
	return models.ToolResponse{Type: call.Type, Result: result}
}

func (r *Registry) validate(schema *gojsonschema.Schema, call models.ToolCall) (models.ToolResponse, bool) {
	params := call.Parameters
	if params == nil {
		params = map[string]interface{}{}
	}

	doc, err := json.Marshal(params)
	if err != nil {
		return models.ToolResponse{
			Type:  call.Type,
			Error: apperrors.NewInvalidToolParamsError(string(call.Type), err.Error()).Error(),
		}, true
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return models.ToolResponse{
			Type:  call.Type,
			Error: apperrors.NewInvalidToolParamsError(string(call.Type), err.Error()).Error(),
		}, true
	}
	if !res.Valid() {
		details := ""
		for i, desc := range res.Errors() {
			if i > 0 {
				details += "; "
			}
			details += desc.String()
		}
		return models.ToolResponse{
			Type:  call.Type,
			Error: apperrors.NewInvalidToolParamsError(string(call.Type), details).Error(),
		}, true
	}
	return models.ToolResponse{}, false
}
