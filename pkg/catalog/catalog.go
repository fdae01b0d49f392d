// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"time"
)

// New builds a catalog from tool entries. InputSchema fields are expected to
// be populated by the caller from each tool's parameter schema.
func New(version string, tools []ToolEntry) *ToolCatalog {
	return &ToolCatalog{
		Version:     version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Tools:       tools,
	}
}

// ParseSchema decodes a JSON schema document into the open map form used in
// catalog entries. Invalid or empty schemas yield nil.
func ParseSchema(raw string) map[string]interface{} {
	if raw == "" {
		return nil
	}
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return nil
	}
	return schema
}
