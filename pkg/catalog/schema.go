// pkg/catalog/schema.go
package catalog

// ToolCatalog is the machine-readable description of the assistant's tools,
// served on the tool discovery endpoint.
type ToolCatalog struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	Tools       []ToolEntry `json:"tools"`
}

type ToolEntry struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Tags        []string               `json:"tags,omitempty"`
}
