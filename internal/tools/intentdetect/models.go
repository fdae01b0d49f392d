// internal/tools/intentdetect/models.go
package intentdetect

// detectRequest is the wire body posted to the classification service.
type detectRequest struct {
	Query string `json:"query"`
}
