// internal/tools/intentdetect/config.go
package intentdetect

import "time"

// Config holds settings for the intent classification service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// defaultTimeout is the fixed budget for one classification call.
const defaultTimeout = 5 * time.Second

// maxPredictions caps the ranking returned to callers.
const maxPredictions = 3
