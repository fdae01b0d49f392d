// internal/tools/intentdetect/tool.go
package intentdetect

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"policy-assistant/internal/common/httpclient"
	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

// Detector classifies queries against an external intent service. Detection
// never fails from the caller's point of view: every failure mode collapses
// to the single-entry null sentinel.
type Detector struct {
	config     Config
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewDetector(cfg Config, log logger.Logger) *Detector {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Detector{
		config:     cfg,
		httpClient: httpclient.NewClient(timeout),
		logger:     log.WithFields(map[string]interface{}{"component": "intent-detector"}),
	}
}

// Detect posts the query to the classification service and returns at most
// maxPredictions entries sorted by score descending. Timeouts, transport
// errors, non-200 responses, malformed bodies and empty rankings all yield
// the sentinel.
func (d *Detector) Detect(ctx context.Context, query string) models.DetectedIntent {
	body, err := json.Marshal(detectRequest{Query: query})
	if err != nil {
		return models.SentinelIntent()
	}

	url := d.config.BaseURL + "/predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.SentinelIntent()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Warn("intent service unreachable", map[string]interface{}{
			"error": err.Error(),
		})
		return models.SentinelIntent()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("intent service returned non-200", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return models.SentinelIntent()
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.SentinelIntent()
	}

	var predictions []models.IntentPrediction
	if err := json.Unmarshal(respBody, &predictions); err != nil {
		d.logger.Warn("intent response malformed", map[string]interface{}{
			"error": err.Error(),
		})
		return models.SentinelIntent()
	}
	if len(predictions) == 0 {
		return models.SentinelIntent()
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Score > predictions[j].Score
	})
	if len(predictions) > maxPredictions {
		predictions = predictions[:maxPredictions]
	}

	return models.DetectedIntent(predictions)
}

// Type and Execute let the detector double as a registered tool.
func (d *Detector) Type() models.ToolType { return models.ToolIntentDetection }

func (d *Detector) ParameterSchema() string {
	return `{
		"type": "object",
		"properties": {
			"query": {"type": "string"}
		},
		"required": ["query"]
	}`
}

func (d *Detector) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	query, _ := params["query"].(string)
	return d.Detect(ctx, query), nil
}
