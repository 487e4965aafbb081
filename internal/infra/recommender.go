package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RecommenderClient delegates restock analysis to the AI sidecar over HTTP.
// The sidecar owns prompt construction and model access; this side only ships
// a business-data snapshot and gets back a recommendation document. Keeping
// the model behind a sidecar isolates its failures from the core backend.
type RecommenderClient struct {
	sidecarURL string
	httpClient *http.Client
	breaker    *CircuitBreaker
}

func NewRecommenderClient(sidecarURL string, breaker *CircuitBreaker) *RecommenderClient {
	return &RecommenderClient{
		sidecarURL: sidecarURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker:    breaker,
	}
}

// Analyze posts the snapshot to the sidecar and returns the raw recommendation
// document. The document's shape is not validated here; normalization happens
// in the replenishment pipeline.
func (c *RecommenderClient) Analyze(ctx context.Context, promptContext string, snapshot interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]interface{}{
		"context":  promptContext,
		"snapshot": snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("recommender: marshal snapshot: %w", err)
	}

	var doc json.RawMessage
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sidecarURL+"/analyze", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("recommender: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("recommender: sidecar unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("recommender: sidecar returned %d", resp.StatusCode)
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("recommender: read response: %w", err)
		}
		doc = raw
		return nil
	}

	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}
