package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultModel is the sentence-embedding model used for relevance ranking.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

const inferenceBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction"

// HuggingFace calls the Hugging Face inference API to embed text.
type HuggingFace struct {
	token   string
	model   string
	baseURL string
	client  *http.Client
}

// NewHuggingFace creates a HuggingFace provider. An empty token yields a
// provider that reports itself unavailable.
func NewHuggingFace(token string, timeout time.Duration) *HuggingFace {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HuggingFace{
		token:   token,
		model:   DefaultModel,
		baseURL: inferenceBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HuggingFace) Available() bool {
	return h.token != ""
}

type embedRequest struct {
	Inputs string `json:"inputs"`
}

// Embed requests a feature-extraction embedding for text. The API returns
// either a bare vector or a single-element batch; both shapes are accepted.
func (h *HuggingFace) Embed(ctx context.Context, text string) ([]float64, error) {
	if !h.Available() {
		return nil, ErrUnavailable
	}

	body, err := json.Marshal(embedRequest{Inputs: text})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", h.baseURL, h.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned status %d", res.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, err
	}

	// Batched shape: [[...]]
	var batch [][]float64
	if err := json.Unmarshal(raw, &batch); err == nil && len(batch) > 0 {
		return batch[0], nil
	}

	// Flat shape: [...]
	var vector []float64
	if err := json.Unmarshal(raw, &vector); err == nil && len(vector) > 0 {
		return vector, nil
	}

	return nil, fmt.Errorf("unexpected embedding response shape")
}
