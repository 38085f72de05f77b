package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPProvider talks to a model server over its JSON HTTP API. The server
// exposes /predict for landmark classification, /autocomplete for word
// suggestions and /health for liveness.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		p.client = client
	}
}

// NewHTTPProvider creates a provider for the model server at baseURL.
func NewHTTPProvider(baseURL string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type predictRequest struct {
	Landmarks []float64 `json:"landmarks"`
}

type suggestRequest struct {
	Text string `json:"text"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (p *HTTPProvider) Recognize(ctx context.Context, landmarks []float64) (Prediction, error) {
	if len(landmarks) == 0 {
		return Prediction{}, fmt.Errorf("no landmarks")
	}

	var pred Prediction
	if err := p.post(ctx, "/predict", predictRequest{Landmarks: landmarks}, &pred); err != nil {
		return Prediction{}, err
	}
	if pred.Char == "" {
		return Prediction{}, fmt.Errorf("no prediction in response")
	}
	return pred, nil
}

func (p *HTTPProvider) Suggest(ctx context.Context, text string) ([]string, error) {
	var resp suggestResponse
	if err := p.post(ctx, "/autocomplete", suggestRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
