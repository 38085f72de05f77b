// Package inference provides provider-agnostic access to the sign recognition
// and autocomplete model servers, with fallback routing and per-user quotas.
package inference

import "context"

// MinConfidence is the probability floor below which a prediction is
// discarded instead of being reported to the client.
const MinConfidence = 0.2

// Prediction is a single hand-sign classification result.
type Prediction struct {
	Char        string  `json:"pred"`
	Prob        float64 `json:"prob"`
	InferMillis float64 `json:"infer"`
}

// Confident reports whether the prediction clears the confidence floor.
func (p Prediction) Confident() bool {
	return p.Prob >= MinConfidence
}

// Recognizer classifies a frame of hand landmarks into a letter.
type Recognizer interface {
	Recognize(ctx context.Context, landmarks []float64) (Prediction, error)
	HealthCheck(ctx context.Context) error
}

// Suggester produces word completions for partially fingerspelled text.
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]string, error)
	HealthCheck(ctx context.Context) error
}
