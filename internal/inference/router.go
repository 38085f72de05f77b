package inference

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router fans requests out to registered recognizers in registration order,
// falling through to the next one when a provider fails.
type Router struct {
	mu          sync.RWMutex
	recognizers map[string]Recognizer
	suggesters  map[string]Suggester
	fallback    []string // ordered fallback chain
}

// NewRouter creates an empty inference router.
func NewRouter() *Router {
	return &Router{
		recognizers: make(map[string]Recognizer),
		suggesters:  make(map[string]Suggester),
	}
}

// Register adds a named provider. A provider may implement recognition,
// suggestion or both.
func (r *Router) Register(name string, recognizer Recognizer, suggester Suggester) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if recognizer != nil {
		r.recognizers[name] = recognizer
	}
	if suggester != nil {
		r.suggesters[name] = suggester
	}
	r.fallback = append(r.fallback, name)
}

// Recognize routes the frame to the first provider that answers.
func (r *Router) Recognize(ctx context.Context, landmarks []float64) (Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.fallback {
		recognizer, ok := r.recognizers[name]
		if !ok {
			continue
		}

		pred, err := recognizer.Recognize(ctx, landmarks)
		if err != nil {
			slog.Warn("recognizer failed, trying next",
				"provider", name,
				"error", err,
			)
			continue
		}

		slog.Debug("frame classified",
			"provider", name,
			"pred", pred.Char,
			"prob", pred.Prob,
		)
		return pred, nil
	}

	return Prediction{}, fmt.Errorf("all recognizers failed")
}

// Suggest routes the text to the first suggester that answers.
func (r *Router) Suggest(ctx context.Context, text string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.fallback {
		suggester, ok := r.suggesters[name]
		if !ok {
			continue
		}

		suggestions, err := suggester.Suggest(ctx, text)
		if err != nil {
			slog.Warn("suggester failed, trying next",
				"provider", name,
				"error", err,
			)
			continue
		}
		return suggestions, nil
	}

	return nil, fmt.Errorf("all suggesters failed")
}

// HealthCheck passes when any registered recognizer is healthy.
func (r *Router) HealthCheck(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var last error
	for _, name := range r.fallback {
		recognizer, ok := r.recognizers[name]
		if !ok {
			continue
		}
		if err := recognizer.HealthCheck(ctx); err != nil {
			last = fmt.Errorf("%s: %w", name, err)
			continue
		}
		return nil
	}
	if last != nil {
		return last
	}
	return fmt.Errorf("no recognizers registered")
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fallback) > 0
}
