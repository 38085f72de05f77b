package inference

import "context"

// MockRecognizer is a test double for Recognizer.
type MockRecognizer struct {
	Prediction    Prediction
	Err           error
	LastLandmarks []float64 // captures the last frame for inspection
}

func (m *MockRecognizer) Recognize(_ context.Context, landmarks []float64) (Prediction, error) {
	m.LastLandmarks = landmarks
	if m.Err != nil {
		return Prediction{}, m.Err
	}
	return m.Prediction, nil
}

func (m *MockRecognizer) HealthCheck(_ context.Context) error {
	return m.Err
}

// MockSuggester is a test double for Suggester.
type MockSuggester struct {
	Suggestions []string
	Err         error
	LastText    string
}

func (m *MockSuggester) Suggest(_ context.Context, text string) ([]string, error) {
	m.LastText = text
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Suggestions, nil
}

func (m *MockSuggester) HealthCheck(_ context.Context) error {
	return m.Err
}
