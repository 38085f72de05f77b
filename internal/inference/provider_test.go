package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPProvider_Recognize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req predictRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Landmarks) != 3 {
			t.Errorf("landmarks = %v, want 3 values", req.Landmarks)
		}

		json.NewEncoder(w).Encode(Prediction{Char: "A", Prob: 0.93, InferMillis: 12.5})
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL)

	pred, err := provider.Recognize(context.Background(), []float64{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if pred.Char != "A" {
		t.Errorf("pred = %q, want %q", pred.Char, "A")
	}
	if pred.Prob != 0.93 {
		t.Errorf("prob = %v, want 0.93", pred.Prob)
	}
}

func TestHTTPProvider_Recognize_EmptyFrame(t *testing.T) {
	provider := NewHTTPProvider("http://localhost:1")
	_, err := provider.Recognize(context.Background(), nil)
	if err == nil {
		t.Fatal("Recognize() should reject an empty frame")
	}
}

func TestHTTPProvider_Recognize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL)
	_, err := provider.Recognize(context.Background(), []float64{0.1})
	if err == nil {
		t.Fatal("Recognize() should return error on API error")
	}
}

func TestHTTPProvider_Suggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/autocomplete" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req suggestRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "HEL" {
			t.Errorf("text = %q, want %q", req.Text, "HEL")
		}

		json.NewEncoder(w).Encode(suggestResponse{Suggestions: []string{"HELLO", "HELP"}})
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL)

	got, err := provider.Suggest(context.Background(), "HEL")
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(got) != 2 || got[0] != "HELLO" {
		t.Errorf("suggestions = %v, want [HELLO HELP]", got)
	}
}

func TestHTTPProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			provider := NewHTTPProvider(server.URL)
			err := provider.HealthCheck(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPredictionConfident(t *testing.T) {
	if (Prediction{Char: "A", Prob: 0.19}).Confident() {
		t.Error("prediction below the floor reported as confident")
	}
	if !(Prediction{Char: "A", Prob: 0.2}).Confident() {
		t.Error("prediction at the floor reported as not confident")
	}
}
