// Package realtime serves the websocket channel used during live practice:
// clients stream hand landmark frames and get classified letters and word
// suggestions back.
package realtime

import (
	"encoding/json"
	"time"
)

// Event names on the wire.
const (
	EventConnectionAck = "connection_ack"
	EventReqHandsign   = "req_handsign"
	EventResHandsign   = "res_handsign"
	EventReqAutocomp   = "req_autocomp"
	EventResAutocomp   = "res_autocomp"
)

// Envelope is the frame every message travels in.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// HandsignRequest carries one frame of hand landmarks plus the text the user
// has spelled so far.
type HandsignRequest struct {
	Landmarks   []float64 `json:"landmarks"`
	CurrentText string    `json:"current_text,omitempty"`
}

// HandsignResponse reports a confident classification.
type HandsignResponse struct {
	Time        time.Time `json:"time"`
	Pred        string    `json:"pred"`
	Prob        float64   `json:"prob"`
	InferMillis float64   `json:"infer"`
}

// AutocompRequest asks for completions of partially spelled text.
type AutocompRequest struct {
	Text string `json:"text"`
}

// AutocompResponse carries the completions.
type AutocompResponse struct {
	Suggestions []string `json:"suggestions"`
}

func envelope(event string, data any) (Envelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: payload}, nil
}
