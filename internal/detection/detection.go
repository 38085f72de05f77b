// Package detection records recognized hand signs and the autocomplete
// suggestions offered for them.
package detection

import (
	"context"
	"time"
)

// DetectedSign is one recognized character, recorded together with the text
// the user had spelled so far.
type DetectedSign struct {
	ID          string    `json:"detection_id"`
	UserID      string    `json:"user_id"`
	Char        string    `json:"detected_character"`
	CurrentText string    `json:"current_user_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Suggestion is an autocomplete proposal tied to a detection. AcceptedAt is
// set once, when the user takes the suggestion.
type Suggestion struct {
	DetectionID   string     `json:"detection_id"`
	SuggestedText string     `json:"suggested_text"`
	AcceptedText  *string    `json:"accepted_text,omitempty"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
}

// Store persists detections and their suggestions.
type Store interface {
	CreateDetection(ctx context.Context, d DetectedSign) (DetectedSign, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]DetectedSign, error)
	CreateSuggestion(ctx context.Context, detectionID, suggestedText string) (Suggestion, error)
	AcceptSuggestion(ctx context.Context, detectionID, acceptedText string) (Suggestion, error)
}
