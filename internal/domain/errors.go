// Package domain defines the failure taxonomy shared by all stores and services.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across store implementations.
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrInvariant = errors.New("invariant violation")
)

// EntityKind identifies the entity a failure refers to.
type EntityKind string

const (
	KindUser       EntityKind = "user"
	KindCourse     EntityKind = "course"
	KindLesson     EntityKind = "lesson"
	KindQuestion   EntityKind = "question"
	KindProgress   EntityKind = "lesson progress"
	KindAnswer     EntityKind = "answer record"
	KindEnrollment EntityKind = "enrollment"
	KindPractice   EntityKind = "practice session"
	KindDetection  EntityKind = "detection"
	KindSuggestion EntityKind = "suggestion"
	KindLetter     EntityKind = "letter"
)

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound creates a NotFoundError for the given entity.
func NotFound(kind EntityKind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Kind EntityKind
	Key  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.Key)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Conflict creates a ConflictError for the given entity.
func Conflict(kind EntityKind, key string) error {
	return &ConflictError{Kind: kind, Key: key}
}

// InvariantError reports broken internal state. It signals a programming
// defect or data corruption, not bad user input.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Msg
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariant creates an InvariantError with a formatted message.
func Invariant(format string, args ...any) error {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}
