// Package seed imports catalog content from seed documents: a JSON format for
// whole courses and an xlsx question bank for bulk question appends.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/handspeak/handspeak-api/internal/catalog"
	"github.com/handspeak/handspeak-api/internal/domain"
)

//go:embed schema.json
var schemaJSON string

// Document is a parsed seed file.
type Document struct {
	Courses []CourseSeed `json:"courses"`
}

// CourseSeed is one course with its lessons in order.
type CourseSeed struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Difficulty  int          `json:"difficulty"`
	Lessons     []LessonSeed `json:"lessons"`
}

// LessonSeed is one lesson with its questions in order.
type LessonSeed struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Questions   []QuestionSeed `json:"questions"`
}

// QuestionSeed is one question row.
type QuestionSeed struct {
	Type    string `json:"type"`
	Target  string `json:"target"`
	Choices string `json:"choices"`
}

// Summary counts what an import created.
type Summary struct {
	Courses   int
	Lessons   int
	Questions int
}

// LoadFile reads and validates a JSON seed file.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read seed file: %w", err)
	}
	return Load(data)
}

// Load validates raw seed JSON against the embedded schema and parses it.
func Load(data []byte) (Document, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return Document{}, fmt.Errorf("validate seed document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return Document{}, fmt.Errorf("invalid seed document: %s", strings.Join(msgs, "; "))
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse seed document: %w", err)
	}
	return doc, nil
}

// Import writes the document into the catalog. Lessons and questions are
// attached in document order, so attachment goes through the same ordering
// path the API uses.
func Import(ctx context.Context, store catalog.Store, doc Document) (Summary, error) {
	var sum Summary
	for _, cs := range doc.Courses {
		// Re-running a seed file must not duplicate its courses.
		if _, err := store.GetCourseByName(ctx, cs.Name); err == nil {
			return sum, fmt.Errorf("seed course %q: %w", cs.Name, domain.Conflict(domain.KindCourse, cs.Name))
		} else if !errors.Is(err, domain.ErrNotFound) {
			return sum, fmt.Errorf("seed course %q: %w", cs.Name, err)
		}

		course, err := store.CreateCourse(ctx, catalog.Course{
			Name:        cs.Name,
			Description: cs.Description,
			Difficulty:  cs.Difficulty,
		})
		if err != nil {
			return sum, fmt.Errorf("seed course %q: %w", cs.Name, err)
		}
		sum.Courses++

		for _, ls := range cs.Lessons {
			lesson, err := store.CreateLesson(ctx, catalog.Lesson{
				Name:        ls.Name,
				Description: ls.Description,
				Type:        catalog.LessonType(ls.Type),
			})
			if err != nil {
				return sum, fmt.Errorf("seed lesson %q: %w", ls.Name, err)
			}
			if _, err := store.AttachLesson(ctx, course.ID, lesson.ID, nil); err != nil {
				return sum, fmt.Errorf("attach lesson %q: %w", ls.Name, err)
			}
			sum.Lessons++

			for _, qs := range ls.Questions {
				question, err := store.CreateQuestion(ctx, catalog.Question{
					Type:    catalog.QuestionType(qs.Type),
					Target:  qs.Target,
					Choices: qs.Choices,
				})
				if err != nil {
					return sum, fmt.Errorf("seed question %q: %w", qs.Target, err)
				}
				if _, err := store.AttachQuestion(ctx, lesson.ID, question.ID, nil); err != nil {
					return sum, fmt.Errorf("attach question %q: %w", qs.Target, err)
				}
				sum.Questions++
			}
		}
	}

	slog.Info("seed import finished",
		"courses", sum.Courses,
		"lessons", sum.Lessons,
		"questions", sum.Questions,
	)
	return sum, nil
}
