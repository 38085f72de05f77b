package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/handspeak/handspeak-api/internal/catalog"
)

// ImportWorkbook appends questions from a question-bank workbook. The first
// sheet holds one question per row: lesson name, question type, target,
// choices. A header row is detected by its first cell and skipped. Lessons are
// matched by name against the existing catalog; a row naming an unknown
// lesson fails the import.
func ImportWorkbook(ctx context.Context, store catalog.Store, path string) (Summary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Summary{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	lessonIDs, err := lessonNameIndex(ctx, store)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for i, row := range rows {
		if len(row) == 0 || (i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "lesson")) {
			continue
		}
		if len(row) < 3 {
			return sum, fmt.Errorf("row %d: want at least lesson, type, target; got %d cells", i+1, len(row))
		}

		lessonName := strings.TrimSpace(row[0])
		lessonID, ok := lessonIDs[lessonName]
		if !ok {
			return sum, fmt.Errorf("row %d: unknown lesson %q", i+1, lessonName)
		}

		q := catalog.Question{
			Type:   catalog.QuestionType(strings.TrimSpace(row[1])),
			Target: strings.TrimSpace(row[2]),
		}
		if len(row) > 3 {
			q.Choices = strings.TrimSpace(row[3])
		}

		question, err := store.CreateQuestion(ctx, q)
		if err != nil {
			return sum, fmt.Errorf("row %d: create question: %w", i+1, err)
		}
		if _, err := store.AttachQuestion(ctx, lessonID, question.ID, nil); err != nil {
			return sum, fmt.Errorf("row %d: attach question: %w", i+1, err)
		}
		sum.Questions++
	}

	slog.Info("workbook import finished", "path", path, "questions", sum.Questions)
	return sum, nil
}

func lessonNameIndex(ctx context.Context, store catalog.Store) (map[string]string, error) {
	overview, err := store.CourseOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("index lessons: %w", err)
	}
	index := make(map[string]string)
	for _, course := range overview {
		for _, lesson := range course.Lessons {
			index[lesson.Name] = lesson.LessonID
		}
	}
	return index, nil
}
