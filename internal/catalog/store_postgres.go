package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handspeak/handspeak-api/internal/domain"
)

const pgUniqueViolation = "23505"

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed catalog store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateCourse(ctx context.Context, c Course) (Course, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO courses (course_id, course_name, course_desc, course_difficulty, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Description, c.Difficulty, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return Course{}, domain.Conflict(domain.KindCourse, c.ID)
	}
	if err != nil {
		return Course{}, fmt.Errorf("create course: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) GetCourse(ctx context.Context, id string) (Course, error) {
	return s.scanCourse(ctx,
		`SELECT course_id::text, course_name, course_desc, course_difficulty, created_at
		 FROM courses WHERE course_id = $1::uuid`, id, id)
}

func (s *PostgresStore) GetCourseByName(ctx context.Context, name string) (Course, error) {
	return s.scanCourse(ctx,
		`SELECT course_id::text, course_name, course_desc, course_difficulty, created_at
		 FROM courses WHERE course_name = $1 LIMIT 1`, name, name)
}

func (s *PostgresStore) scanCourse(ctx context.Context, query, arg, key string) (Course, error) {
	var c Course
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Name, &c.Description, &c.Difficulty, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, domain.NotFound(domain.KindCourse, key)
	}
	if err != nil {
		return Course{}, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT course_id::text, course_name, course_desc, course_difficulty, created_at
		 FROM courses ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	out := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Difficulty, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateCourse(ctx context.Context, id string, upd CourseUpdate) (Course, error) {
	var c Course
	err := s.pool.QueryRow(ctx,
		`UPDATE courses SET
		   course_name = COALESCE($2, course_name),
		   course_desc = COALESCE($3, course_desc),
		   course_difficulty = COALESCE($4, course_difficulty)
		 WHERE course_id = $1::uuid
		 RETURNING course_id::text, course_name, course_desc, course_difficulty, created_at`,
		id, upd.Name, upd.Description, upd.Difficulty,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Difficulty, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, domain.NotFound(domain.KindCourse, id)
	}
	if err != nil {
		return Course{}, fmt.Errorf("update course: %w", err)
	}
	return c, nil
}

// DeleteCourse removes the course, its lesson links, and the question links of
// every lesson that was attached. Runs as one transaction.
func (s *PostgresStore) DeleteCourse(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete course: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM lesson_questions
		 WHERE lesson_id IN (SELECT lesson_id FROM course_lessons WHERE course_id = $1::uuid)`,
		id,
	); err != nil {
		return fmt.Errorf("delete lesson links: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM course_lessons WHERE course_id = $1::uuid`, id,
	); err != nil {
		return fmt.Errorf("delete course links: %w", err)
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM courses WHERE course_id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound(domain.KindCourse, id)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) CreateLesson(ctx context.Context, l Lesson) (Lesson, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lessons (lesson_id, lesson_name, lesson_desc, lesson_type)
		 VALUES ($1::uuid, $2, $3, $4)`,
		l.ID, l.Name, l.Description, l.Type,
	)
	if isUniqueViolation(err) {
		return Lesson{}, domain.Conflict(domain.KindLesson, l.ID)
	}
	if err != nil {
		return Lesson{}, fmt.Errorf("create lesson: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) GetLesson(ctx context.Context, id string) (Lesson, error) {
	var l Lesson
	err := s.pool.QueryRow(ctx,
		`SELECT lesson_id::text, lesson_name, lesson_desc, lesson_type
		 FROM lessons WHERE lesson_id = $1::uuid`, id,
	).Scan(&l.ID, &l.Name, &l.Description, &l.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lesson{}, domain.NotFound(domain.KindLesson, id)
	}
	if err != nil {
		return Lesson{}, fmt.Errorf("get lesson: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) UpdateLesson(ctx context.Context, id string, upd LessonUpdate) (Lesson, error) {
	var l Lesson
	err := s.pool.QueryRow(ctx,
		`UPDATE lessons SET
		   lesson_name = COALESCE($2, lesson_name),
		   lesson_desc = COALESCE($3, lesson_desc),
		   lesson_type = COALESCE($4, lesson_type)
		 WHERE lesson_id = $1::uuid
		 RETURNING lesson_id::text, lesson_name, lesson_desc, lesson_type`,
		id, upd.Name, upd.Description, upd.Type,
	).Scan(&l.ID, &l.Name, &l.Description, &l.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lesson{}, domain.NotFound(domain.KindLesson, id)
	}
	if err != nil {
		return Lesson{}, fmt.Errorf("update lesson: %w", err)
	}
	return l, nil
}

// DeleteLesson removes the lesson with its question links and any course links
// pointing at it.
func (s *PostgresStore) DeleteLesson(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete lesson: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM lesson_questions WHERE lesson_id = $1::uuid`, id,
	); err != nil {
		return fmt.Errorf("delete question links: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM course_lessons WHERE lesson_id = $1::uuid`, id,
	); err != nil {
		return fmt.Errorf("delete course links: %w", err)
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM lessons WHERE lesson_id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound(domain.KindLesson, id)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO questions (question_id, question_type, question_target, question_choice)
		 VALUES ($1::uuid, $2, $3, $4)`,
		q.ID, q.Type, q.Target, nullIfEmpty(q.Choices),
	)
	if isUniqueViolation(err) {
		return Question{}, domain.Conflict(domain.KindQuestion, q.ID)
	}
	if err != nil {
		return Question{}, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

func (s *PostgresStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	var q Question
	var choices *string
	err := s.pool.QueryRow(ctx,
		`SELECT question_id::text, question_type, question_target, question_choice
		 FROM questions WHERE question_id = $1::uuid`, id,
	).Scan(&q.ID, &q.Type, &q.Target, &choices)
	if errors.Is(err, pgx.ErrNoRows) {
		return Question{}, domain.NotFound(domain.KindQuestion, id)
	}
	if err != nil {
		return Question{}, fmt.Errorf("get question: %w", err)
	}
	if choices != nil {
		q.Choices = *choices
	}
	return q, nil
}

func (s *PostgresStore) UpdateQuestion(ctx context.Context, id string, upd QuestionUpdate) (Question, error) {
	var q Question
	var choices *string
	err := s.pool.QueryRow(ctx,
		`UPDATE questions SET
		   question_type = COALESCE($2, question_type),
		   question_target = COALESCE($3, question_target),
		   question_choice = COALESCE($4, question_choice)
		 WHERE question_id = $1::uuid
		 RETURNING question_id::text, question_type, question_target, question_choice`,
		id, upd.Type, upd.Target, upd.Choices,
	).Scan(&q.ID, &q.Type, &q.Target, &choices)
	if errors.Is(err, pgx.ErrNoRows) {
		return Question{}, domain.NotFound(domain.KindQuestion, id)
	}
	if err != nil {
		return Question{}, fmt.Errorf("update question: %w", err)
	}
	if choices != nil {
		q.Choices = *choices
	}
	return q, nil
}

func (s *PostgresStore) DeleteQuestion(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete question: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM lesson_questions WHERE question_id = $1::uuid`, id,
	); err != nil {
		return fmt.Errorf("delete question links: %w", err)
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM questions WHERE question_id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound(domain.KindQuestion, id)
	}
	return tx.Commit(ctx)
}

// AttachLesson inserts the lesson into the course ordering. The course's link
// rows are locked FOR UPDATE so two concurrent attaches cannot compute the
// same insertion index; shifted rows are updated in descending index order to
// stay clear of the (course_id, index_in_course) uniqueness constraint.
func (s *PostgresStore) AttachLesson(ctx context.Context, courseID, lessonID string, at *int) (CourseLesson, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return CourseLesson{}, fmt.Errorf("begin attach lesson: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := entityExists(ctx, tx, `SELECT 1 FROM courses WHERE course_id = $1::uuid`, courseID, domain.KindCourse); err != nil {
		return CourseLesson{}, err
	}
	if err := entityExists(ctx, tx, `SELECT 1 FROM lessons WHERE lesson_id = $1::uuid`, lessonID, domain.KindLesson); err != nil {
		return CourseLesson{}, err
	}

	index, err := shiftLinks(ctx, tx, shiftSpec{
		lockQuery: `SELECT entry_id::text, index_in_course FROM course_lessons
		            WHERE course_id = $1::uuid ORDER BY index_in_course DESC FOR UPDATE`,
		shiftQuery: `UPDATE course_lessons SET index_in_course = index_in_course + 1 WHERE entry_id = $1::uuid`,
		parentID:   courseID,
		at:         at,
	})
	if err != nil {
		return CourseLesson{}, fmt.Errorf("shift course lessons: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO course_lessons (entry_id, course_id, lesson_id, index_in_course)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4)`,
		uuid.NewString(), courseID, lessonID, index,
	); err != nil {
		// FOR UPDATE cannot lock link rows that do not exist yet, so two
		// first-appends into an empty course can both resolve the same index.
		// The loser hits the (course_id, index_in_course) constraint.
		if isUniqueViolation(err) {
			return CourseLesson{}, domain.Conflict(domain.KindLesson, courseID+"/"+lessonID)
		}
		return CourseLesson{}, fmt.Errorf("attach lesson: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return CourseLesson{}, fmt.Errorf("commit attach lesson: %w", err)
	}
	return CourseLesson{CourseID: courseID, LessonID: lessonID, Index: index}, nil
}

func (s *PostgresStore) CourseLessons(ctx context.Context, courseID string) ([]CourseLesson, error) {
	if err := entityExists(ctx, s.pool, `SELECT 1 FROM courses WHERE course_id = $1::uuid`, courseID, domain.KindCourse); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT course_id::text, lesson_id::text, index_in_course
		 FROM course_lessons WHERE course_id = $1::uuid
		 ORDER BY index_in_course ASC`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course lessons: %w", err)
	}
	defer rows.Close()

	out := []CourseLesson{}
	for rows.Next() {
		var cl CourseLesson
		if err := rows.Scan(&cl.CourseID, &cl.LessonID, &cl.Index); err != nil {
			return nil, fmt.Errorf("scan course lesson: %w", err)
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

// DetachLesson deletes the link without re-compacting the remaining indices.
func (s *PostgresStore) DetachLesson(ctx context.Context, courseID, lessonID string) error {
	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM course_lessons
		 WHERE entry_id = (SELECT entry_id FROM course_lessons
		                   WHERE course_id = $1::uuid AND lesson_id = $2::uuid
		                   ORDER BY index_in_course ASC LIMIT 1)`,
		courseID, lessonID)
	if err != nil {
		return fmt.Errorf("detach lesson: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound(domain.KindLesson, lessonID)
	}
	return nil
}

func (s *PostgresStore) AttachQuestion(ctx context.Context, lessonID, questionID string, at *int) (LessonQuestion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return LessonQuestion{}, fmt.Errorf("begin attach question: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := entityExists(ctx, tx, `SELECT 1 FROM lessons WHERE lesson_id = $1::uuid`, lessonID, domain.KindLesson); err != nil {
		return LessonQuestion{}, err
	}
	if err := entityExists(ctx, tx, `SELECT 1 FROM questions WHERE question_id = $1::uuid`, questionID, domain.KindQuestion); err != nil {
		return LessonQuestion{}, err
	}

	index, err := shiftLinks(ctx, tx, shiftSpec{
		lockQuery: `SELECT entry_id::text, index_in_lesson FROM lesson_questions
		            WHERE lesson_id = $1::uuid ORDER BY index_in_lesson DESC FOR UPDATE`,
		shiftQuery: `UPDATE lesson_questions SET index_in_lesson = index_in_lesson + 1 WHERE entry_id = $1::uuid`,
		parentID:   lessonID,
		at:         at,
	})
	if err != nil {
		return LessonQuestion{}, fmt.Errorf("shift lesson questions: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO lesson_questions (entry_id, lesson_id, question_id, index_in_lesson)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4)`,
		uuid.NewString(), lessonID, questionID, index,
	); err != nil {
		if isUniqueViolation(err) {
			return LessonQuestion{}, domain.Conflict(domain.KindQuestion, lessonID+"/"+questionID)
		}
		return LessonQuestion{}, fmt.Errorf("attach question: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return LessonQuestion{}, fmt.Errorf("commit attach question: %w", err)
	}
	return LessonQuestion{LessonID: lessonID, QuestionID: questionID, Index: index}, nil
}

func (s *PostgresStore) LessonQuestions(ctx context.Context, lessonID string) ([]LessonQuestion, error) {
	if err := entityExists(ctx, s.pool, `SELECT 1 FROM lessons WHERE lesson_id = $1::uuid`, lessonID, domain.KindLesson); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT lesson_id::text, question_id::text, index_in_lesson
		 FROM lesson_questions WHERE lesson_id = $1::uuid
		 ORDER BY index_in_lesson ASC`, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list lesson questions: %w", err)
	}
	defer rows.Close()

	out := []LessonQuestion{}
	for rows.Next() {
		var lq LessonQuestion
		if err := rows.Scan(&lq.LessonID, &lq.QuestionID, &lq.Index); err != nil {
			return nil, fmt.Errorf("scan lesson question: %w", err)
		}
		out = append(out, lq)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DetachQuestion(ctx context.Context, lessonID, questionID string) error {
	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM lesson_questions
		 WHERE entry_id = (SELECT entry_id FROM lesson_questions
		                   WHERE lesson_id = $1::uuid AND question_id = $2::uuid
		                   ORDER BY index_in_lesson ASC LIMIT 1)`,
		lessonID, questionID)
	if err != nil {
		return fmt.Errorf("detach question: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound(domain.KindQuestion, questionID)
	}
	return nil
}

func (s *PostgresStore) CourseOverview(ctx context.Context) ([]CourseSummary, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		rows, err := s.pool.Query(ctx,
			`SELECT l.lesson_id::text, l.lesson_name, l.lesson_desc, l.lesson_type,
			        (SELECT COUNT(*) FROM lesson_questions lq WHERE lq.lesson_id = l.lesson_id)
			 FROM course_lessons cl
			 JOIN lessons l ON l.lesson_id = cl.lesson_id
			 WHERE cl.course_id = $1::uuid
			 ORDER BY cl.index_in_course ASC`, c.ID)
		if err != nil {
			return nil, fmt.Errorf("course overview: %w", err)
		}

		summary := CourseSummary{Course: c, Lessons: []LessonSummary{}}
		for rows.Next() {
			var ls LessonSummary
			if err := rows.Scan(&ls.LessonID, &ls.Name, &ls.Description, &ls.Type, &ls.QuestionCount); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan overview lesson: %w", err)
			}
			summary.Lessons = append(summary.Lessons, ls)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func entityExists(ctx context.Context, q querier, query, id string, kind domain.EntityKind) error {
	var one int
	err := q.QueryRow(ctx, query, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(kind, id)
	}
	if err != nil {
		return fmt.Errorf("check %s: %w", kind, err)
	}
	return nil
}

type shiftSpec struct {
	lockQuery  string
	shiftQuery string
	parentID   string
	at         *int
}

// shiftLinks locks the parent's link rows, resolves the effective insertion
// index, and bumps every link at or after it. Rows arrive highest-index first
// so each update moves into a free slot.
func shiftLinks(ctx context.Context, tx pgx.Tx, spec shiftSpec) (int, error) {
	rows, err := tx.Query(ctx, spec.lockQuery, spec.parentID)
	if err != nil {
		return 0, fmt.Errorf("lock links: %w", err)
	}

	type link struct {
		entryID string
		index   int
	}
	var links []link
	for rows.Next() {
		var l link
		if err := rows.Scan(&l.entryID, &l.index); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	index := resolveIndex(spec.at, len(links))
	for _, l := range links {
		if l.index < index {
			break // descending order: everything after is below the cut
		}
		if _, err := tx.Exec(ctx, spec.shiftQuery, l.entryID); err != nil {
			return 0, fmt.Errorf("shift link: %w", err)
		}
	}
	return index, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
