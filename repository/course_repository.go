package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"coursechat-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository handles database operations for the course metadata index.
// Each course is one row keyed by title, with the title embedding used for
// semantic course-name resolution and the lesson list serialized as JSONB.
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Upsert inserts or replaces the metadata row for a course. The title is the
// primary key, so re-adding an existing course overwrites its row in place.
func (r *CourseRepository) Upsert(ctx context.Context, course *models.Course, embedding []float32) error {
	if len(embedding) != EmbeddingDimensions {
		return fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimensions, len(embedding))
	}

	lessons, err := json.Marshal(course.Lessons)
	if err != nil {
		return fmt.Errorf("failed to marshal lessons: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO courses (title, link, instructor, lessons, embedding)
		VALUES ($1, $2, $3, $4, $5::vector)
		ON CONFLICT (title) DO UPDATE SET
			link = EXCLUDED.link,
			instructor = EXCLUDED.instructor,
			lessons = EXCLUDED.lessons,
			embedding = EXCLUDED.embedding,
			updated_at = NOW()`,
		course.Title, course.Link, course.Instructor, lessons, formatVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to upsert course: %w", err)
	}
	return nil
}

// ResolveByEmbedding returns the title of the course whose embedding is
// nearest to the query embedding, top-1 only. An empty metadata index yields
// ("", nil): a miss is data, not an error.
func (r *CourseRepository) ResolveByEmbedding(ctx context.Context, embedding []float32) (string, error) {
	var title string
	err := r.db.QueryRow(ctx, `
		SELECT title
		FROM courses
		ORDER BY embedding <=> $1::vector
		LIMIT 1`,
		formatVector(embedding)).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve course name: %w", err)
	}
	return title, nil
}

// GetOutline loads the course-level view (title, link, lesson list) for an
// exact title. Returns (nil, nil) when the title is not present.
func (r *CourseRepository) GetOutline(ctx context.Context, title string) (*models.CourseOutline, error) {
	var outline models.CourseOutline
	var lessons []byte
	err := r.db.QueryRow(ctx, `
		SELECT title, link, lessons
		FROM courses
		WHERE title = $1`,
		title).Scan(&outline.Title, &outline.Link, &lessons)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course outline: %w", err)
	}
	if err := json.Unmarshal(lessons, &outline.Lessons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lessons: %w", err)
	}
	return &outline, nil
}

// ExistingTitles returns the set of course titles already present in the
// metadata index. Used by ingestion to skip duplicates.
func (r *CourseRepository) ExistingTitles(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT title FROM courses`)
	if err != nil {
		return nil, fmt.Errorf("failed to query course titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]struct{})
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan course title: %w", err)
		}
		titles[title] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course titles: %w", err)
	}
	return titles, nil
}

// Titles returns all course titles in insertion order
func (r *CourseRepository) Titles(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT title FROM courses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query course titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan course title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course titles: %w", err)
	}
	return titles, nil
}

// Count returns the number of courses in the metadata index
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return count, nil
}
