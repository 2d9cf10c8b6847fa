package repository

import (
	"context"
	"fmt"

	"coursechat-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmbeddingDimensions is the dimensionality of all stored vectors. Both
// indexes share one embedding model, so there is a single constant.
const EmbeddingDimensions = 768

// ChunkRepository handles database operations for the content index: one row
// per chunk, keyed by the chunk's deterministic synthetic id and tagged with
// course title and lesson number for exact-match filtering.
type ChunkRepository struct {
	db *pgxpool.Pool
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// UpsertChunks writes chunks and their embeddings to the content index.
// Chunk ids are derived from (course, lesson, index), so re-ingesting a
// document overwrites the same rows.
func (r *ChunkRepository) UpsertChunks(ctx context.Context, chunks []models.CourseChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	for i, chunk := range chunks {
		if len(embeddings[i]) != EmbeddingDimensions {
			return fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimensions, len(embeddings[i]))
		}
		_, err := r.db.Exec(ctx, `
			INSERT INTO course_chunks (id, course_title, lesson_number, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6::vector)
			ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding`,
			chunk.ID(), chunk.CourseTitle, chunk.LessonNumber, chunk.ChunkIndex,
			chunk.Content, formatVector(embeddings[i]))
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %d: %w", i, err)
		}
	}
	return nil
}

// Search performs a similarity search over the content index, restricted by
// the optional exact-match filters, ordered by vector distance and bounded
// by limit. A limit of zero or below returns no rows.
func (r *ChunkRepository) Search(
	ctx context.Context,
	embedding []float32,
	courseTitle *string,
	lessonNumber *int,
	limit int,
) ([]models.ScoredChunk, error) {
	if len(embedding) != EmbeddingDimensions {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimensions, len(embedding))
	}
	if limit <= 0 {
		return nil, nil
	}

	args := []interface{}{formatVector(embedding)}
	where := ""
	if courseTitle != nil {
		args = append(args, *courseTitle)
		where += fmt.Sprintf(" AND course_title = $%d", len(args))
	}
	if lessonNumber != nil {
		args = append(args, *lessonNumber)
		where += fmt.Sprintf(" AND lesson_number = $%d", len(args))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT
			content,
			course_title,
			lesson_number,
			embedding <=> $1::vector AS distance
		FROM course_chunks
		WHERE TRUE%s
		ORDER BY
			embedding <=> $1::vector
		LIMIT $%d`, where, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query course chunks: %w", err)
	}
	defer rows.Close()

	var results []models.ScoredChunk
	for rows.Next() {
		var chunk models.ScoredChunk
		if err := rows.Scan(&chunk.Content, &chunk.CourseTitle, &chunk.LessonNumber, &chunk.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan course chunk: %w", err)
		}
		results = append(results, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course chunks: %w", err)
	}
	return results, nil
}
