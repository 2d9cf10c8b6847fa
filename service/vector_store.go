package service

import (
	"context"
	"fmt"

	"coursechat-backend/models"
)

// DefaultMaxResults bounds content search when the caller passes no limit.
// A deployment that sets this to zero gets explicit empty results rather
// than a silent failure.
const DefaultMaxResults = 5

// CourseIndex is the metadata side of the dual-index store: one entry per
// course, keyed by title, searchable by title embedding.
type CourseIndex interface {
	Upsert(ctx context.Context, course *models.Course, embedding []float32) error
	ResolveByEmbedding(ctx context.Context, embedding []float32) (string, error)
	GetOutline(ctx context.Context, title string) (*models.CourseOutline, error)
	ExistingTitles(ctx context.Context) (map[string]struct{}, error)
	Titles(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// ChunkIndex is the content side: one entry per chunk, filterable by course
// title and lesson number.
type ChunkIndex interface {
	UpsertChunks(ctx context.Context, chunks []models.CourseChunk, embeddings [][]float32) error
	Search(ctx context.Context, embedding []float32, courseTitle *string, lessonNumber *int, limit int) ([]models.ScoredChunk, error)
}

// VectorStore is the dual-index store: course metadata and lesson content in
// two separate collections sharing one embedding model. Course-name hints
// are resolved semantically against the metadata index before the content
// index is filtered.
type VectorStore struct {
	courses    CourseIndex
	chunks     ChunkIndex
	embedder   Embedder
	maxResults int
}

// VectorStoreOption is a functional option for VectorStore
type VectorStoreOption func(*VectorStore)

// StoreWithCourseIndex sets the course metadata index
func StoreWithCourseIndex(index CourseIndex) VectorStoreOption {
	return func(s *VectorStore) {
		s.courses = index
	}
}

// StoreWithChunkIndex sets the content index
func StoreWithChunkIndex(index ChunkIndex) VectorStoreOption {
	return func(s *VectorStore) {
		s.chunks = index
	}
}

// StoreWithEmbedder sets the shared embedding model
func StoreWithEmbedder(embedder Embedder) VectorStoreOption {
	return func(s *VectorStore) {
		s.embedder = embedder
	}
}

// StoreWithMaxResults sets the default content search limit
func StoreWithMaxResults(n int) VectorStoreOption {
	return func(s *VectorStore) {
		s.maxResults = n
	}
}

// NewVectorStore creates a new dual-index vector store
func NewVectorStore(opts ...VectorStoreOption) *VectorStore {
	s := &VectorStore{maxResults: DefaultMaxResults}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveCourseName resolves a free-text course name (possibly partial or
// fuzzy, e.g. "MCP") to the canonical stored title via nearest-neighbor
// lookup on the metadata index. A miss returns ("", nil): the index is small
// and any best match is accepted, so the only miss case is an empty index.
func (s *VectorStore) ResolveCourseName(ctx context.Context, name string) (string, error) {
	embedding, err := s.embedder.EmbedQuery(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to embed course name: %w", err)
	}
	return s.courses.ResolveByEmbedding(ctx, embedding)
}

// Search runs a filtered similarity search over the content index. A course
// name hint is resolved first; if resolution misses, the result is empty
// with a Reason rather than an error, so the model consumer sees the text.
// A nil limit falls back to the configured default; a zero limit is an
// explicit, observable empty result.
func (s *VectorStore) Search(
	ctx context.Context,
	query string,
	courseName *string,
	lessonNumber *int,
	limit *int,
) (models.SearchResults, error) {
	n := s.maxResults
	if limit != nil {
		n = *limit
	}
	if n <= 0 {
		return models.SearchResults{Reason: "search limit is zero"}, nil
	}

	var title *string
	if courseName != nil && *courseName != "" {
		resolved, err := s.ResolveCourseName(ctx, *courseName)
		if err != nil {
			return models.SearchResults{}, err
		}
		if resolved == "" {
			return models.SearchResults{
				Reason: fmt.Sprintf("No course found matching '%s'", *courseName),
			}, nil
		}
		title = &resolved
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return models.SearchResults{}, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := s.chunks.Search(ctx, embedding, title, lessonNumber, n)
	if err != nil {
		return models.SearchResults{}, fmt.Errorf("content search failed: %w", err)
	}

	results := models.SearchResults{}
	for _, row := range rows {
		results.Documents = append(results.Documents, row.Content)
		results.Metadata = append(results.Metadata, models.ChunkMetadata{
			CourseTitle:  row.CourseTitle,
			LessonNumber: row.LessonNumber,
		})
		results.Distances = append(results.Distances, row.Distance)
	}
	return results, nil
}

// CourseOutline resolves a course name and returns its outline, or nil when
// the name resolves to nothing
func (s *VectorStore) CourseOutline(ctx context.Context, name string) (*models.CourseOutline, error) {
	title, err := s.ResolveCourseName(ctx, name)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, nil
	}
	return s.courses.GetOutline(ctx, title)
}

// AddCourse embeds the course title and upserts the metadata row
func (s *VectorStore) AddCourse(ctx context.Context, course *models.Course) error {
	embeddings, err := s.embedder.EmbedDocuments(ctx, []string{course.Title})
	if err != nil {
		return fmt.Errorf("failed to embed course title: %w", err)
	}
	return s.courses.Upsert(ctx, course, embeddings[0])
}

// AddChunks embeds chunk contents in batch and upserts them into the
// content index. Idempotent: chunk ids are deterministic.
func (s *VectorStore) AddChunks(ctx context.Context, chunks []models.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	return s.chunks.UpsertChunks(ctx, chunks, embeddings)
}

// ExistingTitles returns the titles already present in the metadata index
func (s *VectorStore) ExistingTitles(ctx context.Context) (map[string]struct{}, error) {
	return s.courses.ExistingTitles(ctx)
}

// CourseCount returns the number of ingested courses
func (s *VectorStore) CourseCount(ctx context.Context) (int, error) {
	return s.courses.Count(ctx)
}

// CourseTitles returns all ingested course titles
func (s *VectorStore) CourseTitles(ctx context.Context) ([]string, error) {
	return s.courses.Titles(ctx)
}
