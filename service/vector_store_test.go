package service

import (
	"context"
	"errors"
	"testing"

	"coursechat-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns a fixed-size vector for any input and records the
// texts it was asked to embed
type fakeEmbedder struct {
	queries []string
	docs    []string
	err     error
}

func (e *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.queries = append(e.queries, text)
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.docs = append(e.docs, texts...)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

// fakeCourseIndex serves canned resolution and outline data
type fakeCourseIndex struct {
	resolveTo string
	outline   *models.CourseOutline
	titles    []string
	upserts   []string
}

func (f *fakeCourseIndex) Upsert(ctx context.Context, course *models.Course, embedding []float32) error {
	f.upserts = append(f.upserts, course.Title)
	return nil
}

func (f *fakeCourseIndex) ResolveByEmbedding(ctx context.Context, embedding []float32) (string, error) {
	return f.resolveTo, nil
}

func (f *fakeCourseIndex) GetOutline(ctx context.Context, title string) (*models.CourseOutline, error) {
	return f.outline, nil
}

func (f *fakeCourseIndex) ExistingTitles(ctx context.Context) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(f.titles))
	for _, title := range f.titles {
		existing[title] = struct{}{}
	}
	return existing, nil
}

func (f *fakeCourseIndex) Titles(ctx context.Context) ([]string, error) {
	return f.titles, nil
}

func (f *fakeCourseIndex) Count(ctx context.Context) (int, error) {
	return len(f.titles), nil
}

// fakeChunkIndex records search filters and returns canned rows
type fakeChunkIndex struct {
	rows []models.ScoredChunk
	err  error

	lastTitle  *string
	lastLesson *int
	lastLimit  int
	upserted   []models.CourseChunk
}

func (f *fakeChunkIndex) UpsertChunks(ctx context.Context, chunks []models.CourseChunk, embeddings [][]float32) error {
	f.upserted = append(f.upserted, chunks...)
	return nil
}

func (f *fakeChunkIndex) Search(
	ctx context.Context,
	embedding []float32,
	courseTitle *string,
	lessonNumber *int,
	limit int,
) ([]models.ScoredChunk, error) {
	f.lastTitle = courseTitle
	f.lastLesson = lessonNumber
	f.lastLimit = limit
	return f.rows, f.err
}

func newTestStore(courses *fakeCourseIndex, chunks *fakeChunkIndex, opts ...VectorStoreOption) *VectorStore {
	base := []VectorStoreOption{
		StoreWithCourseIndex(courses),
		StoreWithChunkIndex(chunks),
		StoreWithEmbedder(&fakeEmbedder{}),
	}
	return NewVectorStore(append(base, opts...)...)
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestSearchMapsRows(t *testing.T) {
	chunks := &fakeChunkIndex{
		rows: []models.ScoredChunk{
			{Content: "first", CourseTitle: "Go Basics", LessonNumber: intPtr(1), Distance: 0.1},
			{Content: "second", CourseTitle: "Go Basics", LessonNumber: intPtr(2), Distance: 0.3},
		},
	}
	store := newTestStore(&fakeCourseIndex{}, chunks)

	results, err := store.Search(context.Background(), "channels", nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, results.Documents)
	assert.Equal(t, []string{"Go Basics - Lesson 1", "Go Basics - Lesson 2"}, results.Labels())
	assert.Equal(t, []float64{0.1, 0.3}, results.Distances)
	assert.False(t, results.IsEmpty())
}

func TestSearchDefaultLimit(t *testing.T) {
	chunks := &fakeChunkIndex{}
	store := newTestStore(&fakeCourseIndex{}, chunks)

	_, err := store.Search(context.Background(), "q", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxResults, chunks.lastLimit)
}

func TestSearchExplicitLimit(t *testing.T) {
	chunks := &fakeChunkIndex{}
	store := newTestStore(&fakeCourseIndex{}, chunks)

	_, err := store.Search(context.Background(), "q", nil, nil, intPtr(2))
	require.NoError(t, err)
	assert.Equal(t, 2, chunks.lastLimit)
}

func TestSearchZeroLimitIsExplicitEmpty(t *testing.T) {
	store := newTestStore(&fakeCourseIndex{}, &fakeChunkIndex{}, StoreWithMaxResults(0))

	results, err := store.Search(context.Background(), "q", nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, results.IsEmpty())
	assert.Equal(t, "search limit is zero", results.Reason)
}

func TestSearchResolvesCourseNameFilter(t *testing.T) {
	chunks := &fakeChunkIndex{}
	store := newTestStore(&fakeCourseIndex{resolveTo: "MCP: Build Rich-Context AI Apps"}, chunks)

	_, err := store.Search(context.Background(), "q", strPtr("MCP"), intPtr(3), nil)
	require.NoError(t, err)

	require.NotNil(t, chunks.lastTitle)
	assert.Equal(t, "MCP: Build Rich-Context AI Apps", *chunks.lastTitle)
	require.NotNil(t, chunks.lastLesson)
	assert.Equal(t, 3, *chunks.lastLesson)
}

func TestSearchCourseResolutionMiss(t *testing.T) {
	chunks := &fakeChunkIndex{}
	store := newTestStore(&fakeCourseIndex{resolveTo: ""}, chunks)

	results, err := store.Search(context.Background(), "q", strPtr("Nonexistent"), nil, nil)
	require.NoError(t, err)

	assert.True(t, results.IsEmpty())
	assert.Equal(t, "No course found matching 'Nonexistent'", results.Reason)
	// The content index is never touched on a resolution miss
	assert.Equal(t, 0, chunks.lastLimit)
}

func TestSearchPropagatesIndexError(t *testing.T) {
	indexErr := errors.New("connection refused")
	store := newTestStore(&fakeCourseIndex{}, &fakeChunkIndex{err: indexErr})

	_, err := store.Search(context.Background(), "q", nil, nil, nil)
	assert.ErrorIs(t, err, indexErr)
}

func TestCourseOutlineMissReturnsNil(t *testing.T) {
	store := newTestStore(&fakeCourseIndex{resolveTo: ""}, &fakeChunkIndex{})

	outline, err := store.CourseOutline(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, outline)
}

func TestAddChunksEmbedsContents(t *testing.T) {
	embedder := &fakeEmbedder{}
	chunks := &fakeChunkIndex{}
	store := NewVectorStore(
		StoreWithCourseIndex(&fakeCourseIndex{}),
		StoreWithChunkIndex(chunks),
		StoreWithEmbedder(embedder),
	)

	err := store.AddChunks(context.Background(), []models.CourseChunk{
		{Content: "one", CourseTitle: "T", ChunkIndex: 0},
		{Content: "two", CourseTitle: "T", ChunkIndex: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two"}, embedder.docs)
	assert.Len(t, chunks.upserted, 2)
}

func TestAddChunksEmptyIsNoop(t *testing.T) {
	store := newTestStore(&fakeCourseIndex{}, &fakeChunkIndex{})

	assert.NoError(t, store.AddChunks(context.Background(), nil))
}
