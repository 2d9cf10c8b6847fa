package processor

import (
	"errors"
	"fmt"

	"coursechat-backend/models"
)

// Default chunking parameters, matching the values the course corpus was
// originally indexed with
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// ErrMissingTitle is returned when a document has no course title line.
// The document is malformed and should be skipped; ingestion of other
// documents continues.
var ErrMissingTitle = errors.New("document missing course title")

// DocumentProcessor parses course documents and splits lesson text into
// overlapping chunks sized for retrieval
type DocumentProcessor struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewDocumentProcessor creates a document processor with the given chunk size
// and overlap. Invalid values fall back to the defaults; overlap must stay
// below chunk size.
func NewDocumentProcessor(chunkSize, chunkOverlap int) *DocumentProcessor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 8
	}
	return &DocumentProcessor{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	}
}

// BuildChunks converts a parsed course into the full chunk sequence for the
// content index: one course-level summary chunk, then the chunks of each
// lesson in order. The first chunk of every lesson is prefixed with a
// positional marker so retrieved text carries its lesson context without a
// separate metadata lookup.
func (p *DocumentProcessor) BuildChunks(course *models.Course) []models.CourseChunk {
	var chunks []models.CourseChunk

	summary := fmt.Sprintf("Course %s", course.Title)
	if course.Instructor != nil && *course.Instructor != "" {
		summary = fmt.Sprintf("%s taught by %s", summary, *course.Instructor)
	}
	chunks = append(chunks, models.CourseChunk{
		Content:     summary,
		CourseTitle: course.Title,
		ChunkIndex:  0,
	})

	for i := range course.Lessons {
		lesson := course.Lessons[i]
		pieces := p.ChunkText(lesson.Content)
		for idx, piece := range pieces {
			if idx == 0 {
				piece = fmt.Sprintf("Lesson %d content: %s", lesson.Number, piece)
			}
			n := lesson.Number
			chunks = append(chunks, models.CourseChunk{
				Content:      piece,
				CourseTitle:  course.Title,
				LessonNumber: &n,
				ChunkIndex:   idx,
			})
		}
	}

	return chunks
}
