package models

import (
	"fmt"

	"github.com/google/uuid"
)

// CourseChunk represents one retrievable unit of course text stored in the
// content index
type CourseChunk struct {
	Content      string `json:"content"`
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
}

// ID derives the chunk's synthetic id from (course title, lesson number,
// chunk index). The same chunk always maps to the same id, so re-ingesting a
// document is an idempotent upsert rather than a duplicate insert.
func (c CourseChunk) ID() uuid.UUID {
	lesson := -1
	if c.LessonNumber != nil {
		lesson = *c.LessonNumber
	}
	name := fmt.Sprintf("%s/%d/%d", c.CourseTitle, lesson, c.ChunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}
