package models

import "fmt"

// ChunkMetadata identifies where a retrieved chunk came from
type ChunkMetadata struct {
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
}

// Label returns the display string for a retrieved chunk, e.g.
// "Intro to MCP - Lesson 1". Course-level chunks carry no lesson suffix.
func (m ChunkMetadata) Label() string {
	if m.LessonNumber == nil {
		return m.CourseTitle
	}
	return fmt.Sprintf("%s - Lesson %d", m.CourseTitle, *m.LessonNumber)
}

// ScoredChunk is one row returned by the content index: chunk text, its
// source metadata and the vector similarity distance.
type ScoredChunk struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	Distance     float64
}

// SearchResults holds the ordered results of one content search. An empty
// result set is a valid state, not an error; Reason explains why it is empty
// (e.g. a course name hint that resolved to nothing) so an LLM consumer can
// react to it.
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMetadata
	Distances []float64
	Reason    string
}

// IsEmpty reports whether the search matched no chunks
func (r SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}

// Labels returns one source label per result, in result order
func (r SearchResults) Labels() []string {
	if len(r.Metadata) == 0 {
		return nil
	}
	labels := make([]string, 0, len(r.Metadata))
	for _, m := range r.Metadata {
		labels = append(labels, m.Label())
	}
	return labels
}
