package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `Course Title: MCP: Build Rich-Context AI Apps
Course Link: https://example.com/courses/mcp
Course Instructor: Elie Schoppik

Lesson 0: Introduction
Lesson Link: https://example.com/courses/mcp/lesson-0
Welcome to the course on the Model Context Protocol.
We cover servers, clients and tools.

Lesson 1: Why MCP
Standardized context beats ad-hoc integrations.
`

func TestParseDocumentFull(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	course, err := p.ParseDocument(sampleDoc)
	require.NoError(t, err)

	assert.Equal(t, "MCP: Build Rich-Context AI Apps", course.Title)
	require.NotNil(t, course.Link)
	assert.Equal(t, "https://example.com/courses/mcp", *course.Link)
	require.NotNil(t, course.Instructor)
	assert.Equal(t, "Elie Schoppik", *course.Instructor)

	require.Len(t, course.Lessons, 2)

	first := course.Lessons[0]
	assert.Equal(t, 0, first.Number)
	assert.Equal(t, "Introduction", first.Title)
	require.NotNil(t, first.Link)
	assert.Equal(t, "https://example.com/courses/mcp/lesson-0", *first.Link)
	assert.Equal(t, "Welcome to the course on the Model Context Protocol.\nWe cover servers, clients and tools.", first.Content)

	second := course.Lessons[1]
	assert.Equal(t, 1, second.Number)
	assert.Equal(t, "Why MCP", second.Title)
	assert.Nil(t, second.Link)
	assert.Equal(t, "Standardized context beats ad-hoc integrations.", second.Content)
}

func TestParseDocumentMissingTitle(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	_, err := p.ParseDocument("Lesson 0: Orphan\nsome text\n")
	assert.ErrorIs(t, err, ErrMissingTitle)
}

func TestParseDocumentOptionalHeaderFields(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	course, err := p.ParseDocument("Course Title: Bare Minimum\n\nLesson 0: Only\nbody\n")
	require.NoError(t, err)
	assert.Equal(t, "Bare Minimum", course.Title)
	assert.Nil(t, course.Link)
	assert.Nil(t, course.Instructor)
}

func TestParseDocumentDiscardsPreamble(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	raw := "Course Title: With Preamble\n\nThis paragraph precedes any lesson.\n\nLesson 0: Start\nreal content\n"
	course, err := p.ParseDocument(raw)
	require.NoError(t, err)

	require.Len(t, course.Lessons, 1)
	assert.Equal(t, "real content", course.Lessons[0].Content)
}

func TestParseDocumentNoLessons(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	course, err := p.ParseDocument("Course Title: Outline Only\nCourse Instructor: Nobody\n")
	require.NoError(t, err)
	assert.Empty(t, course.Lessons)
}

func TestParseDocumentLessonLinkOnlyBeforeBody(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	// A "Lesson Link:" line appearing after body text is content, not metadata
	raw := "Course Title: Tricky\n\nLesson 0: Links\nThe syllabus says:\nLesson Link: https://example.com/not-metadata\n"
	course, err := p.ParseDocument(raw)
	require.NoError(t, err)

	require.Len(t, course.Lessons, 1)
	assert.Nil(t, course.Lessons[0].Link)
	assert.Contains(t, course.Lessons[0].Content, "Lesson Link: https://example.com/not-metadata")
}

func TestParseDocumentBlankLinesBetweenLessons(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	raw := "Course Title: Spaced\n\nLesson 0: A\n\n\nfirst\n\n\nLesson 1: B\nsecond\n"
	course, err := p.ParseDocument(raw)
	require.NoError(t, err)

	require.Len(t, course.Lessons, 2)
	assert.Equal(t, "first", course.Lessons[0].Content)
	assert.Equal(t, "second", course.Lessons[1].Content)
}
