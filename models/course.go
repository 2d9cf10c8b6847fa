package models

// Lesson represents a single lesson within a course
type Lesson struct {
	Number  int     `json:"lesson_number"`
	Title   string  `json:"lesson_title"`
	Link    *string `json:"lesson_link,omitempty"`
	Content string  `json:"-"`
}

// Course represents a structured course document.
// Title is the unique identifier: a course whose title already exists in the
// metadata index is never re-ingested.
type Course struct {
	Title      string   `json:"title"`
	Link       *string  `json:"course_link,omitempty"`
	Instructor *string  `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// CourseOutline is the course-level view returned by the outline tool:
// title, link and the lesson list without lesson content.
type CourseOutline struct {
	Title   string   `json:"title"`
	Link    *string  `json:"course_link,omitempty"`
	Lessons []Lesson `json:"lessons"`
}
