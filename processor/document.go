package processor

import (
	"regexp"
	"strconv"
	"strings"

	"coursechat-backend/models"
)

var lessonMarkerRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// ParseDocument parses a raw course document in the expected layout:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: <lesson title>
//	Lesson Link: <url>
//	<lesson body...>
//
// The title line is mandatory (ErrMissingTitle otherwise); link and
// instructor are optional. Text between the header and the first lesson
// marker is preamble and is discarded. Blank lines and trailing whitespace
// between lessons are tolerated.
func (p *DocumentProcessor) ParseDocument(raw string) (*models.Course, error) {
	lines := strings.Split(raw, "\n")

	course := &models.Course{}

	// Header: title, link and instructor may appear in the first few lines
	// in any order. Scan until the first lesson marker.
	bodyStart := len(lines)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if lessonMarkerRe.MatchString(trimmed) {
			bodyStart = i
			break
		}
		switch {
		case strings.HasPrefix(trimmed, "Course Title:"):
			course.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Title:"))
		case strings.HasPrefix(trimmed, "Course Link:"):
			if link := strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Link:")); link != "" {
				course.Link = &link
			}
		case strings.HasPrefix(trimmed, "Course Instructor:"):
			if instructor := strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Instructor:")); instructor != "" {
				course.Instructor = &instructor
			}
		}
	}

	if course.Title == "" {
		return nil, ErrMissingTitle
	}

	course.Lessons = parseLessons(lines[bodyStart:])
	return course, nil
}

// parseLessons walks the body region collecting lesson blocks. Each block
// starts at a "Lesson <n>: <title>" marker, optionally followed by a
// "Lesson Link:" line, and runs until the next marker or end of input.
func parseLessons(lines []string) []models.Lesson {
	var lessons []models.Lesson
	var current *models.Lesson
	var body []string
	bodyStarted := false

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(body, "\n"))
		lessons = append(lessons, *current)
		current = nil
		body = nil
		bodyStarted = false
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := lessonMarkerRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			number, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			current = &models.Lesson{Number: number, Title: strings.TrimSpace(m[2])}
			continue
		}
		if current == nil {
			// Preamble before the first lesson marker is discarded.
			continue
		}
		if !bodyStarted && strings.HasPrefix(trimmed, "Lesson Link:") {
			if link := strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:")); link != "" {
				current.Link = &link
			}
			continue
		}
		if trimmed != "" {
			bodyStarted = true
		}
		body = append(body, line)
	}
	flush()

	return lessons
}
