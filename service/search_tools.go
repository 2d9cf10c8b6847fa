package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coursechat-backend/models"

	"github.com/google/generative-ai-go/genai"
)

// ErrToolNotFound is returned when the model requests a tool name that is
// not registered. The orchestrator folds this into the turn instead of
// crashing it.
var ErrToolNotFound = errors.New("tool not found")

// Tool is one callable unit exposed to the model. Execute returns the
// formatted string the model sees; expected misses (nothing found) are part
// of that string, and only upstream failures surface as errors. Source
// labels are retained per tool and drained by the ToolManager at the end of
// a turn.
type Tool interface {
	Name() string
	Declaration() *genai.FunctionDeclaration
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
	LastSources() []string
	ResetSources()
}

// ContentSearcher is the slice of the vector store the search tool needs
type ContentSearcher interface {
	Search(ctx context.Context, query string, courseName *string, lessonNumber *int, limit *int) (models.SearchResults, error)
}

// OutlineProvider is the slice of the vector store the outline tool needs
type OutlineProvider interface {
	CourseOutline(ctx context.Context, name string) (*models.CourseOutline, error)
}

// CourseSearchTool lets the model search course content with optional
// course-name and lesson-number filters
type CourseSearchTool struct {
	store       ContentSearcher
	lastSources []string
}

// NewCourseSearchTool creates a search tool over the given store
func NewCourseSearchTool(store ContentSearcher) *CourseSearchTool {
	return &CourseSearchTool{store: store}
}

// Name returns the tool name declared to the model
func (t *CourseSearchTool) Name() string { return "search_course_content" }

// Declaration returns the function schema for the model request
func (t *CourseSearchTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: "Search course materials with smart course name matching and lesson filtering",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeString,
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        genai.TypeString,
					Description: "Course title (partial matches work, e.g. 'MCP')",
				},
				"lesson_number": {
					Type:        genai.TypeInteger,
					Description: "Specific lesson number to search within",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Execute runs the search and formats the results for the model. The
// retained source list is overwritten on every call (last-call-wins), so
// the sources reported for a turn always belong to its final search.
func (t *CourseSearchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	query, _ := args["query"].(string)
	courseName := stringArg(args, "course_name")
	lessonNumber := intArg(args, "lesson_number")

	results, err := t.store.Search(ctx, query, courseName, lessonNumber, nil)
	if err != nil {
		return "", err
	}

	if results.IsEmpty() {
		t.lastSources = nil
		if results.Reason != "" {
			return results.Reason, nil
		}
		msg := "No relevant content found"
		if courseName != nil {
			msg += fmt.Sprintf(" in course '%s'", *courseName)
		}
		if lessonNumber != nil {
			msg += fmt.Sprintf(" in lesson %d", *lessonNumber)
		}
		return msg + ".", nil
	}

	var blocks []string
	sources := make([]string, 0, len(results.Documents))
	for i, doc := range results.Documents {
		label := results.Metadata[i].Label()
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, doc))
		sources = append(sources, label)
	}
	t.lastSources = sources

	return strings.Join(blocks, "\n\n"), nil
}

// LastSources returns the labels recorded by the most recent call
func (t *CourseSearchTool) LastSources() []string { return t.lastSources }

// ResetSources clears the retained labels
func (t *CourseSearchTool) ResetSources() { t.lastSources = nil }

// CourseOutlineTool lets the model fetch a course's lesson list without
// running a content search
type CourseOutlineTool struct {
	store       OutlineProvider
	lastSources []string
}

// NewCourseOutlineTool creates an outline tool over the given store
func NewCourseOutlineTool(store OutlineProvider) *CourseOutlineTool {
	return &CourseOutlineTool{store: store}
}

// Name returns the tool name declared to the model
func (t *CourseOutlineTool) Name() string { return "get_course_outline" }

// Declaration returns the function schema for the model request
func (t *CourseOutlineTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: "Get a course's title, link and complete lesson list",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"course_name": {
					Type:        genai.TypeString,
					Description: "Course title (partial matches work)",
				},
			},
			Required: []string{"course_name"},
		},
	}
}

// Execute resolves the course name and formats its outline
func (t *CourseOutlineTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	name, _ := args["course_name"].(string)

	outline, err := t.store.CourseOutline(ctx, name)
	if err != nil {
		return "", err
	}
	if outline == nil {
		t.lastSources = nil
		return fmt.Sprintf("No course found matching '%s'", name), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", outline.Title)
	if outline.Link != nil {
		fmt.Fprintf(&b, "Course Link: %s\n", *outline.Link)
	}
	fmt.Fprintf(&b, "\nLessons (%d):\n", len(outline.Lessons))
	for _, lesson := range outline.Lessons {
		fmt.Fprintf(&b, "  Lesson %d: %s\n", lesson.Number, lesson.Title)
	}

	t.lastSources = []string{outline.Title}
	return b.String(), nil
}

// LastSources returns the labels recorded by the most recent call
func (t *CourseOutlineTool) LastSources() []string { return t.lastSources }

// ResetSources clears the retained labels
func (t *CourseOutlineTool) ResetSources() { t.lastSources = nil }

func stringArg(args map[string]interface{}, key string) *string {
	if v, ok := args[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

func intArg(args map[string]interface{}, key string) *int {
	switch v := args[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	}
	return nil
}
