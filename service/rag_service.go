package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"coursechat-backend/models"
	"coursechat-backend/processor"
	"coursechat-backend/storage"
)

// RAGService ties the pipeline together: documents go in through the
// processor and vector store, questions go out through the tool-equipped
// generator.
type RAGService struct {
	store     *VectorStore
	generator *AIGenerator
	sessions  *SessionManager
	processor *processor.DocumentProcessor
}

// RAGOption is a functional option for RAGService
type RAGOption func(*RAGService)

// WithVectorStore sets the dual-index vector store
func WithVectorStore(store *VectorStore) RAGOption {
	return func(s *RAGService) {
		s.store = store
	}
}

// WithGenerator sets the generation orchestrator
func WithGenerator(generator *AIGenerator) RAGOption {
	return func(s *RAGService) {
		s.generator = generator
	}
}

// WithSessionManager sets the conversation history store
func WithSessionManager(sessions *SessionManager) RAGOption {
	return func(s *RAGService) {
		s.sessions = sessions
	}
}

// WithProcessor sets the document processor
func WithProcessor(p *processor.DocumentProcessor) RAGOption {
	return func(s *RAGService) {
		s.processor = p
	}
}

// NewRAGService creates a new RAG service
func NewRAGService(opts ...RAGOption) *RAGService {
	s := &RAGService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.processor == nil {
		s.processor = processor.NewDocumentProcessor(0, 0)
	}
	if s.sessions == nil {
		s.sessions = NewSessionManager(0)
	}
	return s
}

// CreateSession starts a new conversation session
func (s *RAGService) CreateSession() string {
	return s.sessions.CreateSession()
}

// Query answers one user question. Tools are built fresh for the turn so
// source labels from earlier turns can never bleed in; sources are drained
// exactly once after generation, and the exchange is recorded only on
// success.
func (s *RAGService) Query(ctx context.Context, query, sessionID string) (string, []string, error) {
	manager := NewToolManager()
	manager.Register(NewCourseSearchTool(s.store))
	manager.Register(NewCourseOutlineTool(s.store))

	history := s.sessions.GetHistory(sessionID)
	prompt := fmt.Sprintf("Answer this question about course materials: %s", query)

	answer, err := s.generator.Generate(ctx, prompt, history, manager.Declarations(), manager)
	if err != nil {
		return "", nil, err
	}

	sources := manager.DrainSources()
	s.sessions.AddExchange(sessionID, query, answer)
	return answer, sources, nil
}

// AddCourseDocument parses one raw document and indexes its metadata and
// chunks. Returns the parsed course and the number of chunks indexed.
func (s *RAGService) AddCourseDocument(ctx context.Context, raw string) (*models.Course, int, error) {
	course, err := s.processor.ParseDocument(raw)
	if err != nil {
		return nil, 0, err
	}

	if err := s.store.AddCourse(ctx, course); err != nil {
		return nil, 0, fmt.Errorf("failed to index course %s: %w", course.Title, err)
	}

	chunks := s.processor.BuildChunks(course)
	if err := s.store.AddChunks(ctx, chunks); err != nil {
		return nil, 0, fmt.Errorf("failed to index chunks for %s: %w", course.Title, err)
	}
	return course, len(chunks), nil
}

// AddCourseFolder ingests every document from the source, skipping courses
// whose titles are already indexed. Malformed documents are logged and
// skipped so one bad file never blocks the rest. Returns the number of
// courses and chunks added.
func (s *RAGService) AddCourseFolder(ctx context.Context, src storage.DocumentSource) (int, int, error) {
	names, err := src.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	existing, err := s.store.ExistingTitles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load existing course titles: %w", err)
	}

	coursesAdded, chunksAdded := 0, 0
	for _, name := range names {
		raw, err := readDocument(ctx, src, name)
		if err != nil {
			log.Printf("Skipping %s: %v", name, err)
			continue
		}

		course, err := s.processor.ParseDocument(raw)
		if err != nil {
			if errors.Is(err, processor.ErrMissingTitle) {
				log.Printf("Skipping %s: %v", name, err)
				continue
			}
			return coursesAdded, chunksAdded, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		if _, ok := existing[course.Title]; ok {
			continue
		}

		if err := s.store.AddCourse(ctx, course); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("failed to index course %s: %w", course.Title, err)
		}
		chunks := s.processor.BuildChunks(course)
		if err := s.store.AddChunks(ctx, chunks); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("failed to index chunks for %s: %w", course.Title, err)
		}

		existing[course.Title] = struct{}{}
		coursesAdded++
		chunksAdded += len(chunks)
		log.Printf("Indexed course %q (%d chunks)", course.Title, len(chunks))
	}

	return coursesAdded, chunksAdded, nil
}

// Analytics returns the course count and title list for the stats endpoint
func (s *RAGService) Analytics(ctx context.Context) (int, []string, error) {
	count, err := s.store.CourseCount(ctx)
	if err != nil {
		return 0, nil, err
	}
	titles, err := s.store.CourseTitles(ctx)
	if err != nil {
		return 0, nil, err
	}
	return count, titles, nil
}

func readDocument(ctx context.Context, src storage.DocumentSource, name string) (string, error) {
	rc, err := src.Read(ctx, name)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}
