package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// QueryService is the slice of the RAG service the HTTP layer depends on
type QueryService interface {
	Query(ctx context.Context, query, sessionID string) (string, []string, error)
	CreateSession() string
	Analytics(ctx context.Context) (int, []string, error)
}

// QueryHandler handles HTTP requests for course questions and stats
type QueryHandler struct {
	rag QueryService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(rag QueryService) *QueryHandler {
	return &QueryHandler{rag: rag}
}

// QueryRequest represents the request body for asking a question
type QueryRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

// QueryResponse represents the answer payload
type QueryResponse struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
}

// CourseStatsResponse represents the analytics payload
type CourseStatsResponse struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// Query handles POST /api/query. A missing session id starts a new session;
// the id is always echoed back so the client can continue the conversation.
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.rag.CreateSession()
	}

	answer, sources, err := h.rag.Query(c.Request.Context(), req.Query, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUERY_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if sources == nil {
		sources = []string{}
	}
	c.JSON(http.StatusOK, QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

// GetCourseStats handles GET /api/courses
func (h *QueryHandler) GetCourseStats(c *gin.Context) {
	count, titles, err := h.rag.Analytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if titles == nil {
		titles = []string{}
	}
	c.JSON(http.StatusOK, CourseStatsResponse{
		TotalCourses: count,
		CourseTitles: titles,
	})
}
