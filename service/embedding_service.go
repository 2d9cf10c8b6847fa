package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/generative-ai-go/genai"
)

const (
	// DefaultEmbeddingModel produces 768-dimensional vectors, matching the
	// vector(768) columns both indexes are created with.
	DefaultEmbeddingModel = "text-embedding-004"

	maxRetries     = 3
	initialBackoff = time.Second
)

// Embedder converts text into the vector representation shared by both
// indexes. Queries and documents use different embedding task types, so the
// two cases are separate methods.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// GeminiEmbedder implements Embedder on top of the Gemini embedding API
type GeminiEmbedder struct {
	queryModel *genai.EmbeddingModel
	docModel   *genai.EmbeddingModel
}

// NewGeminiEmbedder creates an embedder using the given embedding model name
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}

	queryModel := client.EmbeddingModel(model)
	queryModel.TaskType = genai.TaskTypeRetrievalQuery

	docModel := client.EmbeddingModel(model)
	docModel.TaskType = genai.TaskTypeRetrievalDocument

	return &GeminiEmbedder{
		queryModel: queryModel,
		docModel:   docModel,
	}
}

// EmbedQuery embeds a retrieval query
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var embedding []float32
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		resp, err := e.queryModel.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to embed query after %d attempts: %w", maxRetries, err)
			}
			continue
		}
		embedding = resp.Embedding.Values
		break
	}

	normalizeVector(embedding)
	return embedding, nil
}

// EmbedDocuments embeds a batch of document texts in one API call
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := e.docModel.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}

	var resp *genai.BatchEmbedContentsResponse
	var err error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}
		resp, err = e.docModel.BatchEmbedContents(ctx, batch)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents after %d attempts: %w", maxRetries, err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: requested %d, got %d", len(texts), len(resp.Embeddings))
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		embeddings[i] = emb.Values
		normalizeVector(embeddings[i])
	}
	return embeddings, nil
}

// normalizeVector scales the vector to unit length in place so cosine
// distance behaves consistently regardless of model output scale
func normalizeVector(v []float32) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
