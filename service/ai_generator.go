package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coursechat-backend/models"

	"github.com/google/generative-ai-go/genai"
)

// DefaultGenerationModel is used when GEMINI_MODEL is not configured
const DefaultGenerationModel = "gemini-2.0-flash"

const noResponseFallback = "No response generated"

// systemPrompt enumerates the behavioral constraints for answering course
// questions. Static so it is not rebuilt per call.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content with access to tools for course information.

Tool Usage:
- get_course_outline: use for questions about course structure, lesson lists or course overview. Return the outline as provided by the tool.
- search_course_content: use for questions about specific course content or detailed educational materials. Synthesize search results into accurate, fact-based responses.
- You may use at most one tool per user question.
- If a tool yields no results, state this clearly without offering alternatives.

Response Protocol:
- General knowledge questions: answer from existing knowledge without searching.
- Course-specific questions: search first, then answer.
- No meta-commentary: provide direct answers only, with no reasoning process or search explanations. Do not mention "based on the search results".

All responses must be brief, concise and focused. Provide only the direct answer to what was asked.`

// ModelClient abstracts the Gemini generation call so the orchestrator can
// be tested without the live API. Contents carries history plus the current
// message; tools may be nil to force a plain answer.
type ModelClient interface {
	GenerateContent(ctx context.Context, system string, contents []*genai.Content, tools []*genai.Tool) (*genai.GenerateContentResponse, error)
}

// GeminiModel implements ModelClient against the Gemini API
type GeminiModel struct {
	client    *genai.Client
	modelName string
}

// NewGeminiModel creates a ModelClient for the given model name
func NewGeminiModel(client *genai.Client, modelName string) *GeminiModel {
	if modelName == "" {
		modelName = DefaultGenerationModel
	}
	return &GeminiModel{client: client, modelName: modelName}
}

// GenerateContent sends one chat request: all contents but the last are
// history, the last is the message being sent
func (g *GeminiModel) GenerateContent(
	ctx context.Context,
	system string,
	contents []*genai.Content,
	tools []*genai.Tool,
) (*genai.GenerateContentResponse, error) {
	if len(contents) == 0 {
		return nil, errors.New("no content to send")
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0)
	model.SetMaxOutputTokens(800)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	if len(tools) > 0 {
		model.Tools = tools
	}

	chat := model.StartChat()
	chat.History = contents[:len(contents)-1]
	return chat.SendMessage(ctx, contents[len(contents)-1].Parts...)
}

// AIGenerator drives the tool-mediated generation loop: one initial model
// call, at most one tool execution, and one follow-up call with the tool
// result folded in.
type AIGenerator struct {
	client ModelClient
}

// NewAIGenerator creates a generator over the given model client
func NewAIGenerator(client ModelClient) *AIGenerator {
	return &AIGenerator{client: client}
}

// Generate answers one user query. The conversation history is replayed as
// chat turns ahead of the query. If the model's first response requests tool
// calls, only the first request is executed (one tool round per turn) and
// exactly one follow-up request produces the final text. An unknown tool
// name degrades to an explanatory tool result instead of failing the turn.
func (g *AIGenerator) Generate(
	ctx context.Context,
	query string,
	history []models.Exchange,
	tools []*genai.Tool,
	manager *ToolManager,
) (string, error) {
	contents := historyContents(history)
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []genai.Part{genai.Text(query)},
	})

	resp, err := g.client.GenerateContent(ctx, systemPrompt, contents, tools)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	call, ok := firstFunctionCall(resp)
	if !ok || manager == nil {
		return responseText(resp), nil
	}

	result, err := manager.Execute(ctx, call.Name, call.Args)
	if err != nil {
		if !errors.Is(err, ErrToolNotFound) {
			return "", err
		}
		result = fmt.Sprintf("Tool '%s' is not available.", call.Name)
	}

	contents = append(contents, resp.Candidates[0].Content)
	contents = append(contents, &genai.Content{
		Role: "user",
		Parts: []genai.Part{genai.FunctionResponse{
			Name:     call.Name,
			Response: map[string]interface{}{"content": result},
		}},
	})

	// Follow-up carries no tool declarations, which forces a text answer.
	final, err := g.client.GenerateContent(ctx, systemPrompt, contents, nil)
	if err != nil {
		return "", fmt.Errorf("follow-up model call failed: %w", err)
	}
	return responseText(final), nil
}

// historyContents replays prior exchanges as alternating user/model turns
func historyContents(history []models.Exchange) []*genai.Content {
	var contents []*genai.Content
	for _, ex := range history {
		contents = append(contents,
			&genai.Content{Role: "user", Parts: []genai.Part{genai.Text(ex.Question)}},
			&genai.Content{Role: "model", Parts: []genai.Part{genai.Text(ex.Answer)}},
		)
	}
	return contents
}

// firstFunctionCall returns the first tool-call request in the response, if
// any. Later requests in the same response are deliberately ignored.
func firstFunctionCall(resp *genai.GenerateContentResponse) (genai.FunctionCall, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return genai.FunctionCall{}, false
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			return call, true
		}
	}
	return genai.FunctionCall{}, false
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return noResponseFallback
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return noResponseFallback
	}
	return b.String()
}
