package service

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// ToolManager routes model tool-call requests to registered tools and
// aggregates their source labels across a turn. One ToolManager serves one
// turn: sources are drained exactly once, after generation, so provenance
// never leaks between turns.
type ToolManager struct {
	tools map[string]Tool
	order []string
}

// NewToolManager creates an empty tool registry
func NewToolManager() *ToolManager {
	return &ToolManager{tools: make(map[string]Tool)}
}

// Register adds a tool under its declared name. Registering the same name
// twice replaces the earlier tool.
func (m *ToolManager) Register(tool Tool) {
	name := tool.Name()
	if _, exists := m.tools[name]; !exists {
		m.order = append(m.order, name)
	}
	m.tools[name] = tool
}

// Declarations returns the schemas of all registered tools for inclusion in
// a model request
func (m *ToolManager) Declarations() []*genai.Tool {
	if len(m.order) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(m.order))
	for _, name := range m.order {
		decls = append(decls, m.tools[name].Declaration())
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// Execute forwards a tool-call request to the matching tool. An unregistered
// name yields ErrToolNotFound.
func (m *ToolManager) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	tool, ok := m.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool.Execute(ctx, args)
}

// DrainSources returns the source labels accumulated by all registered
// tools, in registration then production order, and clears them. Called
// exactly once per turn after any tool execution has finished.
func (m *ToolManager) DrainSources() []string {
	var sources []string
	for _, name := range m.order {
		tool := m.tools[name]
		sources = append(sources, tool.LastSources()...)
		tool.ResetSources()
	}
	return sources
}
