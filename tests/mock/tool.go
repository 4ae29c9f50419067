package mock

import (
	"context"

	. "github.com/praxis-ai/reagent"
)

// MockTool implements the ToolRunner interface for testing
type MockTool struct {
	runResults []string
	runError   error
	runIndex   int
}

func NewMockTool(name, description string) ToolDefinitionInterface {
	return &ToolDefinition[map[string]any]{
		ToolRunner:  &MockTool{},
		Name:        name,
		Description: description,
		InputArguments: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (m *MockTool) Run(ctx context.Context, args map[string]any) (string, error) {
	if m.runError != nil {
		return "", m.runError
	}
	defer func() {
		m.runIndex++
	}()
	return m.runResults[m.runIndex], nil
}

func (m *MockTool) SetRunResult(result string) {
	m.runResults = append(m.runResults, result)
}

func (m *MockTool) SetRunError(err error) {
	m.runError = err
}

// GetMockTool extracts the MockTool from a ToolDefinition (if it contains one)
func GetMockTool(toolDef ToolDefinitionInterface) *MockTool {
	if toolDefT, ok := toolDef.(*ToolDefinition[map[string]any]); ok {
		if mockTool, ok := toolDefT.ToolRunner.(*MockTool); ok {
			return mockTool
		}
	}
	return nil
}

// SetRunResult sets the result for a mock tool within a ToolDefinition
func SetRunResult(toolDef ToolDefinitionInterface, result string) {
	if mockTool := GetMockTool(toolDef); mockTool != nil {
		mockTool.SetRunResult(result)
	}
}

// SetRunError sets an error for a mock tool within a ToolDefinition
func SetRunError(toolDef ToolDefinitionInterface, err error) {
	if mockTool := GetMockTool(toolDef); mockTool != nil {
		mockTool.SetRunError(err)
	}
}
