package mock

import (
	"context"
	"fmt"

	. "github.com/praxis-ai/reagent"
	"github.com/sashabaranov/go-openai"
)

// MockLLM implements the LLM interface with scripted responses for testing
type MockLLM struct {
	AskResponses                  []Fragment
	AskResponseIndex              int
	CreateChatCompletionResponses []openai.ChatCompletionResponse
	CreateChatCompletionIndex     int
	AskError                      error
	CreateChatCompletionError     error
	FragmentHistory               []Fragment
	Requests                      []openai.ChatCompletionRequest
}

func NewMockLLM() *MockLLM {
	return &MockLLM{
		AskResponses:                  []Fragment{},
		CreateChatCompletionResponses: []openai.ChatCompletionResponse{},
	}
}

func (m *MockLLM) Ask(ctx context.Context, f Fragment) (Fragment, error) {
	m.FragmentHistory = append(m.FragmentHistory, f)
	if m.AskError != nil {
		return Fragment{}, m.AskError
	}

	if m.AskResponseIndex >= len(m.AskResponses) {
		return Fragment{}, fmt.Errorf("no more Ask responses configured")
	}

	response := m.AskResponses[m.AskResponseIndex]
	m.AskResponseIndex++

	// Add the response to the fragment
	response.Messages = append(f.Messages, response.Messages...)
	response.ParentFragment = &f

	return response, nil
}

func (m *MockLLM) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.Requests = append(m.Requests, request)
	if m.CreateChatCompletionError != nil {
		return openai.ChatCompletionResponse{}, m.CreateChatCompletionError
	}

	if m.CreateChatCompletionIndex >= len(m.CreateChatCompletionResponses) {
		return openai.ChatCompletionResponse{}, fmt.Errorf("no more CreateChatCompletion responses configured")
	}

	response := m.CreateChatCompletionResponses[m.CreateChatCompletionIndex]
	m.CreateChatCompletionIndex++

	return response, nil
}

// Helper methods for setting up mock responses
func (m *MockLLM) SetAskResponse(content string) {
	fragment := NewEmptyFragment().AddMessage(AssistantMessageRole, content)
	m.AskResponses = append(m.AskResponses, fragment)
}

func (m *MockLLM) SetAskError(err error) {
	m.AskError = err
}

func (m *MockLLM) SetCreateChatCompletionResponse(response openai.ChatCompletionResponse) {
	m.CreateChatCompletionResponses = append(m.CreateChatCompletionResponses, response)
}

// AddCreateChatCompletionText scripts a plain assistant text response, which
// the tool selection loop reads as "no tool requested".
func (m *MockLLM) AddCreateChatCompletionText(content string) {
	m.SetCreateChatCompletionResponse(
		openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    AssistantMessageRole.String(),
						Content: content,
					},
				},
			},
		})
}

// AddCreateChatCompletionFunction scripts a tool call response.
func (m *MockLLM) AddCreateChatCompletionFunction(name, args string) {
	m.SetCreateChatCompletionResponse(
		openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role: AssistantMessageRole.String(),
						ToolCalls: []openai.ToolCall{
							{
								Type: openai.ToolTypeFunction,
								Function: openai.FunctionCall{
									Name:      name,
									Arguments: args,
								},
							},
						},
					},
				},
			},
		})
}

func (m *MockLLM) SetCreateChatCompletionError(err error) {
	m.CreateChatCompletionError = err
}
