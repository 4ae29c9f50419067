package reagent

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"github.com/praxis-ai/reagent/structures"
	"github.com/sashabaranov/go-openai"
)

type MessageRole string

const (
	SystemMessageRole    MessageRole = "system"
	UserMessageRole      MessageRole = "user"
	AssistantMessageRole MessageRole = "assistant"
	ToolMessageRole      MessageRole = "tool"
)

func (m MessageRole) String() string {
	return string(m)
}

// Status tracks what happened to a Fragment while it went through an agent run.
type Status struct {
	Iterations  int
	ToolsCalled Tools
	ToolResults []ToolStatus
}

// Fragment is a piece of conversation. Methods return new copies, leaving the
// receiver untouched, so fragments can be chained and branched freely.
type Fragment struct {
	Messages       []openai.ChatCompletionMessage
	ParentFragment *Fragment
	Status         Status
	Multimedia     []Multimedia
}

func NewEmptyFragment() Fragment {
	return Fragment{}
}

func NewFragment(messages ...openai.ChatCompletionMessage) Fragment {
	return Fragment{
		Messages: messages,
	}
}

// TODO: Video and Audio input
type Multimedia interface {
	URL() string
}

func (f Fragment) AddMessage(role MessageRole, content string, mm ...Multimedia) Fragment {
	chatCompletionMessage := openai.ChatCompletionMessage{
		Role: role.String(),
	}

	if len(mm) > 0 {
		multiContent := []openai.ChatMessagePart{
			{
				Text: content,
				Type: openai.ChatMessagePartTypeText,
			},
		}

		for _, img := range mm {
			f.Multimedia = append(f.Multimedia, img)
			multiContent = append(multiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: img.URL(),
				},
			})
		}
		chatCompletionMessage.MultiContent = multiContent
	} else {
		chatCompletionMessage.Content = content
	}

	f.Messages = append(slices.Clone(f.Messages), chatCompletionMessage)

	return f
}

func (f Fragment) AddStartMessage(role MessageRole, content string) Fragment {
	f.Messages = append([]openai.ChatCompletionMessage{
		{
			Role:    role.String(),
			Content: content,
		},
	}, f.Messages...)
	return f
}

// AddToolResult appends the output of a tool call, correlated to the tool call ID.
func (f Fragment) AddToolResult(name, content, toolCallID string) Fragment {
	f.Messages = append(slices.Clone(f.Messages), openai.ChatCompletionMessage{
		Role:       ToolMessageRole.String(),
		Name:       name,
		Content:    content,
		ToolCallID: toolCallID,
	})
	return f
}

// ExtractStructure coerces the conversation into the provided JSON schema by
// forcing the model to call a "json" function, and unmarshals the arguments
// into the structure destination object.
func (f Fragment) ExtractStructure(ctx context.Context, llm LLM, s structures.Structure) error {
	toolName := "json"
	messages := slices.Clone(f.Messages)

	decision := openai.ChatCompletionRequest{
		Messages: messages,
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Strict:     true,
					Name:       toolName,
					Parameters: s.Schema,
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: toolName},
		},
	}

	resp, err := llm.CreateChatCompletion(ctx, decision)
	if err != nil {
		return err
	}

	if len(resp.Choices) != 1 {
		return fmt.Errorf("no choices: %d", len(resp.Choices))
	}

	msg := resp.Choices[0].Message

	if len(msg.ToolCalls) == 0 {
		return fmt.Errorf("no tool calls: %d", len(msg.ToolCalls))
	}

	return json.Unmarshal([]byte(normalizeArguments(msg.ToolCalls[0].Function.Arguments)), s.Object)
}

// ToolArguments is a tool call decoded from the model response.
type ToolArguments struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// SelectTool lets the LLM pick a tool from the conversation via native
// function calling. ErrNoToolSelected is returned when the model did not
// request any tool. The returned fragment carries the assistant tool-call
// message.
func (f Fragment) SelectTool(ctx context.Context, llm LLM, availableTools Tools, forceTool string) (Fragment, *ToolArguments, error) {
	messages := slices.Clone(f.Messages)
	decision := openai.ChatCompletionRequest{
		Messages: messages,
		Tools:    availableTools.ToOpenAI(),
	}

	if forceTool != "" {
		decision.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: forceTool},
		}
	}

	resp, err := llm.CreateChatCompletion(ctx, decision)
	if err != nil {
		return Fragment{}, nil, err
	}

	if len(resp.Choices) != 1 {
		return Fragment{}, nil, fmt.Errorf("no choices: %d", len(resp.Choices))
	}

	if len(resp.Choices[0].Message.ToolCalls) == 0 {
		xlog.Debug("LLM did not select any tool", "response", resp.Choices[0].Message)
		return f, nil, ErrNoToolSelected
	}

	toolCall := resp.Choices[0].Message.ToolCalls[0]
	arguments := make(map[string]any)

	if err := json.Unmarshal([]byte(normalizeArguments(toolCall.Function.Arguments)), &arguments); err != nil {
		return Fragment{}, nil, fmt.Errorf("failed to parse tool call arguments: %w", err)
	}

	callID := toolCall.ID
	if callID == "" {
		callID = uuid.NewString()
	}

	f.Messages = append(slices.Clone(f.Messages), openai.ChatCompletionMessage{
		Role: AssistantMessageRole.String(),
		ToolCalls: []openai.ToolCall{
			{
				ID:   callID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      toolCall.Function.Name,
					Arguments: toolCall.Function.Arguments,
				},
			},
		},
	})

	return f, &ToolArguments{ID: callID, Name: toolCall.Function.Name, Arguments: arguments}, nil
}

// Some models return an empty string instead of "{}" for tools without arguments.
func normalizeArguments(args string) string {
	if strings.TrimSpace(args) == "" {
		return "{}"
	}
	return args
}

func (f Fragment) String() string {
	var str strings.Builder
	for _, msg := range f.Messages {
		str.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		if len(msg.ToolCalls) > 0 {
			for _, tool := range msg.ToolCalls {
				str.WriteString(fmt.Sprintf("  Tool call: %s(%s)\n", tool.Function.Name, tool.Function.Arguments))
			}
		}
	}

	return str.String()
}

// AllFragmentsStrings walks through all the fragment parents to retrieve all the conversations and represent that as a string
// This is particularly useful if chaining different fragments and want to still feed the conversation
// as a context to the LLM.
func (f Fragment) AllFragmentsStrings() string {
	if f.ParentFragment == nil {
		return f.String()
	}
	return f.String() + "\n\n" + f.ParentFragment.AllFragmentsStrings()
}

func (f Fragment) AddLastMessage(f2 Fragment) Fragment {
	if len(f2.Messages) > 0 {
		f.Messages = append(slices.Clone(f.Messages), f2.Messages[len(f2.Messages)-1])
	}
	return f
}

func (f Fragment) LastMessage() *openai.ChatCompletionMessage {
	if len(f.Messages) == 0 {
		return nil
	}
	return &f.Messages[len(f.Messages)-1]
}

func (f Fragment) LastAssistantMessages() []openai.ChatCompletionMessage {

	lastMessages := []openai.ChatCompletionMessage{}
	found := false
	for i := len(f.Messages) - 1; i >= 0; i-- {

		if f.Messages[i].Role == AssistantMessageRole.String() {
			found = true
			lastMessages = append([]openai.ChatCompletionMessage{f.Messages[i]}, lastMessages...)
		}

		if found && f.Messages[i].Role != AssistantMessageRole.String() {
			break
		}
	}

	return lastMessages
}
