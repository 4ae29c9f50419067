package reagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/mudler/xlog"
	"github.com/praxis-ai/reagent/prompt"
	"github.com/praxis-ai/reagent/structures"
)

var (
	ErrNoLLM            error = errors.New("no LLM provided")
	ErrNoResponseFormat error = errors.New("the agent was built without a response format")
)

// Agent runs a conversation through a loop of tool calls and model calls
// until the model stops requesting tools, then produces a final answer and,
// when a response format was configured, an extra structured-output call
// coercing the answer to the requested schema.
type Agent struct {
	llm     LLM
	options *Options
}

// New builds an agent from a model handle, the callable tools and an optional
// response format (see WithTools, WithResponseFormat, WithResponseFormatPrompt).
func New(llm LLM, opts ...Option) (*Agent, error) {
	if llm == nil {
		return nil, ErrNoLLM
	}

	o := defaultOptions()
	o.Apply(opts...)

	return &Agent{
		llm:     llm,
		options: o,
	}, nil
}

// Response is the result of an agent run: the full conversation, and the
// structured payload when the agent was built with a response format.
type Response struct {
	Fragment   Fragment
	Structured json.RawMessage
}

// Decode unmarshals the structured payload into dst.
func (r *Response) Decode(dst any) error {
	if len(r.Structured) == 0 {
		return ErrNoResponseFormat
	}
	return json.Unmarshal(r.Structured, dst)
}

// Run invokes the agent on the conversation. Options passed here are applied
// on top of the ones the agent was built with, for this run only.
func (a *Agent) Run(ctx context.Context, f Fragment, opts ...Option) (*Response, error) {
	o := *a.options
	o.tools = slices.Clone(o.tools)
	o.guidelines = slices.Clone(o.guidelines)
	o.mcpSessions = slices.Clone(o.mcpSessions)
	o.Apply(opts...)
	if ctx == nil {
		ctx = o.context
	} else {
		o.context = ctx
	}

	tools, _, mcpPrompts, err := usableTools(a.llm, f, &o)
	if err != nil {
		return nil, err
	}

	if len(mcpPrompts) > 0 {
		f.Messages = append(slices.Clone(mcpPrompts), f.Messages...)
	}

	wantsTools := len(tools) > 0

	// The tool reasoner is an optional pre-flight check asking the model
	// whether tools are needed at all for this conversation.
	if wantsTools && o.toolReasoner {
		toolReason, err := ToolReasoner(a.llm, f, WithContext(ctx), WithTools(tools...))
		if err != nil {
			return nil, fmt.Errorf("failed to reason about tools: %w", err)
		}
		if toolReason.LastMessage() == nil {
			return nil, ErrEmptyResponse
		}
		o.statusCallback(toolReason.LastMessage().Content)

		boolean, err := ExtractBoolean(a.llm, toolReason, WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed extracting boolean: %w", err)
		}
		xlog.Debug("Tool reasoning", "wants_tool", boolean.Boolean)
		wantsTools = boolean.Boolean
	}

	if wantsTools {
		f, err = a.toolLoop(ctx, f, tools, &o)
		if err != nil {
			return nil, err
		}
	}

	status := f.Status
	f, err = a.llm.Ask(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to ask LLM for the final answer: %w", err)
	}
	if f.LastMessage() == nil {
		return nil, ErrEmptyResponse
	}
	f.Status = status
	o.statusCallback(f.LastMessage().Content)

	response := &Response{Fragment: f}

	if o.responseFormat != nil {
		structured, err := a.structuredOutput(ctx, f, &o)
		if err != nil {
			return nil, err
		}
		response.Structured = structured
	}

	return response, nil
}

func (a *Agent) toolLoop(ctx context.Context, f Fragment, tools Tools, o *Options) (Fragment, error) {
	for i := 0; i < o.maxIterations; i++ {
		selected, call, err := f.SelectTool(ctx, a.llm, tools, "")
		if errors.Is(err, ErrNoToolSelected) {
			xlog.Debug("No more tools requested by the LLM", "iterations", i)
			break
		}
		if err != nil {
			return Fragment{}, fmt.Errorf("failed to select tool: %w", err)
		}

		xlog.Debug("Picked tool with args", "tool", call.Name, "args", call.Arguments)

		if o.toolCallCallback != nil && !o.toolCallCallback(call) {
			return Fragment{}, fmt.Errorf("interrupted via ToolCallCallback")
		}

		tool := tools.Find(call.Name)
		if tool == nil {
			return Fragment{}, fmt.Errorf("the LLM selected an unknown tool %q", call.Name)
		}

		f = selected

		var result string
		attempts := 1
		for {
			result, err = tool.Execute(ctx, call.Arguments)
			if err == nil {
				break
			}
			if attempts >= o.maxAttempts {
				return Fragment{}, fmt.Errorf("failed to run tool and all attempts exhausted %s: %w", call.Name, err)
			}
			attempts++
		}

		o.statusCallback(result)

		toolStatus := tool.Status()
		toolStatus.Executed = true
		toolStatus.Result = result
		toolStatus.Name = call.Name
		toolStatus.ToolArguments = *call

		f = f.AddToolResult(call.Name, result, call.ID)
		xlog.Debug("Tool result", "result", result)

		f.Status.Iterations = f.Status.Iterations + 1
		f.Status.ToolsCalled = append(f.Status.ToolsCalled, tool)
		f.Status.ToolResults = append(f.Status.ToolResults, *toolStatus)

		if o.toolCallResultCallback != nil {
			o.toolCallResultCallback(tool)
		}

		if o.toolReEvaluator {
			toolReason, err := ToolReasoner(a.llm, f, WithContext(ctx), WithTools(tools...))
			if err != nil {
				return Fragment{}, fmt.Errorf("failed to reason about tools: %w", err)
			}
			if toolReason.LastMessage() == nil {
				return Fragment{}, ErrEmptyResponse
			}
			o.statusCallback(toolReason.LastMessage().Content)

			boolean, err := ExtractBoolean(a.llm, toolReason, WithContext(ctx))
			if err != nil {
				return Fragment{}, fmt.Errorf("failed extracting boolean: %w", err)
			}
			xlog.Debug("Tool re-evaluation", "wants_tool", boolean.Boolean)
			if !boolean.Boolean {
				break
			}
		}
	}

	return f, nil
}

// structuredOutput performs the extra model call appended after the tool loop:
// the conversation is replayed with a system prompt (the response-format
// prompt, or a default one) and the model is forced to answer through the
// "json" function matching the configured schema.
func (a *Agent) structuredOutput(ctx context.Context, f Fragment, o *Options) (json.RawMessage, error) {
	systemPrompt := o.responseFormat.Prompt
	if systemPrompt == "" {
		rendered, err := o.prompts.GetPrompt(prompt.StructuredOutputType).Render(struct{}{})
		if err != nil {
			return nil, fmt.Errorf("failed to render structured output prompt: %w", err)
		}
		systemPrompt = rendered
	}

	extraction := f.AddStartMessage(SystemMessageRole, systemPrompt)

	var payload json.RawMessage
	err := extraction.ExtractStructure(ctx, a.llm, structures.Structure{
		Schema: o.responseFormat.Schema,
		Object: &payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract structured response: %w", err)
	}

	return payload, nil
}
