package reagent

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/praxis-ai/reagent/prompt"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// ResponseFormat asks the agent to produce, after the tool loop completes, a
// final structured answer conforming to Schema. Prompt, when set, is used as
// the system prompt of the extra structured-output call.
type ResponseFormat struct {
	Prompt string
	Schema jsonschema.Definition
}

type Options struct {
	prompts                prompt.PromptMap
	maxIterations          int
	maxAttempts            int
	tools                  Tools
	deepContext            bool
	toolReasoner           bool
	toolReEvaluator        bool
	strictGuidelines       bool
	statusCallback         func(string)
	context                context.Context
	toolCallCallback       func(*ToolArguments) bool
	toolCallResultCallback func(ToolDefinitionInterface)
	guidelines             Guidelines
	mcpSessions            []*mcp.ClientSession
	mcpPrompts             bool
	mcpArgs                map[string]string
	responseFormat         *ResponseFormat
}

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		maxIterations:  10,
		maxAttempts:    1,
		context:        context.Background(),
		statusCallback: func(s string) {},
	}
}

func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

var (
	// EnableDeepContext enables full context to the LLM when chaining conversations
	// It might yield to better results to the cost of bigger context use.
	EnableDeepContext Option = func(o *Options) {
		o.deepContext = true
	}

	// EnableToolReasoner enables the reasoning about the need to call tools
	// before the tool loop starts, preventing calling more tools than necessary.
	EnableToolReasoner Option = func(o *Options) {
		o.toolReasoner = true
	}

	// EnableToolReEvaluator enables the re-evaluation of the need to call other tools
	// after each tool call. It might yield to better results to the cost of more
	// LLM calls.
	EnableToolReEvaluator Option = func(o *Options) {
		o.toolReEvaluator = true
	}

	// EnableStrictGuidelines restricts tool selection to the tools activated by guidelines
	EnableStrictGuidelines Option = func(o *Options) {
		o.strictGuidelines = true
	}

	// EnableMCPPrompts feeds the prompts advertised by the MCP servers to the conversation
	EnableMCPPrompts Option = func(o *Options) {
		o.mcpPrompts = true
	}
)

// WithIterations allows to set the maximum number of tool loop iterations
func WithIterations(i int) func(o *Options) {
	return func(o *Options) {
		o.maxIterations = i
	}
}

// WithPrompt allows to set a custom prompt for a given PromptType
func WithPrompt(t prompt.PromptType, p prompt.StaticPrompt) func(o *Options) {
	return func(o *Options) {
		if o.prompts == nil {
			o.prompts = make(prompt.PromptMap)
		}

		o.prompts[t] = p
	}
}

// WithTools allows to set the tools available to the Agent
func WithTools(tools ...ToolDefinitionInterface) func(o *Options) {
	return func(o *Options) {
		o.tools = append(o.tools, tools...)
	}
}

// WithResponseFormat asks the agent for a final structured answer conforming
// to the given schema
func WithResponseFormat(schema jsonschema.Definition) func(o *Options) {
	return func(o *Options) {
		o.responseFormat = &ResponseFormat{Schema: schema}
	}
}

// WithResponseFormatPrompt is like WithResponseFormat, pairing the schema with
// a custom system prompt steering the structured-output call
func WithResponseFormatPrompt(systemPrompt string, schema jsonschema.Definition) func(o *Options) {
	return func(o *Options) {
		o.responseFormat = &ResponseFormat{Prompt: systemPrompt, Schema: schema}
	}
}

// WithStatusCallback sets a callback function to receive status updates during execution
func WithStatusCallback(fn func(string)) func(o *Options) {
	return func(o *Options) {
		o.statusCallback = fn
	}
}

// WithContext sets the execution context for the agent
func WithContext(ctx context.Context) func(o *Options) {
	return func(o *Options) {
		o.context = ctx
	}
}

// WithMaxAttempts sets the maximum number of execution attempts per tool call
func WithMaxAttempts(i int) func(o *Options) {
	return func(o *Options) {
		o.maxAttempts = i
	}
}

// WithToolCallBack allows to set a callback to prompt the user if running the tool or not
func WithToolCallBack(fn func(*ToolArguments) bool) func(o *Options) {
	return func(o *Options) {
		o.toolCallCallback = fn
	}
}

// WithToolCallResultCallback runs the callback on every tool result
func WithToolCallResultCallback(fn func(ToolDefinitionInterface)) func(o *Options) {
	return func(o *Options) {
		o.toolCallResultCallback = fn
	}
}

// WithGuidelines adds behavioral guidelines for the agent to follow
// when to execute specific tools
func WithGuidelines(guidelines ...Guideline) func(o *Options) {
	return func(o *Options) {
		o.guidelines = append(o.guidelines, guidelines...)
	}
}

// WithMCPs adds Model Context Protocol client sessions for external tool integration
// when specified, the tools available in the MCPs will be available to the agent
func WithMCPs(sessions ...*mcp.ClientSession) func(o *Options) {
	return func(o *Options) {
		o.mcpSessions = append(o.mcpSessions, sessions...)
	}
}

// WithMCPArgs sets the arguments used when fetching prompts from MCP servers
func WithMCPArgs(args map[string]string) func(o *Options) {
	return func(o *Options) {
		o.mcpArgs = args
	}
}
