package prompt

type PromptType uint

const (
	ToolReasonerType               PromptType = iota
	PromptBooleanType              PromptType = iota
	PromptGuidelinesType           PromptType = iota
	PromptGuidelinesExtractionType PromptType = iota
	StructuredOutputType           PromptType = iota
)

var (
	defaultPromptMap PromptMap = map[PromptType]Prompt{
		ToolReasonerType:               PromptToolReasoner,
		PromptBooleanType:              PromptExtractBoolean,
		PromptGuidelinesType:           PromptGuidelines,
		PromptGuidelinesExtractionType: PromptGuidelinesExtraction,
		StructuredOutputType:           PromptStructuredOutput,
	}

	PromptToolReasoner = NewPrompt(`You are an AI assistant that decides whether external tools are needed to answer the conversation.

Conversation:
{{.Context}}

{{ if ne .AdditionalContext "" }}
Additional Context:
{{.AdditionalContext}}
{{ end }}

Available tools:
{{ range $index, $tool := .Tools }}
- Tool name: "{{$tool.Name}}"
  Tool description: {{$tool.Description}}
  Tool arguments: {{$tool.Parameters | toJson}}
{{ end }}

Reason about whether calling any of the available tools would help answering. Answer with your reasoning and a clear yes or no.`)

	PromptExtractBoolean = NewPrompt(`Extract a boolean (yes/no) answer from the following text:

{{.Context}}`)

	PromptGuidelines = NewPrompt(`You are an AI assistant that needs to understand if any of the guidelines should be applied to the conversation.

Guidelines:
{{ range $index, $guideline := .Guidelines }}
{{add1 $index}}. {{$guideline.Condition}} (Suggested action: {{$guideline.Action}})
{{- end }}

Conversation:
{{.Context}}

{{ if ne .AdditionalContext "" }}
Additional Context:
{{.AdditionalContext}}
{{ end }}

Identify if any of the guidelines should be applied to the conversation.
If so, return the relevant guidelines with the numbers of the guidelines.

If no guideline should be applied, just say so and why.
`)

	PromptGuidelinesExtraction = NewPrompt("What guidelines should be applied? return only the numbers of the guidelines by using the json tool with a list of integers corresponding to the guidelines.")

	PromptStructuredOutput = NewPrompt(`Answer with the final result of the conversation by calling the "json" tool, filling every field of the requested format from the conversation above.`)
)
