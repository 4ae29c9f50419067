package reagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/praxis-ai/reagent/prompt"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

var (
	ErrNoToolSelected error = errors.New("no tool selected by the LLM")
)

type ToolStatus struct {
	Executed      bool
	ToolArguments ToolArguments
	Result        string
	Name          string
}

// ToolDefinitionInterface is what the agent needs to advertise and run a tool.
type ToolDefinitionInterface interface {
	Tool() openai.Tool
	Status() *ToolStatus
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// ToolRunner is the typed body of a tool.
type ToolRunner[T any] interface {
	Run(ctx context.Context, args T) (string, error)
}

// ToolDefinition pairs a typed ToolRunner with the metadata exposed to the
// model. InputArguments describes the accepted arguments and can be either a
// (pointer to a) struct prototype, reflected into a JSON schema honoring the
// `json`, `description`, `enum` and `required` struct tags, or a raw
// map[string]any / jsonschema.Definition schema used as-is.
type ToolDefinition[T any] struct {
	ToolRunner     ToolRunner[T]
	Name           string
	Description    string
	InputArguments any

	status ToolStatus
}

func (t *ToolDefinition[T]) Tool() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.parameters(),
		},
	}
}

func (t *ToolDefinition[T]) Status() *ToolStatus {
	return &t.status
}

// Execute decodes the raw arguments into the typed shape and runs the tool.
func (t *ToolDefinition[T]) Execute(ctx context.Context, args map[string]any) (string, error) {
	dat, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool arguments: %w", err)
	}

	var typed T
	if err := json.Unmarshal(dat, &typed); err != nil {
		return "", fmt.Errorf("failed to decode tool arguments: %w", err)
	}

	return t.ToolRunner.Run(ctx, typed)
}

func (t *ToolDefinition[T]) parameters() any {
	switch args := t.InputArguments.(type) {
	case nil:
		var typed T
		return schemaFromPrototype(&typed)
	case jsonschema.Definition:
		return args
	case map[string]any:
		return args
	default:
		return schemaFromPrototype(args)
	}
}

// schemaFromPrototype reflects a struct prototype into a jsonschema.Definition.
func schemaFromPrototype(prototype any) jsonschema.Definition {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return jsonschema.Definition{
			Type:                 jsonschema.Object,
			AdditionalProperties: false,
			Properties:           map[string]jsonschema.Definition{},
			Defs:                 map[string]jsonschema.Definition{},
		}
	}

	def := schemaFromStruct(t)
	def.Defs = map[string]jsonschema.Definition{}
	return def
}

func schemaFromStruct(t reflect.Type) jsonschema.Definition {
	def := jsonschema.Definition{
		Type:                 jsonschema.Object,
		AdditionalProperties: false,
		Properties:           map[string]jsonschema.Definition{},
	}

	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		omitempty := false
		if tag, ok := field.Tag.Lookup("json"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, p := range parts[1:] {
				if p == "omitempty" {
					omitempty = true
				}
			}
		}

		fieldDef := schemaFromType(field.Type)
		if desc, ok := field.Tag.Lookup("description"); ok {
			fieldDef.Description = desc
		}
		if enum, ok := field.Tag.Lookup("enum"); ok {
			fieldDef.Enum = strings.Split(enum, ",")
		}

		def.Properties[name] = fieldDef

		if field.Tag.Get("required") != "false" && !omitempty {
			required = append(required, name)
		}
	}

	def.Required = required
	return def
}

func schemaFromType(t reflect.Type) jsonschema.Definition {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return jsonschema.Definition{Type: jsonschema.String}
	case reflect.Bool:
		return jsonschema.Definition{Type: jsonschema.Boolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return jsonschema.Definition{Type: jsonschema.Integer}
	case reflect.Float32, reflect.Float64:
		return jsonschema.Definition{Type: jsonschema.Number}
	case reflect.Slice, reflect.Array:
		items := schemaFromType(t.Elem())
		return jsonschema.Definition{Type: jsonschema.Array, Items: &items}
	case reflect.Struct:
		return schemaFromStruct(t)
	case reflect.Map:
		return jsonschema.Definition{Type: jsonschema.Object}
	default:
		return jsonschema.Definition{Type: jsonschema.String}
	}
}

type Tools []ToolDefinitionInterface

func (t Tools) Find(name string) ToolDefinitionInterface {
	for _, tool := range t {
		if tool.Tool().Function.Name == name {
			return tool
		}
	}
	return nil
}

func (t Tools) ToOpenAI() []openai.Tool {
	openaiTools := []openai.Tool{}
	for _, tool := range t {
		openaiTools = append(openaiTools, tool.Tool())
	}

	return openaiTools
}

func (t Tools) Definitions() []*openai.FunctionDefinition {
	defs := []*openai.FunctionDefinition{}
	for _, tool := range t {
		if tool.Tool().Function != nil {
			defs = append(defs, tool.Tool().Function)
		}
	}
	return defs
}

// ToolReasoner forces the LLM to reason about whether the available tools are
// needed for the conversation
func ToolReasoner(llm LLM, f Fragment, opts ...Option) (Fragment, error) {
	o := defaultOptions()
	o.Apply(opts...)

	prompter := o.prompts.GetPrompt(prompt.ToolReasonerType)

	toolReasoner := struct {
		Context           string
		AdditionalContext string
		Tools             []*openai.FunctionDefinition
	}{
		Context: f.String(),
		Tools:   o.tools.Definitions(),
	}
	if f.ParentFragment != nil && o.deepContext {
		toolReasoner.AdditionalContext = f.ParentFragment.AllFragmentsStrings()
	}

	rendered, err := prompter.Render(toolReasoner)
	if err != nil {
		return Fragment{}, fmt.Errorf("failed to render tool reasoner prompt: %w", err)
	}

	return llm.Ask(o.context, NewEmptyFragment().AddMessage(UserMessageRole, rendered))
}
