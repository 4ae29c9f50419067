package reagent

import (
	"fmt"

	"github.com/praxis-ai/reagent/prompt"
	"github.com/praxis-ai/reagent/structures"
)

// ExtractBoolean extracts a yes/no answer from a conversation
func ExtractBoolean(llm LLM, f Fragment, opts ...Option) (*structures.Boolean, error) {
	o := defaultOptions()
	o.Apply(opts...)

	prompter := o.prompts.GetPrompt(prompt.PromptBooleanType)

	structure, boolean := structures.StructureBoolean()

	booleanExtractor := struct {
		Context string
	}{
		Context: f.Messages[len(f.Messages)-1].Content,
	}

	rendered, err := prompter.Render(booleanExtractor)
	if err != nil {
		return nil, fmt.Errorf("failed to render boolean extraction prompt: %w", err)
	}

	booleanConv := NewEmptyFragment().AddMessage(UserMessageRole, rendered)

	err = booleanConv.ExtractStructure(o.context, llm, structure)
	if err != nil {
		return nil, fmt.Errorf("failed to extract boolean structure: %w", err)
	}

	return boolean, nil
}
