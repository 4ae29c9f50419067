// Package structures pairs JSON schema definitions with the Go objects the
// model output is decoded into. A Structure is handed as-is to the extraction
// call, which forces the model to answer through a function call matching the
// schema.
package structures

import "github.com/sashabaranov/go-openai/jsonschema"

type Structure struct {
	Schema jsonschema.Definition
	Object any
}

func structureType[T any](definition jsonschema.Definition) (Structure, *T) {
	var t T
	return Structure{definition, &t}, &t
}
