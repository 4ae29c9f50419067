package structures

import "github.com/sashabaranov/go-openai/jsonschema"

type GuidelinesList struct {
	Guidelines []int `json:"guidelines"`
}

func StructureGuidelines() (Structure, *GuidelinesList) {
	return structureType[GuidelinesList](
		jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"guidelines": {
					Type:        jsonschema.Array,
					Description: "Numbers of the guidelines to apply",
					Items: &jsonschema.Definition{
						Type: jsonschema.Integer,
					},
				},
			},
			Required: []string{"guidelines"},
		})
}
