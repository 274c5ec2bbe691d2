package schema

import (
	"github.com/sashabaranov/go-openai/jsonschema"
)

// JSONSchema renders a contract as a JSON Schema definition suitable for a
// chat completion response_format request.
//
// The contract remains the source of truth: the rendered schema instructs
// the model, but conformance is enforced by Validate, not by the provider.
func JSONSchema(c Contract) jsonschema.Definition {
	props := make(map[string]jsonschema.Definition, len(c.Fields))
	var required []string

	for _, f := range c.Fields {
		props[f.Name] = fieldDefinition(f)
		if !f.Optional {
			required = append(required, f.Name)
		}
	}

	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}

func fieldDefinition(f Field) jsonschema.Definition {
	switch f.Kind {
	case KindNumber:
		return jsonschema.Definition{
			Type:        jsonschema.Number,
			Description: f.Description,
		}
	case KindEnum:
		return jsonschema.Definition{
			Type:        jsonschema.String,
			Description: f.Description,
			Enum:        f.Enum,
		}
	case KindStringList:
		return jsonschema.Definition{
			Type:        jsonschema.Array,
			Description: f.Description,
			Items:       &jsonschema.Definition{Type: jsonschema.String},
		}
	default:
		// KindString and KindDate both serialize as strings. Constraints
		// like minimum length are enforced by Validate, not the schema.
		return jsonschema.Definition{
			Type:        jsonschema.String,
			Description: f.Description,
		}
	}
}
