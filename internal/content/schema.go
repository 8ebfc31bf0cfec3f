package content

// catalogSchema is the JSON Schema a catalog document must satisfy before
// its items are decoded. It mirrors the Go-side Validate rules that can be
// expressed structurally, including the links/attachments exclusivity.
var catalogSchema = map[string]any{
	"type":     "object",
	"required": []any{"items"},
	"properties": map[string]any{
		"items": map[string]any{
			"type":  "array",
			"items": map[string]any{"$ref": "#/$defs/item"},
		},
	},
	"additionalProperties": false,
	"$defs": map[string]any{
		"item": map[string]any{
			"type":     "object",
			"required": []any{"phish", "difficulty", "sender", "subject", "body"},
			"properties": map[string]any{
				"id":         map[string]any{"type": "string", "minLength": 1},
				"phish":      map[string]any{"type": "boolean"},
				"difficulty": map[string]any{"type": "integer", "minimum": MinDifficulty, "maximum": MaxDifficulty},
				"category":   map[string]any{"type": "string"},
				"sender": map[string]any{
					"type":     "object",
					"required": []any{"address"},
					"properties": map[string]any{
						"name":    map[string]any{"type": "string"},
						"address": map[string]any{"type": "string", "minLength": 3},
					},
					"additionalProperties": false,
				},
				"subject": map[string]any{"type": "string", "minLength": 1},
				"body":    map[string]any{"type": "string", "minLength": 1},
				"links": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"maxItems": MaxLinks,
				},
				"attachments": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"maxItems": MaxAttachments,
				},
			},
			"oneOf": []any{
				map[string]any{
					"required": []any{"links"},
					"properties": map[string]any{
						"links":       map[string]any{"minItems": 1},
						"attachments": map[string]any{"maxItems": 0},
					},
				},
				map[string]any{
					"required": []any{"attachments"},
					"properties": map[string]any{
						"attachments": map[string]any{"minItems": 1},
						"links":       map[string]any{"maxItems": 0},
					},
				},
			},
			"additionalProperties": false,
		},
	},
}
