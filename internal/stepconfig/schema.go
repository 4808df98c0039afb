package stepconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	yaml "gopkg.in/yaml.v3"
)

func GetJSONSchema() string {
	return `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"properties": {
			"version": {
				"type": "integer",
				"enum": [0, 1]
			},
			"scriptSource": {
				"$ref": "#/definitions/scriptSource"
			},
			"bindings": {
				"type": ["string", "null"]
			},
			"classpath": {
				"type": ["string", "null"]
			},
			"command": {
				"type": ["string", "null"]
			}
		},
		"anyOf": [
			{ "required": ["scriptSource"] },
			{ "required": ["command"] }
		],
		"definitions": {
			"scriptSource": {
				"type": "object",
				"required": ["type"],
				"properties": {
					"type": {
						"type": "string",
						"enum": ["string", "file"]
					},
					"script": {
						"type": "string"
					},
					"path": {
						"type": "string"
					}
				},
				"allOf": [
					{
						"if": {
							"properties": {
								"type": { "enum": ["file"] }
							}
						},
						"then": {
							"required": ["path"],
							"properties": {
								"path": { "minLength": 1 }
							}
						}
					}
				]
			}
		}
	}`
}

// Validate checks a persisted step document (YAML or JSON) against the schema
func Validate(payload []byte) error {
	var data interface{}
	if err := yaml.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("failed to unmarshal step config: %w", err)
	}
	if data == nil {
		return fmt.Errorf("step config is empty")
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(GetJSONSchema())
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}

	if !result.Valid() {
		var b strings.Builder
		for _, desc := range result.Errors() {
			fmt.Fprintf(&b, "- %s\n", desc)
		}
		return fmt.Errorf("schema validation failed:\n%s", b.String())
	}

	return nil
}
