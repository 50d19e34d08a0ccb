package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// planSchemaDoc is the structural JSON Schema every config document must
// satisfy before the semantic Validator ever sees it: it catches wrong
// types and unknown top-level shapes with a clear, uniform error instead of
// letting json.Unmarshal silently drop or zero them out.
const planSchemaDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schema_version", "brokers", "streams"],
  "additionalProperties": false,
  "properties": {
    "schema_version": {"type": "integer"},
    "brokers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "host"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "host": {"type": "string", "minLength": 1},
          "port": {"type": "integer"},
          "keepalive": {"type": "integer"},
          "client_id": {"type": "string"},
          "username": {"type": "string"},
          "password": {"type": "string"}
        }
      }
    },
    "streams": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["broker", "topic", "interval", "payload"],
        "properties": {
          "name": {"type": "string"},
          "broker": {"type": "string", "minLength": 1},
          "topic": {"type": "string", "minLength": 1},
          "interval": {"type": "number", "exclusiveMinimum": 0},
          "qos": {"type": "integer", "minimum": 0, "maximum": 2},
          "retain": {"type": "boolean"},
          "payload": {"type": "object", "required": ["kind"]},
          "expand": {
            "type": "object",
            "properties": {
              "var": {"type": "string"},
              "range": {
                "type": "object",
                "required": ["start", "end"],
                "properties": {
                  "start": {"type": "integer"},
                  "end": {"type": "integer"},
                  "step": {"type": "integer"}
                }
              },
              "list": {"type": "array"}
            }
          }
        }
      }
    }
  }
}`

var (
	planSchemaOnce sync.Once
	planSchema     *jsonschema.Schema
	planSchemaErr  error
)

func compilePlanSchema() (*jsonschema.Schema, error) {
	planSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("plan.json", strings.NewReader(planSchemaDoc)); err != nil {
			planSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		planSchema, planSchemaErr = compiler.Compile("plan.json")
	})
	return planSchema, planSchemaErr
}

// ValidateSchema runs raw JSON config bytes through the structural Plan
// schema, returning a ConfigError-shaped aggregate on mismatch.
func ValidateSchema(jsonData []byte) error {
	schema, err := compilePlanSchema()
	if err != nil {
		return fmt.Errorf("compile plan schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("decode config for schema validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return schemaValidationToConfigErrors(verr)
		}
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

// schemaValidationToConfigErrors flattens a jsonschema.ValidationError tree
// into the same ValidationErrors aggregate the semantic Validator produces.
func schemaValidationToConfigErrors(verr *jsonschema.ValidationError) error {
	errs := &ValidationErrors{}
	collectSchemaCauses(verr, errs)
	return errs
}

func collectSchemaCauses(verr *jsonschema.ValidationError, errs *ValidationErrors) {
	if len(verr.Causes) == 0 {
		path := strings.TrimPrefix(verr.InstanceLocation, "/")
		path = strings.ReplaceAll(path, "/", ".")
		errs.AddError(path, verr.Message)
		return
	}
	for _, cause := range verr.Causes {
		collectSchemaCauses(cause, errs)
	}
}
