package harness

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.schema.json
var scenarioSchema string

const scenarioSchemaURL = "https://github.com/roach88/jobtree/scenario.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(scenarioSchemaURL, strings.NewReader(scenarioSchema)); err != nil {
		return nil, fmt.Errorf("failed to add scenario schema: %w", err)
	}
	schema, err := compiler.Compile(scenarioSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile scenario schema: %w", err)
	}
	return schema, nil
})

// ValidateDocument checks a scenario YAML document against the embedded
// JSON Schema without decoding it into a Scenario.
func ValidateDocument(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	// Parse YAML to interface{}, then round-trip through JSON so numbers
	// reach the validator as json.Number.
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert scenario to JSON: %w", err)
	}
	var inst interface{}
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	if err := dec.Decode(&inst); err != nil {
		return fmt.Errorf("failed to decode scenario JSON: %w", err)
	}

	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("scenario does not match schema: %w", err)
	}
	return nil
}
