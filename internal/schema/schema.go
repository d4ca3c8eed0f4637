// Package schema compiles JSON Schema documents advertised by tool servers.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Check reports whether schemaJSON is a well-formed JSON Schema. An empty
// schema is accepted.
func Check(schemaJSON json.RawMessage) error {
	if len(schemaJSON) == 0 {
		return nil
	}
	if !json.Valid(schemaJSON) {
		return fmt.Errorf("schema is not valid json")
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("schema resource: %w", err)
	}
	if _, err := c.Compile("schema.json"); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return nil
}
