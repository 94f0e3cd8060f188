package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// todoSchema describes a Todo body as accepted by POST and PATCH. Every field
// is optional and may be null; unknown fields are ignored.
const todoSchema = `{
  "type": "object",
  "properties": {
    "id":        {"type": ["integer", "null"]},
    "title":     {"type": ["string", "null"]},
    "completed": {"type": ["boolean", "null"]},
    "order":     {"type": ["integer", "null"]}
  }
}`

var compiledTodoSchema = jsonschema.MustCompileString("todo.schema.json", todoSchema)

// validateTodoBody checks that body is well-formed JSON matching todoSchema.
func validateTodoBody(body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if dec.More() {
		return errors.New("malformed JSON: trailing data after document")
	}

	if err := compiledTodoSchema.Validate(doc); err != nil {
		return schemaError(err)
	}
	return nil
}

// schemaError flattens a jsonschema validation error into one line per leaf
// cause, each prefixed with the offending instance location.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var msgs []string
	collectSchemaErrors(ve, &msgs)
	return fmt.Errorf("invalid todo: %s", strings.Join(msgs, "; "))
}

func collectSchemaErrors(err *jsonschema.ValidationError, msgs *[]string) {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, loc+": "+err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, msgs)
	}
}
