package report

import (
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/invopop/jsonschema"
)

// SchemaID identifies the report schema.
const SchemaID = "https://github.com/coral-mesh/futurescope/report.schema.json"

// Schema returns the JSON Schema of Document.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		// Members are a closed set; Decode rejects anything else.
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(&Document{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "futurescope unit report"
	return schema
}

// WriteSchema writes the indented schema to w.
func WriteSchema(w io.Writer) error {
	if err := json.MarshalWrite(w, Schema(), jsontext.WithIndent("  ")); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
