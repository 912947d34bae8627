package config

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/service/*.json schemas/mirror/*.json
var schemaFS embed.FS

const (
	schemaService = "service"
	schemaMirror  = "mirror"
)

// validateDocument checks a YAML-decoded document against the embedded JSON
// schema selected by the document's config_version.
func validateDocument(doc map[string]interface{}, kind string, version int) error {
	raw, err := schemaFS.ReadFile(fmt.Sprintf("schemas/%s/v%d.json", kind, version))
	if err != nil {
		return fmt.Errorf("unsupported %s config version %d: %w", kind, version, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(raw),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("running schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("invalid %s config: %s", kind, strings.Join(msgs, "; "))
	}
	return nil
}
