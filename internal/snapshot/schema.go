package snapshot

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

// schemaSet is a compiled envelope schema plus one schema per section.
type schemaSet struct {
	envelope *jsonschema.Schema
	sections map[string]*jsonschema.Schema
}

var (
	currentSchemas = sync.OnceValues(func() (*schemaSet, error) {
		return compileSchemas("snapshot.schema.json", sectionNames(currentSections))
	})
	legacySchemas = sync.OnceValues(func() (*schemaSet, error) {
		return compileSchemas("legacy.schema.json", legacySections)
	})
)

func compileSchemas(resource string, sections []string) (*schemaSet, error) {
	data, err := schemaFS.ReadFile("schema/" + resource)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", resource, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", resource, err)
	}
	envelope, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", resource, err)
	}

	set := &schemaSet{envelope: envelope, sections: make(map[string]*jsonschema.Schema, len(sections))}
	for _, name := range sections {
		s, err := compiler.Compile(resource + "#/$defs/" + name)
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s section %s: %w", resource, name, err)
		}
		set.sections[name] = s
	}
	return set, nil
}

// validate checks raw JSON against a compiled schema.
func validate(s *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
