package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchemaDescriptor declares which optional schema features the target
// database carries. Operators deploying against a legacy schema can pin
// these instead of relying on the startup probe.
type SchemaDescriptor struct {
	// TrashColumns reports whether content tables carry the
	// is_deleted and deleted_at columns.
	TrashColumns bool `yaml:"trash_columns"`
}

// LoadSchemaDescriptor reads a YAML schema descriptor from path.
func LoadSchemaDescriptor(path string) (*SchemaDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema descriptor: %w", err)
	}

	var desc SchemaDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse schema descriptor %s: %w", path, err)
	}

	return &desc, nil
}
