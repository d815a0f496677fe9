package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// buildSnapshotSchema reflects the persisted snapshot document into a JSON
// schema so external tooling can validate stored expeditions.
func buildSnapshotSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(SnapshotDocument))
	schema.Title = "Starseeder Snapshot"
	schema.Description = "Validates persisted expedition snapshots (probes, systems, sectors, science pool)."
	return schema
}

// writeSnapshotSchema writes the schema atomically via a temp file rename.
func writeSnapshotSchema(outPath string) error {
	data, err := json.MarshalIndent(buildSnapshotSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
