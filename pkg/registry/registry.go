// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Validate checks registry-wide invariants: unique IDs and task types, and
// input/output schemas that compile as JSON Schema documents.
func (r *ActivityRegistry) Validate() error {
	ids := map[string]bool{}
	taskTypes := map[string]bool{}

	for _, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity with empty id or taskType")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity id: %s", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type: %s", a.TaskType)
		}
		ids[a.ID] = true
		taskTypes[a.TaskType] = true

		if err := compileSchema(a.InputSchema); err != nil {
			return fmt.Errorf("activity %s: invalid inputSchema: %w", a.ID, err)
		}
		if err := compileSchema(a.OutputSchema); err != nil {
			return fmt.Errorf("activity %s: invalid outputSchema: %w", a.ID, err)
		}
	}
	return nil
}

// ValidatePayload checks job variables against the activity's input schema.
// An empty schema accepts everything.
func (a *Activity) ValidatePayload(payload map[string]interface{}) error {
	if len(a.InputSchema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(a.InputSchema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("schema validation for %s: %w", a.TaskType, err)
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("payload for %s: %s", a.TaskType, errs[0].String())
		}
		return fmt.Errorf("payload for %s: invalid", a.TaskType)
	}
	return nil
}

func compileSchema(schema map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}
	_, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	return err
}
