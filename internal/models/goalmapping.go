// internal/models/goalmapping.go
package models

// MappingTier classifies how strongly a specialty relates to a client goal.
type MappingTier string

const (
	MappingTierPrimary   MappingTier = "primary"
	MappingTierSecondary MappingTier = "secondary"
	MappingTierOptional  MappingTier = "optional"
)

// GoalSpecialtyMapping relates one goal key to one specialty name with a
// scoring weight (0-100). The engine trusts whatever weight the mapping
// carries; the 100/60/30 tier convention is a data convention, not code.
type GoalSpecialtyMapping struct {
	GoalKey       string      `json:"goal_key"`
	SpecialtyName string      `json:"specialty_name"`
	Weight        int         `json:"weight"`
	MappingType   MappingTier `json:"mapping_type"`
}

// GoalMappings groups mappings by goal key, pre-filtered to active goals.
type GoalMappings map[string][]GoalSpecialtyMapping
