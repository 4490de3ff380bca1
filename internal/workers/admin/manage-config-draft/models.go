// internal/workers/admin/manage-config-draft/models.go
package manageconfigdraft

import "fitmatch-workers/internal/models"

type Input struct {
	Action          string                           `json:"action"` // create | clone | update | delete
	VersionID       string                           `json:"versionId,omitempty"`
	SourceVersionID string                           `json:"sourceVersionId,omitempty"`
	Config          *models.MatchingAlgorithmConfig  `json:"config,omitempty"`
	Author          string                           `json:"author,omitempty"`
}

type Output struct {
	VersionID string `json:"versionId,omitempty"`
	Version   int    `json:"version,omitempty"`
	Status    string `json:"status,omitempty"`
	Deleted   bool   `json:"deleted,omitempty"`
}
