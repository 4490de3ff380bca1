// internal/workers/admin/publish-config-version/models.go
package publishconfigversion

type Input struct {
	VersionID string `json:"versionId"`
	Author    string `json:"author,omitempty"`
}

type Output struct {
	VersionID     string `json:"versionId"`
	Version       int    `json:"version"`
	Status        string `json:"status"`
	PublishedAt   string `json:"publishedAt,omitempty"`
	AdminNotified bool   `json:"adminNotified"`
}
