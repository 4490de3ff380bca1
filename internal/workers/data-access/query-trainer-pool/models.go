// internal/workers/data-access/query-trainer-pool/models.go
package querytrainerpool

import "fitmatch-workers/internal/models"

type Input struct {
	Specialties   []string `json:"specialties,omitempty"`
	Formats       []string `json:"formats,omitempty"`
	MaxRate       float64  `json:"maxRate,omitempty"`
	MinRating     float64  `json:"minRating,omitempty"`
	AcceptingOnly bool     `json:"acceptingOnly,omitempty"`
	Pagination    struct {
		From int `json:"from"`
		Size int `json:"size"`
	} `json:"pagination,omitempty"`
}

type Output struct {
	Trainers  []models.Trainer `json:"trainers"`
	TotalHits int64            `json:"totalHits"`
	Source    string           `json:"source"` // elasticsearch | postgres
}
