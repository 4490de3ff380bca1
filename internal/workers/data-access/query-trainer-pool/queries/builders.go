// internal/workers/data-access/query-trainer-pool/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrMissingIndex = errors.New("index name is required")

// TrainerPoolQuery is the search request for the candidate trainer pool.
// Filters here are pre-filters only; hard exclusions and scoring run
// downstream on the full returned pool.
type TrainerPoolQuery struct {
	Index         string
	Specialties   []string
	Formats       []string
	MaxRate       float64
	MinRating     float64
	AcceptingOnly bool
	Pagination    struct {
		From int
		Size int
	}
}

// BuildPoolRequest builds the Elasticsearch search request for the pool.
func BuildPoolRequest(q TrainerPoolQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}

	body, _ := json.Marshal(buildPoolQuery(q))

	req := esapi.SearchRequest{
		Index: []string{q.Index},
		Body:  strings.NewReader(string(body)),
		From:  &q.Pagination.From,
		Size:  &q.Pagination.Size,
	}

	return &req, nil
}

func buildPoolQuery(q TrainerPoolQuery) map[string]interface{} {
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"is_active": true},
		},
	}
	shouldClauses := []interface{}{}

	if len(q.Specialties) > 0 {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"terms": map[string]interface{}{"specialties.keyword": q.Specialties},
		})
	}

	if len(q.Formats) > 0 {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"terms": map[string]interface{}{"delivery_formats.keyword": q.Formats},
		})
	}

	if q.MaxRate > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"hourly_rate": map[string]interface{}{"lte": q.MaxRate},
			},
		})
	}

	if q.MinRating > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"rating": map[string]interface{}{"gte": q.MinRating},
			},
		})
	}

	if q.AcceptingOnly {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"accepting_new_clients": true},
		})
	}

	boolQuery := map[string]interface{}{
		"filter": filterClauses,
	}
	if len(shouldClauses) > 0 {
		boolQuery["should"] = shouldClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"sort": []interface{}{
			map[string]interface{}{"rating": map[string]interface{}{"order": "desc"}},
		},
	}
}
