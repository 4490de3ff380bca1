// internal/workers/data-access/query-trainer-pool/queries/builders_test.go
package queries

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPoolRequest_RequiresIndex(t *testing.T) {
	_, err := BuildPoolRequest(TrainerPoolQuery{})
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestBuildPoolRequest_FiltersAndSort(t *testing.T) {
	q := TrainerPoolQuery{
		Index:       "trainers",
		Specialties: []string{"Yoga"},
		MaxRate:     120,
	}
	q.Pagination.Size = 50

	req, err := BuildPoolRequest(q)
	require.NoError(t, err)

	assert.Equal(t, []string{"trainers"}, req.Index)
	require.NotNil(t, req.Size)
	assert.Equal(t, 50, *req.Size)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	// Active-only term filter plus the rate ceiling.
	assert.Len(t, filters, 2)
	assert.Contains(t, boolQuery, "should")
	assert.Contains(t, body, "sort")
}

func TestBuildPoolQuery_RatingAndAcceptingFilters(t *testing.T) {
	body := buildPoolQuery(TrainerPoolQuery{
		Index:         "trainers",
		MinRating:     4.5,
		AcceptingOnly: true,
	})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	// Active-only term, rating floor, accepting-new-clients term.
	require.Len(t, filters, 3)

	rangeClause := filters[1].(map[string]interface{})["range"].(map[string]interface{})
	rating := rangeClause["rating"].(map[string]interface{})
	assert.Equal(t, 4.5, rating["gte"])
}

func TestBuildPoolQuery_NoOptionalClauses(t *testing.T) {
	body := buildPoolQuery(TrainerPoolQuery{Index: "trainers"})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["filter"], 1)
	assert.NotContains(t, boolQuery, "should")
}
