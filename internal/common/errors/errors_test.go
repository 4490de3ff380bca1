package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryCounts(t *testing.T) {
	// Retryable infrastructure failures get Camunda retries, terminal
	// domain outcomes do not.
	assert.Equal(t, 3, GetRetryCount(ErrCodeTrainerPoolQueryFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeSearchTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeEmptyTrainerPool))
	assert.Equal(t, 0, GetRetryCount(ErrCodeConfigNotDraft))
	assert.Equal(t, 0, GetRetryCount("SOMETHING_ELSE"))
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewConfigNotDraftError("v-1", "live")

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "CONFIG_NOT_DRAFT", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.Contains(t, bpmnErr.Details, "v-1")
}

func TestToErrorVariables(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewTrainerPoolQueryFailedError(assert.AnError))
	bpmnErr.ErrorVariables = map[string]interface{}{"source": "postgres"}

	vars := bpmnErr.ToErrorVariables()

	assert.Equal(t, "TRAINER_POOL_QUERY_FAILED", vars["errorCode"])
	assert.Equal(t, true, vars["retryable"])
	assert.Equal(t, "postgres", vars["source"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "matching", GetErrorCategory(ErrCodeInvalidPreferences))
	assert.Equal(t, "config-lifecycle", GetErrorCategory(ErrCodeConfigPublishFailed))
	assert.Equal(t, "unknown", GetErrorCategory("NOPE"))
}
