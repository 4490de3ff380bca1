// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Matching pipeline
	ErrCodeMatchComputeFailed    ErrorCode = "MATCH_COMPUTE_FAILED"
	ErrCodeInvalidPreferences    ErrorCode = "INVALID_PREFERENCES"
	ErrCodeEmptyTrainerPool      ErrorCode = "EMPTY_TRAINER_POOL"
	ErrCodeTrainerPoolQueryFailed ErrorCode = "TRAINER_POOL_QUERY_FAILED"

	// Algorithm config lifecycle
	ErrCodeConfigNotFound     ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigNotDraft     ErrorCode = "CONFIG_NOT_DRAFT"
	ErrCodeConfigPublishFailed ErrorCode = "CONFIG_PUBLISH_FAILED"
	ErrCodeConfigLoadFailed   ErrorCode = "CONFIG_LOAD_FAILED"

	// Goal mapping lookup
	ErrCodeMappingLoadFailed ErrorCode = "MAPPING_LOAD_FAILED"

	// Infrastructure
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed          ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout                  ErrorCode = "QUERY_TIMEOUT"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeNotificationSendFailed        ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ConvertToBPMNError maps a StandardError onto the BPMN error shape.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   GetRetryCount(stdErr.Code),
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewMatchComputeFailedError creates a non-retryable match computation error.
func NewMatchComputeFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchComputeFailed,
		Message:   "Match computation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPreferencesError creates a non-retryable preference validation error.
func NewInvalidPreferencesError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPreferences,
		Message:   "Client preferences failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrainerPoolQueryFailedError creates a retryable trainer pool retrieval error.
func NewTrainerPoolQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrainerPoolQueryFailed,
		Message:   "Trainer pool retrieval failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigNotFoundError creates a non-retryable missing-version error.
func NewConfigNotFoundError(versionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigNotFound,
		Message:   "Algorithm config version not found",
		Details:   fmt.Sprintf("versionId: %s", versionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigNotDraftError creates a non-retryable lifecycle guard error.
// Only draft versions may be mutated, published, or deleted.
func NewConfigNotDraftError(versionID, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigNotDraft,
		Message:   "Operation requires a draft config version",
		Details:   fmt.Sprintf("versionId: %s, status: %s", versionID, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigPublishFailedError creates a retryable publish transaction error.
func NewConfigPublishFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigPublishFailed,
		Message:   "Config publish transaction failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigLoadFailedError creates a retryable config read error.
func NewConfigLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigLoadFailed,
		Message:   "Active algorithm config load failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMappingLoadFailedError creates a retryable goal mapping read error.
func NewMappingLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMappingLoadFailed,
		Message:   "Goal specialty mapping load failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Admin notification send failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Retry / Category Tables
// ==========================

var retryCounts = map[ErrorCode]int{
	ErrCodeTrainerPoolQueryFailed:        3,
	ErrCodeConfigPublishFailed:           3,
	ErrCodeConfigLoadFailed:              3,
	ErrCodeMappingLoadFailed:             3,
	ErrCodeDatabaseConnectionFailed:      3,
	ErrCodeQueryExecutionFailed:          3,
	ErrCodeQueryTimeout:                  2,
	ErrCodeElasticsearchConnectionFailed: 3,
	ErrCodeSearchQueryFailed:             2,
	ErrCodeSearchTimeout:                 2,
	ErrCodeNotificationSendFailed:        3,
}

// GetRetryCount returns how many Camunda retries an error code warrants.
// Non-retryable codes return 0 and become BPMN throw-errors instead.
func GetRetryCount(code ErrorCode) int {
	return retryCounts[code]
}

var errorCategories = map[ErrorCode]string{
	ErrCodeMatchComputeFailed:            "matching",
	ErrCodeInvalidPreferences:            "matching",
	ErrCodeEmptyTrainerPool:              "matching",
	ErrCodeTrainerPoolQueryFailed:        "data-access",
	ErrCodeConfigNotFound:                "config-lifecycle",
	ErrCodeConfigNotDraft:                "config-lifecycle",
	ErrCodeConfigPublishFailed:           "config-lifecycle",
	ErrCodeConfigLoadFailed:              "config-lifecycle",
	ErrCodeMappingLoadFailed:             "data-access",
	ErrCodeDatabaseConnectionFailed:      "infrastructure",
	ErrCodeQueryExecutionFailed:          "infrastructure",
	ErrCodeQueryTimeout:                  "infrastructure",
	ErrCodeElasticsearchConnectionFailed: "infrastructure",
	ErrCodeSearchQueryFailed:             "infrastructure",
	ErrCodeSearchTimeout:                 "infrastructure",
	ErrCodeIndexNotFound:                 "infrastructure",
	ErrCodeNotificationSendFailed:        "notification",
}

// GetErrorCategory returns the logical subsystem an error code belongs to.
func GetErrorCategory(code ErrorCode) string {
	if cat, ok := errorCategories[code]; ok {
		return cat
	}
	return "unknown"
}
