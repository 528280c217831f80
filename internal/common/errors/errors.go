// Package errors provides standardized error handling for the notification engine.
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
	ErrCodeFeedFetchFailed  ErrorCode = "FEED_FETCH_FAILED"
	ErrCodeFeedDecodeFailed ErrorCode = "FEED_DECODE_FAILED"

	ErrCodeStateLoadFailed ErrorCode = "STATE_LOAD_FAILED"
	ErrCodeStateSaveFailed ErrorCode = "STATE_SAVE_FAILED"

	ErrCodeMutationSyncFailed ErrorCode = "MUTATION_SYNC_FAILED"

	ErrCodeAlertDeliveryFailed ErrorCode = "ALERT_DELIVERY_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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
// 2. Error Constructors
// ==========================

// NewFeedFetchFailedError creates a retryable poll transport error.
// The next poll cycle retries; nothing is surfaced to the user.
func NewFeedFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeedFetchFailed,
		Message:   "Failed to fetch the notification feed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeedDecodeFailedError creates a retryable feed payload error.
func NewFeedDecodeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeedDecodeFailed,
		Message:   "Failed to decode the notification feed payload",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStateLoadFailedError creates a non-retryable state rehydration error.
// Load is lenient: the caller falls back to defaults instead of aborting.
func NewStateLoadFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStateLoadFailed,
		Message:   "Failed to load persisted state",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStateSaveFailedError creates a retryable state persistence error.
func NewStateSaveFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStateSaveFailed,
		Message:   "Failed to persist state",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMutationSyncFailedError creates a mutation sync error. The local
// optimistic update is kept; the failure is logged only.
func NewMutationSyncFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMutationSyncFailed,
		Message:   "Failed to sync a notification mutation to the feed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertDeliveryFailedError creates an alert channel delivery error.
func NewAlertDeliveryFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertDeliveryFailed,
		Message:   "Failed to deliver an alert",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// GetErrorCategory groups codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeFeedFetchFailed, ErrCodeFeedDecodeFailed:
		return "transport"
	case ErrCodeStateLoadFailed, ErrCodeStateSaveFailed:
		return "persistence"
	case ErrCodeMutationSyncFailed:
		return "mutation"
	case ErrCodeAlertDeliveryFailed:
		return "alert"
	default:
		return "internal"
	}
}

// IsRetryable reports whether the next cycle should be expected to succeed.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
