// Package errors provides standardized error handling for the dispatch engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnknownChannel      ErrorCode = "UNKNOWN_CHANNEL"
	ErrCodeApplicationDisabled ErrorCode = "APPLICATION_DISABLED"
	ErrCodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	ErrCodePreferenceDenied    ErrorCode = "PREFERENCE_DENIED"
	ErrCodeOverrideNotAllowed  ErrorCode = "OVERRIDE_NOT_ALLOWED"

	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateMismatch ErrorCode = "TEMPLATE_MISMATCH"
	ErrCodeTemplateInvalid  ErrorCode = "TEMPLATE_INVALID"
	ErrCodeMissingVariable  ErrorCode = "MISSING_VARIABLE"

	ErrCodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	ErrCodeQueueClosed          ErrorCode = "QUEUE_CLOSED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeIdempotencyStoreFailed   ErrorCode = "IDEMPOTENCY_STORE_FAILED"
	ErrCodeArchiveIndexFailed       ErrorCode = "ARCHIVE_INDEX_FAILED"

	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"
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

// IsValidation reports whether err is a synchronous submission failure, i.e.
// one that maps to a 4xx at the intake boundary rather than an internal fault.
func IsValidation(err error) bool {
	var stdErr *StandardError
	if !stderrors.As(err, &stdErr) {
		return false
	}
	switch stdErr.Code {
	case ErrCodeValidationFailed,
		ErrCodeUnknownChannel,
		ErrCodeApplicationDisabled,
		ErrCodeApplicationNotFound,
		ErrCodeUserNotFound,
		ErrCodePreferenceDenied,
		ErrCodeOverrideNotAllowed,
		ErrCodeTemplateNotFound,
		ErrCodeTemplateMismatch,
		ErrCodeTemplateInvalid,
		ErrCodeMissingVariable:
		return true
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable submission validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Submission validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownChannelError creates a non-retryable channel enum error.
func NewUnknownChannelError(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownChannel,
		Message:   "Unrecognized delivery channel",
		Details:   fmt.Sprintf("channel: %s", channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationDisabledError creates a non-retryable disabled-tenant error.
func NewApplicationDisabledError(appID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationDisabled,
		Message:   "Application is disabled",
		Details:   fmt.Sprintf("appId: %s", appID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotFoundError creates a non-retryable unknown-tenant error.
func NewApplicationNotFoundError(appID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("appId: %s", appID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserNotFoundError creates a non-retryable unknown-recipient error.
func NewUserNotFoundError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUserNotFound,
		Message:   "User not found",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPreferenceDeniedError creates a non-retryable preference rejection.
func NewPreferenceDeniedError(userID, channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodePreferenceDenied,
		Message:   "Channel disabled by recipient preferences",
		Details:   fmt.Sprintf("userId: %s, channel: %s", userID, channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOverrideNotAllowedError creates a non-retryable gated-capability error.
func NewOverrideNotAllowedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeOverrideNotAllowed,
		Message:   "Delivery override is not enabled for this deployment",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateMismatchError creates a non-retryable template ownership/channel error.
func NewTemplateMismatchError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateMismatch,
		Message:   "Template does not match the submission",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateInvalidError creates a non-retryable template definition error.
func NewTemplateInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateInvalid,
		Message:   "Template references undeclared variables",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingVariableError creates a non-retryable render error.
func NewMissingVariableError(variable string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingVariable,
		Message:   "Template variable has no binding",
		Details:   fmt.Sprintf("variable: %s", variable),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationNotFoundError creates a non-retryable status-query error.
func NewNotificationNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationNotFound,
		Message:   "Notification not found",
		Details:   fmt.Sprintf("notificationId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTransitionError creates a non-retryable lifecycle error.
func NewInvalidTransitionError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Message:   "Illegal notification state transition",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueueClosedError creates a non-retryable shutdown error.
func NewQueueClosedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeQueueClosed,
		Message:   "Dispatch queue is closed",
		Retryable: false,
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
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIdempotencyStoreFailedError creates a retryable idempotency store error.
func NewIdempotencyStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIdempotencyStoreFailed,
		Message:   "Idempotency store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchiveIndexFailedError creates a retryable archive indexing error.
func NewArchiveIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveIndexFailed,
		Message:   "Archive indexing error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliveryFailedError creates a retryable transport error.
func NewDeliveryFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliveryFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
