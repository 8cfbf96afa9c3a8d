// Package errors provides standardized error handling for the claim
// workflow. Every failure surfaced to an actor or escalated to the
// operations channel is a StandardError with a stable code.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Intake boundary.
	ErrCodePayloadInvalid ErrorCode = "PAYLOAD_INVALID"

	// Claim workflow, pre-commit. These always leave the posted
	// message untouched and claimable.
	ErrCodeNotAuthorized       ErrorCode = "NOT_AUTHORIZED"
	ErrCodeIdentityNotFound    ErrorCode = "IDENTITY_NOT_FOUND"
	ErrCodeClaimInProgress     ErrorCode = "CLAIM_IN_PROGRESS"
	ErrCodeChannelCreateFailed ErrorCode = "CHANNEL_CREATE_FAILED"

	// Claim workflow, post-commit. The ticket channel exists; these
	// are escalated to the operations channel.
	ErrCodeMigrateFailed ErrorCode = "MIGRATE_FAILED"
	ErrCodeCleanupFailed ErrorCode = "CLEANUP_FAILED"

	// Cross-cutting.
	ErrCodeGatewayTimeout ErrorCode = "GATEWAY_TIMEOUT"
	ErrCodeGatewayCall    ErrorCode = "GATEWAY_CALL_FAILED"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// PastCommitPoint reports whether the error occurred after the
// irrevocable channel-creation boundary. Post-commit failures are
// never rolled back; they are escalated instead.
func PastCommitPoint(code ErrorCode) bool {
	switch code {
	case ErrCodeMigrateFailed, ErrCodeCleanupFailed:
		return true
	default:
		return false
	}
}

// ==========================
// Error Constructors
// ==========================

// NewPayloadInvalidError creates a boundary rejection for a payload
// that is not a JSON object (or fails the intake schema).
func NewPayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadInvalid,
		Message:   "Inbound payload is not a valid application object",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotAuthorizedError creates an authorization failure for an actor
// without the reviewer role.
func NewNotAuthorizedError(actorID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotAuthorized,
		Message:   "Actor lacks the reviewer role",
		Details:   fmt.Sprintf("actorId: %s", actorID),
		Timestamp: time.Now().UTC(),
	}
}

// NewIdentityNotFoundError creates a resolution failure: the posted
// message carries no recoverable applicant identity.
func NewIdentityNotFoundError(messageID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIdentityNotFound,
		Message:   "Could not recover the applicant id from the message",
		Details:   fmt.Sprintf("messageId: %s", messageID),
		Timestamp: time.Now().UTC(),
	}
}

// NewClaimInProgressError rejects a concurrent claim on a message
// whose lock is already held.
func NewClaimInProgressError(messageID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClaimInProgress,
		Message:   "This application is already being processed",
		Details:   fmt.Sprintf("messageId: %s", messageID),
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelCreateFailedError wraps a gateway failure before the
// commit point.
func NewChannelCreateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelCreateFailed,
		Message:   "Ticket channel creation failed",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

// NewMigrateFailedError wraps a content-migration failure after the
// ticket channel already exists.
func NewMigrateFailedError(channelID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMigrateFailed,
		Message:   "Ticket created but content migration failed",
		Details:   fmt.Sprintf("channelId: %s, error: %s", channelID, err.Error()),
		Timestamp: time.Now().UTC(),
	}
}

// NewCleanupFailedError wraps a failure to delete the original posted
// message after the ticket channel already exists.
func NewCleanupFailedError(messageID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCleanupFailed,
		Message:   "Ticket created but the original message could not be removed",
		Details:   fmt.Sprintf("messageId: %s, error: %s", messageID, err.Error()),
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayTimeoutError creates a timeout error for a gateway call.
func NewGatewayTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayTimeout,
		Message:   "Gateway call timed out",
		Details:   fmt.Sprintf("operation: %s", operation),
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayCallError wraps any other gateway failure.
func NewGatewayCallError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayCall,
		Message:   "Gateway call failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError creates a deploy-time configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid or missing configuration",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures any error is a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}
