package domain

import (
	"errors"
	"fmt"
)

// DomainError is an error with a stable code that operators can grep for.
// Codes have the form "LK-<AREA>-<NNNN>".
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a DomainError.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WithDetails returns a copy of the error with details attached.
func (e *DomainError) WithDetails(details string) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCause returns a copy of the error wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// ErrorCode extracts the code of the first DomainError in err's chain.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Protocol Errors (PROTO)
// ============================================================================

var (
	// ErrProtocol marks a frame the decoder rejected.
	ErrProtocol = NewDomainError("LK-PROTO-4000", "protocol error")

	// ErrRateLimited marks a command rejected by the per-client limiter.
	ErrRateLimited = NewDomainError("LK-PROTO-4290", "rate limit exceeded")

	// ErrBufferOverflow marks a connection whose pending bytes exceeded the limit.
	ErrBufferOverflow = NewDomainError("LK-PROTO-4130", "connection buffer limit exceeded")
)

// ============================================================================
// Storage Errors (AOF)
// ============================================================================

var (
	// ErrAOFUnavailable indicates the log could not be opened; appends are no-ops.
	ErrAOFUnavailable = NewDomainError("LK-AOF-5030", "append-only log unavailable")

	// ErrAOFWrite indicates a write or fsync to the log failed.
	ErrAOFWrite = NewDomainError("LK-AOF-5001", "append-only log write failed")

	// ErrAOFRead indicates the log exists but could not be read.
	ErrAOFRead = NewDomainError("LK-AOF-5002", "append-only log read failed")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrConfigInvalid indicates configuration verification failed.
	ErrConfigInvalid = NewDomainError("LK-SYS-4000", "invalid configuration")

	// ErrBackupFailed indicates a backup transfer failed.
	ErrBackupFailed = NewDomainError("LK-SYS-5020", "backup transfer failed")
)
