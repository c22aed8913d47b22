package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure kind.
var (
	// ErrTransport covers network and HTTP-level failures.
	ErrTransport = fmt.Errorf("transport failure")
	// ErrDecoding covers JSON and stream-framing failures.
	ErrDecoding = fmt.Errorf("decoding failure")
	// ErrConfig covers missing or invalid environment/file configuration.
	ErrConfig = fmt.Errorf("invalid configuration")
	// ErrProvider covers backend semantic failures, including non-2xx
	// responses with a body.
	ErrProvider = fmt.Errorf("provider error")
	// ErrProtocol covers JSON-RPC envelope violations.
	ErrProtocol = fmt.Errorf("protocol violation")
	// ErrTimeout marks an expired provider deadline.
	ErrTimeout = fmt.Errorf("operation timed out")

	ErrToolNotFound = fmt.Errorf("tool not found")
	ErrToolFailure  = fmt.Errorf("tool execution failed")
	ErrStateMissing = fmt.Errorf("state entity not found")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Registry.Get")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring.
type ErrorCode string

const (
	CodeUnknown      ErrorCode = "UNKNOWN"
	CodeTransport    ErrorCode = "TRANSPORT"
	CodeDecoding     ErrorCode = "DECODING"
	CodeConfig       ErrorCode = "CONFIG"
	CodeProvider     ErrorCode = "PROVIDER"
	CodeProtocol     ErrorCode = "PROTOCOL"
	CodeTimeout      ErrorCode = "TIMEOUT"
	CodeToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	CodeToolFailure  ErrorCode = "TOOL_FAILURE"
	CodeStateMissing ErrorCode = "STATE_MISSING"
)

var errorCodeMap = map[error]ErrorCode{
	ErrTransport:    CodeTransport,
	ErrDecoding:     CodeDecoding,
	ErrConfig:       CodeConfig,
	ErrProvider:     CodeProvider,
	ErrProtocol:     CodeProtocol,
	ErrTimeout:      CodeTimeout,
	ErrToolNotFound: CodeToolNotFound,
	ErrToolFailure:  CodeToolFailure,
	ErrStateMissing: CodeStateMissing,
}

// ErrorCodeOf returns the machine-parseable code for the given error.
// It unwraps DomainError and walks the chain with errors.Is.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	if code, ok := errorCodeMap[err]; ok {
		return code
	}
	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}
