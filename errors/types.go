package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Hook resolution errors
	ErrCodeUnknownHookType      ErrorCode = "UNKNOWN_HOOK_TYPE"
	ErrCodeUnknownFlagKey       ErrorCode = "UNKNOWN_FLAG_KEY"
	ErrCodeDuplicateFlag        ErrorCode = "DUPLICATE_FLAG"
	ErrCodeUnsupportedExtension ErrorCode = "UNSUPPORTED_EXTENSION"

	// Argument parsing errors
	ErrCodeInvalidArguments ErrorCode = "INVALID_ARGUMENTS"

	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Handler execution errors
	ErrCodeCommandTimeout  ErrorCode = "COMMAND_TIMEOUT"
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"

	// Hook directory errors
	ErrCodeHooksDirNotFound ErrorCode = "HOOKS_DIR_NOT_FOUND"
	ErrCodeBackupExists     ErrorCode = "BACKUP_EXISTS"

	// General errors
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// HookError represents a structured error with context
type HookError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *HookError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *HookError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *HookError) WithDetail(key string, value interface{}) *HookError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns a detail value as a string, or "" when it is not set.
func (e *HookError) Detail(key string) string {
	v, ok := e.Details[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

// ToJSON converts the error to JSON
func (e *HookError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new HookError
func New(code ErrorCode, message string) *HookError {
	return &HookError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a HookError
func Wrap(err error, code ErrorCode, message string) *HookError {
	return &HookError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the outermost HookError in err's chain.
func As(err error) (*HookError, bool) {
	var hookErr *HookError
	if stderrors.As(err, &hookErr) {
		return hookErr, true
	}
	return nil, false
}

// Is checks if an error is a specific HookError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	hookErr, ok := err.(*HookError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	if hookErr.Code == code {
		return true
	}
	return hookErr.Cause != nil && Is(hookErr.Cause, code)
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	hookErr, ok := err.(*HookError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return hookErr.Code
}
