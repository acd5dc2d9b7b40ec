package openapi

import "fmt"

// ErrorCode categorizes document-level failures for clearer handling and messaging.
type ErrorCode string

const (
	InputError   ErrorCode = "InputError"
	ParseError   ErrorCode = "ParseError"
	ConvertError ErrorCode = "ConvertError"
)

// SpecError is a structured error raised while loading or parsing one
// specification file. Reference-level problems (cycles, dangling pointers)
// are never SpecErrors; they become Diagnostics and processing continues.
type SpecError struct {
	Code    ErrorCode
	Message string
	Path    string // file path of the offending document
	Cause   error
}

func (e *SpecError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

func (e *SpecError) Unwrap() error { return e.Cause }

func specErrorf(code ErrorCode, path string, format string, args ...any) *SpecError {
	return &SpecError{Code: code, Message: fmt.Sprintf(format, args...), Path: path}
}
