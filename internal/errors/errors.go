package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// Configuration errors - missing credentials or endpoint configuration
	ErrorTypeConfig ErrorType = iota
	// Validation errors - invalid input handed to a component
	ErrorTypeValidation
	// Transport errors - building or executing the completion request failed
	ErrorTypeTransport
	// Decode errors - response text does not match the requested shape
	ErrorTypeDecode
	// FatalInvocation errors - the retry budget of an invocation is spent
	ErrorTypeFatalInvocation
	// FileSystem errors - artifact or template file I/O failures
	ErrorTypeFileSystem
	// Internal errors - unexpected internal state
	ErrorTypeInternal
)

// Severity represents how critical an error is
type Severity int

const (
	// SeverityLow - can continue with degraded functionality
	SeverityLow Severity = iota
	// SeverityMedium - recoverable locally (e.g. by the built-in retry)
	SeverityMedium
	// SeverityHigh - the current operation failed
	SeverityHigh
	// SeverityCritical - the whole task must stop
	SeverityCritical
)

// Context keys used across packages
const (
	ContextAttempts   = "attempts"
	ContextStatusCode = "status_code"
	ContextAgent      = "agent"
	ContextOperation  = "operation"
	ContextTemplate   = "template"
	ContextPath       = "path"
)

// Sentinels for errors.Is matching by type.
var (
	ErrConfig          = &Error{Type: ErrorTypeConfig}
	ErrValidation      = &Error{Type: ErrorTypeValidation}
	ErrTransport       = &Error{Type: ErrorTypeTransport}
	ErrDecode          = &Error{Type: ErrorTypeDecode}
	ErrFatalInvocation = &Error{Type: ErrorTypeFatalInvocation}
	ErrFileSystem      = &Error{Type: ErrorTypeFileSystem}
)

// Error represents a structured error with context
type Error struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is checks if this error matches the target error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsFatal returns true if this error should stop the task
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// DetailedString renders the error for --verbose output: header, cause,
// context in key order, then the stack
func (e *Error) DetailedString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] %s\n", e.Severity, e.Type, e.Message)

	if e.Cause != nil {
		fmt.Fprintf(&sb, "Caused by: %v\n", e.Cause)
	}
	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for _, k := range slices.Sorted(maps.Keys(e.Context)) {
			fmt.Fprintf(&sb, "  %s: %v\n", k, e.Context[k])
		}
	}
	if e.StackTrace != "" {
		fmt.Fprintf(&sb, "Stack trace:\n%s\n", e.StackTrace)
	}
	return sb.String()
}

// LogValue groups type, severity and context under one slog attribute
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("msg", e.Error()),
		slog.String("type", e.Type.String()),
		slog.String("severity", e.Severity.String()),
	}
	for _, k := range slices.Sorted(maps.Keys(e.Context)) {
		attrs = append(attrs, slog.Any(k, e.Context[k]))
	}
	return slog.GroupValue(attrs...)
}

var typeNames = map[ErrorType]string{
	ErrorTypeConfig:          "CONFIG",
	ErrorTypeValidation:      "VALIDATION",
	ErrorTypeTransport:       "TRANSPORT",
	ErrorTypeDecode:          "DECODE",
	ErrorTypeFatalInvocation: "FATAL_INVOCATION",
	ErrorTypeFileSystem:      "FILESYSTEM",
	ErrorTypeInternal:        "INTERNAL",
}

func (t ErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// stackDepth caps recorded frames
const stackDepth = 10

// callerStack records up to stackDepth frames above its caller's caller
func callerStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "  %s:%d %s\n", f.File, f.Line, f.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

func newError(errType ErrorType, severity Severity, message string, cause error) *Error {
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Cause:      cause,
		Context:    make(map[string]interface{}),
		StackTrace: callerStack(2),
	}
}

// New creates an error without a cause
func New(errType ErrorType, severity Severity, message string) *Error {
	return newError(errType, severity, message, nil)
}

// Wrap attaches type, severity and message to err. A nil err stays nil.
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}
	return newError(errType, severity, message, err)
}

// ConfigError creates a configuration error
func ConfigError(message string) *Error {
	return New(ErrorTypeConfig, SeverityCritical, message)
}

// ConfigErrorf creates a configuration error with formatting
func ConfigErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
}

// ValidationError creates a validation error
func ValidationError(message string) *Error {
	return New(ErrorTypeValidation, SeverityHigh, message)
}

// ValidationErrorf creates a validation error with formatting
func ValidationErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeValidation, SeverityHigh, fmt.Sprintf(format, args...))
}

// TransportError wraps a failure of the request/response cycle.
// A nil cause produces an error without one (e.g. empty choices).
func TransportError(err error, message string) *Error {
	if err == nil {
		return New(ErrorTypeTransport, SeverityMedium, message)
	}
	return Wrap(err, ErrorTypeTransport, SeverityMedium, message)
}

// TransportErrorf wraps a transport failure with formatting
func TransportErrorf(err error, format string, args ...interface{}) *Error {
	return TransportError(err, fmt.Sprintf(format, args...))
}

// DecodeError wraps a parse or validation failure of response text
func DecodeError(err error, message string) *Error {
	if err == nil {
		return New(ErrorTypeDecode, SeverityHigh, message)
	}
	return Wrap(err, ErrorTypeDecode, SeverityHigh, message)
}

// DecodeErrorf wraps a decode failure with formatting
func DecodeErrorf(err error, format string, args ...interface{}) *Error {
	return DecodeError(err, fmt.Sprintf(format, args...))
}

// FatalInvocationError marks a task as failed after its retry budget is spent.
// last is the diagnostic of the final attempt.
func FatalInvocationError(last error, attempts int) *Error {
	msg := fmt.Sprintf("invocation failed after %d attempt(s)", attempts)
	return newError(ErrorTypeFatalInvocation, SeverityCritical, msg, last).
		WithContext(ContextAttempts, attempts)
}

// FileSystemError wraps a filesystem error
func FileSystemError(err error, message string) *Error {
	return Wrap(err, ErrorTypeFileSystem, SeverityHigh, message)
}

// FileSystemErrorf wraps a filesystem error with formatting
func FileSystemErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeFileSystem, SeverityHigh, fmt.Sprintf(format, args...))
}

// InternalError creates an internal error
func InternalError(message string) *Error {
	return New(ErrorTypeInternal, SeverityCritical, message)
}

// InternalErrorf creates an internal error with formatting
func InternalErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeInternal, SeverityCritical, fmt.Sprintf(format, args...))
}

// IsFatal checks if an error is fatal (should stop execution)
func IsFatal(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.IsFatal()
	}
	return false
}

// GetSeverity returns the severity of an error
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityLow
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e.Severity
	}

	return SeverityMedium
}

// GetType returns the type of the outermost structured error in the chain
func GetType(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}

// Attempts returns the attempt count recorded on err, or 0 when none was recorded
func Attempts(err error) int {
	var e *Error
	if !stderrors.As(err, &e) {
		return 0
	}
	if n, ok := e.Context[ContextAttempts].(int); ok {
		return n
	}
	return 0
}
