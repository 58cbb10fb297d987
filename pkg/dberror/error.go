package dberror

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory classifies errors by their nature and appropriate handling strategy.
type ErrorCategory int

const (
	// ErrCategoryUser represents errors caused by a caller breaking an operator's
	// contract: bad arguments, calling Next on an exhausted iterator, unknown columns.
	// These are fixed by changing the caller, never by retrying.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategoryTransient represents conditions that depend on the current state of
	// shared resources, such as every buffer frame being pinned. The operation that hit
	// it fails; a later operation may succeed once pins are released.
	ErrCategoryTransient

	// ErrCategorySystem represents internal failures that are neither of the above.
	ErrCategorySystem
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUser:
		return "user"
	case ErrCategoryTransient:
		return "transient"
	case ErrCategorySystem:
		return "system"
	default:
		return "unknown"
	}
}

// Error codes shared by the execution core.
const (
	CodeResourceExhausted     = "RESOURCE_EXHAUSTED"
	CodePreconditionViolation = "PRECONDITION_VIOLATION"
	CodeProtocolViolation     = "PROTOCOL_VIOLATION"
	CodeIteratorNotOpened     = "ITERATOR_NOT_OPENED"
	CodeColumnNotFound        = "COLUMN_NOT_FOUND"
	CodeIndexNotFound         = "INDEX_NOT_FOUND"
	CodeTypeMismatch          = "TYPE_MISMATCH"
	CodeInternal              = "INTERNAL"
)

// DBError represents a structured database error with context information.
type DBError struct {
	// Code is a unique identifier for this error type (e.g. "RESOURCE_EXHAUSTED").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance.
	Detail string

	// Hint suggests how the caller might fix or work around this error.
	Hint string

	// Operation identifies the operation that was being performed, e.g. "Evict", "MergeSortedRuns".
	Operation string

	// Component identifies where the error originated, e.g. "MRUPolicy", "SortOperator".
	Component string

	// Cause is the underlying error that triggered this database error.
	Cause error

	// Stack contains the call stack where this error was created.
	Stack []uintptr
}

// New creates a new DBError with the specified code, category, and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Newf is New with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...any) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Stack:    captureStack(),
	}
}

// Wrap wraps an existing error with database-specific context information.
// If the error is already a DBError, the existing error is enriched with
// operation and component context (only if not already set).
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// ResourceExhausted reports that a bounded resource has nothing left to give.
func ResourceExhausted(component, operation, message string) *DBError {
	err := New(ErrCategoryTransient, CodeResourceExhausted, message)
	err.Component = component
	err.Operation = operation
	return err
}

// Precondition reports a broken caller contract. These are programming errors
// and must not be retried.
func Precondition(component, operation, format string, args ...any) *DBError {
	err := Newf(ErrCategoryUser, CodePreconditionViolation, format, args...)
	err.Component = component
	err.Operation = operation
	return err
}

// NoMoreTuples is returned by Next on an exhausted iterator. It is distinct from
// the normal end of stream, which is signalled by HasNext returning false.
func NoMoreTuples(component string) *DBError {
	err := New(ErrCategoryUser, CodeProtocolViolation, "no more tuples")
	err.Component = component
	err.Operation = "Next"
	err.Hint = "call HasNext before Next"
	return err
}

// WithDetail sets Detail and returns the receiver.
func (e *DBError) WithDetail(format string, args ...any) *DBError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithHint sets Hint and returns the receiver.
func (e *DBError) WithHint(hint string) *DBError {
	e.Hint = hint
	return e
}

// IsCode reports whether any error in err's chain is a DBError with the given code.
func IsCode(err error, code string) bool {
	var dbErr *DBError
	if !errors.As(err, &dbErr) {
		return false
	}
	return dbErr.Code == code
}

// CategoryOf returns the category of the first DBError in err's chain.
// Errors that carry no DBError are treated as system errors.
func CategoryOf(err error) ErrorCategory {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Category
	}
	return ErrCategorySystem
}

// captureStack skips captureStack itself, the constructor and runtime.Callers.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the standard Go error interface
//
// The format follows the pattern:
// [ERROR_CODE] Message: Detail (operation: Operation, component: Component) caused by: underlying error
func (e *DBError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}

	if e.Operation != "" {
		fmt.Fprintf(&b, " (operation: %s", e.Operation)
		if e.Component != "" {
			fmt.Fprintf(&b, ", component: %s", e.Component)
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, " caused by: %v", e.Cause)
	}

	return b.String()
}

// Unwrap returns the underlying cause error.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "  %s\n    %s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}

	return b.String()
}
