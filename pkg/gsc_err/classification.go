// pkg/gsc_err/classification.go
//
// Error classification with exit codes. Every provisioning failure is terminal
// for the run; the category only decides the exit status and the hint text.

package gsc_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategorySystem - OS/filesystem issues (exit 1)
	CategorySystem ErrorCategory = iota
	// CategoryUsage - missing or extra arguments (exit 1)
	CategoryUsage
	// CategoryValidation - malformed input or configuration (exit 2)
	CategoryValidation
	// CategoryNetwork - directory or HTTP endpoint unreachable (exit 1)
	CategoryNetwork
	// CategoryAuth - bind rejected (exit 1)
	CategoryAuth
	// CategoryNotFound - required record absent (exit 1)
	CategoryNotFound
	// CategoryMutation - create/delete refused by the directory (exit 1)
	CategoryMutation
	// CategoryParse - payload is not in the expected format (exit 1)
	CategoryParse
	// CategoryUser - user cancelled/interrupted (exit 130)
	CategoryUser
	// CategoryInternal - bugs in gscadmin itself (exit 3)
	CategoryInternal
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryUsage:
		return "usage"
	case CategoryValidation:
		return "validation"
	case CategoryNetwork:
		return "connection"
	case CategoryAuth:
		return "bind"
	case CategoryNotFound:
		return "not-found"
	case CategoryMutation:
		return "mutation"
	case CategoryParse:
		return "parse"
	case CategoryUser:
		return "cancelled"
	case CategoryInternal:
		return "internal"
	default:
		return "system"
	}
}

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryUser:
		return 130
	case CategoryValidation:
		return 2
	case CategoryInternal:
		return 3
	default:
		return 1
	}
}

// GetExitCode extracts exit code from any error
// Returns 0 for nil, appropriate code for classified errors, 1 for others
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	if IsExpectedUserError(err) {
		return 0
	}

	return 1
}

// CategoryOf returns the category of a classified error, or CategorySystem.
func CategoryOf(err error) ErrorCategory {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}
	return CategorySystem
}

// IsCategory reports whether err carries the given category anywhere in its chain.
func IsCategory(err error, category ErrorCategory) bool {
	return err != nil && CategoryOf(err) == category
}

// UsageError carries the usage text that should be shown to the operator.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "missing or invalid arguments"
}

// NewUsageError creates an error for argument count problems
func NewUsageError(usage string) error {
	return &ClassifiedError{
		Category: CategoryUsage,
		Message:  "missing or invalid arguments",
		Cause:    &UsageError{Usage: usage},
	}
}

// UsageText returns the usage text carried by a usage error, if any.
func UsageText(err error) (string, bool) {
	var u *UsageError
	if errors.As(err, &u) {
		return u.Usage, true
	}
	return "", false
}

// NewValidationError creates an error for input validation failures
func NewValidationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Remediation: remediation,
	}
}

// NewNetworkError creates an error for connection failures
func NewNetworkError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryNetwork,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewAuthError creates an error for rejected binds
func NewAuthError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryAuth,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewNotFoundError creates an error for a record that must exist but does not
func NewNotFoundError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryNotFound,
		Message:  message,
		Cause:    cause,
	}
}

// NewMutationError creates an error for a failed create or delete
func NewMutationError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryMutation,
		Message:  message,
		Cause:    cause,
	}
}

// NewParseError creates an error for undecodable payloads
func NewParseError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryParse,
		Message:  message,
		Cause:    cause,
	}
}

// NewInternalError creates an error for gscadmin bugs
func NewInternalError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryInternal,
		Message:  message,
		Cause:    cause,
		Remediation: []string{
			"This is likely a bug in gscadmin",
			"Include this error message and the command line when reporting it",
		},
	}
}

// NewUserCancelledError creates an error for user-initiated cancellation
func NewUserCancelledError(operation string) error {
	return &ClassifiedError{
		Category:    CategoryUser,
		Message:     fmt.Sprintf("Operation cancelled by user: %s", operation),
		Remediation: []string{"Run the command again to retry"},
	}
}
