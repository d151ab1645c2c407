// Package errs implements the sum-typed error kinds from spec §7: errors
// are distinguished by kind, not by Go error type hierarchy depth, in the
// same spirit as gotas/pkg/task/repo's AuthenticationError{Code, Msg}.
package errs

import "fmt"

// Kind identifies one of the eight error categories from spec §7.
type Kind string

const (
	Lex        Kind = "lex"
	Parse      Kind = "parse"
	Ambiguity  Kind = "ambiguity"
	Validation Kind = "validation"
	Safety     Kind = "safety"
	Store      Kind = "store"
	Hook       Kind = "hook"
	Unknown    Kind = "unknown"
)

func (k Kind) Error() string { return string(k) }

// ExitCode maps an error Kind to the process exit code from spec §6:
// 1 application error, 2 a caught expected error, 3 unexpected.
func (k Kind) ExitCode() int {
	switch k {
	case Unknown:
		return 3
	case "":
		return 0
	default:
		return 2
	}
}

// Error is the concrete sum-typed error value: a kind, a human message,
// and optionally the offending token/argument text for display.
type Error struct {
	Kind    Kind
	Message string
	Token   string
	cause   error
}

func (e *Error) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s: %q", e.Kind, e.Message, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(k Kind, token string, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...), Token: token, cause: cause}
}

func LexError(token string, cause error, format string, args ...interface{}) *Error {
	return newErr(Lex, token, cause, format, args...)
}

func ParseError(token string, cause error, format string, args ...interface{}) *Error {
	return newErr(Parse, token, cause, format, args...)
}

// AmbiguityError lists the candidates sorted, per spec §7.
func AmbiguityError(token string, candidates []string, category string) *Error {
	return &Error{
		Kind:    Ambiguity,
		Token:   token,
		Message: fmt.Sprintf("ambiguous %s %q matches %v", category, token, candidates),
	}
}

func ValidationError(token string, format string, args ...interface{}) *Error {
	return newErr(Validation, token, nil, format, args...)
}

func SafetyError(format string, args ...interface{}) *Error {
	return newErr(Safety, "", nil, format, args...)
}

func StoreError(cause error, format string, args ...interface{}) *Error {
	return newErr(Store, "", cause, format, args...)
}

func HookError(cause error, format string, args ...interface{}) *Error {
	return newErr(Hook, "", cause, format, args...)
}

func UnknownError(cause error, format string, args ...interface{}) *Error {
	return newErr(Unknown, "", cause, format, args...)
}

// Is supports errors.Is(err, errs.Validation) style checks against a bare
// Kind value.
func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}
