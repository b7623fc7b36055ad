package errors

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

type Kind string

const (
	InvalidConfig     Kind = "invalid_config"
	NotFound          Kind = "not_found"
	Ambiguous         Kind = "ambiguous_selection"
	MalformedName     Kind = "malformed_name"
	MalformedMetadata Kind = "malformed_metadata"
	IOFailure         Kind = "io_failure"
	ProcessFailure    Kind = "process_failure"
	AuthFailure       Kind = "auth_failure"
	TransferFailure   Kind = "transfer_failure"
	Interrupted       Kind = "interrupted"
	Internal          Kind = "internal"
)

// AppError tags a failure with its kind, the operation that failed, the
// implicated paths in order, and an optional status code (OS errno or
// subprocess exit status).
type AppError struct {
	Kind  Kind
	Op    string
	Paths []string
	Code  int
	Err   error
}

func (e *AppError) Error() string {
	if len(e.Paths) > 0 {
		return fmt.Sprintf("%s: %s: %v", e.Op, strings.Join(e.Paths, ", "), e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap tags err with kind, op, and the implicated paths. Returns nil when
// err is nil.
func Wrap(kind Kind, op string, err error, paths ...string) error {
	if err == nil {
		return nil
	}
	return &AppError{Kind: kind, Op: op, Paths: paths, Err: err}
}

// New builds a tagged error from a plain message.
func New(kind Kind, op, msg string, paths ...string) error {
	return &AppError{Kind: kind, Op: op, Paths: paths, Err: errors.New(msg)}
}

// WithCode tags err and attaches a specific status code for the process exit.
func WithCode(kind Kind, op string, code int, err error, paths ...string) error {
	if err == nil {
		return nil
	}
	return &AppError{Kind: kind, Op: op, Paths: paths, Code: code, Err: err}
}

// KindOf returns the kind of err, or Internal for untagged errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// UserMessage renders the single-line diagnostic shown on the error stream.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	paths := strings.Join(appErr.Paths, ", ")
	switch appErr.Kind {
	case InvalidConfig:
		return fmt.Sprintf("Invalid configuration: %v", appErr.Err)
	case NotFound:
		if paths != "" {
			return fmt.Sprintf("Not found: %s: %v", paths, appErr.Err)
		}
		return fmt.Sprintf("Not found: %v", appErr.Err)
	case Ambiguous:
		return fmt.Sprintf("Ambiguous selection: %v: %s", appErr.Err, paths)
	case MalformedName:
		return fmt.Sprintf("Bad archive name: %s: %v", paths, appErr.Err)
	case MalformedMetadata:
		return fmt.Sprintf("Bad metadata: %v", appErr.Err)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s: %v", paths, appErr.Err)
	case ProcessFailure:
		return fmt.Sprintf("Archiver failed: %v", appErr.Err)
	case AuthFailure:
		return fmt.Sprintf("Login rejected: %v", appErr.Err)
	case TransferFailure:
		return fmt.Sprintf("Upload rejected: %v", appErr.Err)
	case Interrupted:
		return "Interrupted"
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}

// ExitCode picks the most specific available process exit status for err:
// 130 for interrupts, an attached subprocess status, the underlying OS errno,
// or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Kind == Interrupted {
			return 130
		}
		if appErr.Code > 0 {
			return appErr.Code
		}
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 1
}
