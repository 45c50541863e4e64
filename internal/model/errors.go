package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the scaffolder can report. All kinds
// are terminal: none is retried or recovered locally.
type ErrorKind string

const (
	// KindNonEmptyDirectory means the target directory contains entries
	// other than the allow-listed benign artifacts.
	KindNonEmptyDirectory ErrorKind = "NonEmptyDirectory"

	// KindDirtyWorkingTree means the target is a git checkout with
	// uncommitted changes.
	KindDirtyWorkingTree ErrorKind = "DirtyWorkingTree"

	// KindInvalidProjectName means the user-supplied project name is not a
	// safe directory name.
	KindInvalidProjectName ErrorKind = "InvalidProjectName"

	// KindPathAlreadyExists means the project name resolves to an existing
	// filesystem path.
	KindPathAlreadyExists ErrorKind = "PathAlreadyExists"

	// KindLaunchFailure means an external program could not be found or
	// started.
	KindLaunchFailure ErrorKind = "LaunchFailure"

	// KindNonZeroExit means an external program ran and exited non-zero.
	KindNonZeroExit ErrorKind = "NonZeroExit"

	// KindFilesystemError covers directory creation and deletion failures.
	KindFilesystemError ErrorKind = "FilesystemError"

	// KindUserDeclined means the user rejected the confirmation prompt.
	KindUserDeclined ErrorKind = "UserDeclined"

	// KindGeneral is used for errors outside the taxonomy (bad flags,
	// unreadable config file).
	KindGeneral ErrorKind = "General"
)

// ExitCode defines the CLI exit codes.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully, or that the
	// user declined the confirmation prompt.
	ExitSuccess ExitCode = 0

	// ExitFailure indicates a validation failure or fatal error.
	ExitFailure ExitCode = 1
)

// ExitCode returns the process exit status for errors of kind k.
func (k ErrorKind) ExitCode() ExitCode {
	if k == KindUserDeclined {
		return ExitSuccess
	}
	return ExitFailure
}

// CLIError is a custom error type that carries an error kind and exit code.
// This allows the CLI layer to translate domain errors into appropriate
// process exit codes and messages in one place.
type CLIError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Hint is an optional suggestion for fixing the problem, printed on its
	// own line after the message.
	Hint string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// WithHint returns e after setting its hint.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// NewCLIError creates a new CLIError of the given kind.
func NewCLIError(kind ErrorKind, message string) *CLIError {
	return &CLIError{Kind: kind, Code: kind.ExitCode(), Message: message}
}

// WrapCLIError creates a new CLIError of the given kind wrapping err.
func WrapCLIError(kind ErrorKind, message string, err error) *CLIError {
	return &CLIError{Kind: kind, Code: kind.ExitCode(), Message: message, Err: err}
}

// KindOf returns the kind of the outermost CLIError in err's chain, or
// KindGeneral when there is none.
func KindOf(err error) ErrorKind {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Kind
	}
	return KindGeneral
}

// IsKind reports whether err carries a CLIError of kind k.
func IsKind(err error, k ErrorKind) bool {
	return err != nil && KindOf(err) == k
}
