// Package model defines the domain types and value objects for the
// quickstart CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (TargetDirectory, State, GitStrictness) are ephemeral: they
// are resolved at the start of a run and discarded when the process exits.
// There is no persisted state.
//
// The package also defines exit codes (ExitCode), the error taxonomy
// (ErrorKind) and a custom error type (CLIError) that carries both, so the
// CLI layer can render any failure once and exit with the right status.
package model
