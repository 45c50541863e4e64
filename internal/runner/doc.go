// Package runner executes external programs for the scaffolding pipeline.
//
// Programs are invoked directly with a pre-split argument vector, never via
// a shell, so interpolated path segments cannot inject commands. The child
// inherits the terminal: its output (progress bars, prompts) is streamed
// live and nothing is captured. There is no retry and no timeout; a hung
// child hangs the run.
//
// Failures are reported as *model.CLIError values of kind LaunchFailure
// (the program could not be found or started) or NonZeroExit (it ran and
// exited non-zero). The underlying *LaunchError or *ExitError is available
// through errors.As.
package runner
