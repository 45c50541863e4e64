package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shinji-kodama/project-quickstart/internal/ctxlog"
	"github.com/shinji-kodama/project-quickstart/internal/model"
)

// Command is a single external program invocation.
type Command struct {
	// Name is the program to execute, resolved through PATH.
	Name string

	// Args are passed verbatim as the argument vector.
	Args []string

	// Dir is the working directory. Empty means the caller's working
	// directory.
	Dir string
}

// String renders the command the way a user would type it. Arguments
// containing whitespace are quoted for readability only; the command is
// never re-parsed from this form.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Runner runs one command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// LaunchError reports that a program could not be found or started.
type LaunchError struct {
	Command Command
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not start %s: %v", e.Command.Name, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError reports that a program exited with a non-zero status, or was
// killed by a signal. Code is -1 when Signal is set.
type ExitError struct {
	Command Command
	Code    int
	Signal  string
}

func (e *ExitError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("%s was killed by signal %s", e.Command.Name, e.Signal)
	}
	return fmt.Sprintf("%s exited with status %d", e.Command.Name, e.Code)
}

// Exec runs commands as child processes connected to the given streams.
// The zero value is not usable; construct it with New.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Exec wired to the process's own standard streams.
func New() *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts cmd, waits for it to exit and translates the outcome. Only
// exit status 0 is success.
func (r *Exec) Run(ctx context.Context, c Command) error {
	log := ctxlog.FromContext(ctx)
	log.Debug("running command", "command", c.String(), "dir", c.Dir)

	// #nosec G204 -- the argument vector is passed directly to the program.
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		failure := &ExitError{Command: c, Code: exitErr.ExitCode()}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			failure.Signal = ws.Signal().String()
		}
		log.Debug("command failed", "command", c.Name, "code", failure.Code, "signal", failure.Signal)
		return model.WrapCLIError(model.KindNonZeroExit,
			fmt.Sprintf("command failed: %s", c.String()), failure)
	}

	return model.WrapCLIError(model.KindLaunchFailure,
		fmt.Sprintf("could not run %s", c.Name),
		&LaunchError{Command: c, Err: err})
}

// ExitCode extracts the child exit status from err. ok is false when err
// does not wrap an *ExitError.
func ExitCode(err error) (code int, ok bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
