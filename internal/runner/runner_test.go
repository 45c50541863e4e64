package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/project-quickstart/internal/model"
)

// newTestExec returns an Exec whose output is captured in buffers instead
// of the terminal.
func newTestExec() (*Exec, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Exec{Stdin: bytes.NewReader(nil), Stdout: &stdout, Stderr: &stderr}, &stdout, &stderr
}

// TestRunSuccess verifies that a zero exit status is reported as success
// and that the child's output reaches the configured stream.
func TestRunSuccess(t *testing.T) {
	r, stdout, _ := newTestExec()

	err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", stdout.String())
}

// TestRunNonZeroExit verifies that exit status 7 surfaces as NonZeroExit(7).
func TestRunNonZeroExit(t *testing.T) {
	r, _, _ := newTestExec()

	err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 7"}})
	require.Error(t, err)
	assert.Equal(t, model.KindNonZeroExit, model.KindOf(err))

	code, ok := ExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 7, code)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, "sh", exitErr.Command.Name)
}

// TestRunKilledBySignal verifies that a child killed by a signal reports
// the signal rather than a bare -1 status.
func TestRunKilledBySignal(t *testing.T) {
	r, _, _ := newTestExec()

	err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "kill -TERM $$"}})
	require.Error(t, err)
	assert.Equal(t, model.KindNonZeroExit, model.KindOf(err))

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, -1, exitErr.Code)
	assert.Equal(t, "terminated", exitErr.Signal)
	assert.Contains(t, err.Error(), "sh was killed by signal terminated")
}

// TestRunMissingProgram verifies that an unknown executable surfaces as
// LaunchFailure rather than NonZeroExit.
func TestRunMissingProgram(t *testing.T) {
	r, _, _ := newTestExec()

	err := r.Run(context.Background(), Command{Name: "quickstart-no-such-program-xyz"})
	require.Error(t, err)
	assert.Equal(t, model.KindLaunchFailure, model.KindOf(err))

	_, ok := ExitCode(err)
	assert.False(t, ok)

	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, "quickstart-no-such-program-xyz", launchErr.Command.Name)
}

// TestRunUsesDir verifies that the child runs in Command.Dir.
func TestRunUsesDir(t *testing.T) {
	dir := t.TempDir()
	r, _, _ := newTestExec()

	err := r.Run(context.Background(), Command{Name: "touch", Args: []string{"marker"}, Dir: dir})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "marker"))
	assert.NoError(t, statErr)
}

// TestRunDoesNotUseShell verifies that metacharacters in arguments are
// passed through literally.
func TestRunDoesNotUseShell(t *testing.T) {
	dir := t.TempDir()
	r, _, _ := newTestExec()

	err := r.Run(context.Background(), Command{Name: "touch", Args: []string{"a; touch b"}, Dir: dir})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "a; touch b"))
	assert.NoError(t, statErr, "argument should be a single literal file name")
	_, statErr = os.Stat(filepath.Join(dir, "b"))
	assert.True(t, os.IsNotExist(statErr), "no shell should have interpreted the semicolon")
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Command{Name: "npm", Args: []string{"install"}}, "npm install"},
		{Command{Name: "git", Args: []string{"commit", "-m", "project-starter-kit"}}, "git commit -m project-starter-kit"},
		{Command{Name: "git", Args: []string{"commit", "-m", "initial files"}}, `git commit -m "initial files"`},
		{Command{Name: "tar"}, "tar"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cmd.String())
	}
}
