package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestState_String verifies the display names used in verbose logs.
func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateValidating, "validating"},
		{StatePreparing, "preparing"},
		{StateFetching, "fetching"},
		{StateExtracting, "extracting"},
		{StateCleaningUp, "cleaning-up"},
		{StateVersionControl, "version-control"},
		{StateInstallingDependencies, "installing-dependencies"},
		{StateDone, "done"},
		{StateAborted, "aborted"},
		{State(42), "state(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestState_IsTerminal(t *testing.T) {
	assert.True(t, StateDone.IsTerminal())
	assert.True(t, StateAborted.IsTerminal())
	assert.False(t, StateValidating.IsTerminal())
	assert.False(t, StateInstallingDependencies.IsTerminal())
}

// TestParseGitStrictness verifies string-to-strictness conversion,
// including the empty default and case normalization.
func TestParseGitStrictness(t *testing.T) {
	tests := []struct {
		input    string
		expected GitStrictness
		hasError bool
	}{
		{"", StrictnessTracked, false},
		{"tracked", StrictnessTracked, false},
		{"staged", StrictnessStaged, false},
		{"all", StrictnessAll, false},
		{"ALL", StrictnessAll, false},
		{" staged ", StrictnessStaged, false},
		{"paranoid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseGitStrictness(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestValidateProjectName covers the accepted character class and each
// rejection reason.
func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "my-app", false},
		{"digits", "app2", false},
		{"dots and underscores", "my_app.v2", false},
		{"single char", "a", false},
		{"empty", "", true},
		{"forward slash", "foo/bar", true},
		{"backslash", `foo\bar`, true},
		{"parent dir", "..", true},
		{"current dir", ".", true},
		{"leading dot", ".hidden", true},
		{"leading hyphen", "-rf", true},
		{"newline", "app\n", true},
		{"tab", "my\tapp", true},
		{"delete char", "app\x7f", true},
		{"space", "my app", true},
		{"shell metachar", "app;rm", true},
		{"unicode", "café", true},
		{"too long", strings.Repeat("a", 215), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, KindInvalidProjectName, KindOf(err))
		})
	}
}

func TestTargetDirectory_IsCurrentDir(t *testing.T) {
	assert.True(t, TargetDirectory{Path: "/tmp/x", DisplayPath: "."}.IsCurrentDir())
	assert.False(t, TargetDirectory{Path: "/tmp/x/app", DisplayPath: "app"}.IsCurrentDir())
}

// TestErrorKind_ExitCode checks that only a declined confirmation exits 0.
func TestErrorKind_ExitCode(t *testing.T) {
	for _, k := range []ErrorKind{
		KindNonEmptyDirectory, KindDirtyWorkingTree, KindInvalidProjectName,
		KindPathAlreadyExists, KindLaunchFailure, KindNonZeroExit,
		KindFilesystemError, KindGeneral,
	} {
		assert.Equal(t, ExitFailure, k.ExitCode(), "kind %s", k)
	}
	assert.Equal(t, ExitSuccess, KindUserDeclined.ExitCode())
}

func TestCLIError(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := NewCLIError(KindNonEmptyDirectory, "This directory is not empty!")
		assert.Equal(t, "This directory is not empty!", err.Error())
		assert.Equal(t, ExitFailure, err.Code)
		assert.Nil(t, err.Unwrap())
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := errors.New("permission denied")
		err := WrapCLIError(KindFilesystemError, "failed to delete README.md", inner)
		assert.Equal(t, "failed to delete README.md: permission denied", err.Error())
		assert.ErrorIs(t, err, inner)
	})

	t.Run("hint", func(t *testing.T) {
		err := NewCLIError(KindDirtyWorkingTree, "dirty").WithHint("commit first")
		assert.Equal(t, "commit first", err.Hint)
	})
}

func TestKindOf(t *testing.T) {
	base := NewCLIError(KindNonZeroExit, "command failed")
	wrapped := fmt.Errorf("step 3: %w", base)

	assert.Equal(t, KindNonZeroExit, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNonZeroExit))
	assert.False(t, IsKind(wrapped, KindLaunchFailure))
	assert.Equal(t, KindGeneral, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindGeneral))
}
