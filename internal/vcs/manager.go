package vcs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/project-quickstart/internal/ctxlog"
	"github.com/shinji-kodama/project-quickstart/internal/model"
	"github.com/shinji-kodama/project-quickstart/internal/runner"
)

// MetadataDir is the name of git's metadata entry in a working tree.
const MetadataDir = ".git"

// Manager provides git operations by invoking the git CLI.
type Manager struct {
	// Binary is the git executable. Defaults to "git".
	Binary string
}

// NewManager creates a Manager using the given git binary. An empty binary
// means "git" from PATH.
func NewManager(binary string) *Manager {
	if binary == "" {
		binary = "git"
	}
	return &Manager{Binary: binary}
}

// HasMetadata reports whether dir contains a .git entry. Both a .git
// directory (regular checkout) and a .git file (worktree or submodule,
// holding a "gitdir:" pointer) count.
func (m *Manager) HasMetadata(dir string) bool {
	info, err := os.Lstat(filepath.Join(dir, MetadataDir))
	if err != nil {
		return false
	}
	if info.IsDir() {
		return true
	}

	content, err := os.ReadFile(filepath.Join(dir, MetadataDir))
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(content), "gitdir:")
}

// IsClean reports whether the working tree at dir has no uncommitted
// changes at the given strictness. Any non-zero exit from the underlying
// git command counts as dirty, including git errors such as a repository
// with no commits. An error is returned only when git cannot be started.
func (m *Manager) IsClean(ctx context.Context, dir string, strictness model.GitStrictness) (bool, error) {
	var checks [][]string
	switch strictness {
	case model.StrictnessTracked, "":
		checks = [][]string{{"diff", "--exit-code", "--quiet"}}
	case model.StrictnessStaged:
		checks = [][]string{
			{"diff", "--exit-code", "--quiet"},
			{"diff", "--cached", "--exit-code", "--quiet"},
		}
	case model.StrictnessAll:
		checks = [][]string{{"status", "--porcelain"}}
	default:
		return false, fmt.Errorf("unknown git strictness %q", strictness)
	}

	log := ctxlog.FromContext(ctx)
	for _, args := range checks {
		out, err := m.runGit(ctx, dir, args...)
		if model.IsKind(err, model.KindLaunchFailure) {
			return false, err
		}
		// `git status --porcelain` exits 0 either way; any output is a change.
		clean := err == nil && strings.TrimSpace(out) == ""
		log.Debug("git cleanliness check", "dir", dir, "args", strings.Join(args, " "), "clean", clean)
		if !clean {
			return false, nil
		}
	}
	return true, nil
}

// InitCommand returns the command that creates a new repository in dir.
func (m *Manager) InitCommand(dir string) runner.Command {
	return runner.Command{Name: m.Binary, Args: []string{"init"}, Dir: dir}
}

// AddAllCommand returns the command that stages every file in dir.
func (m *Manager) AddAllCommand(dir string) runner.Command {
	return runner.Command{Name: m.Binary, Args: []string{"add", "."}, Dir: dir}
}

// CommitCommand returns the command that records the staged files as one
// commit with the given message.
func (m *Manager) CommitCommand(dir, message string) runner.Command {
	return runner.Command{Name: m.Binary, Args: []string{"commit", "-m", message}, Dir: dir}
}

// runGit executes a git command in dir and captures its output.
//
// On success it returns stdout. On failure it returns a CLIError of kind
// NonZeroExit (or LaunchFailure when git itself could not be started) with
// git's stderr folded into the message.
//
// The directory is passed via -C so git resolves the repository itself
// rather than relying on the process working directory.
func (m *Manager) runGit(ctx context.Context, dir string, args ...string) (string, error) {
	// Prepend -C <dir> so git operates on the target directory. git handles
	// -C itself, which keeps every subcommand anchored to dir even when the
	// process working directory differs.
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, m.Binary, fullArgs...)

	// Capture stdout and stderr separately: stdout is the result on success,
	// stderr only ever feeds the error message.
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Anything other than an ExitError means git never ran, for
		// example a missing binary or a context cancelled before start.
		if _, ok := err.(*exec.ExitError); !ok {
			return "", model.WrapCLIError(model.KindLaunchFailure, "could not run git", err)
		}

		// git ran and failed. Its stderr usually says why, so fold it into
		// the message the user sees.
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.KindNonZeroExit, message, err)
	}

	return stdout.String(), nil
}
