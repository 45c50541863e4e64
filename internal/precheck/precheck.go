// Package precheck decides whether it is safe to scaffold into a directory.
//
// Every check here runs before any network access or filesystem mutation,
// so an abort leaves nothing behind. The checks are:
//   - emptiness: only allow-listed benign entries may be present
//   - git cleanliness: an existing checkout must have no uncommitted changes
//   - project name: a new directory name must be safe and must not exist yet
package precheck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shinji-kodama/project-quickstart/internal/ctxlog"
	"github.com/shinji-kodama/project-quickstart/internal/model"
	"github.com/shinji-kodama/project-quickstart/internal/vcs"
)

// benignEntries are ignored by the emptiness check unconditionally.
var benignEntries = map[string]bool{
	".DS_Store": true,
}

// GitChecker is the subset of vcs.Manager the validator needs.
type GitChecker interface {
	HasMetadata(dir string) bool
	IsClean(ctx context.Context, dir string, strictness model.GitStrictness) (bool, error)
}

// Validator runs the precondition checks.
type Validator struct {
	Git GitChecker

	// AllowGitReuse permits scaffolding into an existing, clean git
	// checkout. When false, a .git entry makes the directory non-empty.
	AllowGitReuse bool

	// Strictness selects how uncommitted changes are detected.
	Strictness model.GitStrictness
}

// New returns a Validator backed by git.
func New(git GitChecker, allowGitReuse bool, strictness model.GitStrictness) *Validator {
	return &Validator{Git: git, AllowGitReuse: allowGitReuse, Strictness: strictness}
}

// Inspect resolves dir into a TargetDirectory relative to base. A missing
// directory is reported as existing=false and empty=true.
func (v *Validator) Inspect(base, dir string) (model.TargetDirectory, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return model.TargetDirectory{}, model.WrapCLIError(model.KindFilesystemError, "failed to resolve target directory", err)
	}

	display := abs
	if rel, relErr := filepath.Rel(base, abs); relErr == nil && !strings.HasPrefix(rel, "..") {
		display = rel
	}

	target := model.TargetDirectory{Path: abs, DisplayPath: display}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		target.Empty = true
		return target, nil
	case err != nil:
		return target, model.WrapCLIError(model.KindFilesystemError, "failed to inspect target directory", err)
	case !info.IsDir():
		return target, model.NewCLIError(model.KindPathAlreadyExists,
			fmt.Sprintf("%s exists and is not a directory", display))
	}

	target.Exists = true
	target.HasGit = v.Git.HasMetadata(abs)

	extra, err := v.unexpectedEntries(abs)
	if err != nil {
		return target, err
	}
	target.Empty = len(extra) == 0
	return target, nil
}

// CheckEmpty fails with NonEmptyDirectory when target contains entries other
// than .DS_Store (and .git, when git reuse is allowed and .git is a
// repository directory or a gitdir pointer file).
func (v *Validator) CheckEmpty(ctx context.Context, target model.TargetDirectory) error {
	if !target.Exists {
		return nil
	}

	extra, err := v.unexpectedEntries(target.Path)
	if err != nil {
		return err
	}
	if len(extra) == 0 {
		return nil
	}

	ctxlog.FromContext(ctx).Debug("unexpected entries", "dir", target.Path, "entries", extra)
	return model.NewCLIError(model.KindNonEmptyDirectory, "This directory is not empty!").
		WithHint("Please cd into an empty directory and try again.")
}

// CheckClean fails with DirtyWorkingTree when target is a git checkout with
// uncommitted changes. It is a no-op for directories without git metadata.
func (v *Validator) CheckClean(ctx context.Context, target model.TargetDirectory) error {
	if !target.HasGit {
		return nil
	}

	clean, err := v.Git.IsClean(ctx, target.Path, v.Strictness)
	if err != nil {
		return err
	}
	if !clean {
		return model.NewCLIError(model.KindDirtyWorkingTree, "Working directory is not clean.").
			WithHint("Please commit your changes then try running this again.")
	}
	return nil
}

// CheckProjectName validates name and resolves it against parent. It fails
// with InvalidProjectName for unsafe names and PathAlreadyExists when the
// resulting path is already taken. On success it returns the absolute path
// of the directory to create.
func (v *Validator) CheckProjectName(parent, name string) (string, error) {
	if err := model.ValidateProjectName(name); err != nil {
		return "", err
	}

	path, err := filepath.Abs(filepath.Join(parent, name))
	if err != nil {
		return "", model.WrapCLIError(model.KindFilesystemError, "failed to resolve project path", err)
	}

	if _, err := os.Lstat(path); err == nil {
		return "", model.NewCLIError(model.KindPathAlreadyExists,
			fmt.Sprintf("%s already exists", name)).
			WithHint("Choose a different project name.")
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", model.WrapCLIError(model.KindFilesystemError,
			fmt.Sprintf("failed to check %s", name), err)
	}
	return path, nil
}

// unexpectedEntries lists the entries of dir that are not allow-listed,
// sorted by name.
func (v *Validator) unexpectedEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, model.WrapCLIError(model.KindFilesystemError,
			fmt.Sprintf("failed to read directory %s", dir), err)
	}

	// .git is only allow-listed when it is real git metadata; anything
	// else named .git would pass without a clean-tree check behind it.
	reuseGit := v.AllowGitReuse && v.Git.HasMetadata(dir)

	var extra []string
	for _, e := range entries {
		name := e.Name()
		if benignEntries[name] {
			continue
		}
		if name == vcs.MetadataDir && reuseGit {
			continue
		}
		extra = append(extra, name)
	}
	sort.Strings(extra)
	return extra, nil
}
