package model

import (
	"fmt"
	"regexp"
	"strings"
)

// State is a stage of the scaffolding pipeline. The transitions are strictly
// sequential and forward-only:
//
//	Validating → Preparing (optional) → Fetching → Extracting →
//	CleaningUp → VersionControl → InstallingDependencies → Done
//
// Aborted is reachable from every state and is terminal.
type State int

const (
	StateValidating State = iota
	StatePreparing
	StateFetching
	StateExtracting
	StateCleaningUp
	StateVersionControl
	StateInstallingDependencies
	StateDone
	StateAborted
)

var stateNames = [...]string{
	StateValidating:             "validating",
	StatePreparing:              "preparing",
	StateFetching:               "fetching",
	StateExtracting:             "extracting",
	StateCleaningUp:             "cleaning-up",
	StateVersionControl:         "version-control",
	StateInstallingDependencies: "installing-dependencies",
	StateDone:                   "done",
	StateAborted:                "aborted",
}

// String returns the lower-case, hyphenated name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// IsTerminal reports whether no further transition can leave s.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateAborted
}

// GitStrictness controls how strict the working-tree cleanliness check is
// when scaffolding into an existing git checkout.
type GitStrictness string

const (
	// StrictnessTracked only considers unstaged changes to tracked files
	// (`git diff --exit-code`). Staged and untracked changes pass.
	StrictnessTracked GitStrictness = "tracked"

	// StrictnessStaged additionally rejects staged-but-uncommitted changes.
	StrictnessStaged GitStrictness = "staged"

	// StrictnessAll rejects any change reported by `git status --porcelain`,
	// including untracked files.
	StrictnessAll GitStrictness = "all"
)

// String returns the string representation of GitStrictness.
func (g GitStrictness) String() string {
	return string(g)
}

// IsValid checks whether g is one of the predefined strictness levels.
func (g GitStrictness) IsValid() bool {
	switch g {
	case StrictnessTracked, StrictnessStaged, StrictnessAll:
		return true
	default:
		return false
	}
}

// ParseGitStrictness converts a string to a GitStrictness. The empty string
// maps to StrictnessTracked.
func ParseGitStrictness(s string) (GitStrictness, error) {
	if s == "" {
		return StrictnessTracked, nil
	}
	g := GitStrictness(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsValid() {
		return "", fmt.Errorf("invalid git strictness: %q (valid: tracked, staged, all)", s)
	}
	return g, nil
}

// TargetDirectory is the directory a project is scaffolded into. It is
// resolved once at the start of a run and never mutated afterwards.
type TargetDirectory struct {
	// Path is the absolute filesystem path of the directory.
	Path string `json:"path"`

	// DisplayPath is Path relative to the invocation directory, used in
	// user-facing messages. "." when the target is the working directory.
	DisplayPath string `json:"displayPath"`

	// Exists reports whether the directory existed at resolution time.
	Exists bool `json:"exists"`

	// Empty reports whether the directory had no entries other than the
	// allow-listed benign artifacts.
	Empty bool `json:"empty"`

	// HasGit reports whether a .git entry was present at resolution time.
	HasGit bool `json:"hasGit"`
}

// IsCurrentDir reports whether the target is the invocation directory.
func (t TargetDirectory) IsCurrentDir() bool {
	return t.DisplayPath == "."
}

// projectNameRegex restricts project names to a filename-safe subset: ASCII
// letters, digits, dot, underscore and hyphen, starting with a letter or
// digit.
var projectNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// maxProjectNameLength keeps names well under common filesystem limits.
const maxProjectNameLength = 214

// ValidateProjectName checks that name can safely be used as a single
// directory name. It rejects empty names, path separators, control
// characters and anything outside the allowed character class.
func ValidateProjectName(name string) error {
	if name == "" {
		return NewCLIError(KindInvalidProjectName, "project name must not be empty")
	}
	if len(name) > maxProjectNameLength {
		return NewCLIError(KindInvalidProjectName,
			fmt.Sprintf("project name is too long (%d characters, max %d)", len(name), maxProjectNameLength))
	}
	if strings.ContainsAny(name, `/\`) {
		return NewCLIError(KindInvalidProjectName,
			fmt.Sprintf("invalid project name %q: must not contain path separators", name))
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return NewCLIError(KindInvalidProjectName,
				fmt.Sprintf("invalid project name %q: must not contain control characters", name))
		}
	}
	if !projectNameRegex.MatchString(name) {
		return NewCLIError(KindInvalidProjectName,
			fmt.Sprintf("invalid project name %q: use letters, digits, '.', '_' or '-', starting with a letter or digit", name))
	}
	return nil
}
