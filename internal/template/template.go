// Package template knows how to obtain a project template and how to read
// the little it needs from the extracted result.
//
// Fetching and extraction are delegated to curl and tar through the
// command runner. After extraction, the template's package.json is read to
// suggest the right start command. package.json files in starter kits
// sometimes carry comments or trailing commas, so it is parsed with
// github.com/tidwall/jsonc before encoding/json.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/project-quickstart/internal/runner"
)

// Tools names the programs used to fetch and extract the archive.
type Tools struct {
	Curl string
	Tar  string
}

// FetchCommand downloads url into archive, following redirects. --fail
// makes curl exit non-zero on HTTP errors instead of saving the error page.
func (t Tools) FetchCommand(dir, url, archive string) runner.Command {
	return runner.Command{
		Name: orDefault(t.Curl, "curl"),
		Args: []string{"-L", "--fail", url, "--output", archive},
		Dir:  dir,
	}
}

// ExtractCommand unpacks archive into dir, dropping the leading path
// component of every entry so the template's wrapper folder is collapsed.
func (t Tools) ExtractCommand(dir, archive string) runner.Command {
	return runner.Command{
		Name: orDefault(t.Tar, "tar"),
		Args: []string{"-zxf", archive, "--strip", "1"},
		Dir:  dir,
	}
}

// Programs returns the resolved program names, for PATH lookups.
func (t Tools) Programs() []string {
	return []string{orDefault(t.Curl, "curl"), orDefault(t.Tar, "tar")}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// packageJSON holds the parts of package.json used here.
type packageJSON struct {
	Name    string            `json:"name"`
	Scripts map[string]string `json:"scripts"`
	Engines map[string]string `json:"engines"`
}

// ManifestFile is the template manifest inspected after extraction.
const ManifestFile = "package.json"

// StartCommand suggests how to start the scaffolded project. It prefers a
// "start" script, then a "dev" script, and falls back to fallback when the
// manifest is missing or declares neither. packageManager is the program
// used for dependency installation (e.g. "npm").
func StartCommand(dir, packageManager, fallback string) (string, error) {
	pkg, err := readManifest(filepath.Join(dir, ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}

	if packageManager == "" {
		packageManager = "npm"
	}
	switch {
	case pkg.Scripts["start"] != "":
		return packageManager + " start", nil
	case pkg.Scripts["dev"] != "":
		return packageManager + " run dev", nil
	default:
		return fallback, nil
	}
}

func readManifest(path string) (*packageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pkg packageJSON
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return &pkg, nil
}

// ProgramOf returns the program name of a space-separated command line
// such as "npm install".
func ProgramOf(commandLine string) string {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NodeEngine returns the engines.node constraint declared by the manifest in
// dir, or "" when the manifest or the constraint is absent.
func NodeEngine(dir string) (string, error) {
	pkg, err := readManifest(filepath.Join(dir, ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pkg.Engines["node"]), nil
}

// SatisfiesEngine reports whether version, as printed by "node --version",
// meets constraint. npm-style ranges such as ">=18", "^20 || ^22" and
// "18.x" are understood.
func SatisfiesEngine(constraint, version string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("parsing engine constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(version), "v"))
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", version, err)
	}
	return c.Check(v), nil
}
