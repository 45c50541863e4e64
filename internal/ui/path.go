package ui

import (
	"os"
	"path/filepath"
	"strings"
)

// DisplayPath abbreviates the home directory prefix of path to "~".
// home may be empty, in which case the user's home directory is looked up.
func DisplayPath(path, home string) string {
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		home = h
	}
	home = filepath.Clean(home)
	clean := filepath.Clean(path)

	if clean == home {
		return "~"
	}
	if strings.HasPrefix(clean, home+string(filepath.Separator)) {
		return "~" + clean[len(home):]
	}
	return path
}
