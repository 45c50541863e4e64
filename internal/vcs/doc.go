// Package vcs provides the git operations used by quickstart.
//
// All Git operations are performed via the git binary rather than a Git
// library such as go-git. This approach:
//   - Avoids CGO dependencies (libgit2)
//   - Uses the exact same Git behavior the user sees in their terminal
//   - Lets `git commit` stream hooks and output straight to the user
//
// Read-only queries (cleanliness checks) capture git's output. Mutating
// steps (init, add, commit) are returned as runner.Command values so the
// pipeline runs them with the terminal attached.
package vcs
