package git

import (
	"strings"

	gitbackend "github.com/thiagokokada/asyncgit-go/internal/git/backend"
)

// GitVersionInfo describes the git executable the rebase sequencer runs.
type GitVersionInfo struct {
	Output  string
	Minimum string
}

func (i GitVersionInfo) String() string {
	return strings.TrimPrefix(i.Output, "git version ") + " (minimum " + i.Minimum + ")"
}

func GitVersion() (GitVersionInfo, error) {
	out, err := gitbackend.GitVersion()
	return GitVersionInfo{Output: out, Minimum: gitbackend.MinGitVersion()}, err
}
