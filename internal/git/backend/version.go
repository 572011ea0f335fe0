package backend

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

// The rebase sequencer relies on "git cherry-pick --no-commit",
// "git commit --reuse-message" and "git status --porcelain=v2".
var minGitVersion = gitVersion{major: 2, minor: 23}

type gitVersion struct {
	major int
	minor int
	patch int
}

func MinGitVersion() string {
	return minGitVersion.String()
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseGitVersionOutput accepts "git version 2.44.0" as well as vendor
// variants such as "2.39.3 (Apple Git-146)" or "2.39.3.windows.1".
func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	s = strings.TrimSpace(strings.TrimPrefix(s, "git version"))
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return gitVersion{}, false
	}
	s = s[start:]
	if end := strings.IndexFunc(s, func(r rune) bool { return !isDigit(r) && r != '.' }); end >= 0 {
		s = s[:end]
	}
	parts := strings.Split(strings.Trim(s, "."), ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	var v gitVersion
	var err error
	if v.major, err = strconv.Atoi(parts[0]); err != nil {
		return gitVersion{}, false
	}
	if v.minor, err = strconv.Atoi(parts[1]); err != nil {
		return gitVersion{}, false
	}
	if len(parts) >= 3 {
		v.patch, _ = strconv.Atoi(parts[2])
	}
	return v, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func validateGitVersion(out string, minimum gitVersion) error {
	got, ok := parseGitVersionOutput(out)
	if !ok {
		return giterr.Genericf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.less(minimum) {
		return giterr.Genericf("git %s is too old; asyncgit requires git >= %s", got, minimum)
	}
	return nil
}

var gitVersionOutput = sync.OnceValues(func() (string, error) {
	outBytes, err := exec.Command("git", "--version").CombinedOutput()
	out := strings.TrimSpace(string(outBytes))
	if err != nil {
		if out != "" {
			return out, giterr.Git(fmt.Errorf("git --version: %v: %s", err, out))
		}
		return out, giterr.Git(fmt.Errorf("git --version: %w", err))
	}
	return out, nil
})

// GitVersion returns the raw output of "git --version".
func GitVersion() (string, error) {
	return gitVersionOutput()
}

var ensureMinGitVersion = sync.OnceValue(func() error {
	out, err := gitVersionOutput()
	if err != nil {
		return err
	}
	return validateGitVersion(out, minGitVersion)
})
