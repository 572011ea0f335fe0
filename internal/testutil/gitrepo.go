// Package testutil builds throwaway git repositories for tests that exercise
// the real git executable.
package testutil

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var identityEnv = []string{
	"GIT_AUTHOR_NAME=Test Author",
	"GIT_AUTHOR_EMAIL=author@example.com",
	"GIT_COMMITTER_NAME=Test Committer",
	"GIT_COMMITTER_EMAIL=committer@example.com",
	"GIT_CONFIG_NOSYSTEM=1",
}

// RequireGit skips the test when no git executable is available.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not found")
	}
}

// RunGit runs git inside dir and returns its trimmed stdout.
func RunGit(t testing.TB, dir string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(append(os.Environ(), identityEnv...), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("git %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String())
}

// InitRepo creates an empty repository whose HEAD points at refs/heads/master.
func InitRepo(t testing.TB) string {
	t.Helper()
	RequireGit(t)
	dir := t.TempDir()
	RunGit(t, dir, nil, "init", "--quiet")
	RunGit(t, dir, nil, "symbolic-ref", "HEAD", "refs/heads/master")
	RunGit(t, dir, nil, "config", "user.name", "Test Committer")
	RunGit(t, dir, nil, "config", "user.email", "committer@example.com")
	RunGit(t, dir, nil, "config", "commit.gpgSign", "false")
	return dir
}

// InitBareRemote creates a bare repository and registers it as remote name
// of the repository in dir.
func InitBareRemote(t testing.TB, dir, name string) string {
	t.Helper()
	bare := t.TempDir()
	RunGit(t, bare, nil, "init", "--quiet", "--bare")
	RunGit(t, dir, nil, "remote", "add", name, bare)
	return bare
}

// CommitFile writes content to name and commits it, returning the new commit
// id.
func CommitFile(t testing.TB, dir, name, content, message string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	RunGit(t, dir, nil, "add", "--", name)
	RunGit(t, dir, nil, "commit", "--quiet", "--no-gpg-sign", "-m", message)
	return RunGit(t, dir, nil, "rev-parse", "HEAD")
}

// CreateBranch creates branch at the current HEAD without switching to it.
func CreateBranch(t testing.TB, dir, branch string) {
	t.Helper()
	RunGit(t, dir, nil, "branch", branch)
}

func CheckoutBranch(t testing.TB, dir, branch string) {
	t.Helper()
	RunGit(t, dir, nil, "checkout", "--quiet", branch)
}

// Head returns the commit id HEAD points at.
func Head(t testing.TB, dir string) string {
	t.Helper()
	return RunGit(t, dir, nil, "rev-parse", "HEAD")
}

// HeadRef returns the symbolic ref HEAD points at, or "" when detached.
func HeadRef(t testing.TB, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "symbolic-ref", "-q", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Status returns the porcelain status including untracked files.
func Status(t testing.TB, dir string) string {
	t.Helper()
	return RunGit(t, dir, nil, "status", "--porcelain")
}
