package backend

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gitlib "github.com/go-git/go-git/v5"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

type repository struct {
	path   string
	gitDir string

	repo *gitlib.Repository
	// state is rooted at gitDir and holds the rebase marker directory.
	state billy.Filesystem
}

// Open discovers the repository containing repoPath.
func Open(repoPath string) (Backend, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, giterr.IO(err)
	}
	tmp := &repository{path: abs}
	out, err := tmp.runGitCommand([]string{"rev-parse", "--is-bare-repository", "--absolute-git-dir"}, false, "git rev-parse")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		return nil, fmt.Errorf("open repository: unexpected git rev-parse output %q", out)
	}
	if strings.TrimSpace(lines[0]) == "true" {
		return nil, giterr.ErrNoWorkDir
	}
	gitDir := strings.TrimSpace(lines[1])
	root, err := tmp.runGitCommand([]string{"rev-parse", "--show-toplevel"}, false, "git rev-parse")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, giterr.ErrNoWorkDir
	}
	repo, err := gitlib.PlainOpenWithOptions(root, &gitlib.PlainOpenOptions{DetectDotGit: true, EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", giterr.Git(err))
	}
	return &repository{
		path:   root,
		gitDir: gitDir,
		repo:   repo,
		state:  osfs.New(gitDir),
	}, nil
}

func (r *repository) RepoPath() string {
	if r == nil {
		return ""
	}
	return r.path
}

func (r *repository) GitDir() string {
	if r == nil {
		return ""
	}
	return r.gitDir
}

func (r *repository) runGitCommand(args []string, allowExit1 bool, context string) (string, error) {
	return r.runGitCommandEnv(nil, args, allowExit1, context)
}

// runGitCommandEnv runs git inside the work tree with env appended to the
// process environment.
func (r *repository) runGitCommandEnv(env []string, args []string, allowExit1 bool, context string) (string, error) {
	if r == nil || r.path == "" {
		return "", fmt.Errorf("repository root not set")
	}
	cmdArgs := append([]string{"-C", r.path, "-c", "commit.gpgSign=false", "-c", "core.hooksPath=/dev/null"}, args...)
	cmd := exec.Command("git", cmdArgs...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			// treat as success when git signals "not found" via exit code 1
		} else {
			if stderr.Len() > 0 {
				return stdout.String(), fmt.Errorf("%s: %v: %s", context, err, strings.TrimSpace(stderr.String()))
			}
			return stdout.String(), fmt.Errorf("%s: %w", context, err)
		}
	}
	return stdout.String(), nil
}
