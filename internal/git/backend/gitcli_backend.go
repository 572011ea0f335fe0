package backend

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

func (r *repository) HeadState() (hash string, headName string, ok bool, err error) {
	if r == nil || r.path == "" {
		return "", "", false, fmt.Errorf("repository root not set")
	}
	out, err := r.runGitCommand([]string{"rev-parse", "-q", "--verify", "HEAD"}, true, "git rev-parse")
	if err != nil {
		return "", "", false, err
	}
	hash = strings.TrimSpace(out)
	if hash == "" {
		return "", "", false, nil
	}
	ref, err := r.runGitCommand([]string{"symbolic-ref", "-q", "HEAD"}, true, "git symbolic-ref")
	if err != nil {
		return "", "", false, err
	}
	headName = strings.TrimSpace(ref)
	if headName == "" {
		headName = "HEAD"
	}
	return hash, headName, true, nil
}

func (r *repository) LocalChangesStatus() (LocalChanges, error) {
	var res LocalChanges
	if r == nil || r.path == "" {
		return res, fmt.Errorf("repository root not set")
	}
	out, err := r.runGitCommand([]string{"status", "--porcelain=v2", "--untracked-files=no"}, false, "git status")
	if err != nil {
		return res, err
	}
	res, err = parseStatusPorcelainV2(strings.NewReader(out))
	if err != nil {
		return res, fmt.Errorf("parse git status: %w", err)
	}
	return res, nil
}

func parseStatusPorcelainV2(r io.Reader) (LocalChanges, error) {
	var res LocalChanges
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 {
			continue
		}
		switch line[0] {
		case 'u':
			res.HasConflicts = true
		case '1', '2':
			if len(line) < 4 {
				continue
			}
			if line[2] != '.' {
				res.HasStaged = true
			}
			if line[3] != '.' && line[3] != '?' {
				res.HasWorktree = true
			}
		default:
			// '#' headers, '?' untracked, '!' ignored
		}
	}
	return res, scanner.Err()
}

func (r *repository) RepoState() (RepoState, error) {
	for _, probe := range []struct {
		name  string
		state RepoState
	}{
		{rebaseStateDir, RepoStateRebase},
		{"rebase-apply", RepoStateRebase},
		{"MERGE_HEAD", RepoStateMerge},
		{"CHERRY_PICK_HEAD", RepoStateCherryPick},
	} {
		_, err := r.state.Stat(probe.name)
		if err == nil {
			return probe.state, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return RepoStateClean, giterr.IO(err)
		}
	}
	return RepoStateClean, nil
}
