package backend

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

// cliRebase replays commits with the git executable and keeps its progress
// in the rebase marker directory, so a rebase left open by one process can be
// resumed, inspected or aborted by another.
type cliRebase struct {
	r  *repository
	st *rebaseState
}

func (r *repository) StartRebase(onto CommitID) (Rebase, error) {
	open, err := rebaseStateExists(r.state)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, giterr.Generic("rebase already in progress")
	}
	hash, headName, ok, err := r.HeadState()
	if err != nil {
		return nil, giterr.Git(err)
	}
	if !ok {
		return nil, giterr.ErrNoHead
	}
	changes, err := r.LocalChangesStatus()
	if err != nil {
		return nil, giterr.Git(err)
	}
	if !changes.Clean() {
		return nil, giterr.ErrUncommittedChanges
	}
	origHead, err := ParseCommitID(hash)
	if err != nil {
		return nil, giterr.Git(err)
	}
	steps, err := r.rebaseSteps(onto)
	if err != nil {
		return nil, err
	}
	st := &rebaseState{
		headName: headName,
		origHead: origHead,
		onto:     onto,
		ontoName: onto.String(),
		steps:    steps,
	}
	if err := writeRebaseState(r.state, st); err != nil {
		_ = removeRebaseState(r.state)
		return nil, err
	}
	if _, err := r.runGitCommand([]string{"checkout", "--quiet", "--detach", onto.String()}, false, "git checkout"); err != nil {
		_ = removeRebaseState(r.state)
		return nil, giterr.Git(err)
	}
	slog.Debug("rebase started",
		slog.String("head", headName),
		slog.String("onto", onto.Short()),
		slog.Int("steps", len(steps)))
	return &cliRebase{r: r, st: st}, nil
}

func (r *repository) OpenRebase() (Rebase, error) {
	st, err := readRebaseState(r.state)
	if err != nil {
		return nil, err
	}
	return &cliRebase{r: r, st: st}, nil
}

// rebaseSteps lists the commits reachable from HEAD but not from onto, oldest
// first, skipping merges and patches onto already contains.
func (r *repository) rebaseSteps(onto CommitID) ([]CommitID, error) {
	out, err := r.runGitCommand([]string{
		"rev-list", "--reverse", "--topo-order", "--no-merges",
		"--right-only", "--cherry-pick", onto.String() + "...HEAD",
	}, false, "git rev-list")
	if err != nil {
		return nil, giterr.Git(err)
	}
	var steps []CommitID
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := ParseCommitID(line)
		if err != nil {
			return nil, giterr.Git(err)
		}
		steps = append(steps, id)
	}
	return steps, nil
}

func (rb *cliRebase) Len() int {
	return len(rb.st.steps)
}

func (rb *cliRebase) Current() (int, bool) {
	if rb.st.msgnum == 0 {
		return 0, false
	}
	return rb.st.msgnum - 1, true
}

func (rb *cliRebase) Next() (Operation, error) {
	if rb.st.msgnum >= len(rb.st.steps) {
		return Operation{}, io.EOF
	}
	rb.st.msgnum++
	if err := writeRebaseProgress(rb.r.state, rb.st); err != nil {
		return Operation{}, err
	}
	op := Operation{Index: rb.st.msgnum - 1, Commit: rb.st.steps[rb.st.msgnum-1]}
	_, err := rb.r.runGitCommand([]string{"cherry-pick", "--no-commit", op.Commit.String()}, false, "git cherry-pick")
	if err == nil {
		return op, nil
	}
	conflicts, cerr := rb.r.IndexConflicts()
	if cerr != nil {
		return op, cerr
	}
	if len(conflicts) > 0 {
		slog.Debug("rebase step conflicted",
			slog.String("commit", op.Commit.Short()),
			slog.Int("paths", len(conflicts)))
		return op, nil
	}
	return op, giterr.Git(err)
}

func (rb *cliRebase) Commit(committer Signature) (CommitID, error) {
	current, ok := rb.Current()
	if !ok {
		return ZeroCommitID, giterr.Generic("no rebase operation applied")
	}
	orig := rb.st.steps[current]
	if _, err := rb.r.runGitCommandEnv(committerEnv(committer), []string{
		"commit", "--quiet", "--no-verify", "--allow-empty", "--reuse-message=" + orig.String(),
	}, false, "git commit"); err != nil {
		return ZeroCommitID, giterr.Git(err)
	}
	id, err := rb.r.ResolveCommit("HEAD")
	if err != nil {
		return ZeroCommitID, err
	}
	rb.st.current = id
	if err := writeRebaseProgress(rb.r.state, rb.st); err != nil {
		return ZeroCommitID, err
	}
	return id, nil
}

func (rb *cliRebase) Abort() error {
	st := rb.st
	if st.detached() {
		if _, err := rb.r.runGitCommand([]string{"update-ref", "--no-deref", "-m", "rebase: aborting", "HEAD", st.origHead.String()}, false, "git update-ref"); err != nil {
			return giterr.Git(err)
		}
	} else {
		if _, err := rb.r.runGitCommand([]string{"symbolic-ref", "HEAD", st.headName}, false, "git symbolic-ref"); err != nil {
			return giterr.Git(err)
		}
	}
	if _, err := rb.r.runGitCommand([]string{"reset", "--hard", "--quiet", st.origHead.String()}, false, "git reset"); err != nil {
		return giterr.Git(err)
	}
	slog.Debug("rebase aborted", slog.String("head", st.headName), slog.String("orig", st.origHead.Short()))
	return removeRebaseState(rb.r.state)
}

func (rb *cliRebase) Finish(committer Signature) error {
	st := rb.st
	if !st.detached() {
		msg := fmt.Sprintf("rebase finished: %s onto %s", st.headName, st.onto)
		if _, err := rb.r.runGitCommandEnv(committerEnv(committer), []string{"update-ref", "-m", msg, st.headName, "HEAD"}, false, "git update-ref"); err != nil {
			return giterr.Git(err)
		}
		if _, err := rb.r.runGitCommand([]string{"symbolic-ref", "HEAD", st.headName}, false, "git symbolic-ref"); err != nil {
			return giterr.Git(err)
		}
	}
	slog.Debug("rebase finished", slog.String("head", st.headName), slog.Int("steps", len(st.steps)))
	return removeRebaseState(rb.r.state)
}

func committerEnv(sig Signature) []string {
	env := []string{
		"GIT_COMMITTER_NAME=" + sig.Name,
		"GIT_COMMITTER_EMAIL=" + sig.Email,
	}
	if !sig.When.IsZero() {
		env = append(env, "GIT_COMMITTER_DATE="+sig.When.Format("2006-01-02T15:04:05-0700"))
	}
	return env
}
