package git

import (
	"errors"
	"io"
	"log/slog"

	gitbackend "github.com/thiagokokada/asyncgit-go/internal/git/backend"
	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

// conflictPolicy decides what replay does when a step leaves conflicts.
type conflictPolicy uint8

const (
	// abortOnConflict rolls the rebase back and fails with ErrRebaseConflict.
	abortOnConflict conflictPolicy = iota
	// pauseOnConflict leaves the rebase open for the user to resolve.
	pauseOnConflict
)

type replayResult struct {
	last       CommitID
	committed  bool
	conflicted bool
}

// ConflictFreeRebase rebases the current branch onto target and returns the
// last replayed commit. Any conflict aborts the whole rebase, leaving HEAD
// and the work tree as they were.
func (s *Service) ConflictFreeRebase(target string) (CommitID, error) {
	if err := s.ready(); err != nil {
		return gitbackend.ZeroCommitID, err
	}
	onto, err := s.backend.ResolveCommit(target)
	if err != nil {
		return gitbackend.ZeroCommitID, err
	}
	return s.ConflictFreeRebaseOnto(onto)
}

func (s *Service) ConflictFreeRebaseOnto(onto CommitID) (CommitID, error) {
	if err := s.ready(); err != nil {
		return gitbackend.ZeroCommitID, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rb, err := s.backend.StartRebase(onto)
	if err != nil {
		return gitbackend.ZeroCommitID, err
	}
	res, err := s.replay(rb, abortOnConflict)
	if err != nil {
		return gitbackend.ZeroCommitID, err
	}
	if !res.committed {
		return gitbackend.ZeroCommitID, errNoCommitRebased
	}
	return res.last, nil
}

// Rebase rebases the current branch onto target. A conflicting step stops
// the rebase and leaves it open on disk; RebaseProgress and AbortRebase
// operate on it afterwards.
func (s *Service) Rebase(target string) (RebaseState, error) {
	if err := s.ready(); err != nil {
		return RebaseFinished, err
	}
	onto, err := s.backend.ResolveCommit(target)
	if err != nil {
		return RebaseFinished, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rb, err := s.backend.StartRebase(onto)
	if err != nil {
		return RebaseFinished, err
	}
	res, err := s.replay(rb, pauseOnConflict)
	if err != nil {
		return RebaseFinished, err
	}
	if res.conflicted {
		return RebaseConflicted, nil
	}
	return RebaseFinished, nil
}

func (s *Service) RebaseProgress() (RebaseProgress, error) {
	if err := s.ready(); err != nil {
		return RebaseProgress{}, err
	}
	rb, err := s.backend.OpenRebase()
	if err != nil {
		return RebaseProgress{}, err
	}
	current, _ := rb.Current()
	return RebaseProgress{Steps: rb.Len(), Current: current}, nil
}

func (s *Service) AbortRebase() error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rb, err := s.backend.OpenRebase()
	if err != nil {
		return err
	}
	return rb.Abort()
}

// replay applies every remaining step of rb, committing each one with the
// original author. The index is checked for conflicts after each step and
// once more before finishing.
func (s *Service) replay(rb gitbackend.Rebase, policy conflictPolicy) (replayResult, error) {
	var res replayResult
	sig, err := s.backend.Signature()
	if err != nil {
		return res, s.bail(rb, policy, err)
	}
	for {
		op, err := rb.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, s.bail(rb, policy, err)
		}
		if stop, err := s.checkConflicts(rb, policy, &res); stop || err != nil {
			return res, err
		}
		id, err := rb.Commit(sig)
		if err != nil {
			return res, s.bail(rb, policy, err)
		}
		slog.Debug("rebase step committed",
			slog.Int("step", op.Index),
			slog.String("from", op.Commit.Short()),
			slog.String("to", id.Short()))
		res.last = id
		res.committed = true
	}
	if stop, err := s.checkConflicts(rb, policy, &res); stop || err != nil {
		return res, err
	}
	if err := rb.Finish(sig); err != nil {
		return res, err
	}
	return res, nil
}

// checkConflicts reports whether replay has to stop because the index has
// unmerged paths.
func (s *Service) checkConflicts(rb gitbackend.Rebase, policy conflictPolicy, res *replayResult) (bool, error) {
	conflicts, err := s.backend.IndexConflicts()
	if err != nil {
		return true, s.bail(rb, policy, err)
	}
	if len(conflicts) == 0 {
		return false, nil
	}
	res.conflicted = true
	if policy == pauseOnConflict {
		slog.Debug("rebase paused on conflict", slog.Int("paths", len(conflicts)))
		return true, nil
	}
	if err := rb.Abort(); err != nil {
		return true, err
	}
	slog.Debug("rebase aborted on conflict", slog.Int("paths", len(conflicts)))
	return true, giterr.ErrRebaseConflict
}

// bail aborts a conflict-free rebase that failed for another reason so the
// repository is not left mid-rebase. A paused rebase is left for the caller.
func (s *Service) bail(rb gitbackend.Rebase, policy conflictPolicy, cause error) error {
	if policy != abortOnConflict {
		return cause
	}
	if err := rb.Abort(); err != nil {
		slog.Error("abort after failed rebase step", slog.Any("error", err), slog.Any("cause", cause))
	}
	return cause
}
