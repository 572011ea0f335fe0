package git

import gitbackend "github.com/thiagokokada/asyncgit-go/internal/git/backend"

type (
	CommitID            = gitbackend.CommitID
	Conflict            = gitbackend.Conflict
	LocalChanges        = gitbackend.LocalChanges
	RepoState           = gitbackend.RepoState
	BasicAuthCredential = gitbackend.BasicAuthCredential
)

const (
	RepoStateClean      = gitbackend.RepoStateClean
	RepoStateRebase     = gitbackend.RepoStateRebase
	RepoStateMerge      = gitbackend.RepoStateMerge
	RepoStateCherryPick = gitbackend.RepoStateCherryPick
)

// RebaseState is the outcome of a tolerant rebase.
type RebaseState uint8

const (
	RebaseFinished RebaseState = iota
	RebaseConflicted
)

func (s RebaseState) String() string {
	if s == RebaseConflicted {
		return "conflicted"
	}
	return "finished"
}

// RebaseProgress is read from the rebase left open on disk. Current is the
// 0-based index of the step being applied.
type RebaseProgress struct {
	Steps   int
	Current int
}

// FileSection points at the first line of a path's block in a rendered
// report.
type FileSection struct {
	Path string
	Line int
}
