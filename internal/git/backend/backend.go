package backend

import (
	"context"
	"io"
)

// Backend abstracts the synchronous, blocking repository primitives the
// async engine is built on.
//
// The default implementation combines go-git (object model, index, remotes)
// with the git executable (work tree mutation during rebases), but callers only
// see this interface so tests can substitute a fake.
type Backend interface {
	RepoPath() string
	GitDir() string

	HeadState() (hash string, headName string, ok bool, err error)
	LocalChangesStatus() (LocalChanges, error)
	RepoState() (RepoState, error)

	ResolveCommit(rev string) (CommitID, error)
	CommitParents(id CommitID) ([]CommitID, error)
	IsAncestor(ancestor, descendant CommitID) (bool, error)
	Signature() (Signature, error)

	IndexConflicts() ([]Conflict, error)
	ConflictDiff(path string) (string, error)

	StartRebase(onto CommitID) (Rebase, error)
	OpenRebase() (Rebase, error)

	Remotes() ([]string, error)
	Push(ctx context.Context, opts PushOptions, progress io.Writer) error
	Fetch(ctx context.Context, opts FetchOptions, progress io.Writer) error
}

// Rebase is a handle on the rebase persisted in the git directory. It stays
// valid until Abort or Finish is called.
type Rebase interface {
	// Len is the number of steps in the rebase.
	Len() int
	// Current returns the index of the step being applied, if any.
	Current() (int, bool)
	// Next applies the next step to the index and work tree. It returns io.EOF
	// once all steps have been applied. A step that leaves conflicts in the
	// index is not an error.
	Next() (Operation, error)
	// Commit records the applied step, keeping the original author.
	Commit(committer Signature) (CommitID, error)
	Abort() error
	Finish(committer Signature) error
}
