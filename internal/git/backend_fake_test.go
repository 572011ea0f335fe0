package git

import (
	"context"
	"errors"
	"io"

	gitbackend "github.com/thiagokokada/asyncgit-go/internal/git/backend"
)

type fakeBackend struct {
	repoPath string

	headStateFunc     func() (hash string, headName string, ok bool, err error)
	resolveCommitFunc func(rev string) (gitbackend.CommitID, error)
	isAncestorFunc    func(ancestor, descendant gitbackend.CommitID) (bool, error)
	conflictsFunc     func() ([]gitbackend.Conflict, error)
	conflictDiffFunc  func(path string) (string, error)
	startRebaseFunc   func(onto gitbackend.CommitID) (gitbackend.Rebase, error)
	openRebaseFunc    func() (gitbackend.Rebase, error)
	remotesFunc       func() ([]string, error)
	pushFunc          func(opts gitbackend.PushOptions) error
	fetchFunc         func(opts gitbackend.FetchOptions) error

	lastPush  *gitbackend.PushOptions
	lastFetch *gitbackend.FetchOptions
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }
func (f *fakeBackend) GitDir() string   { return f.repoPath + "/.git" }

func (f *fakeBackend) HeadState() (string, string, bool, error) {
	if f.headStateFunc != nil {
		return f.headStateFunc()
	}
	return "", "", false, errors.New("unexpected HeadState call")
}

func (f *fakeBackend) LocalChangesStatus() (gitbackend.LocalChanges, error) {
	return gitbackend.LocalChanges{}, nil
}

func (f *fakeBackend) RepoState() (gitbackend.RepoState, error) {
	return gitbackend.RepoStateClean, nil
}

func (f *fakeBackend) ResolveCommit(rev string) (gitbackend.CommitID, error) {
	if f.resolveCommitFunc != nil {
		return f.resolveCommitFunc(rev)
	}
	return gitbackend.ZeroCommitID, errors.New("unexpected ResolveCommit call")
}

func (f *fakeBackend) CommitParents(gitbackend.CommitID) ([]gitbackend.CommitID, error) {
	return nil, errors.New("unexpected CommitParents call")
}

func (f *fakeBackend) IsAncestor(ancestor, descendant gitbackend.CommitID) (bool, error) {
	if f.isAncestorFunc != nil {
		return f.isAncestorFunc(ancestor, descendant)
	}
	return false, errors.New("unexpected IsAncestor call")
}

func (f *fakeBackend) Signature() (gitbackend.Signature, error) {
	return gitbackend.Signature{Name: "unknown", Email: "unknown"}, nil
}

func (f *fakeBackend) IndexConflicts() ([]gitbackend.Conflict, error) {
	if f.conflictsFunc != nil {
		return f.conflictsFunc()
	}
	return nil, nil
}

func (f *fakeBackend) ConflictDiff(path string) (string, error) {
	if f.conflictDiffFunc != nil {
		return f.conflictDiffFunc(path)
	}
	return "", errors.New("unexpected ConflictDiff call")
}

func (f *fakeBackend) StartRebase(onto gitbackend.CommitID) (gitbackend.Rebase, error) {
	if f.startRebaseFunc != nil {
		return f.startRebaseFunc(onto)
	}
	return nil, errors.New("unexpected StartRebase call")
}

func (f *fakeBackend) OpenRebase() (gitbackend.Rebase, error) {
	if f.openRebaseFunc != nil {
		return f.openRebaseFunc()
	}
	return nil, errors.New("unexpected OpenRebase call")
}

func (f *fakeBackend) Remotes() ([]string, error) {
	if f.remotesFunc != nil {
		return f.remotesFunc()
	}
	return nil, nil
}

func (f *fakeBackend) Push(_ context.Context, opts gitbackend.PushOptions, _ io.Writer) error {
	f.lastPush = &opts
	if f.pushFunc != nil {
		return f.pushFunc(opts)
	}
	return errors.New("unexpected Push call")
}

func (f *fakeBackend) Fetch(_ context.Context, opts gitbackend.FetchOptions, _ io.Writer) error {
	f.lastFetch = &opts
	if f.fetchFunc != nil {
		return f.fetchFunc(opts)
	}
	return errors.New("unexpected Fetch call")
}

// fakeRebase replays steps in memory. conflictAt marks the step indexes
// whose Next leaves the fake index conflicted.
type fakeRebase struct {
	steps      []gitbackend.CommitID
	conflictAt map[int]bool
	nextErr    error

	pos       int
	committed []gitbackend.CommitID
	aborted   bool
	finished  bool

	// conflicted is shared with fakeBackend.conflictsFunc.
	conflicted *bool
}

func (r *fakeRebase) Len() int { return len(r.steps) }

func (r *fakeRebase) Current() (int, bool) {
	if r.pos == 0 {
		return 0, false
	}
	return r.pos - 1, true
}

func (r *fakeRebase) Next() (gitbackend.Operation, error) {
	if r.nextErr != nil {
		return gitbackend.Operation{}, r.nextErr
	}
	if r.pos >= len(r.steps) {
		return gitbackend.Operation{}, io.EOF
	}
	r.pos++
	if r.conflictAt[r.pos-1] {
		*r.conflicted = true
	}
	return gitbackend.Operation{Index: r.pos - 1, Commit: r.steps[r.pos-1]}, nil
}

func (r *fakeRebase) Commit(gitbackend.Signature) (gitbackend.CommitID, error) {
	id := r.steps[r.pos-1]
	id[0] ^= 0xff
	r.committed = append(r.committed, id)
	return id, nil
}

func (r *fakeRebase) Abort() error {
	r.aborted = true
	*r.conflicted = false
	return nil
}

func (r *fakeRebase) Finish(gitbackend.Signature) error {
	r.finished = true
	return nil
}

// withRebase wires rb into f so conflicts reported by the index follow the
// fake rebase.
func (f *fakeBackend) withRebase(rb *fakeRebase) *fakeBackend {
	conflicted := false
	rb.conflicted = &conflicted
	f.startRebaseFunc = func(gitbackend.CommitID) (gitbackend.Rebase, error) { return rb, nil }
	f.openRebaseFunc = func() (gitbackend.Rebase, error) { return rb, nil }
	f.conflictsFunc = func() ([]gitbackend.Conflict, error) {
		if *rb.conflicted {
			return []gitbackend.Conflict{{Path: "file.txt", Ours: true, Theirs: true}}, nil
		}
		return nil, nil
	}
	if f.resolveCommitFunc == nil {
		f.resolveCommitFunc = func(string) (gitbackend.CommitID, error) { return commitID(0xaa), nil }
	}
	return f
}

func commitID(b byte) gitbackend.CommitID {
	var id gitbackend.CommitID
	for i := range id {
		id[i] = b
	}
	return id
}
