package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gitbackend "github.com/thiagokokada/asyncgit-go/internal/git/backend"
	"github.com/thiagokokada/asyncgit-go/internal/giterr"
	"github.com/thiagokokada/asyncgit-go/internal/testutil"
)

// setupDiverged creates master = c1 <- c3 and foo = c1 <- c2 and leaves foo
// checked out. When conflicting, c2 and c3 both rewrite test.txt.
func setupDiverged(t *testing.T, conflicting bool) (dir, c3 string) {
	t.Helper()
	dir = testutil.InitRepo(t)
	testutil.CommitFile(t, dir, "test.txt", "test1\n", "commit1")
	testutil.CreateBranch(t, dir, "foo")
	name := "test2.txt"
	if conflicting {
		name = "test.txt"
	}
	c3 = testutil.CommitFile(t, dir, name, "test2\n", "commit3")
	testutil.CheckoutBranch(t, dir, "foo")
	testutil.CommitFile(t, dir, "test.txt", "test1\ntest2\n", "commit2")
	return dir, c3
}

func TestConflictFreeRebase_Smoke(t *testing.T) {
	t.Parallel()

	dir, c3 := setupDiverged(t, false)
	svc, err := Open(dir)
	require.NoError(t, err)

	got, err := svc.ConflictFreeRebase("master")
	require.NoError(t, err)

	parents, err := svc.backend.CommitParents(got)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, c3, parents[0].String())
	assert.Equal(t, got.String(), testutil.Head(t, dir))
	assert.Equal(t, "refs/heads/foo", testutil.HeadRef(t, dir))

	state, err := svc.RepoState()
	require.NoError(t, err)
	assert.Equal(t, gitbackend.RepoStateClean, state)
}

func TestConflictFreeRebase_ConflictRestoresRepository(t *testing.T) {
	t.Parallel()

	dir, _ := setupDiverged(t, true)
	head := testutil.Head(t, dir)
	svc, err := Open(dir)
	require.NoError(t, err)

	_, err = svc.ConflictFreeRebase("master")
	assert.ErrorIs(t, err, giterr.ErrRebaseConflict)

	assert.Equal(t, head, testutil.Head(t, dir))
	assert.Equal(t, "refs/heads/foo", testutil.HeadRef(t, dir))
	assert.Empty(t, testutil.Status(t, dir))
	_, err = svc.RebaseProgress()
	assert.Error(t, err)
	state, err := svc.RepoState()
	require.NoError(t, err)
	assert.Equal(t, gitbackend.RepoStateClean, state)
}

func TestRebase_ConflictedThenAbort(t *testing.T) {
	t.Parallel()

	dir, _ := setupDiverged(t, true)
	head := testutil.Head(t, dir)
	svc, err := Open(dir)
	require.NoError(t, err)

	state, err := svc.Rebase("master")
	require.NoError(t, err)
	assert.Equal(t, RebaseConflicted, state)

	progress, err := svc.RebaseProgress()
	require.NoError(t, err)
	assert.Equal(t, RebaseProgress{Steps: 1, Current: 0}, progress)

	conflicts, err := svc.Conflicts()
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "test.txt", conflicts[0].Path)

	report, sections, err := svc.ConflictReport()
	require.NoError(t, err)
	assert.Contains(t, report, "conflict test.txt (base, ours, theirs)")
	assert.Equal(t, []FileSection{{Path: "test.txt", Line: 1}}, sections)

	repoState, err := svc.RepoState()
	require.NoError(t, err)
	assert.Equal(t, gitbackend.RepoStateRebase, repoState)

	require.NoError(t, svc.AbortRebase())
	assert.Equal(t, head, testutil.Head(t, dir))
	assert.Empty(t, testutil.Status(t, dir))

	_, err = svc.RebaseProgress()
	assert.ErrorIs(t, err, gitbackend.ErrNoRebase)
}

func TestRebaseProgress_NothingOpen(t *testing.T) {
	t.Parallel()

	dir, _ := setupDiverged(t, false)
	svc, err := Open(dir)
	require.NoError(t, err)

	_, err = svc.RebaseProgress()
	assert.Error(t, err)
	assert.Error(t, svc.AbortRebase())
}

func TestConflictFreeRebase_NothingToReplay(t *testing.T) {
	t.Parallel()

	dir := testutil.InitRepo(t)
	testutil.CommitFile(t, dir, "a.txt", "a\n", "c1")
	testutil.CreateBranch(t, dir, "other")
	svc, err := Open(dir)
	require.NoError(t, err)

	_, err = svc.ConflictFreeRebase("other")
	assert.ErrorIs(t, err, giterr.Generic("no commit rebased"))
	_, err = svc.RebaseProgress()
	assert.Error(t, err)
}

func TestPull_RebasesOntoRemote(t *testing.T) {
	t.Parallel()

	// upstream and clone start from the same commit, then both diverge
	// without touching the same file.
	upstream := testutil.InitRepo(t)
	testutil.CommitFile(t, upstream, "base.txt", "base\n", "base")
	clone := testutil.InitRepo(t)
	testutil.RunGit(t, clone, nil, "remote", "add", "origin", upstream)
	testutil.RunGit(t, clone, nil, "fetch", "--quiet", "origin")
	testutil.RunGit(t, clone, nil, "reset", "--hard", "--quiet", "origin/master")

	remoteTip := testutil.CommitFile(t, upstream, "remote.txt", "remote\n", "remote change")
	testutil.CommitFile(t, clone, "local.txt", "local\n", "local change")

	svc, err := Open(clone)
	require.NoError(t, err)
	head, err := svc.Pull(context.Background(), gitbackend.FetchOptions{}, nil)
	require.NoError(t, err)

	parents, err := svc.backend.CommitParents(head)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, remoteTip, parents[0].String())
	assert.Equal(t, "local change", testutil.RunGit(t, clone, nil, "log", "-1", "--format=%s"))

	// A second pull has nothing to do.
	again, err := svc.Pull(context.Background(), gitbackend.FetchOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, head, again)
}
