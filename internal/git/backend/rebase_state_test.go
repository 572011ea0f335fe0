package backend

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

func mustCommitID(t *testing.T, s string) CommitID {
	t.Helper()
	id, err := ParseCommitID(s)
	require.NoError(t, err)
	return id
}

func TestRebaseState_WriteRead(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	st := &rebaseState{
		headName: "refs/heads/feature",
		origHead: mustCommitID(t, "1111111111111111111111111111111111111111"),
		onto:     mustCommitID(t, "2222222222222222222222222222222222222222"),
		ontoName: "master",
		steps: []CommitID{
			mustCommitID(t, "3333333333333333333333333333333333333333"),
			mustCommitID(t, "4444444444444444444444444444444444444444"),
		},
	}
	require.NoError(t, writeRebaseState(fs, st))

	raw, err := readStateFile(fs, "cmt.2")
	require.NoError(t, err)
	assert.Equal(t, "4444444444444444444444444444444444444444", raw)

	got, err := readRebaseState(fs)
	require.NoError(t, err)
	assert.Equal(t, st, got)
	assert.False(t, got.detached())

	st.msgnum = 1
	st.current = mustCommitID(t, "5555555555555555555555555555555555555555")
	require.NoError(t, writeRebaseProgress(fs, st))
	got, err = readRebaseState(fs)
	require.NoError(t, err)
	assert.Equal(t, 1, got.msgnum)
	assert.Equal(t, st.current, got.current)

	require.NoError(t, removeRebaseState(fs))
	ok, err := rebaseStateExists(fs)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadRebaseState_Missing(t *testing.T) {
	t.Parallel()

	_, err := readRebaseState(memfs.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRebase))
	assert.Equal(t, giterr.KindGit, giterr.KindOf(err))
}

func validStateFiles() map[string]string {
	return map[string]string{
		"head-name": "refs/heads/feature",
		"orig-head": "1111111111111111111111111111111111111111",
		"onto":      "2222222222222222222222222222222222222222",
		"onto_name": "master",
		"end":       "1",
		"msgnum":    "0",
		"cmt.1":     "3333333333333333333333333333333333333333",
	}
}

func TestReadRebaseState_Corrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files map[string]string
		kind  giterr.Kind
	}{
		{name: "bad_msgnum", files: map[string]string{"msgnum": "x"}, kind: giterr.KindIntConversion},
		{name: "msgnum_past_end", files: map[string]string{"msgnum": "2"}, kind: giterr.KindGeneric},
		{name: "bad_commit", files: map[string]string{"cmt.1": "nope"}, kind: giterr.KindGit},
		{name: "bad_utf8", files: map[string]string{"head-name": "\xff\xfe"}, kind: giterr.KindUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := memfs.New()
			for k, v := range validStateFiles() {
				if override, ok := tt.files[k]; ok {
					v = override
				}
				require.NoError(t, util.WriteFile(fs, "rebase-merge/"+k, []byte(v), 0o644))
			}
			_, err := readRebaseState(fs)
			require.Error(t, err)
			assert.Equal(t, tt.kind, giterr.KindOf(err))
		})
	}
}

func TestReadRebaseState_WrittenByHand(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	for k, v := range validStateFiles() {
		require.NoError(t, util.WriteFile(fs, "rebase-merge/"+k, []byte(v+"\n"), 0o644))
	}
	st, err := readRebaseState(fs)
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/feature", st.headName)
	assert.Len(t, st.steps, 1)
	assert.True(t, st.current.IsZero())
}

func TestRebaseState_Detached(t *testing.T) {
	t.Parallel()

	assert.True(t, (&rebaseState{headName: "HEAD"}).detached())
	assert.True(t, (&rebaseState{headName: "detached HEAD"}).detached())
	assert.False(t, (&rebaseState{headName: "refs/heads/master"}).detached())
}
