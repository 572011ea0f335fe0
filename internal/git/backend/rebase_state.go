package backend

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

const rebaseStateDir = "rebase-merge"

// ErrNoRebase is returned when no rebase is persisted in the git directory.
var ErrNoRebase = errors.New("there is no rebase in progress")

// rebaseState mirrors the files of the rebase marker directory. Steps are
// stored as cmt.1 .. cmt.N and msgnum is the 1-based number of the step
// being applied (0 before the first step).
type rebaseState struct {
	headName string
	origHead CommitID
	onto     CommitID
	ontoName string
	steps    []CommitID
	msgnum   int
	current  CommitID
}

func (s *rebaseState) detached() bool {
	return !strings.HasPrefix(s.headName, "refs/")
}

func rebaseStateExists(fs billy.Filesystem) (bool, error) {
	_, err := fs.Stat(rebaseStateDir)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, giterr.IO(err)
}

func writeRebaseState(fs billy.Filesystem, s *rebaseState) error {
	if err := fs.MkdirAll(rebaseStateDir, 0o755); err != nil {
		return giterr.IO(err)
	}
	files := map[string]string{
		"head-name": s.headName,
		"orig-head": s.origHead.String(),
		"onto":      s.onto.String(),
		"onto_name": s.ontoName,
		"end":       strconv.Itoa(len(s.steps)),
	}
	for i, step := range s.steps {
		files[fmt.Sprintf("cmt.%d", i+1)] = step.String()
	}
	for name, value := range files {
		if err := writeStateFile(fs, name, value); err != nil {
			return err
		}
	}
	return writeRebaseProgress(fs, s)
}

// writeRebaseProgress persists the fields that change while stepping.
func writeRebaseProgress(fs billy.Filesystem, s *rebaseState) error {
	if err := writeStateFile(fs, "msgnum", strconv.Itoa(s.msgnum)); err != nil {
		return err
	}
	if s.current.IsZero() {
		return nil
	}
	return writeStateFile(fs, "current", s.current.String())
}

func readRebaseState(fs billy.Filesystem) (*rebaseState, error) {
	ok, err := rebaseStateExists(fs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, giterr.Git(ErrNoRebase)
	}
	s := &rebaseState{}
	if s.headName, err = readStateFile(fs, "head-name"); err != nil {
		return nil, err
	}
	if s.ontoName, err = readStateFile(fs, "onto_name"); err != nil {
		return nil, err
	}
	for name, dst := range map[string]*CommitID{"orig-head": &s.origHead, "onto": &s.onto} {
		if *dst, err = readStateCommit(fs, name); err != nil {
			return nil, err
		}
	}
	end, err := readStateInt(fs, "end")
	if err != nil {
		return nil, err
	}
	if s.msgnum, err = readStateInt(fs, "msgnum"); err != nil {
		return nil, err
	}
	if s.msgnum < 0 || s.msgnum > end {
		return nil, giterr.Genericf("corrupt rebase state: msgnum %d outside 0..%d", s.msgnum, end)
	}
	s.steps = make([]CommitID, 0, end)
	for i := 1; i <= end; i++ {
		id, err := readStateCommit(fs, fmt.Sprintf("cmt.%d", i))
		if err != nil {
			return nil, err
		}
		s.steps = append(s.steps, id)
	}
	if _, err := fs.Stat(path.Join(rebaseStateDir, "current")); err == nil {
		if s.current, err = readStateCommit(fs, "current"); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func removeRebaseState(fs billy.Filesystem) error {
	if err := util.RemoveAll(fs, rebaseStateDir); err != nil {
		return giterr.IO(err)
	}
	return nil
}

func writeStateFile(fs billy.Filesystem, name, value string) error {
	p := path.Join(rebaseStateDir, name)
	if err := util.WriteFile(fs, p, []byte(value+"\n"), 0o644); err != nil {
		return giterr.IO(fmt.Errorf("write %s: %w", p, err))
	}
	return nil
}

func readStateFile(fs billy.Filesystem, name string) (string, error) {
	p := path.Join(rebaseStateDir, name)
	f, err := fs.Open(p)
	if err != nil {
		return "", giterr.IO(fmt.Errorf("read %s: %w", p, err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", giterr.IO(fmt.Errorf("read %s: %w", p, err))
	}
	value, err := giterr.String(data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func readStateInt(fs billy.Filesystem, name string) (int, error) {
	value, err := readStateFile(fs, name)
	if err != nil {
		return 0, err
	}
	return giterr.Atoi(value)
}

func readStateCommit(fs billy.Filesystem, name string) (CommitID, error) {
	value, err := readStateFile(fs, name)
	if err != nil {
		return ZeroCommitID, err
	}
	id, err := ParseCommitID(value)
	if err != nil {
		return ZeroCommitID, giterr.Git(err)
	}
	return id, nil
}
