package backend

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

// stageMerged is the stage of a resolved index entry. go-git's index.Merged
// is 1 and collides with index.AncestorMode, so it cannot be used here.
const stageMerged index.Stage = 0

// IndexConflicts lists the unmerged paths of the index, sorted by path.
func (r *repository) IndexConflicts() ([]Conflict, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, giterr.Git(fmt.Errorf("read index: %w", err))
	}
	byPath := make(map[string]*Conflict)
	for _, e := range idx.Entries {
		if e.Stage == stageMerged {
			continue
		}
		c, ok := byPath[e.Name]
		if !ok {
			c = &Conflict{Path: e.Name}
			byPath[e.Name] = c
		}
		switch e.Stage {
		case index.AncestorMode:
			c.Ancestor = true
		case index.OurMode:
			c.Ours = true
		case index.TheirMode:
			c.Theirs = true
		}
	}
	out := make([]Conflict, 0, len(byPath))
	for _, c := range byPath {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ConflictDiff renders a unified diff from the "ours" stage to the "theirs"
// stage of an unmerged path. A side missing from the index diffs as empty.
func (r *repository) ConflictDiff(path string) (string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return "", giterr.Git(fmt.Errorf("read index: %w", err))
	}
	var ours, theirs plumbing.Hash
	found := false
	for _, e := range idx.Entries {
		if e.Name != path {
			continue
		}
		switch e.Stage {
		case index.OurMode:
			ours, found = e.Hash, true
		case index.TheirMode:
			theirs, found = e.Hash, true
		}
	}
	if !found {
		return "", giterr.Genericf("%s is not conflicted", path)
	}
	a, err := r.blobText(ours)
	if err != nil {
		return "", err
	}
	b, err := r.blobText(theirs)
	if err != nil {
		return "", err
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "ours/" + path,
		ToFile:   "theirs/" + path,
		Context:  3,
	})
	if err != nil {
		return "", giterr.Git(err)
	}
	return diff, nil
}

func (r *repository) blobText(h plumbing.Hash) (string, error) {
	if h.IsZero() {
		return "", nil
	}
	blob, err := r.repo.BlobObject(h)
	if err != nil {
		return "", giterr.Git(fmt.Errorf("read blob %s: %w", h, err))
	}
	rd, err := blob.Reader()
	if err != nil {
		return "", giterr.Git(err)
	}
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		return "", giterr.IO(err)
	}
	return giterr.String(data)
}
