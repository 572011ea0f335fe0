package backend

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

// unknownIdentity fills in a missing user.name or user.email so commits can
// be written in repositories without a configured identity.
const unknownIdentity = "unknown"

func (r *repository) ResolveCommit(rev string) (CommitID, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		if rev == "HEAD" && errors.Is(err, plumbing.ErrReferenceNotFound) {
			return ZeroCommitID, giterr.ErrNoHead
		}
		return ZeroCommitID, giterr.Git(fmt.Errorf("resolve %s: %w", rev, err))
	}
	if _, err := r.repo.CommitObject(*h); err != nil {
		return ZeroCommitID, giterr.Git(fmt.Errorf("resolve %s: %w", rev, err))
	}
	return CommitIDFromHash(*h), nil
}

func (r *repository) CommitParents(id CommitID) ([]CommitID, error) {
	c, err := r.repo.CommitObject(id.Hash())
	if err != nil {
		return nil, giterr.Git(fmt.Errorf("commit %s: %w", id.Short(), err))
	}
	parents := make([]CommitID, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, CommitIDFromHash(p))
	}
	return parents, nil
}

// IsAncestor reports whether ancestor is reachable from descendant. A commit
// is its own ancestor.
func (r *repository) IsAncestor(ancestor, descendant CommitID) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	a, err := r.repo.CommitObject(ancestor.Hash())
	if err != nil {
		return false, giterr.Git(fmt.Errorf("commit %s: %w", ancestor.Short(), err))
	}
	d, err := r.repo.CommitObject(descendant.Hash())
	if err != nil {
		return false, giterr.Git(fmt.Errorf("commit %s: %w", descendant.Short(), err))
	}
	ok, err := a.IsAncestor(d)
	if err != nil {
		return false, giterr.Git(err)
	}
	return ok, nil
}

// Signature reads user.name and user.email from the local and global
// configuration.
func (r *repository) Signature() (Signature, error) {
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return Signature{}, giterr.Git(fmt.Errorf("read config: %w", err))
	}
	sig := Signature{Name: cfg.User.Name, Email: cfg.User.Email}
	if sig.Name == "" {
		sig.Name = unknownIdentity
	}
	if sig.Email == "" {
		sig.Email = unknownIdentity
	}
	return sig, nil
}
