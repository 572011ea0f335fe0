package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	gitbackend "github.com/thiagokokada/asyncgit-go/internal/git/backend"
	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

const defaultRemoteName = "origin"

var errNoCommitRebased = giterr.Generic("no commit rebased")

// DefaultRemote picks "origin" when configured, otherwise the only remote.
func (s *Service) DefaultRemote() (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	names, err := s.backend.Remotes()
	if err != nil {
		return "", err
	}
	if slices.Contains(names, defaultRemoteName) {
		return defaultRemoteName, nil
	}
	if len(names) == 1 {
		return names[0], nil
	}
	return "", giterr.ErrNoDefaultRemoteFound
}

func (s *Service) resolveRemote(name string) (string, error) {
	if name == "" {
		return s.DefaultRemote()
	}
	names, err := s.backend.Remotes()
	if err != nil {
		return "", err
	}
	if !slices.Contains(names, name) {
		return "", giterr.Wrap(giterr.KindUnknownRemote, fmt.Errorf("remote %q not configured", name))
	}
	return name, nil
}

func (s *Service) resolveBranch(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	return s.HeadBranch()
}

// Push publishes a branch. Empty Remote and Branch fields default to the
// default remote and the checked out branch.
func (s *Service) Push(ctx context.Context, opts gitbackend.PushOptions, progress io.Writer) error {
	if err := s.ready(); err != nil {
		return err
	}
	var err error
	if opts.Remote, err = s.resolveRemote(opts.Remote); err != nil {
		return err
	}
	if opts.Branch, err = s.resolveBranch(opts.Branch); err != nil {
		return err
	}
	slog.Debug("push",
		slog.String("remote", opts.Remote),
		slog.String("branch", opts.Branch),
		slog.Bool("force", opts.Force),
		slog.Bool("delete", opts.Delete))
	return s.backend.Push(ctx, opts, progress)
}

// Fetch updates remote-tracking refs. An empty Branch fetches the remote's
// configured refspecs.
func (s *Service) Fetch(ctx context.Context, opts gitbackend.FetchOptions, progress io.Writer) error {
	if err := s.ready(); err != nil {
		return err
	}
	var err error
	if opts.Remote, err = s.resolveRemote(opts.Remote); err != nil {
		return err
	}
	slog.Debug("fetch", slog.String("remote", opts.Remote), slog.String("branch", opts.Branch))
	return s.backend.Fetch(ctx, opts, progress)
}

// Pull fetches a branch and rebases the current branch onto its
// remote-tracking ref with ConflictFreeRebaseOnto. It returns the new HEAD.
func (s *Service) Pull(ctx context.Context, opts gitbackend.FetchOptions, progress io.Writer) (CommitID, error) {
	if err := s.ready(); err != nil {
		return gitbackend.ZeroCommitID, err
	}
	var err error
	if opts.Remote, err = s.resolveRemote(opts.Remote); err != nil {
		return gitbackend.ZeroCommitID, err
	}
	if opts.Branch, err = s.resolveBranch(opts.Branch); err != nil {
		return gitbackend.ZeroCommitID, err
	}
	if err := s.backend.Fetch(ctx, opts, progress); err != nil {
		return gitbackend.ZeroCommitID, err
	}
	onto, err := s.backend.ResolveCommit(fmt.Sprintf("refs/remotes/%s/%s", opts.Remote, opts.Branch))
	if err != nil {
		return gitbackend.ZeroCommitID, err
	}
	head, err := s.backend.ResolveCommit("HEAD")
	if err != nil {
		return gitbackend.ZeroCommitID, err
	}
	upToDate, err := s.backend.IsAncestor(onto, head)
	if err != nil {
		return gitbackend.ZeroCommitID, err
	}
	if upToDate {
		return head, nil
	}
	id, err := s.ConflictFreeRebaseOnto(onto)
	if errors.Is(err, errNoCommitRebased) {
		// No local commits, HEAD now equals the remote-tracking ref.
		return onto, nil
	}
	return id, err
}
