package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

// Remotes returns the configured remote names, sorted.
func (r *repository) Remotes() ([]string, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, giterr.Git(fmt.Errorf("list remotes: %w", err))
	}
	names := make([]string, 0, len(remotes))
	for _, rem := range remotes {
		names = append(names, rem.Config().Name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *repository) Push(ctx context.Context, opts PushOptions, progress io.Writer) error {
	if _, err := r.remote(opts.Remote); err != nil {
		return err
	}
	spec := pushRefSpec(opts.Branch, opts.Force, opts.Delete)
	slog.Debug("git push",
		slog.String("remote", opts.Remote),
		slog.String("refspec", spec.String()))
	err := r.repo.PushContext(ctx, &gitlib.PushOptions{
		RemoteName: opts.Remote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       basicAuth(opts.Credential),
		Progress:   progress,
	})
	return remoteError("push", err)
}

func (r *repository) Fetch(ctx context.Context, opts FetchOptions, progress io.Writer) error {
	if _, err := r.remote(opts.Remote); err != nil {
		return err
	}
	var specs []config.RefSpec
	if opts.Branch != "" {
		specs = []config.RefSpec{fetchRefSpec(opts.Remote, opts.Branch)}
	}
	slog.Debug("git fetch",
		slog.String("remote", opts.Remote),
		slog.String("branch", opts.Branch))
	err := r.repo.FetchContext(ctx, &gitlib.FetchOptions{
		RemoteName: opts.Remote,
		RefSpecs:   specs,
		Auth:       basicAuth(opts.Credential),
		Progress:   progress,
	})
	return remoteError("fetch", err)
}

func (r *repository) remote(name string) (*gitlib.Remote, error) {
	rem, err := r.repo.Remote(name)
	if err != nil {
		if errors.Is(err, gitlib.ErrRemoteNotFound) {
			return nil, giterr.Wrap(giterr.KindUnknownRemote, err)
		}
		return nil, giterr.Git(err)
	}
	return rem, nil
}

func pushRefSpec(branch string, force, del bool) config.RefSpec {
	ref := "refs/heads/" + branch
	if del {
		return config.RefSpec(":" + ref)
	}
	spec := ref + ":" + ref
	if force {
		spec = "+" + spec
	}
	return config.RefSpec(spec)
}

func fetchRefSpec(remote, branch string) config.RefSpec {
	return config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remote, branch))
}

func basicAuth(cred *BasicAuthCredential) transport.AuthMethod {
	if !cred.IsComplete() {
		return nil
	}
	return &http.BasicAuth{Username: cred.Username, Password: cred.Password}
}

// remoteError drops "already up-to-date" and classifies the rest.
func remoteError(op string, err error) error {
	if err == nil || errors.Is(err, gitlib.NoErrAlreadyUpToDate) {
		return nil
	}
	if errors.Is(err, gitlib.ErrRemoteNotFound) {
		return giterr.Wrap(giterr.KindUnknownRemote, err)
	}
	return giterr.Git(fmt.Errorf("%s: %w", op, err))
}
