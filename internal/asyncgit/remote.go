package asyncgit

import (
	"context"
	"io"
	"log/slog"

	"github.com/thiagokokada/asyncgit-go/internal/git"
	gitbackend "github.com/thiagokokada/asyncgit-go/internal/git/backend"
)

// Repository is the blocking API the controllers drive. *git.Service
// implements it.
type Repository interface {
	Push(ctx context.Context, opts gitbackend.PushOptions, progress io.Writer) error
	Fetch(ctx context.Context, opts gitbackend.FetchOptions, progress io.Writer) error
	Pull(ctx context.Context, opts gitbackend.FetchOptions, progress io.Writer) (git.CommitID, error)
}

type PushRequest struct {
	Remote          string
	Branch          string
	Force           bool
	Delete          bool
	BasicCredential *git.BasicAuthCredential
}

type FetchRequest struct {
	Remote          string
	Branch          string
	BasicCredential *git.BasicAuthCredential
}

// PullRequest fetches Branch from Remote and rebases the current branch onto
// it, aborting on any conflict.
type PullRequest struct {
	Remote          string
	Branch          string
	BasicCredential *git.BasicAuthCredential
}

type AsyncPush struct {
	*asyncJob[PushRequest]
}

// NewAsyncPush returns a controller that reports on notify. Progress redraws
// are sent without blocking and are dropped when notify is full, so a reader
// must poll Progress rather than count notifications. The final notification
// of each operation is always delivered: it blocks until received, so notify
// must be drained for as long as an operation may be pending. A nil notify
// disables notifications.
func NewAsyncPush(repo Repository, notify chan<- Notification) *AsyncPush {
	return &AsyncPush{newAsyncJob(NotificationPush, notify, func(ctx context.Context, req PushRequest, w *progressWriter) error {
		return repo.Push(ctx, gitbackend.PushOptions{
			Remote:     req.Remote,
			Branch:     req.Branch,
			Force:      req.Force,
			Delete:     req.Delete,
			Credential: req.BasicCredential,
		}, w)
	})}
}

type AsyncFetch struct {
	*asyncJob[FetchRequest]
}

// NewAsyncFetch is like NewAsyncPush for fetch requests.
func NewAsyncFetch(repo Repository, notify chan<- Notification) *AsyncFetch {
	return &AsyncFetch{newAsyncJob(NotificationFetch, notify, func(ctx context.Context, req FetchRequest, w *progressWriter) error {
		return repo.Fetch(ctx, gitbackend.FetchOptions{
			Remote:     req.Remote,
			Branch:     req.Branch,
			Credential: req.BasicCredential,
		}, w)
	})}
}

type AsyncPull struct {
	*asyncJob[PullRequest]
}

// NewAsyncPull is like NewAsyncPush for pull requests.
func NewAsyncPull(repo Repository, notify chan<- Notification) *AsyncPull {
	return &AsyncPull{newAsyncJob(NotificationPull, notify, func(ctx context.Context, req PullRequest, w *progressWriter) error {
		head, err := repo.Pull(ctx, gitbackend.FetchOptions{
			Remote:     req.Remote,
			Branch:     req.Branch,
			Credential: req.BasicCredential,
		}, w)
		if err != nil {
			return err
		}
		slog.Debug("pull finished", slog.String("head", head.Short()))
		w.Status("HEAD is now at " + head.Short())
		return nil
	})}
}
