package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/asyncgit-go/internal/asyncgit"
	"github.com/thiagokokada/asyncgit-go/internal/git"
)

const passwordKey = "password"

// notifyBuffer is the capacity of the notification channel of a remote
// command. Redraws that do not fit are dropped by the controller; wait
// reads the current progress on every notification so none are needed.
const notifyBuffer = 16

// job is the polling surface shared by the async controllers.
type job interface {
	IsPending() bool
	Progress() (asyncgit.RemoteProgress, bool)
	LastResult() (string, bool)
}

type remoteFlags struct {
	remote   string
	branch   string
	username string
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.remote, "remote", "r", "", "remote name (default: configured remote, then origin)")
	cmd.Flags().StringVarP(&f.branch, "branch", "b", "", "branch name (default: current branch)")
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "username for HTTP basic auth; the password is read from ASYNCGIT_PASSWORD")
}

func (a *app) remoteName(f *remoteFlags) string {
	if f.remote != "" {
		return f.remote
	}
	return a.cfg.Remote
}

func (a *app) credential(f *remoteFlags) *git.BasicAuthCredential {
	if f.username == "" {
		return nil
	}
	return &git.BasicAuthCredential{Username: f.username, Password: a.v.GetString(passwordKey)}
}

func newPushCmd(a *app) *cobra.Command {
	var f remoteFlags
	var force, del bool
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a branch to a remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openRepo()
			if err != nil {
				return err
			}
			notify := make(chan asyncgit.Notification, notifyBuffer)
			p := asyncgit.NewAsyncPush(svc, notify)
			err = p.Request(asyncgit.PushRequest{
				Remote:          a.remoteName(&f),
				Branch:          f.branch,
				Force:           force,
				Delete:          del,
				BasicCredential: a.credential(&f),
			})
			if err != nil {
				return err
			}
			return wait(cmd.Context(), a.stderr, p, notify)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&force, "force", "f", false, "force push")
	cmd.Flags().BoolVarP(&del, "delete", "d", false, "delete the remote branch")
	return cmd
}

func newFetchCmd(a *app) *cobra.Command {
	var f remoteFlags
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a branch from a remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openRepo()
			if err != nil {
				return err
			}
			notify := make(chan asyncgit.Notification, notifyBuffer)
			fetch := asyncgit.NewAsyncFetch(svc, notify)
			err = fetch.Request(asyncgit.FetchRequest{
				Remote:          a.remoteName(&f),
				Branch:          f.branch,
				BasicCredential: a.credential(&f),
			})
			if err != nil {
				return err
			}
			return wait(cmd.Context(), a.stderr, fetch, notify)
		},
	}
	f.register(cmd)
	return cmd
}

func newPullCmd(a *app) *cobra.Command {
	var f remoteFlags
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch a branch and rebase the current branch onto it",
		Long: `Fetch a branch and rebase the current branch onto it.

The rebase is conflict-free: on the first conflicting commit it is rolled
back and HEAD is left where it was.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openRepo()
			if err != nil {
				return err
			}
			notify := make(chan asyncgit.Notification, notifyBuffer)
			pull := asyncgit.NewAsyncPull(svc, notify)
			err = pull.Request(asyncgit.PullRequest{
				Remote:          a.remoteName(&f),
				Branch:          f.branch,
				BasicCredential: a.credential(&f),
			})
			if err != nil {
				return err
			}
			return wait(cmd.Context(), a.stderr, pull, notify)
		},
	}
	f.register(cmd)
	return cmd
}

// wait redraws the progress of j on every notification until j is idle. An
// interrupt stops waiting but not the operation itself.
func wait(ctx context.Context, out io.Writer, j job, notify <-chan asyncgit.Notification) error {
	var last asyncgit.RemoteProgress
	shown := false
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case n := <-notify:
			if p, ok := j.Progress(); ok && (!shown || p != last) {
				fmt.Fprintf(out, "\r%s: %-8s %3d%%", n, p.State, p.Percent)
				last, shown = p, true
			}
			if j.IsPending() {
				continue
			}
			if shown {
				fmt.Fprintln(out)
			}
			if msg, failed := j.LastResult(); failed {
				return errors.New(msg)
			}
			return nil
		}
	}
}
