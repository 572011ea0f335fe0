package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/asyncgit-go/internal/asyncgit"
	"github.com/thiagokokada/asyncgit-go/internal/buildinfo"
	"github.com/thiagokokada/asyncgit-go/internal/config"
	"github.com/thiagokokada/asyncgit-go/internal/git"
	"github.com/thiagokokada/asyncgit-go/internal/giterr"
	"github.com/thiagokokada/asyncgit-go/internal/watch"
)

func newStatusCmd(a *app) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the branch, repository state and rebase progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openRepo()
			if err != nil {
				return err
			}
			if err := a.printStatus(svc); err != nil || !follow {
				return err
			}

			notify := make(chan asyncgit.Notification, 1)
			w := watch.New(svc.RepoPath(), svc.GitDir(), a.cfg.WatchDelay, notify)
			if err := w.Start(); err != nil {
				return err
			}
			defer func() {
				if err := w.Close(); err != nil {
					slog.Error("watcher close", slog.Any("error", err))
				}
			}()
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-notify:
					fmt.Fprintln(a.stdout)
					if err := a.printStatus(svc); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "print the status again whenever the repository changes")
	flags := cmd.Flags()
	flags.Duration(config.KeyWatchDelay, 0, "delay used to coalesce repository events (default 350ms)")
	_ = a.v.BindPFlag(config.KeyWatchDelay, flags.Lookup(config.KeyWatchDelay))
	return cmd
}

func (a *app) printStatus(svc *git.Service) error {
	branch, err := svc.HeadBranch()
	switch {
	case errors.Is(err, giterr.ErrNoHead):
		branch = "(detached)"
	case err != nil:
		return err
	}
	state, err := svc.RepoState()
	if err != nil {
		return err
	}
	changes, err := svc.LocalChanges()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "branch: %s\nstate: %s\n", branch, state)
	if state == git.RepoStateRebase {
		// A rebase started by another tool has no progress we can read.
		if err := a.printRebaseProgress(svc); err != nil {
			slog.Debug("rebase progress unavailable", slog.Any("error", err))
		}
	}
	switch {
	case changes.HasConflicts:
		fmt.Fprintln(a.stdout, "changes: unmerged paths")
	case changes.Clean():
		fmt.Fprintln(a.stdout, "changes: none")
	default:
		fmt.Fprintf(a.stdout, "changes: staged=%t worktree=%t\n", changes.HasStaged, changes.HasWorktree)
	}
	return nil
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			out, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			if used := a.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(a.stdout, "# %s\n", used)
			}
			_, err = a.stdout.Write(out)
			return err
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintln(a.stdout, buildinfo.Summary())
			info, err := git.GitVersion()
			if err != nil {
				fmt.Fprintf(a.stdout, "git: %v\n", err)
				return nil
			}
			fmt.Fprintf(a.stdout, "git %s\n", info)
			return nil
		},
	}
}
