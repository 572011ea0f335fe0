package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/asyncgit-go/internal/git"
	"github.com/thiagokokada/asyncgit-go/internal/giterr"
	"github.com/thiagokokada/asyncgit-go/internal/render"
)

var errRebaseStopped = errors.New("rebase stopped on conflicts; resolve them or run 'asyncgit rebase --abort'")

func newRebaseCmd(a *app) *cobra.Command {
	var conflictFree, abort, progress bool
	cmd := &cobra.Command{
		Use:   "rebase [--abort | --progress | <upstream>]",
		Short: "Rebase the current branch onto upstream",
		Long: `Rebase the current branch onto upstream.

By default the rebase stops at the first conflicting commit and stays open
so the conflicts can be inspected with 'asyncgit conflicts'. With
--conflict-free any conflict rolls the whole rebase back instead.

Examples:
  asyncgit rebase origin/main
  asyncgit rebase --conflict-free main
  asyncgit rebase --progress
  asyncgit rebase --abort`,
		Args: func(cmd *cobra.Command, args []string) error {
			if abort || progress {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openRepo()
			if err != nil {
				return err
			}
			switch {
			case abort:
				return svc.AbortRebase()
			case progress:
				return a.printRebaseProgress(svc)
			case conflictFree:
				head, err := svc.ConflictFreeRebase(args[0])
				if err != nil {
					if errors.Is(err, giterr.ErrRebaseConflict) {
						return fmt.Errorf("%w: nothing was changed", err)
					}
					return err
				}
				fmt.Fprintf(a.stdout, "Successfully rebased. HEAD is now at %s\n", head.Short())
				return nil
			}
			state, err := svc.Rebase(args[0])
			if err != nil {
				return err
			}
			if state == git.RebaseFinished {
				fmt.Fprintln(a.stdout, "Successfully rebased.")
				return nil
			}
			if err := a.printRebaseProgress(svc); err != nil {
				return err
			}
			if err := a.printConflicts(svc); err != nil {
				return err
			}
			return errRebaseStopped
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&conflictFree, "conflict-free", false, "roll back on the first conflict instead of stopping")
	flags.BoolVar(&abort, "abort", false, "abort the rebase in progress and restore the original branch")
	flags.BoolVar(&progress, "progress", false, "show the step the rebase in progress is at")
	cmd.MarkFlagsMutuallyExclusive("abort", "progress", "conflict-free")
	return cmd
}

func (a *app) printRebaseProgress(svc *git.Service) error {
	p, err := svc.RebaseProgress()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "rebase step %d/%d\n", p.Current+1, p.Steps)
	return nil
}

func (a *app) printConflicts(svc *git.Service) error {
	report, sections, err := svc.ConflictReport()
	if err != nil {
		return err
	}
	if report == "" {
		fmt.Fprintln(a.stdout, "no conflicts")
		return nil
	}
	r := render.New(a.stdout, a.cfg.ThemePreference(), a.cfg.ColorMode())
	return r.ConflictReport(a.stdout, report, sections)
}

func newConflictsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts [path]",
		Short: "Show the ours/theirs diff of unmerged paths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			svc, err := a.openRepo()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return a.printConflicts(svc)
			}
			diff, err := svc.ConflictDiff(args[0])
			if err != nil {
				return err
			}
			r := render.New(a.stdout, a.cfg.ThemePreference(), a.cfg.ColorMode())
			return r.Diff(a.stdout, args[0], diff)
		},
	}
}
