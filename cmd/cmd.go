package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thiagokokada/asyncgit-go/internal/config"
	"github.com/thiagokokada/asyncgit-go/internal/git"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	stdout  io.Writer
	stderr  io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	stderr = newLockedWriter(stderr)
	root := newRootCmd(&app{v: viper.New(), stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "asyncgit",
		Short: "Push, fetch, pull and rebase with live progress",
		Long: `asyncgit runs remote operations in the background while reporting their
progress, and rebases branches either conflict-free (rolling back on the
first conflict) or leaving conflicts open for resolution.

Settings are read from $XDG_CONFIG_HOME/asyncgit/config.yaml, ASYNCGIT_*
environment variables and flags, in that order.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/asyncgit/config.yaml)")
	flags.StringP(config.KeyRepo, "C", ".", "path to the repository")
	flags.BoolP(config.KeyVerbose, "v", false, "enable verbose logging")
	flags.String(config.KeyTheme, "auto", "color theme: auto, light, or dark")
	flags.String(config.KeyColor, "auto", "colorize output: auto, always, or never")
	for _, key := range []string{config.KeyRepo, config.KeyVerbose, config.KeyTheme, config.KeyColor} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		newPushCmd(a),
		newFetchCmd(a),
		newPullCmd(a),
		newRebaseCmd(a),
		newStatusCmd(a),
		newConflictsCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))
	slog.Debug("configuration loaded", slog.String("file", a.v.ConfigFileUsed()), slog.String("repo", cfg.Repo))
	return nil
}

func (a *app) openRepo() (*git.Service, error) {
	svc, err := git.Open(a.cfg.Repo)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", a.cfg.Repo, err)
	}
	return svc, nil
}
