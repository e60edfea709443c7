// Command runtests runs the discover E2E suites, installs browsers and serves the reports.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/internal/runner"
	"github.com/networkteam/discover-e2e/logging"
)

var bannerColor = color.New(color.FgCyan)

// rootCommand keeps everything shared by the sub commands.
type rootCommand struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	cmd    *cobra.Command

	cfg     config.Config
	logger  *logging.Logger
	noColor bool
}

func newRootCommand(ctx context.Context, stdout, stderr io.Writer) *rootCommand {
	c := &rootCommand{
		ctx:    ctx,
		stdout: stdout,
		stderr: stderr,
	}
	c.cmd = &cobra.Command{
		Use:               "runtests",
		Short:             "E2E tests for the TMDB discover demo",
		Long:              bannerColor.Sprint("Discover E2E test runner"),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.logger == nil {
				return nil
			}
			return c.logger.Close()
		},
	}
	c.cmd.SetOut(stdout)
	c.cmd.SetErr(stderr)
	c.cmd.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	c.cmd.AddCommand(
		getCmdRun(c),
		getCmdInstall(c),
		getCmdServe(c),
	)
	return c
}

func (c *rootCommand) persistentPreRunE(*cobra.Command, []string) error {
	if c.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := logging.Setup(cfg, logging.Options{Console: c.stderr})
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func (c *rootCommand) execute() int {
	err := c.cmd.ExecuteContext(c.ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, runner.ErrTestsFailed) {
		color.New(color.FgRed).Fprintf(c.stderr, "Error: %v\n", err)
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newRootCommand(ctx, os.Stdout, os.Stderr).execute()
	stop()
	os.Exit(code)
}
