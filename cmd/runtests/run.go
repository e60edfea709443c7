package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/internal/runner"
)

type runCmd struct {
	root *rootCommand

	suite    string
	browser  string
	headed   bool
	parallel int
	report   string
}

func (c *runCmd) run(cmd *cobra.Command, _ []string) error {
	cfg := c.root.cfg

	browser := c.browser
	if browser == "" {
		browser = string(cfg.Browser)
	}
	reportPath := c.report
	if reportPath == "" {
		reportPath = cfg.ReportPath
	}

	plan, err := runner.NewPlan(runner.Options{
		Suite:         config.Suite(c.suite),
		Browser:       config.BrowserKind(browser),
		Headed:        c.headed,
		Parallel:      c.parallel,
		ReportPath:    reportPath,
		ScreenshotDir: cfg.ScreenshotDir,
		LogFile:       cfg.LogFile,
	})
	if err != nil {
		return err
	}

	r := runner.New(c.root.stdout, c.root.logger.Logger)
	_, err = r.Run(cmd.Context(), plan)
	return err
}

func getCmdRun(root *rootCommand) *cobra.Command {
	c := &runCmd{root: root}

	suites := lo.Map(config.Suites, func(s config.Suite, _ int) string { return string(s) })
	browsers := lo.Map(config.BrowserKinds, func(b config.BrowserKind, _ int) string { return string(b) })

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a test suite",
		Long: fmt.Sprintf(`Run a test suite and write the HTML report.

  Suites: %s
  Browsers: %s`, strings.Join(suites, ", "), strings.Join(browsers, ", ")),
		Example: `  runtests run --suite smoke
  runtests run --suite ui --browser firefox --headed
  runtests run --suite all --parallel 4`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	flags := runCmd.Flags()
	flags.StringVarP(&c.suite, "suite", "s", string(config.SuiteSmoke), "test suite to run")
	flags.StringVarP(&c.browser, "browser", "b", "", "browser to use (default from BROWSER)")
	flags.BoolVar(&c.headed, "headed", false, "show the browser window")
	flags.IntVarP(&c.parallel, "parallel", "n", 1, "number of tests run in parallel")
	flags.StringVar(&c.report, "report", "", "path of the HTML report (default from REPORT_PATH)")

	return runCmd
}
