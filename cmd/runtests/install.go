package main

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/networkteam/discover-e2e/browser"
	"github.com/networkteam/discover-e2e/config"
)

func getCmdInstall(root *rootCommand) *cobra.Command {
	var names []string

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the playwright driver and browsers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(names) == 0 {
				names = []string{string(root.cfg.Browser)}
			}
			kinds := make([]config.BrowserKind, 0, len(names))
			for _, name := range lo.Uniq(names) {
				kind, err := config.ParseBrowserKind(name)
				if err != nil {
					return err
				}
				kinds = append(kinds, kind)
			}

			root.logger.Info("Installing browsers", "browsers", kinds)
			if err := browser.Install(kinds...); err != nil {
				return err
			}
			root.logger.Info("Browsers installed")
			return nil
		},
	}
	installCmd.Flags().StringSliceVarP(&names, "browser", "b", nil, "browsers to install (default from BROWSER)")

	return installCmd
}
