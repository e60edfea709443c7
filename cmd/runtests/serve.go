package main

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/networkteam/discover-e2e/report"
)

func getCmdServe(root *rootCommand) *cobra.Command {
	var (
		addr string
		dir  string
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTML report and screenshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				// The report lives in <dir>/html/report.html next to <dir>/screenshots
				dir = filepath.Dir(filepath.Dir(root.cfg.ReportPath))
			}
			index, err := filepath.Rel(dir, root.cfg.ReportPath)
			if err != nil {
				index = "html/report.html"
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           report.NewHandler(dir, report.WithIndex(filepath.ToSlash(index))),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			root.logger.Info("Serving reports", "addr", addr, "dir", dir)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "localhost:8080", "address to listen on")
	serveCmd.Flags().StringVar(&dir, "dir", "", "reports directory (default: parent of the report directory)")

	return serveCmd
}
