package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pokerlog/internal/bootstrap"
	"pokerlog/internal/platform/config"
)

type rootOptions struct {
	dataDir    string
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "pokerlog",
		Short:         "Poker session tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data", ".", "data directory")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (optional)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override: debug|info|warn|error")

	root.AddCommand(newSessionCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newHUDCmd(opts))
	return root
}

func loadApp(opts *rootOptions) (*bootstrap.App, error) {
	cfg, err := config.Load(opts.dataDir, opts.configPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.logLevel) != "" {
		cfg.Log.Level = opts.logLevel
	}
	return bootstrap.New(cfg)
}

// withApp runs fn against a freshly wired app and closes it afterwards.
func withApp(opts *rootOptions, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(context.Background(), app)
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import historical sessions from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, app *bootstrap.App) error {
				report, err := app.ImportCLI.ImportFile(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "imported cash=%d tournaments=%d skipped=%d\n", report.CashSessionsCreated, report.TournamentsCreated, report.RowsSkipped)
				for _, warn := range report.Warnings {
					kind := "adjusted"
					if warn.Skipped {
						kind = "skipped"
					}
					_, _ = fmt.Fprintf(w, "row %d\t%s\t%s\n", warn.Row, kind, warn.Reason)
				}
				return nil
			})
		},
	}
}

func newHUDCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hud",
		Short: "Run the live session heads-up display",
		RunE: func(_ *cobra.Command, _ []string) error {
			// Keep stderr quiet while the alternate screen is up.
			if opts.logLevel == "" {
				opts.logLevel = "error"
			}
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunHUD(app)
		},
	}
}
