// Package cmd defines and implements the CLI for the tenk2pdf executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edgarkit/tenk2pdf/internal/config"
)

// newRootCmd creates and configures the root command. tenk2pdf is a
// single-command tool: the root command does the conversion.
func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "tenk2pdf [tickers...]",
		Short: "Fetch the latest 10-K filings from SEC EDGAR and convert them to PDF.",
		Long: fmt.Sprintf(`tenk2pdf resolves each ticker to its most recent annual (10-K) filing on
SEC EDGAR, downloads the filing document, inlines its images, and renders a
paginated Letter PDF with oversized tables scaled to fit the page.

Requires a Chrome or Chromium binary on the host. With no arguments the
default ticker set is processed: %v.`, config.DefaultTickers),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configFile, "config", "", "config file (optional)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "directory to save PDFs (default output/)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose (development) logging")

	return cmd
}

type rootFlags struct {
	configFile string
	outputDir  string
	verbose    bool
}

// Execute runs the CLI and exits non-zero when any ticker failed.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
