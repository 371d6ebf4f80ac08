package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edgarkit/tenk2pdf/internal/clock/system"
	"github.com/edgarkit/tenk2pdf/internal/config"
	"github.com/edgarkit/tenk2pdf/internal/edgar"
	"github.com/edgarkit/tenk2pdf/internal/htmlprep"
	"github.com/edgarkit/tenk2pdf/internal/logging"
	"github.com/edgarkit/tenk2pdf/internal/pipeline"
	"github.com/edgarkit/tenk2pdf/internal/render"
)

// runner is the pipeline surface the command needs; the indirection lets
// tests swap in a fake without launching Chrome.
type runner interface {
	Run(ctx context.Context, tickers []string) ([]pipeline.Result, error)
}

// newRunner is the production factory. It's a variable so we can replace it
// with a mock factory in our tests.
var newRunner = buildRunner

func runConvert(cmd *cobra.Command, args []string, flags rootFlags) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return err
	}
	if flags.outputDir != "" {
		cfg.Output.Dir = flags.outputDir
	}
	if flags.verbose {
		cfg.Logging.Development = true
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	tickers := args
	if len(tickers) == 0 {
		tickers = config.DefaultTickers
	}

	run, cleanup, err := newRunner(cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := run.Run(cmd.Context(), tickers)
	if err != nil {
		return err
	}

	writeSummary(cmd.OutOrStdout(), results)

	if failed := countFailed(results); failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(results))
	}
	return nil
}

func buildRunner(cfg config.Config, logger *zap.Logger, progress io.Writer) (runner, func(), error) {
	client, err := edgar.NewClient(edgar.Options{
		UserAgent:       cfg.Edgar.UserAgent,
		RequestInterval: cfg.Edgar.RequestInterval,
		RequestTimeout:  cfg.Edgar.RequestTimeout,
		Clock:           system.New(),
		Logger:          logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init edgar client: %w", err)
	}

	renderer, err := render.New(render.Config{
		Timeout:     cfg.Render.Timeout,
		QuietWindow: cfg.Render.QuietWindow,
		NoSandbox:   cfg.Render.NoSandbox || os.Getuid() == 0,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init renderer: %w", err)
	}

	preparer := htmlprep.NewPreparer(client, cfg.Edgar.ImageTimeout, logger)

	run, err := pipeline.NewRunner(pipeline.Options{
		Client:    client,
		Preparer:  preparer,
		Renderer:  renderer,
		OutputDir: cfg.Output.Dir,
		Progress:  progress,
		Logger:    logger,
	})
	if err != nil {
		renderer.Close()
		return nil, nil, err
	}
	return run, renderer.Close, nil
}

func writeSummary(w io.Writer, results []pipeline.Result) {
	fmt.Fprintln(w, "\n==================================================")
	fmt.Fprintln(w, "Summary:")
	for _, res := range results {
		if res.Failed() {
			fmt.Fprintf(w, "  [FAIL] %s: %v\n", res.Ticker, res.Err)
			continue
		}
		fmt.Fprintf(w, "  [OK] %s: %s\n", res.Ticker, res.OutputPath)
	}
}

func countFailed(results []pipeline.Result) int {
	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	return failed
}
