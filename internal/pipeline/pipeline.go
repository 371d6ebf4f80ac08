// Package pipeline orchestrates the per-ticker flow: resolve the ticker,
// locate the latest 10-K, fetch and prepare the document, and render the
// PDF. Tickers are processed sequentially; one ticker's failure never stops
// the rest of the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/edgarkit/tenk2pdf/internal/edgar"
	"github.com/edgarkit/tenk2pdf/internal/id/uuid"
)

// Client is the slice of the EDGAR client the runner depends on.
type Client interface {
	FetchTickerMapping(ctx context.Context) (edgar.TickerMapping, error)
	FetchSubmissions(ctx context.Context, cik string) (edgar.CompanySubmissions, error)
	FetchDocument(ctx context.Context, rawURL string) (string, error)
}

// Preparer makes a raw filing print-ready.
type Preparer interface {
	Prepare(ctx context.Context, htmlContent, baseURL string) (string, error)
}

// Renderer produces the final PDF.
type Renderer interface {
	RenderPDF(ctx context.Context, htmlContent, outputPath string) error
}

// Result records the outcome for one ticker.
type Result struct {
	Ticker     string
	OutputPath string
	Err        error
}

// Failed reports whether the ticker's processing ended in an error.
func (r Result) Failed() bool { return r.Err != nil }

// Options configures a Runner.
type Options struct {
	Client    Client
	Preparer  Preparer
	Renderer  Renderer
	OutputDir string
	// Progress receives the human-readable per-step lines; defaults to
	// stdout.
	Progress io.Writer
	Logger   *zap.Logger
}

// Runner executes the pipeline for a list of tickers.
type Runner struct {
	client    Client
	preparer  Preparer
	renderer  Renderer
	outputDir string
	progress  io.Writer
	logger    *zap.Logger
}

// NewRunner validates deps and builds a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Client == nil {
		return nil, errors.New("client must be set")
	}
	if opts.Preparer == nil {
		return nil, errors.New("preparer must be set")
	}
	if opts.Renderer == nil {
		return nil, errors.New("renderer must be set")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("output dir must be set")
	}
	progress := opts.Progress
	if progress == nil {
		progress = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		client:    opts.Client,
		preparer:  opts.Preparer,
		renderer:  opts.Renderer,
		outputDir: opts.OutputDir,
		progress:  progress,
		logger:    logger,
	}, nil
}

// Run processes each ticker in order and returns one Result per ticker.
// It returns an error only for run-level failures (output directory,
// ticker mapping); per-ticker errors land in the Results.
func (r *Runner) Run(ctx context.Context, tickers []string) ([]Result, error) {
	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, fmt.Errorf("run id: %w", err)
	}
	logger := r.logger.With(zap.String("run_id", runID))

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	fmt.Fprintln(r.progress, "Fetching ticker-to-CIK mapping...")
	mapping, err := r.client.FetchTickerMapping(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch ticker mapping: %w", err)
	}
	logger.Info("ticker mapping loaded", zap.Int("entries", len(mapping)))

	results := make([]Result, 0, len(tickers))
	for _, raw := range tickers {
		ticker := strings.ToUpper(raw)
		path, err := r.processTicker(ctx, logger, ticker, mapping)
		if err != nil {
			fmt.Fprintf(r.progress, "  ERROR: %v\n", err)
			logger.Warn("ticker failed", zap.String("ticker", ticker), zap.Error(err))
		}
		results = append(results, Result{Ticker: ticker, OutputPath: path, Err: err})
	}
	return results, nil
}

func (r *Runner) processTicker(ctx context.Context, logger *zap.Logger, ticker string, mapping edgar.TickerMapping) (string, error) {
	fmt.Fprintf(r.progress, "\nProcessing %s...\n", ticker)

	cik, err := edgar.ResolveCIK(ticker, mapping)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(r.progress, "  CIK: %s\n", cik)

	subs, err := r.client.FetchSubmissions(ctx, cik)
	if err != nil {
		return "", err
	}

	filing, err := edgar.FindLatest10K(subs)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(r.progress, "  Latest 10-K filed: %s\n", filing.FilingDate)

	docURL := edgar.BuildFilingURL(cik, filing.AccessionNumber, filing.PrimaryDocument)
	fmt.Fprintln(r.progress, "  Fetching filing document...")
	htmlContent, err := r.client.FetchDocument(ctx, docURL)
	if err != nil {
		return "", err
	}

	fmt.Fprintln(r.progress, "  Preparing document...")
	prepared, err := r.preparer.Prepare(ctx, htmlContent, docURL)
	if err != nil {
		return "", fmt.Errorf("prepare document: %w", err)
	}

	outputPath := filepath.Join(r.outputDir, fmt.Sprintf("%s_10K_%s.pdf", ticker, filing.FilingDate))
	fmt.Fprintln(r.progress, "  Converting to PDF...")
	if err := r.renderer.RenderPDF(ctx, prepared, outputPath); err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}
	fmt.Fprintf(r.progress, "  Saved: %s\n", outputPath)

	logger.Info("ticker converted",
		zap.String("ticker", ticker),
		zap.String("cik", cik),
		zap.String("filing_date", filing.FilingDate),
		zap.String("output", outputPath))
	return outputPath, nil
}
