// Package render turns a prepared filing document into a paginated Letter
// PDF using headless Chrome, shrinking oversized content to fit the page.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Letter paper in inches, with 1 cm margins on all sides.
const (
	paperWidthIn  = 8.5
	paperHeightIn = 11.0
	marginIn      = 0.393701 // 1 cm
)

// measureContentWidthJS finds the widest rendered element. Tables are
// checked individually since they are the usual overflow culprits in
// filings.
const measureContentWidthJS = `(() => {
	const body = document.body;
	if (!body) return 0;
	let maxW = body.scrollWidth;
	for (const table of document.querySelectorAll('table')) {
		maxW = Math.max(maxW, table.scrollWidth);
	}
	return maxW;
})()`

// Config controls the renderer.
type Config struct {
	Timeout     time.Duration
	QuietWindow time.Duration
	NoSandbox   bool
	Logger      *zap.Logger
}

// Renderer renders documents using headless Chrome via chromedp. One warm
// browser serves all renders; each render gets its own tab and deadline.
type Renderer struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
	quiet         time.Duration
	logger        *zap.Logger
}

// New launches the browser and returns a Renderer.
func New(cfg Config) (*Renderer, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.QuietWindow <= 0 {
		cfg.QuietWindow = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Renderer{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       cfg.Timeout,
		quiet:         cfg.QuietWindow,
		logger:        logger,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (r *Renderer) Close() {
	if r == nil {
		return
	}
	r.browserCancel()
	r.allocCancel()
}

// RenderPDF loads the document, waits for network idle, measures the widest
// element, and prints a Letter PDF at the computed fit scale.
func (r *Renderer) RenderPDF(ctx context.Context, htmlContent, outputPath string) error {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	waiter := newIdleWaiter(r.quiet)
	chromedp.ListenTarget(taskCtx, waiter.handle)

	var (
		contentWidth float64
		scale        float64
		pdfData      []byte
	)

	start := time.Now()
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := waiter.Wait(ctx); err != nil {
				return fmt.Errorf("wait network idle: %w", err)
			}
			return nil
		}),
		chromedp.Evaluate(measureContentWidthJS, &contentWidth),
		chromedp.ActionFunc(func(ctx context.Context) error {
			scale = FitScale(contentWidth)
			data, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(marginIn).
				WithMarginBottom(marginIn).
				WithMarginLeft(marginIn).
				WithMarginRight(marginIn).
				WithScale(scale).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if taskCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("render timed out after %v: %w", r.timeout, err)
		}
		return fmt.Errorf("chromedp run: %w", err)
	}
	if len(pdfData) == 0 {
		return errors.New("generated PDF is empty")
	}

	if err := os.WriteFile(outputPath, pdfData, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	r.logger.Info("rendered PDF",
		zap.String("path", outputPath),
		zap.Float64("content_width", contentWidth),
		zap.Float64("scale", scale),
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// forwardCancel propagates cancellation of the caller's context into the
// render task without tying the tab's lifetime to it.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
