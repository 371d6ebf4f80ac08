// Package htmlprep prepares a raw filing document for printing: remote
// images are inlined as data URLs and print-layout CSS is normalized so the
// rendering engine honors page-break hints. All mutation happens on parsed
// document trees, never on raw markup.
package htmlprep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/edgarkit/tenk2pdf/internal/edgar"
)

// Getter is the slice of the EDGAR client the preparer needs.
type Getter interface {
	GetWithTimeout(ctx context.Context, rawURL string, timeout time.Duration) (edgar.Response, error)
}

// Preparer turns a fetched filing into a self-contained, print-ready
// document.
type Preparer struct {
	client       Getter
	imageTimeout time.Duration
	logger       *zap.Logger
}

// NewPreparer constructs a Preparer. Image fetches go through the given
// client with their own, tighter timeout.
func NewPreparer(client Getter, imageTimeout time.Duration, logger *zap.Logger) *Preparer {
	if imageTimeout <= 0 {
		imageTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preparer{
		client:       client,
		imageTimeout: imageTimeout,
		logger:       logger,
	}
}

// Prepare runs image inlining followed by layout normalization.
func (p *Preparer) Prepare(ctx context.Context, htmlContent, baseURL string) (string, error) {
	inlined := p.InlineImages(ctx, htmlContent, baseURL)
	return NormalizeLayout(inlined)
}
