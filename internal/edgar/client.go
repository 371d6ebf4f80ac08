// Package edgar implements the SEC EDGAR client and the pure resolution
// logic that turns a ticker symbol into a concrete filing document URL.
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// SEC endpoint templates.
const (
	TickersURL            = "https://www.sec.gov/files/company_tickers.json"
	SubmissionsURLPattern = "https://data.sec.gov/submissions/CIK%s.json"
)

// Response is the outcome of a successful GET.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Options configures a Client.
type Options struct {
	UserAgent       string
	RequestInterval time.Duration
	RequestTimeout  time.Duration
	Clock           Clock
	Logger          *zap.Logger
}

// Client is a rate-limited HTTP client for the SEC EDGAR API and archive
// endpoints. All requests funnel through a single gate so the SEC's
// fair-access limit is respected no matter which collaborator is fetching.
type Client struct {
	base    *colly.Collector
	gate    *gate
	timeout time.Duration
	logger  *zap.Logger

	// Endpoint templates, overridable in tests.
	tickersURL         string
	submissionsPattern string
}

// NewClient constructs a configured Client.
func NewClient(opts Options) (*Client, error) {
	if opts.UserAgent == "" {
		return nil, fmt.Errorf("user agent must be set")
	}
	if opts.Clock == nil {
		return nil, fmt.Errorf("clock must be set")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// These are API and archive endpoints, not crawl targets; robots.txt
	// does not apply. The transport negotiates gzip on its own.
	base := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.IgnoreRobotsTxt(),
	)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	})

	return &Client{
		base:               base,
		gate:               newGate(opts.RequestInterval, opts.Clock),
		timeout:            opts.RequestTimeout,
		logger:             logger,
		tickersURL:         TickersURL,
		submissionsPattern: SubmissionsURLPattern,
	}, nil
}

// Get issues a rate-limited GET with the client's default timeout.
func (c *Client) Get(ctx context.Context, rawURL string) (Response, error) {
	return c.get(ctx, rawURL, c.timeout)
}

// GetWithTimeout issues a rate-limited GET with an explicit timeout, used
// for image fetches which carry a tighter budget than registry calls.
func (c *Client) GetWithTimeout(ctx context.Context, rawURL string, timeout time.Duration) (Response, error) {
	return c.get(ctx, rawURL, timeout)
}

func (c *Client) get(ctx context.Context, rawURL string, timeout time.Duration) (Response, error) {
	if err := c.gate.wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate gate: %w", err)
	}
	// The stamp covers failed attempts too, so repeated errors cannot
	// bypass the throttle.
	defer c.gate.stamp()

	collector := c.base.Clone()
	collector.SetRequestTimeout(timeout)

	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			for k, v := range *r.Headers {
				cp := make([]string, len(v))
				copy(cp, v)
				headers[k] = cp
			}
		}
		send(fetchResult{resp: Response{
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte{}, r.Body...),
		}})
	})

	collector.OnError(func(r *colly.Response, err error) {
		send(fetchResult{err: classify(rawURL, r, err)})
	})

	start := time.Now()
	visitErr := collector.Visit(rawURL)
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		if res.err != nil {
			return Response{}, res.err
		}
		c.logger.Debug("edgar get",
			zap.String("url", rawURL),
			zap.Int("status", res.resp.StatusCode),
			zap.Int("bytes", len(res.resp.Body)),
			zap.Duration("duration", time.Since(start)))
		return res.resp, nil
	default:
		if visitErr != nil {
			return Response{}, classify(rawURL, nil, visitErr)
		}
		return Response{}, fmt.Errorf("get %s: %w", rawURL, ErrConnection)
	}
}

type fetchResult struct {
	resp Response
	err  error
}

// classify maps a transport failure onto the client's error taxonomy:
// StatusError for non-success responses, ErrTimeout for deadline overruns,
// ErrConnection for everything else.
func classify(rawURL string, r *colly.Response, err error) error {
	if r != nil && r.StatusCode != 0 {
		return &StatusError{Code: r.StatusCode, URL: rawURL}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("get %s: %w", rawURL, ErrTimeout)
	}
	return fmt.Errorf("get %s: %w: %v", rawURL, ErrConnection, err)
}

// FetchTickerMapping fetches the global ticker-to-CIK mapping.
func (c *Client) FetchTickerMapping(ctx context.Context) (TickerMapping, error) {
	resp, err := c.Get(ctx, c.tickersURL)
	if err != nil {
		return nil, err
	}
	var mapping TickerMapping
	if err := json.Unmarshal(resp.Body, &mapping); err != nil {
		return nil, fmt.Errorf("decode ticker mapping: %w", err)
	}
	return mapping, nil
}

// FetchSubmissions fetches filing submissions for a company by CIK. The
// submissions endpoint wants the CIK zero-padded to ten digits.
func (c *Client) FetchSubmissions(ctx context.Context, cik string) (CompanySubmissions, error) {
	padded := fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))
	resp, err := c.Get(ctx, fmt.Sprintf(c.submissionsPattern, padded))
	if err != nil {
		return CompanySubmissions{}, err
	}
	var subs CompanySubmissions
	if err := json.Unmarshal(resp.Body, &subs); err != nil {
		return CompanySubmissions{}, fmt.Errorf("decode submissions: %w", err)
	}
	return subs, nil
}

// FetchDocument fetches the raw HTML of a filing document.
func (c *Client) FetchDocument(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}
