package edgar

import (
	"errors"
	"fmt"
)

// Sentinel errors callers discriminate with errors.Is.
var (
	// ErrConnection indicates a transport-level failure before a response
	// was received.
	ErrConnection = errors.New("connection failed")
	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrTickerNotFound indicates the ticker has no entry in the SEC
	// company_tickers mapping.
	ErrTickerNotFound = errors.New("ticker not found in SEC database")
	// ErrFilingNotFound indicates the company has no 10-K among its recent
	// submissions.
	ErrFilingNotFound = errors.New("no 10-K filing found in recent submissions")
)

// StatusError reports a non-success HTTP response from the SEC.
type StatusError struct {
	Code int
	URL  string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}
