package edgar

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolveCIK resolves a ticker symbol to its CIK using the SEC mapping.
// Matching is case-insensitive; the first matching entry wins (the source
// data is unique per ticker).
func ResolveCIK(ticker string, mapping TickerMapping) (string, error) {
	for _, entry := range mapping {
		if strings.EqualFold(entry.Ticker, ticker) {
			return strconv.FormatInt(entry.CIK, 10), nil
		}
	}
	return "", fmt.Errorf("ticker %q: %w", ticker, ErrTickerNotFound)
}

// FindLatest10K returns the most recent 10-K among a company's recent
// submissions. The parallel arrays arrive ordered by filing date descending,
// so the first index whose form is "10-K" is the latest one; the arrays are
// consumed as-is, never re-sorted.
func FindLatest10K(subs CompanySubmissions) (FilingRecord, error) {
	recent := subs.Filings.Recent
	for i, form := range recent.Form {
		if form != "10-K" {
			continue
		}
		if i >= len(recent.AccessionNumber) || i >= len(recent.FilingDate) || i >= len(recent.PrimaryDocument) {
			return FilingRecord{}, fmt.Errorf("submissions arrays misaligned at index %d", i)
		}
		return FilingRecord{
			AccessionNumber: recent.AccessionNumber[i],
			FilingDate:      recent.FilingDate[i],
			PrimaryDocument: recent.PrimaryDocument[i],
		}, nil
	}
	return FilingRecord{}, ErrFilingNotFound
}

// BuildFilingURL builds the Archives URL for a filing document. Accession
// numbers are displayed with dashes ("0000320193-23-000106") but appear
// without them in archive paths.
func BuildFilingURL(cik, accessionNumber, primaryDocument string) string {
	accessionNoDashes := strings.ReplaceAll(accessionNumber, "-", "")
	return fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s/%s",
		cik, accessionNoDashes, primaryDocument)
}
