package edgar

// TickerMapping is the SEC company_tickers.json payload: a JSON object with
// numeric string keys ("0", "1", ...) whose order carries no meaning.
type TickerMapping map[string]TickerEntry

// TickerEntry maps one ticker symbol to its filer.
type TickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// CompanySubmissions is the subset of the submissions API response this tool
// consumes.
type CompanySubmissions struct {
	Filings struct {
		Recent RecentFilings `json:"recent"`
	} `json:"filings"`
}

// RecentFilings holds parallel arrays: index i across all four describes one
// filing. The SEC orders them by filing date descending.
type RecentFilings struct {
	Form            []string `json:"form"`
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// FilingRecord is one filing denormalized out of the parallel arrays.
type FilingRecord struct {
	AccessionNumber string
	FilingDate      string
	PrimaryDocument string
}
