package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edgarkit/tenk2pdf/internal/edgar"
)

type fakeClient struct {
	mapping     edgar.TickerMapping
	mappingErr  error
	submissions map[string]edgar.CompanySubmissions
	subsErr     map[string]error
	documents   map[string]string
	fetchedURLs []string
}

func (f *fakeClient) FetchTickerMapping(context.Context) (edgar.TickerMapping, error) {
	return f.mapping, f.mappingErr
}

func (f *fakeClient) FetchSubmissions(_ context.Context, cik string) (edgar.CompanySubmissions, error) {
	if err, ok := f.subsErr[cik]; ok {
		return edgar.CompanySubmissions{}, err
	}
	return f.submissions[cik], nil
}

func (f *fakeClient) FetchDocument(_ context.Context, rawURL string) (string, error) {
	f.fetchedURLs = append(f.fetchedURLs, rawURL)
	if doc, ok := f.documents[rawURL]; ok {
		return doc, nil
	}
	return "", &edgar.StatusError{Code: 404, URL: rawURL}
}

type passthroughPreparer struct{ baseURLs []string }

func (p *passthroughPreparer) Prepare(_ context.Context, htmlContent, baseURL string) (string, error) {
	p.baseURLs = append(p.baseURLs, baseURL)
	return htmlContent, nil
}

type fileRenderer struct{ rendered []string }

func (r *fileRenderer) RenderPDF(_ context.Context, htmlContent, outputPath string) error {
	r.rendered = append(r.rendered, outputPath)
	return os.WriteFile(outputPath, []byte("%PDF-fake "+htmlContent), 0o644)
}

func aaplFixture() *fakeClient {
	var subs edgar.CompanySubmissions
	subs.Filings.Recent = edgar.RecentFilings{
		Form:            []string{"10-K", "8-K"},
		AccessionNumber: []string{"0000320193-23-000106", "0000320193-23-000200"},
		FilingDate:      []string{"2023-11-03", "2023-12-01"},
		PrimaryDocument: []string{"aapl-20230930.htm", "other.htm"},
	}
	docURL := "https://www.sec.gov/Archives/edgar/data/320193/000032019323000106/aapl-20230930.htm"
	return &fakeClient{
		mapping: edgar.TickerMapping{
			"0": {CIK: 320193, Ticker: "AAPL", Title: "Apple Inc."},
		},
		submissions: map[string]edgar.CompanySubmissions{"320193": subs},
		documents:   map[string]string{docURL: "<html><body>10-K</body></html>"},
	}
}

func newTestRunner(t *testing.T, client Client, dir string) (*Runner, *bytes.Buffer, *fileRenderer) {
	t.Helper()
	out := &bytes.Buffer{}
	renderer := &fileRenderer{}
	runner, err := NewRunner(Options{
		Client:    client,
		Preparer:  &passthroughPreparer{},
		Renderer:  renderer,
		OutputDir: dir,
		Progress:  out,
	})
	require.NoError(t, err)
	return runner, out, renderer
}

func TestRunSingleTickerSuccess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	client := aaplFixture()
	runner, out, renderer := newTestRunner(t, client, dir)

	results, err := runner.Run(context.Background(), []string{"aapl"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.False(t, results[0].Failed())
	require.Equal(t, "AAPL", results[0].Ticker)

	wantPath := filepath.Join(dir, "AAPL_10K_2023-11-03.pdf")
	require.Equal(t, wantPath, results[0].OutputPath)
	require.Equal(t, []string{wantPath}, renderer.rendered)
	require.FileExists(t, wantPath)

	require.Contains(t, out.String(), "Processing AAPL...")
	require.Contains(t, out.String(), "CIK: 320193")
	require.Contains(t, out.String(), "Latest 10-K filed: 2023-11-03")
	require.Contains(t, client.fetchedURLs[0], "000032019323000106/aapl-20230930.htm")
}

func TestRunUnknownTickerContinues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runner, out, _ := newTestRunner(t, aaplFixture(), dir)

	results, err := runner.Run(context.Background(), []string{"ZZZZ", "AAPL"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.True(t, results[0].Failed())
	require.ErrorIs(t, results[0].Err, edgar.ErrTickerNotFound)
	require.False(t, results[1].Failed(), "later ticker must still be processed")
	require.Contains(t, out.String(), "ERROR:")
}

func TestRunNo10KRecorded(t *testing.T) {
	t.Parallel()

	client := aaplFixture()
	var subs edgar.CompanySubmissions
	subs.Filings.Recent = edgar.RecentFilings{
		Form:            []string{"8-K"},
		AccessionNumber: []string{"a"},
		FilingDate:      []string{"2023-12-01"},
		PrimaryDocument: []string{"x.htm"},
	}
	client.submissions["320193"] = subs

	runner, _, _ := newTestRunner(t, client, t.TempDir())
	results, err := runner.Run(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	require.ErrorIs(t, results[0].Err, edgar.ErrFilingNotFound)
}

func TestRunMappingFetchFails(t *testing.T) {
	t.Parallel()

	client := &fakeClient{mappingErr: edgar.ErrTimeout}
	runner, _, _ := newTestRunner(t, client, t.TempDir())

	_, err := runner.Run(context.Background(), []string{"AAPL"})
	require.ErrorIs(t, err, edgar.ErrTimeout)
}

func TestRunCreatesOutputDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	runner, _, _ := newTestRunner(t, aaplFixture(), dir)

	_, err := runner.Run(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	require.DirExists(t, dir)
}

func TestRunUppercasesTickers(t *testing.T) {
	t.Parallel()

	runner, _, _ := newTestRunner(t, aaplFixture(), t.TempDir())
	results, err := runner.Run(context.Background(), []string{"aApL"})
	require.NoError(t, err)
	require.Equal(t, "AAPL", results[0].Ticker)
	require.True(t, strings.HasSuffix(results[0].OutputPath, "AAPL_10K_2023-11-03.pdf"))
}

func TestNewRunnerValidation(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(Options{})
	require.Error(t, err)

	_, err = NewRunner(Options{Client: &fakeClient{}, Preparer: &passthroughPreparer{}, Renderer: &fileRenderer{}})
	require.Error(t, err, "missing output dir")
}
