package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edgarkit/tenk2pdf/internal/config"
	"github.com/edgarkit/tenk2pdf/internal/pipeline"
)

// fakeRunner returns canned results and records what it was asked to do.
type fakeRunner struct {
	results []pipeline.Result
	err     error
	tickers []string
}

func (f *fakeRunner) Run(_ context.Context, tickers []string) ([]pipeline.Result, error) {
	f.tickers = tickers
	return f.results, f.err
}

// withFakeRunner swaps the production factory for the test's fake and
// restores it afterwards.
func withFakeRunner(t *testing.T, fake *fakeRunner) *config.Config {
	t.Helper()
	var captured config.Config
	orig := newRunner
	newRunner = func(cfg config.Config, _ *zap.Logger, _ io.Writer) (runner, func(), error) {
		captured = cfg
		return fake, func() {}, nil
	}
	t.Cleanup(func() { newRunner = orig })
	return &captured
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	if args == nil {
		// nil makes cobra fall back to os.Args, which holds test flags.
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootAllSuccess(t *testing.T) {
	fake := &fakeRunner{results: []pipeline.Result{
		{Ticker: "AAPL", OutputPath: "output/AAPL_10K_2023-11-03.pdf"},
	}}
	withFakeRunner(t, fake)

	out, err := execute(t, "AAPL")
	require.NoError(t, err)
	require.Equal(t, []string{"AAPL"}, fake.tickers)
	require.Contains(t, out, "[OK] AAPL: output/AAPL_10K_2023-11-03.pdf")
}

func TestRootFailureExitsNonZero(t *testing.T) {
	fake := &fakeRunner{results: []pipeline.Result{
		{Ticker: "AAPL", OutputPath: "output/AAPL_10K_2023-11-03.pdf"},
		{Ticker: "ZZZZ", Err: errors.New(`ticker "ZZZZ" not found in SEC database`)},
	}}
	withFakeRunner(t, fake)

	out, err := execute(t, "AAPL", "ZZZZ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 2 tickers failed")
	require.Contains(t, out, "[OK] AAPL")
	require.Contains(t, out, "[FAIL] ZZZZ")
}

func TestRootDefaultsTickers(t *testing.T) {
	fake := &fakeRunner{}
	withFakeRunner(t, fake)

	_, err := execute(t)
	require.NoError(t, err)
	require.Equal(t, config.DefaultTickers, fake.tickers)
}

func TestRootOutputDirFlag(t *testing.T) {
	fake := &fakeRunner{}
	captured := withFakeRunner(t, fake)

	_, err := execute(t, "--output-dir", "elsewhere", "AAPL")
	require.NoError(t, err)
	require.Equal(t, "elsewhere", captured.Output.Dir)
}

func TestRootRunError(t *testing.T) {
	fake := &fakeRunner{err: errors.New("mapping unavailable")}
	withFakeRunner(t, fake)

	_, err := execute(t, "AAPL")
	require.ErrorContains(t, err, "mapping unavailable")
}
