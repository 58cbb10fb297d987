package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leapdb/pkg/config"
	"leapdb/pkg/dberror"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunBench_AllAlgorithmsAgree(t *testing.T) {
	cfg := config.Default()
	cfg.SortBuffers = 3

	results, err := RunBench(context.Background(), &cfg, BenchOptions{Rows: 60, Dup: 3, Seed: 9}, discardLogger())
	require.NoError(t, err)
	require.Len(t, results, len(benchJoins))

	for _, r := range results {
		assert.Equal(t, 20*3*3, r.Rows, r.Algorithm)
		assert.Positive(t, r.EstimatedIO, r.Algorithm)
	}
	assert.Equal(t, "nlj", results[0].Algorithm)
	assert.Equal(t, "triejoin", results[4].Algorithm)
}

func TestRunBench_Validation(t *testing.T) {
	cfg := config.Default()
	_, err := RunBench(context.Background(), &cfg, BenchOptions{Rows: 10, Dup: 0}, discardLogger())
	assert.True(t, dberror.IsCode(err, dberror.CodePreconditionViolation))
}

func TestRunBench_CanceledContext(t *testing.T) {
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunBench(ctx, &cfg, BenchOptions{Rows: 10, Dup: 1}, discardLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBenchKeys(t *testing.T) {
	left, right := benchKeys(BenchOptions{Rows: 7, Dup: 2, Seed: 1})
	assert.Equal(t, []int64{0, 0, 1, 1, 2, 2, 3}, left)
	assert.ElementsMatch(t, left, right)
}

func TestRunScan_MRUBeatsLRUOnRepeatedScans(t *testing.T) {
	opts := ScanOptions{Pages: 10, Scans: 3}

	mru, err := RunScan(4, config.PolicyMRU, opts, discardLogger())
	require.NoError(t, err)
	lru, err := RunScan(4, config.PolicyLRU, opts, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, int64(30), mru.Stats.Hits+mru.Stats.Misses)
	assert.Equal(t, int64(0), lru.Stats.Hits)
	assert.Greater(t, mru.Stats.Hits, lru.Stats.Hits)

	_, err = RunScan(4, "fifo", opts, discardLogger())
	assert.Error(t, err)
}

func TestPoliciesFor(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, []string{"mru", "lru"}, policiesFor(&cfg))
	cfg.EvictionPolicy = config.PolicyLRU
	assert.Equal(t, []string{"lru", "mru"}, policiesFor(&cfg))
}

func TestRootCommand(t *testing.T) {
	t.Run("bench", func(t *testing.T) {
		var out bytes.Buffer
		rc := NewRootCommand(&out, io.Discard)
		rc.SetArgs([]string{"bench", "--rows", "40", "--dup", "2", "--buffers", "3", "--log-level", "error"})

		require.NoError(t, rc.Execute())
		report := out.String()
		for _, name := range []string{"nlj", "hash", "inlj", "leapfrog", "triejoin"} {
			assert.Contains(t, report, name)
		}
		assert.Contains(t, report, "80")
	})

	t.Run("buffer", func(t *testing.T) {
		var out bytes.Buffer
		rc := NewRootCommand(&out, io.Discard)
		rc.SetArgs([]string{"buffer", "--pages", "8", "--scans", "2", "--frames", "4", "--policy", "lru", "--log-level", "error"})

		require.NoError(t, rc.Execute())
		assert.Contains(t, out.String(), "lru")
		assert.Contains(t, out.String(), "mru")
	})

	t.Run("invalid flag value fails validation", func(t *testing.T) {
		rc := NewRootCommand(io.Discard, io.Discard)
		rc.SetArgs([]string{"bench", "--buffers", "1"})

		err := rc.Execute()
		assert.True(t, dberror.IsCode(err, dberror.CodePreconditionViolation))
	})
}
