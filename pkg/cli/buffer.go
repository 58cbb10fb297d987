package cli

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"leapdb/pkg/config"
	"leapdb/pkg/dberror"
	"leapdb/pkg/logging"
	"leapdb/pkg/memory"
	"leapdb/pkg/memory/eviction"
	"leapdb/pkg/primitives"
)

// ScanOptions describes a repeated sequential scan workload.
type ScanOptions struct {
	Pages int
	Scans int
}

// ScanResult is the buffer activity of one eviction policy under a workload.
type ScanResult struct {
	Policy string
	Stats  memory.BufferStats
}

func newBufferCommand(s *session, stdout io.Writer) *cobra.Command {
	var opts ScanOptions

	cmd := &cobra.Command{
		Use:   "buffer",
		Short: "Replay repeated sequential scans through the buffer manager.",
		Long: `Scans --pages pages from first to last, --scans times, through a buffer
pool of --frames frames. The run is repeated for each eviction policy and the
hit counts are compared. The configured policy is listed first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := bufferLogger(s)
			var results []ScanResult
			for _, policy := range policiesFor(s.cfg) {
				res, err := RunScan(s.cfg.BufferFrames, policy, opts, log)
				if err != nil {
					return err
				}
				results = append(results, res)
			}
			fmt.Fprintln(stdout, renderScan(s.cfg.BufferFrames, opts, results))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Pages, "pages", 100, "Pages per scan.")
	flags.IntVar(&opts.Scans, "scans", 3, "Number of scans.")
	flags.Int("frames", 0, "Buffer pool size in frames.")
	flags.String("policy", "", "Eviction policy listed first: mru or lru.")
	return cmd
}

func bufferLogger(s *session) *slog.Logger {
	return logging.WithComponent("buffer-bench").With("run_id", s.runID)
}

func policiesFor(cfg *config.ExecutionConfig) []string {
	if cfg.EvictionPolicy == config.PolicyLRU {
		return []string{config.PolicyLRU, config.PolicyMRU}
	}
	return []string{config.PolicyMRU, config.PolicyLRU}
}

// pageImage fabricates page contents; only the page number is recorded.
func pageImage(page primitives.PageNumber) ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(page))
	return buf, nil
}

// RunScan replays the workload through a fresh buffer pool using policy.
func RunScan(frames int, policy string, opts ScanOptions, log *slog.Logger) (ScanResult, error) {
	if opts.Pages < 0 || opts.Scans < 0 {
		return ScanResult{}, dberror.Precondition("buffer", "RunScan", "pages and scans cannot be negative")
	}

	p, err := eviction.New(policy, frames)
	if err != nil {
		return ScanResult{}, err
	}
	bm, err := memory.NewBufferManager(frames, p, pageImage)
	if err != nil {
		return ScanResult{}, err
	}

	for scan := 0; scan < opts.Scans; scan++ {
		for page := 0; page < opts.Pages; page++ {
			f, err := bm.FetchPage(primitives.PageNumber(page))
			if err != nil {
				return ScanResult{}, errors.Wrapf(err, "scan %d", scan)
			}
			if err := bm.Unpin(f); err != nil {
				return ScanResult{}, err
			}
		}
	}

	stats := bm.Stats()
	log.Debug("scan workload finished", "policy", policy, "hits", stats.Hits, "misses", stats.Misses)
	return ScanResult{Policy: policy, Stats: stats}, nil
}
