package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"leapdb/pkg/config"
	"leapdb/pkg/dberror"
	"leapdb/pkg/execution/join"
	"leapdb/pkg/execution/operator"
	"leapdb/pkg/iterator"
	"leapdb/pkg/logging"
	"leapdb/pkg/storage/index"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

// BenchOptions shapes the generated join workload.
type BenchOptions struct {
	// Rows is the number of records on each side.
	Rows int
	// Dup is how many records share each join key.
	Dup int
	// Seed drives the shuffle of the right input.
	Seed int64
}

// BenchResult is the outcome of one join algorithm.
type BenchResult struct {
	Algorithm   string
	Rows        int
	EstimatedIO int
	Elapsed     time.Duration
}

type joinBuilder struct {
	name  string
	build func(cfg *config.ExecutionConfig, left, right *operator.Relation) (operator.Operator, error)
}

var benchJoins = []joinBuilder{
	{"nlj", func(_ *config.ExecutionConfig, l, r *operator.Relation) (operator.Operator, error) {
		return join.NewNestedLoopJoin(l, r, []string{"l.k"}, []string{"r.k"})
	}},
	{"hash", func(_ *config.ExecutionConfig, l, r *operator.Relation) (operator.Operator, error) {
		return join.NewHashJoin(l, r, []string{"l.k"}, []string{"r.k"})
	}},
	{"inlj", func(cfg *config.ExecutionConfig, l, r *operator.Relation) (operator.Operator, error) {
		idx, err := index.NewMemoryIndex(cfg.IndexOrder)
		if err != nil {
			return nil, err
		}
		if err := idx.Build("r", "r.k", r); err != nil {
			return nil, err
		}
		return join.NewIndexNestedLoopJoin(l, r, "r", idx, []string{"l.k"}, []string{"r.k"})
	}},
	{"leapfrog", func(cfg *config.ExecutionConfig, l, r *operator.Relation) (operator.Operator, error) {
		return join.NewLeapfrogJoin(l, r, "l.k", "r.k", cfg.SortBuffers)
	}},
	{"triejoin", func(_ *config.ExecutionConfig, l, r *operator.Relation) (operator.Operator, error) {
		return join.NewLeapfrogTrieJoin(l, r, []string{"l.k"}, []string{"r.k"})
	}},
}

func newBenchCommand(s *session, stdout io.Writer) *cobra.Command {
	var opts BenchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run every join algorithm on a generated workload and compare them.",
		Long: `Generates two relations of --rows records where every join key occurs
--dup times, joins them with each algorithm concurrently, checks that all
algorithms return the same number of records and prints a report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := RunBench(cmd.Context(), s.cfg, opts, benchLogger(s))
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, renderBench(opts, results))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Rows, "rows", 1000, "Records per relation.")
	flags.IntVar(&opts.Dup, "dup", 1, "Records per join key.")
	flags.Int64Var(&opts.Seed, "seed", 1, "Shuffle seed.")
	flags.Int("buffers", 0, "Sort buffers (B) for the leapfrog join's sorts.")
	flags.Int("order", 0, "Fan-out of the index used by the index nested loop join.")
	return cmd
}

func benchLogger(s *session) *slog.Logger {
	return logging.WithComponent("bench").With("run_id", s.runID)
}

// RunBench joins two generated relations with every algorithm, each on its
// own copy of the inputs, and fails if they disagree on the result size.
func RunBench(ctx context.Context, cfg *config.ExecutionConfig, opts BenchOptions, log *slog.Logger) ([]BenchResult, error) {
	if opts.Rows < 0 || opts.Dup < 1 {
		return nil, dberror.Precondition("bench", "Run", "need rows >= 0 and dup >= 1, got %d and %d", opts.Rows, opts.Dup)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	leftKeys, rightKeys := benchKeys(opts)
	log.InfoContext(ctx, "starting bench", "rows", opts.Rows, "dup", opts.Dup, "algorithms", len(benchJoins))

	results := make([]BenchResult, len(benchJoins))
	g, gctx := errgroup.WithContext(ctx)
	for i, jb := range benchJoins {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := runOne(gctx, cfg, jb, leftKeys, rightKeys)
			if err != nil {
				return errors.Wrapf(err, "%s join", jb.name)
			}
			log.DebugContext(gctx, "algorithm finished", "algorithm", res.Algorithm, "rows", res.Rows, "elapsed", res.Elapsed)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results[1:] {
		if r.Rows != results[0].Rows {
			return results, dberror.Newf(dberror.ErrCategorySystem, dberror.CodeInternal,
				"%s returned %d records but %s returned %d", r.Algorithm, r.Rows, results[0].Algorithm, results[0].Rows)
		}
	}
	log.InfoContext(ctx, "bench finished", "rows", results[0].Rows)
	return results, nil
}

// benchKeys returns the join keys of both sides: key i/dup for record i on
// the left, and the same keys shuffled on the right.
func benchKeys(opts BenchOptions) ([]int64, []int64) {
	left := make([]int64, opts.Rows)
	for i := range left {
		left[i] = int64(i / opts.Dup)
	}
	right := append([]int64(nil), left...)
	rng := rand.New(rand.NewSource(opts.Seed))
	rng.Shuffle(len(right), func(i, j int) { right[i], right[j] = right[j], right[i] })
	return left, right
}

func benchRelation(cfg *config.ExecutionConfig, name string, keys []int64) (*operator.Relation, error) {
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.IntType},
		[]string{name + ".k", name + ".id"},
	)
	if err != nil {
		return nil, err
	}

	records := make([]*tuple.Tuple, len(keys))
	for i, k := range keys {
		records[i] = tuple.NewBuilder(td).AddInt(k).AddInt(int64(i)).MustBuild()
	}
	return operator.NewRelation(name, td, records, operator.WithPageSize(cfg.PageSize))
}

func runOne(ctx context.Context, cfg *config.ExecutionConfig, jb joinBuilder, leftKeys, rightKeys []int64) (BenchResult, error) {
	left, err := benchRelation(cfg, "l", leftKeys)
	if err != nil {
		return BenchResult{}, err
	}
	right, err := benchRelation(cfg, "r", rightKeys)
	if err != nil {
		return BenchResult{}, err
	}

	op, err := jb.build(cfg, left, right)
	if err != nil {
		return BenchResult{}, err
	}
	if c, ok := op.(interface{ SetContext(context.Context) }); ok {
		c.SetContext(ctx)
	}

	start := time.Now()
	if err := op.Open(); err != nil {
		return BenchResult{}, err
	}
	n, err := iterator.Count(op)
	if cerr := op.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return BenchResult{}, err
	}

	return BenchResult{
		Algorithm:   jb.name,
		Rows:        n,
		EstimatedIO: op.EstimateIOCost(),
		Elapsed:     time.Since(start),
	}, nil
}
