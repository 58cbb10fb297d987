// Package cli is the leapdb command line. It wires configuration, logging
// and the execution core together for workload runs from the shell.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"leapdb/pkg/config"
	"leapdb/pkg/logging"
)

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"buffers":    "sort_buffers",
	"page-size":  "page_size",
	"frames":     "buffer_frames",
	"policy":     "eviction_policy",
	"order":      "index_order",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"log-output": "logging.output",
	"seq-url":    "logging.seq_url",
}

// session is the state shared by every subcommand of one invocation.
type session struct {
	cfg   *config.ExecutionConfig
	runID string
}

// Execute runs the root command against the process arguments.
func Execute() {
	if err := NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	s := &session{}

	rc := &cobra.Command{
		Use:   "leapdb",
		Short: "Run workloads against the leapdb execution core.",
		Long: `leapdb drives the query execution core: external sort, the join
operators and the buffer manager.

Settings come from flags, LEAPDB_* environment variables and an optional
config file, in that priority order.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			// drop the default logger any package may have created lazily
			if err := logging.Close(); err != nil {
				return err
			}
			if err := logging.Init(cfg.LoggingConfig()); err != nil {
				return errors.Wrap(err, "init logging")
			}
			s.cfg = cfg
			s.runID = uuid.NewString()
			logging.Debug("configuration loaded",
				"run_id", s.runID,
				"sort_buffers", cfg.SortBuffers,
				"buffer_frames", cfg.BufferFrames,
				"eviction_policy", cfg.EvictionPolicy)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Close()
		},
	}

	pf := rc.PersistentFlags()
	pf.StringP("config", "c", "", "Configuration file to read from.")
	pf.String("log-level", "", "Log level: debug, info, warn or error.")
	pf.String("log-format", "", "Log format: text or json.")
	pf.String("log-output", "", "Log file path. Logs go to stdout when empty.")
	pf.String("seq-url", "", "Seq ingestion endpoint to ship logs to.")
	pf.Int("page-size", 0, "Page size in bytes for record accounting.")

	rc.AddCommand(newBenchCommand(s, stdout))
	rc.AddCommand(newBufferCommand(s, stdout))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// loadConfig layers the flags that were actually set over the environment,
// the config file and the defaults.
func loadConfig(flags *pflag.FlagSet) (*config.ExecutionConfig, error) {
	v := config.NewViper()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}
	return config.FromViper(v)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	return bindErr
}
