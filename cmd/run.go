package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgbatch/pkg/batch"
	"github.com/pkgbatch/pkg/extract"
	"github.com/pkgbatch/pkg/kind"
	"github.com/pkgbatch/pkg/logging"
)

var (
	runOutput    string
	runKindsFlag []string
	runEnable    []string
	runDisable   []string
	runConflict  string
	runWorkers   int
	runTimeout   time.Duration
	runExtractor string
	runStripExt  bool
	runByKind    bool
	runConfig    string
	runReport    string
	runLogLevel  string
	runLogFormat string
	runLogFile   string
	runVerbose   bool
)

var runCmd = &cobra.Command{
	Use:   "run <input_dir>",
	Short: "Extract every recognized archive under a directory",
	Long: `Walk a directory tree, find resource archives by extension, and run
the extractor once per archive into a mirrored output tree.

Each archive gets its own output subtree named after the source file.
Failed extractions are recorded and reported at the end; they never stop
the rest of the batch. The command exits 0 when everything succeeded,
2 when one or more archives failed, and 1 on fatal errors.

Examples:
  # Extract all .pkg and .ppf archives under the game directory
  pkgbatch run ~/games/psychonauts/WorkResource

  # Only packages, eight at a time, into a custom output tree
  pkgbatch run data/ -o unpacked/ --kinds pkg --workers 8

  # Include the experimental animation containers, skip prior output
  pkgbatch run data/ --enable apf --conflict skip

  # Drive a specific extractor build with a per-archive deadline
  pkgbatch run data/ --extractor ./target/release/repkg --timeout 10m`,
	Args:         cobra.ExactArgs(1),
	RunE:         runBatch,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runOutput, "output", "o", "output",
		"output directory for extracted trees")
	runCmd.Flags().StringSliceVar(&runKindsFlag, "kinds", nil,
		"archive kinds to process, replacing the default set (pkg,ppf)")
	runCmd.Flags().StringSliceVar(&runEnable, "enable", nil,
		"additionally enable kinds (e.g. apf)")
	runCmd.Flags().StringSliceVar(&runDisable, "disable", nil,
		"disable kinds from the active set")
	runCmd.Flags().StringVar(&runConflict, "conflict", string(batch.ConflictOverwrite),
		"existing-output policy: skip | overwrite | fail")
	runCmd.Flags().IntVar(&runWorkers, "workers", batch.DefaultWorkers,
		"parallel extraction workers")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0,
		"per-archive timeout (0 disables)")
	runCmd.Flags().StringVar(&runExtractor, "extractor", extract.DefaultBinary,
		"extractor executable to invoke")
	runCmd.Flags().BoolVar(&runStripExt, "strip-ext", false,
		"drop the archive extension from output names")
	runCmd.Flags().BoolVar(&runByKind, "by-kind", false,
		"nest outputs under one directory per kind")
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "",
		"YAML or JSON config file (flags override file values)")
	runCmd.Flags().StringVar(&runReport, "report", "",
		"write the full batch report to this file as JSON")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info",
		"log level: debug | info | warn | error")
	runCmd.Flags().StringVar(&runLogFormat, "log-format", "text",
		"log format: text | json")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "",
		"also append logs to this file")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false,
		"stream extractor stderr while jobs run")
}

func runBatch(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(runLogLevel)
	if err != nil {
		return err
	}
	var logWriter io.Writer
	if runLogFile != "" {
		w, closer, err := logging.TeeFile(os.Stderr, runLogFile)
		if err != nil {
			return err
		}
		defer closer.Close()
		logWriter = w
	}
	logging.Setup(level, runLogFormat, logWriter)

	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	candidates, err := batch.Discover(ctx, cfg.InputRoot, cfg.Kinds, logging.Component("discover"))
	if err != nil {
		return err
	}

	fmt.Printf("Input: %s\n", cfg.InputRoot)
	fmt.Printf("Output: %s\n", cfg.OutputRoot)
	fmt.Printf("Kinds: %s\n", strings.Join(cfg.Kinds.Names(), ", "))
	fmt.Println()

	svc := extract.NewCommandService(extract.CommandOptions{
		Binary:  cfg.Extractor,
		Verbose: cfg.Verbose,
	})
	runner := batch.NewRunner(cfg, svc, logging.Component("dispatch"))
	report := runner.Run(ctx, candidates)

	report.Summary(os.Stdout)
	if cfg.ReportPath != "" {
		if err := report.WriteFile(cfg.ReportPath); err != nil {
			return err
		}
	}

	if report.HasFailures() {
		return batch.ErrJobsFailed
	}
	return nil
}

// buildConfig layers defaults, the optional config file, and explicitly
// set flags, in that order.
func buildConfig(cmd *cobra.Command, inputRoot string) (*batch.Config, error) {
	cfg := batch.DefaultConfig()

	if runConfig != "" {
		if err := cfg.ApplyFile(runConfig); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputRoot = runOutput
	}
	if flags.Changed("workers") {
		cfg.Workers = runWorkers
	}
	if flags.Changed("timeout") {
		cfg.JobTimeout = runTimeout
	}
	if flags.Changed("extractor") {
		cfg.Extractor = runExtractor
	}
	if flags.Changed("strip-ext") {
		cfg.StripExt = runStripExt
	}
	if flags.Changed("by-kind") {
		cfg.ByKind = runByKind
	}
	if flags.Changed("conflict") {
		policy, err := batch.ParseConflictPolicy(runConflict)
		if err != nil {
			return nil, err
		}
		cfg.Conflict = policy
	}
	if flags.Changed("kinds") {
		set, err := kind.ParseSet(runKindsFlag)
		if err != nil {
			return nil, err
		}
		cfg.Kinds = set
	}
	for _, name := range runEnable {
		k, err := kind.Parse(name)
		if err != nil {
			return nil, err
		}
		cfg.Kinds.Enable(k)
	}
	for _, name := range runDisable {
		k, err := kind.Parse(name)
		if err != nil {
			return nil, err
		}
		cfg.Kinds.Disable(k)
	}

	cfg.ReportPath = runReport
	cfg.Verbose = runVerbose

	abs, err := filepath.Abs(inputRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	cfg.InputRoot = abs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
