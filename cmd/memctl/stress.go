package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/memkit/memkit/mem/alloc"
	"github.com/memkit/memkit/mem/ref"
)

var (
	stressConfigPath string
	stressWorkers    int
	stressIterations int
	stressRegionSize uint64
	stressPayload    uint64
)

// stressConfig is the YAML shape accepted by --config. Flags that were set
// explicitly on the command line win over file values.
type stressConfig struct {
	Workers    int    `yaml:"workers"`
	Iterations int    `yaml:"iterations"`
	Region     uint64 `yaml:"region"`
	Payload    uint64 `yaml:"payload"`
}

func init() {
	cmd := newStressCmd()
	cmd.Flags().StringVar(&stressConfigPath, "config", "", "YAML workload description")
	cmd.Flags().IntVar(&stressWorkers, "workers", 8, "Concurrent workers")
	cmd.Flags().IntVar(&stressIterations, "iterations", 200000, "Iterations per worker")
	cmd.Flags().Uint64Var(&stressRegionSize, "region", 1<<20, "Region size in bytes")
	cmd.Flags().Uint64Var(&stressPayload, "payload", 64, "Shared payload element count")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer shared and weak handles from concurrent workers",
		Long: `The stress command builds one shared allocation and has every
worker clone, weaken, lock, and drop references to it in a tight loop. It
verifies that the counts return to their initial state and that the region
is fully reclaimed afterwards, and reports the observed throughput.

Example:
  memctl stress --workers 16 --iterations 1000000
  memctl stress --config workload.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadStressConfig(cmd)
			if err != nil {
				return err
			}
			return runStress(cfg)
		},
	}
	return cmd
}

// loadStressConfig merges defaults, the optional YAML file, and explicit
// flags, in that order of increasing precedence.
func loadStressConfig(cmd *cobra.Command) (stressConfig, error) {
	cfg := stressConfig{
		Workers:    stressWorkers,
		Iterations: stressIterations,
		Region:     stressRegionSize,
		Payload:    stressPayload,
	}
	if stressConfigPath != "" {
		data, err := os.ReadFile(stressConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		var file stressConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
		if file.Workers > 0 && !cmd.Flags().Changed("workers") {
			cfg.Workers = file.Workers
		}
		if file.Iterations > 0 && !cmd.Flags().Changed("iterations") {
			cfg.Iterations = file.Iterations
		}
		if file.Region > 0 && !cmd.Flags().Changed("region") {
			cfg.Region = file.Region
		}
		if file.Payload > 0 && !cmd.Flags().Changed("payload") {
			cfg.Payload = file.Payload
		}
	}
	if cfg.Workers < 1 {
		return cfg, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.Payload < 1 {
		return cfg, fmt.Errorf("payload must be positive, got %d", cfg.Payload)
	}
	return cfg, nil
}

// StressReport summarizes a completed run.
type StressReport struct {
	Workers    int
	Iterations int
	Locks      uint64
	Elapsed    string
	OpsPerSec  float64
	Reclaimed  bool
	Heap       alloc.Stats
}

func runStress(cfg stressConfig) error {
	region, err := alloc.NewRegion(uintptr(cfg.Region))
	if err != nil {
		return fmt.Errorf("failed to map region: %w", err)
	}
	defer region.Close()
	heap, err := alloc.NewBestFit(region)
	if err != nil {
		return fmt.Errorf("failed to initialize heap: %w", err)
	}

	root := ref.MakeSharedSlice[uint64](heap, uintptr(cfg.Payload))
	if root.IsZero() {
		return fmt.Errorf("region too small for a %d element payload", cfg.Payload)
	}

	printVerbose("Churning %d workers x %d iterations on a %d element payload\n",
		cfg.Workers, cfg.Iterations, cfg.Payload)

	var locks atomic.Uint64
	start := time.Now()

	var g errgroup.Group
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			for i := 0; i < cfg.Iterations; i++ {
				s := root.Clone()
				if s.IsZero() {
					return fmt.Errorf("clone failed: counter exhausted")
				}
				wk := ref.WeakFrom(&s)
				s.Reset()
				if locked := wk.Lock(); !locked.IsZero() {
					locks.Add(1)
					locked.Reset()
				}
				wk.Reset()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if got := root.UseCount(); got != 1 {
		return fmt.Errorf("count did not settle: use_count %d after churn", got)
	}
	root.Reset()

	stats := heap.Stats()
	report := StressReport{
		Workers:    cfg.Workers,
		Iterations: cfg.Iterations,
		Locks:      locks.Load(),
		Elapsed:    elapsed.String(),
		OpsPerSec:  float64(cfg.Workers) * float64(cfg.Iterations) / elapsed.Seconds(),
		Reclaimed:  stats.InUse == 0,
		Heap:       stats,
	}

	if jsonOut {
		return printJSON(report)
	}

	printInfo("\nStress complete in %s\n", report.Elapsed)
	printInfo("  Workers: %d x %s iterations\n",
		report.Workers, formatNumber(int64(report.Iterations)))
	printInfo("  Successful locks: %s\n", formatNumber(int64(report.Locks)))
	printInfo("  Throughput: %s ops/sec\n", formatNumber(int64(report.OpsPerSec)))
	if report.Reclaimed {
		printInfo("  Region fully reclaimed.\n")
	} else {
		printInfo("  WARNING: %s still in use after teardown\n",
			formatBytes(int64(report.Heap.InUse)))
	}
	return nil
}
