package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrbridge/internal/benchmark"
	"github.com/MeKo-Tech/qrbridge/internal/dispatch"
)

func newBenchCommand(a *app) *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench <image>",
		Short: "Measure detection latency for every input shape",
		Long: `Decode one image repeatedly through each detector input shape (path,
encoded bytes, raw RGBA pixels, ARGB colors, decoded image) and through the
async worker pool, then print per-benchmark timings.

Examples:
  qrbridge bench ticket.png
  qrbridge bench ticket.png --iterations 200 --parallel 16`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			iterations, _ := cmd.Flags().GetInt("iterations")
			parallel, _ := cmd.Flags().GetInt("parallel")
			if iterations <= 0 {
				return fmt.Errorf("invalid iterations: %d (must be positive)", iterations)
			}

			poolConfig := cfg.ToDispatchConfig()
			poolConfig.Workers = intFlag(cmd, "workers", poolConfig.Workers)
			if err := poolConfig.Validate(); err != nil {
				return err
			}
			pool := dispatch.New(poolConfig)
			defer pool.Close()

			det, err := a.openDetector(pool)
			if err != nil {
				return err
			}
			defer func() { _ = det.Close() }()

			if parallel <= 0 {
				parallel = pool.Config().Workers
			}
			suite, err := benchmark.NewDetectionSuite(det, args[0], parallel)
			if err != nil {
				return err
			}

			results := suite.RunAll(iterations)
			suite.PrintResults(cmd.OutOrStdout())
			for _, r := range results {
				if r.Error != nil {
					return fmt.Errorf("benchmark %s failed: %w", r.Name, r.Error)
				}
			}
			return nil
		},
	}

	benchCmd.Flags().IntP("iterations", "n", 50, "iterations per benchmark")
	benchCmd.Flags().Int("parallel", 0, "async calls per burst (0 = worker count)")
	benchCmd.Flags().Int("workers", 0, "number of worker goroutines (0 = number of CPUs)")
	return benchCmd
}
