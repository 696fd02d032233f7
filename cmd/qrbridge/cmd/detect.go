package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrbridge/internal/batch"
	"github.com/MeKo-Tech/qrbridge/internal/dispatch"
)

func newDetectCommand(a *app) *cobra.Command {
	detectCmd := &cobra.Command{
		Use:   "detect [file|dir...]",
		Short: "Decode QR codes in image files",
		Long: `Decode QR codes in one or more image files or directories.

Files are processed concurrently on a worker pool. Directories are scanned
for image files (PNG, JPEG, GIF, BMP, TIFF, WebP) unless --include is given.

Examples:
  qrbridge detect ticket.png
  qrbridge detect scans/ --recursive --format json
  qrbridge detect scans/ --exclude '*draft*' --output results.yaml --format yaml`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDetect(cmd, args)
		},
	}

	f := detectCmd.Flags()
	f.StringP("format", "f", "text", "output format (text, json, yaml)")
	f.StringP("output", "o", "", "output file (default: stdout)")
	f.BoolP("recursive", "r", false, "scan directories recursively")
	f.StringSlice("include", nil, "file name patterns to include when scanning directories")
	f.StringSlice("exclude", nil, "file name patterns to exclude")
	f.Bool("continue-on-error", false, "exit successfully even if some files fail to decode")
	f.Int("workers", 0, "number of worker goroutines (0 = number of CPUs)")
	f.BoolP("quiet", "q", false, "suppress informational output")
	f.Bool("stats", false, "print processing statistics")
	return detectCmd
}

func (a *app) runDetect(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}
	cfg := a.config()

	format := stringFlag(cmd, "format", cfg.Output.Format)
	if err := validateFormat(format); err != nil {
		return err
	}
	outputFile := stringFlag(cmd, "output", cfg.Output.File)
	continueOnError := boolFlag(cmd, "continue-on-error", cfg.Batch.ContinueOnError)
	quiet, _ := cmd.Flags().GetBool("quiet")

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

	batchConfig := &batch.Config{
		Recursive:       boolFlag(cmd, "recursive", cfg.Batch.Recursive),
		IncludePatterns: stringSliceFlag(cmd, "include", cfg.Batch.Include),
		ExcludePatterns: stringSliceFlag(cmd, "exclude", cfg.Batch.Exclude),
	}
	res, err := batch.ProcessBatch(cmd.Context(), det, args, batchConfig)
	if err != nil {
		return err
	}

	if err := res.SaveResults(cmd.OutOrStdout(), format, outputFile, quiet); err != nil {
		return err
	}
	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		res.PrintStats(cmd.ErrOrStderr(), quiet)
	}

	if res.Failed > 0 && !continueOnError {
		return fmt.Errorf("detection failed for %d of %d file(s)", res.Failed, len(res.Items))
	}
	return nil
}
