package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/qrbridge/qrcode"
)

// Config holds the discovery settings for a batch.
type Config struct {
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
}

// Item is the outcome for one file.
type Item struct {
	File   string        `json:"file" yaml:"file"`
	Result qrcode.Report `json:"result" yaml:"result"`
}

// Result holds the outcome of a batch.
type Result struct {
	Items    []Item
	Failed   int
	Duration time.Duration
}

// Decoded returns the number of payloads over all files.
func (r *Result) Decoded() int {
	n := 0
	for _, item := range r.Items {
		n += len(item.Result.Payloads)
	}
	return n
}

// FormatResults formats the batch results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Items, format)
}

// SaveResults writes the formatted results to outputFile, or to w when no
// file is given.
func (r *Result) SaveResults(w io.Writer, format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
		}
		return nil
	}

	_, err = fmt.Fprint(w, output)
	return err
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer, quiet bool) {
	if quiet {
		return
	}
	total := len(r.Items)
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total files: %d\n", total)
	_, _ = fmt.Fprintf(w, "  Succeeded: %d\n", total-r.Failed)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", r.Failed)
	_, _ = fmt.Fprintf(w, "  Codes decoded: %d\n", r.Decoded())
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if total > 0 && r.Duration > 0 {
		_, _ = fmt.Fprintf(w, "  Throughput: %.1f files/sec\n", float64(total)/r.Duration.Seconds())
	}
}
