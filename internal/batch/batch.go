// Package batch runs QR detection over many files on the worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/qrbridge/internal/common"
	"github.com/MeKo-Tech/qrbridge/qrcode"
)

// AsyncDetector schedules path detection and reports through a callback.
type AsyncDetector interface {
	DetectPathAsync(path string, cb qrcode.Callback) error
}

// ErrNoFiles is returned when discovery finds nothing to process.
var ErrNoFiles = errors.New("no image files found")

// ProcessBatch discovers the files named by paths and detects all of them
// concurrently. Results keep discovery order. It returns when every
// scheduled detection has reported or ctx ends.
func ProcessBatch(ctx context.Context, det AsyncDetector, paths []string, config *Config) (*Result, error) {
	files, err := DiscoverFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	timer := common.NewNamedTimer("batch")
	reports := make([]qrcode.Report, len(files))

	var wg sync.WaitGroup
	var submitErr error
	for i, path := range files {
		wg.Add(1)
		err := det.DetectPathAsync(path, func(r qrcode.Result) {
			defer wg.Done()
			reports[i] = r.Report()
		})
		if err != nil {
			wg.Done()
			submitErr = fmt.Errorf("failed to schedule %s: %w", path, err)
			break
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if submitErr != nil {
		return nil, submitErr
	}
	timer.Stop()

	result := &Result{Items: make([]Item, len(files)), Duration: timer.Duration()}
	for i, path := range files {
		result.Items[i] = Item{File: path, Result: reports[i]}
		if !reports[i].OK {
			result.Failed++
			slog.Debug("Detection failed", "file", path, "code", reports[i].Code)
		}
	}
	return result, nil
}
