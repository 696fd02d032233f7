// Package benchmark measures detection latency and throughput.
package benchmark

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/MeKo-Tech/qrbridge/internal/common"
)

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64  // Currently allocated bytes
	TotalAllocBytes uint64  // Total allocated bytes (cumulative)
	SysBytes        uint64  // Total bytes from system
	NumGC           uint32  // Number of GC runs
	GCCPUFraction   float64 // Fraction of CPU time spent in GC
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		NumGC:           m.NumGC,
		GCCPUFraction:   m.GCCPUFraction,
	}
}

// String returns a formatted string representation of memory stats.
func (m MemoryStats) String() string {
	return fmt.Sprintf("Alloc: %d KB, Total: %d KB, Sys: %d KB, GC: %d (%.2f%% CPU)",
		m.AllocBytes/1024,
		m.TotalAllocBytes/1024,
		m.SysBytes/1024,
		m.NumGC,
		m.GCCPUFraction*100)
}

// Result holds the outcome of one benchmark.
type Result struct {
	Name         string        `json:"name" yaml:"name"`
	Iterations   int           `json:"iterations" yaml:"iterations"`
	Duration     time.Duration `json:"duration_ns" yaml:"duration_ns"`
	AllocatedKB  uint64        `json:"allocated_kb" yaml:"allocated_kb"`
	MemoryBefore MemoryStats   `json:"-" yaml:"-"`
	MemoryAfter  MemoryStats   `json:"-" yaml:"-"`
	Error        error         `json:"-" yaml:"-"`
}

// Average returns the mean duration per iteration.
func (r Result) Average() time.Duration {
	if r.Iterations <= 0 {
		return 0
	}
	return r.Duration / time.Duration(r.Iterations)
}

// OpsPerSecond returns the iteration rate.
func (r Result) OpsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Iterations) / r.Duration.Seconds()
}

// String returns a formatted string representation of the result.
func (r Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", r.Name, r.Error)
	}
	return fmt.Sprintf("%s: %d iterations, avg: %v, total: %v, %.1f ops/s, alloc: %d KB",
		r.Name, r.Iterations, r.Average(), r.Duration, r.OpsPerSecond(), r.AllocatedKB)
}

// Func is one benchmarked operation. It is called once per iteration.
type Func func() error

// Benchmark is a named operation.
type Benchmark struct {
	Name string
	Func Func
}

// Suite runs a fixed list of benchmarks in order.
type Suite struct {
	benchmarks []Benchmark
	results    []Result
	mu         sync.Mutex
}

// NewSuite creates an empty suite.
func NewSuite() *Suite {
	return &Suite{}
}

// Add appends a benchmark.
func (s *Suite) Add(name string, fn Func) {
	s.benchmarks = append(s.benchmarks, Benchmark{Name: name, Func: fn})
}

// Names lists the registered benchmarks in order.
func (s *Suite) Names() []string {
	names := make([]string, len(s.benchmarks))
	for i, b := range s.benchmarks {
		names[i] = b.Name
	}
	return names
}

// Run runs a single benchmark with the specified number of iterations.
func (s *Suite) Run(name string, iterations int) Result {
	for _, b := range s.benchmarks {
		if b.Name == name {
			return runBenchmark(b, iterations)
		}
	}
	return Result{Name: name, Error: fmt.Errorf("benchmark '%s' not found", name)}
}

// RunAll runs all benchmarks in the suite.
func (s *Suite) RunAll(iterations int) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = make([]Result, 0, len(s.benchmarks))
	for _, b := range s.benchmarks {
		s.results = append(s.results, runBenchmark(b, iterations))
	}
	return s.results
}

// Results returns the results of the last RunAll.
func (s *Suite) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// PrintResults writes one line per result.
func (s *Suite) PrintResults(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Benchmark Results:")
	_, _ = fmt.Fprintln(w, "==================")
	for _, r := range s.Results() {
		_, _ = fmt.Fprintln(w, r.String())
	}
}

// ErrInvalidIterations is returned for a non-positive iteration count.
var ErrInvalidIterations = errors.New("benchmark: iterations must be positive")

func runBenchmark(b Benchmark, iterations int) Result {
	if iterations <= 0 {
		return Result{Name: b.Name, Error: ErrInvalidIterations}
	}

	runtime.GC()
	before := GetMemoryStats()

	timer := common.NewNamedTimer(b.Name)
	var err error
	done := 0
	for range iterations {
		if err = b.Func(); err != nil {
			break
		}
		done++
	}
	duration := timer.Stop()
	after := GetMemoryStats()

	return Result{
		Name:         b.Name,
		Iterations:   done,
		Duration:     duration,
		AllocatedKB:  (after.TotalAllocBytes - before.TotalAllocBytes) / 1024,
		MemoryBefore: before,
		MemoryAfter:  after,
		Error:        err,
	}
}
