// Package dispatch runs blocking work on a fixed set of worker goroutines
// fed by a FIFO queue.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
)

var (
	// ErrQueueFull is returned by Submit when the queue is at capacity and
	// the pool rejects instead of blocking.
	ErrQueueFull = errors.New("dispatch: queue full")

	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("dispatch: pool closed")
)

// Policy decides what Submit does when a bounded queue is full.
type Policy string

const (
	PolicyBlock  Policy = "block"
	PolicyReject Policy = "reject"
)

// Config holds pool settings.
type Config struct {
	Workers   int    // Number of workers (0 = DefaultWorkers())
	QueueSize int    // Queue capacity (0 = unbounded)
	Policy    Policy // Behaviour of a full bounded queue
}

// DefaultWorkers leaves one CPU for the submitting side.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// DefaultConfig returns an unbounded blocking pool sized by DefaultWorkers.
func DefaultConfig() Config {
	return Config{
		Workers:   DefaultWorkers(),
		QueueSize: 0,
		Policy:    PolicyBlock,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid dispatch workers: %d (must be >= 0)", c.Workers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("invalid dispatch queue size: %d (must be >= 0)", c.QueueSize)
	}
	switch c.Policy {
	case "", PolicyBlock, PolicyReject:
	default:
		return fmt.Errorf("invalid dispatch policy: %s (must be one of: block, reject)", c.Policy)
	}
	return nil
}

// Stats is a snapshot of pool state.
type Stats struct {
	Workers int
	Queued  int
	Busy    int
}

// Pool executes submitted tasks on a fixed number of workers in FIFO order.
// Tasks are never cancelled once queued.
type Pool struct {
	config   Config
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	queue    []func()
	busy     int
	closed   bool
	wg       sync.WaitGroup
}

// New starts a pool. Invalid settings fall back to defaults.
func New(config Config) *Pool {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers()
	}
	if config.QueueSize < 0 {
		config.QueueSize = 0
	}
	if config.Policy == "" {
		config.Policy = PolicyBlock
	}

	p := &Pool{config: config}
	p.notEmpty = sync.NewCond(&p.mu)
	p.notFull = sync.NewCond(&p.mu)

	for range config.Workers {
		p.wg.Add(1)
		go p.worker()
	}
	poolWorkers.Add(float64(config.Workers))

	slog.Debug("Dispatch pool started",
		"workers", config.Workers,
		"queue_size", config.QueueSize,
		"policy", config.Policy)
	return p
}

// Config returns the effective configuration.
func (p *Pool) Config() Config {
	return p.config
}

// Submit queues task. With a full bounded queue it either waits for space
// or returns ErrQueueFull, depending on the policy.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		return errors.New("dispatch: nil task")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.closed {
			return ErrClosed
		}
		if p.config.QueueSize == 0 || len(p.queue) < p.config.QueueSize {
			break
		}
		if p.config.Policy == PolicyReject {
			poolTasksTotal.WithLabelValues("rejected").Inc()
			slog.Warn("Dispatch queue full, rejecting task", "queue_size", p.config.QueueSize)
			return ErrQueueFull
		}
		p.notFull.Wait()
	}

	p.queue = append(p.queue, task)
	poolQueueDepth.Inc()
	p.notEmpty.Signal()
	return nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.notEmpty.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.busy++
		p.notFull.Signal()
		p.mu.Unlock()
		poolQueueDepth.Dec()

		p.run(task)

		p.mu.Lock()
		p.busy--
		p.mu.Unlock()
	}
}

func (p *Pool) run(task func()) {
	poolBusyWorkers.Inc()
	defer poolBusyWorkers.Dec()
	defer func() {
		if r := recover(); r != nil {
			poolTasksTotal.WithLabelValues("panicked").Inc()
			slog.Error("Dispatch task panicked", "panic", r)
			return
		}
		poolTasksTotal.WithLabelValues("done").Inc()
	}()
	task()
}

// Stats returns a snapshot of the queue and workers.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Workers: p.config.Workers, Queued: len(p.queue), Busy: p.busy}
}

// Close stops accepting work, runs what is already queued and waits for
// the workers to exit.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.notEmpty.Broadcast()
	p.notFull.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	poolWorkers.Sub(float64(p.config.Workers))
}
