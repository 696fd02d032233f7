package dispatch

import (
	"errors"
	"sync"
)

// ErrAlreadyStarted is returned by ConfigureShared once the shared pool
// exists.
var ErrAlreadyStarted = errors.New("dispatch: shared pool already started")

var (
	sharedMu     sync.Mutex
	sharedConfig = DefaultConfig()
	sharedPool   *Pool
)

// ConfigureShared sets the configuration used when the shared pool is first
// created.
func ConfigureShared(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedPool != nil {
		return ErrAlreadyStarted
	}
	sharedConfig = config
	return nil
}

// Shared returns the process-wide pool, creating it on first use. It lives
// until the process exits.
func Shared() *Pool {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedPool == nil {
		sharedPool = New(sharedConfig)
	}
	return sharedPool
}
