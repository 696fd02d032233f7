package native

import (
	"errors"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendEngine = "engine"
	BackendCGO    = "cgo"
)

// ErrNotLinked is returned when the cgo gateway is requested in a build
// without libzzt_qrcode.
var ErrNotLinked = errors.New("native: libzzt_qrcode not linked; rebuild with -tags zzt_native")

// Open returns the gateway for the named backend, wrapped with metrics.
func Open(backend string, config EngineConfig) (Gateway, error) {
	switch backend {
	case "", BackendEngine:
		return Instrument(NewEngine(config)), nil
	case BackendCGO:
		return openCGO()
	default:
		return nil, fmt.Errorf("unknown native backend %q", backend)
	}
}
