package native

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrbridge/internal/pixel"
)

func TestInstrumentedCountsCalls(t *testing.T) {
	g := Instrument(NewEngine(DefaultEngineConfig()))
	before := testutil.ToFloat64(nativeCallsTotal.WithLabelValues("detect_pixels", "invalid_argument"))
	openBefore := testutil.ToFloat64(nativeOpenResults)

	h, st := g.CreateDetector()
	require.Equal(t, StatusOK, st)

	_, st = g.DetectPixels(h, nil, int32(pixel.FormatGray), 4, 4, 0)
	assert.Equal(t, StatusInvalidArgument, st)
	assert.Equal(t, before+1, testutil.ToFloat64(nativeCallsTotal.WithLabelValues("detect_pixels", "invalid_argument")))

	r, st := g.DetectPixels(h, make([]byte, 16), int32(pixel.FormatGray), 4, 4, 0)
	require.Equal(t, StatusOK, st)
	assert.Equal(t, openBefore+1, testutil.ToFloat64(nativeOpenResults))

	assert.Equal(t, StatusOK, g.ReleaseResult(r))
	assert.Equal(t, openBefore, testutil.ToFloat64(nativeOpenResults))
	assert.Equal(t, StatusOK, g.ReleaseDetector(h))
}

func TestOpenBackends(t *testing.T) {
	g, err := Open("", DefaultEngineConfig())
	require.NoError(t, err)
	assert.IsType(t, &Instrumented{}, g)

	_, err = Open("bogus", DefaultEngineConfig())
	assert.Error(t, err)

	g, err = Open(BackendCGO, DefaultEngineConfig())
	if Available() {
		assert.NoError(t, err)
		assert.NotNil(t, g)
	} else {
		assert.ErrorIs(t, err, ErrNotLinked)
	}
}
