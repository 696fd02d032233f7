// Package nativetest provides a scripted native.Gateway that counts every
// boundary call and release.
package nativetest

import (
	"sync"
	"time"

	"github.com/MeKo-Tech/qrbridge/internal/native"
)

// Entry is one scripted payload.
type Entry struct {
	Text   string
	Points []native.Point
}

// Fixture is a scripted gateway. Configure its exported fields before use.
type Fixture struct {
	// Entries are reported by every successful detect call.
	Entries []Entry

	// DetectStatus is returned by every detect call.
	DetectStatus native.Status

	// HandleOnError hands out a live result handle even when DetectStatus is
	// not OK.
	HandleOnError bool

	// SizeStatus fails the size read.
	SizeStatus native.Status

	// TextStatus and PointsStatus fail reads at specific indices.
	TextStatus   map[int]native.Status
	PointsStatus map[int]native.Status

	// PanicOnPoints panics inside the first points read.
	PanicOnPoints bool

	// Delay is slept inside every detect call.
	Delay time.Duration

	mu               sync.Mutex
	next             uintptr
	detectors        map[native.DetectorHandle]bool
	results          map[native.ResultHandle]bool
	calls            map[string]int
	resultReleases   map[native.ResultHandle]int
	detectorReleases int
}

// New returns a fixture reporting entries on success.
func New(entries ...Entry) *Fixture {
	return &Fixture{
		Entries:        entries,
		TextStatus:     map[int]native.Status{},
		PointsStatus:   map[int]native.Status{},
		detectors:      map[native.DetectorHandle]bool{},
		results:        map[native.ResultHandle]bool{},
		calls:          map[string]int{},
		resultReleases: map[native.ResultHandle]int{},
		next:           0x1000,
	}
}

func (f *Fixture) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

// Calls returns the number of calls made to op, e.g. "detect_bytes".
func (f *Fixture) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// BoundaryCalls returns the total number of calls excluding detector
// creation.
func (f *Fixture) BoundaryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for op, c := range f.calls {
		if op != "create_detector" {
			n += c
		}
	}
	return n
}

// Reads returns the number of size, text and points reads.
func (f *Fixture) Reads() int {
	return f.Calls("result_size") + f.Calls("result_text") + f.Calls("result_points")
}

// ResultReleases returns the total number of result releases.
func (f *Fixture) ResultReleases() int {
	return f.Calls("release_result")
}

// ReleasesOf returns how often r was released.
func (f *Fixture) ReleasesOf(r native.ResultHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resultReleases[r]
}

// MaxReleasesPerHandle returns the highest release count of any handle.
func (f *Fixture) MaxReleasesPerHandle() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := 0
	for _, n := range f.resultReleases {
		m = max(m, n)
	}
	return m
}

// OpenResults returns the number of handed out result handles not yet
// released.
func (f *Fixture) OpenResults() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

// DetectorReleases returns the number of release_detector calls.
func (f *Fixture) DetectorReleases() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detectorReleases
}

func (f *Fixture) CreateDetector() (native.DetectorHandle, native.Status) {
	f.count("create_detector")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	h := native.DetectorHandle(f.next)
	f.detectors[h] = true
	return h, native.StatusOK
}

func (f *Fixture) ReleaseDetector(h native.DetectorHandle) native.Status {
	f.count("release_detector")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detectorReleases++
	if !f.detectors[h] {
		return native.StatusInvalidHandle
	}
	delete(f.detectors, h)
	return native.StatusOK
}

func (f *Fixture) detect(op string, h native.DetectorHandle) (native.ResultHandle, native.Status) {
	f.count(op)
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.detectors[h] {
		return 0, native.StatusInvalidHandle
	}
	if f.DetectStatus != native.StatusOK && !f.HandleOnError {
		return 0, f.DetectStatus
	}
	f.next++
	r := native.ResultHandle(f.next)
	f.results[r] = true
	return r, f.DetectStatus
}

func (f *Fixture) DetectPath(h native.DetectorHandle, _ string) (native.ResultHandle, native.Status) {
	return f.detect("detect_path", h)
}

func (f *Fixture) DetectBytes(h native.DetectorHandle, _ []byte) (native.ResultHandle, native.Status) {
	return f.detect("detect_bytes", h)
}

func (f *Fixture) DetectPixels(h native.DetectorHandle, _ []byte, _, _, _, _ int32) (native.ResultHandle, native.Status) {
	return f.detect("detect_pixels", h)
}

func (f *Fixture) ReleaseResult(r native.ResultHandle) native.Status {
	f.count("release_result")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultReleases[r]++
	if !f.results[r] {
		return native.StatusInvalidHandle
	}
	delete(f.results, r)
	return native.StatusOK
}

func (f *Fixture) live(r native.ResultHandle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[r]
}

func (f *Fixture) ResultSize(r native.ResultHandle) (int, native.Status) {
	f.count("result_size")
	if !f.live(r) {
		return 0, native.StatusInvalidHandle
	}
	if f.SizeStatus != native.StatusOK {
		return 0, f.SizeStatus
	}
	return len(f.Entries), native.StatusOK
}

func (f *Fixture) ResultText(r native.ResultHandle, index int) (string, native.Status) {
	f.count("result_text")
	if !f.live(r) {
		return "", native.StatusInvalidHandle
	}
	if s, ok := f.TextStatus[index]; ok {
		return "", s
	}
	if index < 0 || index >= len(f.Entries) {
		return "", native.StatusInvalidIndex
	}
	return f.Entries[index].Text, native.StatusOK
}

func (f *Fixture) ResultPoints(r native.ResultHandle, index int) ([]native.Point, native.Status) {
	f.count("result_points")
	if f.PanicOnPoints {
		panic("nativetest: scripted panic in result_points")
	}
	if !f.live(r) {
		return nil, native.StatusInvalidHandle
	}
	if s, ok := f.PointsStatus[index]; ok {
		return nil, s
	}
	if index < 0 || index >= len(f.Entries) {
		return nil, native.StatusInvalidIndex
	}
	pts := f.Entries[index].Points
	if pts == nil {
		return nil, native.StatusOK
	}
	return append([]native.Point(nil), pts...), native.StatusOK
}
