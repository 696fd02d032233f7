package qrcode

import (
	"fmt"
	"testing"

	"github.com/MeKo-Tech/qrbridge/internal/native"
	"github.com/MeKo-Tech/qrbridge/internal/native/nativetest"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genEntries() gopter.Gen {
	return gen.SliceOf(gen.AlphaString()).Map(func(texts []string) []nativetest.Entry {
		entries := make([]nativetest.Entry, len(texts))
		for i, s := range texts {
			pts := make([]native.Point, i%5)
			for j := range pts {
				pts[j] = native.Point{X: float32(i), Y: float32(j)}
			}
			entries[i] = nativetest.Entry{Text: s, Points: pts}
		}
		return entries
	})
}

func TestProperties_Translate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("payload order and points match native order", prop.ForAll(
		func(entries []nativetest.Entry) bool {
			f := nativetest.New(entries...)
			d, err := New(WithGateway(f))
			if err != nil {
				return false
			}
			defer d.Close()

			res := d.DetectPath("/p.png")
			if !res.OK() || res.Len() != len(entries) {
				return false
			}
			for i, p := range res.Payloads() {
				if p.Text != entries[i].Text || len(p.Points) != len(entries[i].Points) {
					return false
				}
				for j, pt := range p.Points {
					if pt.X != entries[i].Points[j].X || pt.Y != entries[i].Points[j].Y {
						return false
					}
				}
			}
			return f.ResultReleases() == 1
		},
		genEntries(),
	))

	properties.Property("a failing read at any index releases once and returns no payloads", prop.ForAll(
		func(entries []nativetest.Entry, pick int, onPoints bool) bool {
			if len(entries) == 0 {
				return true
			}
			idx := pick % len(entries)
			f := nativetest.New(entries...)
			if onPoints {
				f.PointsStatus[idx] = native.StatusInvalidIndex
			} else {
				f.TextStatus[idx] = native.StatusInvalidIndex
			}
			d, err := New(WithGateway(f))
			if err != nil {
				return false
			}
			defer d.Close()

			res := d.DetectBytes([]byte{1})
			return res.Code() == CodeInvalidIndex &&
				res.Payloads() == nil &&
				f.ResultReleases() == 1 &&
				f.OpenResults() == 0
		},
		genEntries(),
		gen.IntRange(0, 1000),
		gen.Bool(),
	))

	properties.Property("unlisted native values map to UNKNOWN", prop.ForAll(
		func(v int32) bool {
			got := ErrorCodeFromValue(v)
			if v <= 0 && v >= -6 {
				return got == ErrorCode(v) && got.String() != "UNKNOWN"
			}
			return got == CodeUnknown && got.String() == "UNKNOWN"
		},
		gen.Int32(),
	))

	properties.TestingRun(t)
}

func TestErrorCode_String(t *testing.T) {
	for _, c := range []ErrorCode{CodeOK, CodeInvalidHandle, CodeInvalidIndex, CodeBufferTooSmall,
		CodeDecodeFailed, CodeInvalidArgument, CodeOutOfMemory} {
		if ErrorCodeFromValue(c.Value()) != c {
			t.Errorf("round trip of %s failed", c)
		}
	}
	if got := ErrorCodeFromValue(CodeUnknown.Value()); got != CodeUnknown {
		t.Errorf("sentinel mapped to %s", got)
	}
	if got := fmt.Sprint(ErrorCodeFromValue(-99)); got != "UNKNOWN" {
		t.Errorf("-99 printed as %q", got)
	}
}
