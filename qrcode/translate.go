package qrcode

import (
	"log/slog"

	"github.com/MeKo-Tech/qrbridge/internal/native"
)

// translate walks a result handle into a Result. The handle is released
// exactly once when it is non-zero, on every path including panics.
func translate(g native.Gateway, r native.ResultHandle, st native.Status) Result {
	if r != 0 {
		defer release(g, r)
	}
	if st != native.StatusOK {
		return failure(codeOf(st))
	}
	if r == 0 {
		return failure(CodeInvalidHandle)
	}

	n, st := g.ResultSize(r)
	if st != native.StatusOK {
		return failure(codeOf(st))
	}
	if n < 0 {
		return failure(CodeUnknown)
	}

	payloads := make([]Payload, 0, n)
	for i := 0; i < n; i++ {
		text, st := g.ResultText(r, i)
		if st != native.StatusOK {
			return failure(codeOf(st))
		}
		pts, st := g.ResultPoints(r, i)
		if st != native.StatusOK {
			return failure(codeOf(st))
		}
		points := make([]Point, len(pts))
		for j, p := range pts {
			points[j] = Point{X: p.X, Y: p.Y}
		}
		payloads = append(payloads, Payload{Text: text, Points: points})
	}
	return success(payloads)
}

func release(g native.Gateway, r native.ResultHandle) {
	if st := g.ReleaseResult(r); st != native.StatusOK {
		slog.Warn("Releasing result handle failed", "status", st.String())
	}
}
