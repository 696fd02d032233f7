package qrcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/MeKo-Tech/qrbridge/internal/native"
)

// ErrorCode is the normalised outcome of a detection call. The numeric
// values match the native wire values.
type ErrorCode int32

const (
	CodeOK              ErrorCode = 0
	CodeInvalidHandle   ErrorCode = -1
	CodeInvalidIndex    ErrorCode = -2
	CodeBufferTooSmall  ErrorCode = -3
	CodeDecodeFailed    ErrorCode = -4
	CodeInvalidArgument ErrorCode = -5
	CodeOutOfMemory     ErrorCode = -6

	// CodeUnknown stands for any value the native layer may report that is
	// not listed above. It has no wire value of its own.
	CodeUnknown ErrorCode = math.MinInt32
)

var codeNames = map[ErrorCode]string{
	CodeOK:              "OK",
	CodeInvalidHandle:   "INVALID_HANDLE",
	CodeInvalidIndex:    "INVALID_INDEX",
	CodeBufferTooSmall:  "BUFFER_TOO_SMALL",
	CodeDecodeFailed:    "DECODE_FAILED",
	CodeInvalidArgument: "INVALID_ARGUMENT",
	CodeOutOfMemory:     "OUT_OF_MEMORY",
}

// ErrorCodeFromValue maps a raw native value. Unlisted values, including
// the CodeUnknown sentinel itself, map to CodeUnknown.
func ErrorCodeFromValue(v int32) ErrorCode {
	if _, ok := codeNames[ErrorCode(v)]; ok {
		return ErrorCode(v)
	}
	return CodeUnknown
}

func codeOf(s native.Status) ErrorCode {
	return ErrorCodeFromValue(int32(s))
}

// Value returns the numeric wire value.
func (c ErrorCode) Value() int32 { return int32(c) }

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Error is the error form of a failed Result.
type Error struct {
	Code ErrorCode
}

func (e *Error) Error() string {
	return "qrcode: " + strings.ToLower(strings.ReplaceAll(e.Code.String(), "_", " "))
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidHandle   = &Error{Code: CodeInvalidHandle}
	ErrInvalidIndex    = &Error{Code: CodeInvalidIndex}
	ErrBufferTooSmall  = &Error{Code: CodeBufferTooSmall}
	ErrDecodeFailed    = &Error{Code: CodeDecodeFailed}
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument}
	ErrOutOfMemory     = &Error{Code: CodeOutOfMemory}
	ErrUnknown         = &Error{Code: CodeUnknown}
)

func errorFor(code ErrorCode, op string) error {
	return fmt.Errorf("%s: %w", op, &Error{Code: code})
}
