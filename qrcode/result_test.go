package qrcode

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_ZeroValueIsEmptySuccess(t *testing.T) {
	var r Result
	assert.True(t, r.OK())
	assert.Equal(t, 0, r.Len())
	assert.NoError(t, r.Err())
}

func TestResult_FailureNeverCarriesOK(t *testing.T) {
	r := failure(CodeOK)
	assert.False(t, r.OK())
	assert.Equal(t, CodeUnknown, r.Code())
}

func TestResult_PayloadsAreCopies(t *testing.T) {
	r := success([]Payload{{Text: "x", Points: []Point{{X: 1, Y: 2}}}})

	got := r.Payloads()
	got[0].Text = "mutated"
	got[0].Points[0].X = 99

	p, ok := r.Payload(0)
	require.True(t, ok)
	assert.Equal(t, "x", p.Text)
	assert.Equal(t, float32(1), p.Points[0].X)

	_, ok = r.Payload(1)
	assert.False(t, ok)
	_, ok = r.Payload(-1)
	assert.False(t, ok)
}

func TestResult_Err(t *testing.T) {
	err := failure(CodeDecodeFailed).Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecodeFailed))
	assert.False(t, errors.Is(err, ErrInvalidHandle))
	assert.Equal(t, "qrcode: decode failed", err.Error())
}

func TestResult_ReportJSON(t *testing.T) {
	r := success([]Payload{{Text: "A", Points: []Point{{X: 1, Y: 1}}}, {Text: "B", Points: []Point{}}})

	data, err := json.Marshal(r.Report())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"ok": true, "code": "OK", "code_value": 0,
		"payloads": [
			{"text": "A", "points": [{"x": 1, "y": 1}]},
			{"text": "B", "points": []}
		]
	}`, string(data))

	data, err = json.Marshal(failure(CodeInvalidArgument).Report())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": false, "code": "INVALID_ARGUMENT", "code_value": -5, "payloads": []}`, string(data))
}
