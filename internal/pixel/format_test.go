package pixel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatChannels(t *testing.T) {
	tests := []struct {
		format   Format
		channels int
		order    string
	}{
		{FormatGray, 1, "Y"},
		{FormatRGB, 3, "RGB"},
		{FormatBGR, 3, "BGR"},
		{FormatRGBA, 4, "RGBA"},
		{FormatBGRA, 4, "BGRA"},
		{FormatARGB, 4, "ARGB"},
		{FormatABGR, 4, "ABGR"},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			assert.True(t, tt.format.Valid())
			assert.Equal(t, tt.channels, tt.format.Channels())
			assert.Equal(t, tt.order, tt.format.Order())
		})
	}

	assert.False(t, Format(7).Valid())
	assert.Equal(t, 0, Format(-1).Channels())
	assert.Equal(t, "format(9)", Format(9).String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("BGRA")
	require.NoError(t, err)
	assert.Equal(t, FormatBGRA, f)

	f, err = ParseFormat(" grey ")
	require.NoError(t, err)
	assert.Equal(t, FormatGray, f)

	_, err = ParseFormat("yuv")
	assert.Error(t, err)
}

func TestMinBufferLen(t *testing.T) {
	assert.Equal(t, 40*30*3, FormatRGB.MinBufferLen(40, 30, 0))
	assert.Equal(t, 128*30, FormatRGB.MinBufferLen(40, 30, 128))
	assert.Equal(t, 10*10, FormatGray.MinBufferLen(10, 10, 0))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		w, h    int
		stride  int
		bufLen  int
		wantErr bool
	}{
		{"packed exact", FormatRGBA, 4, 4, 0, 64, false},
		{"padded stride", FormatRGB, 4, 2, 16, 32, false},
		{"short packed buffer", FormatRGBA, 4, 4, 0, 63, true},
		{"short padded buffer", FormatRGB, 4, 2, 16, 31, true},
		{"stride below row", FormatBGR, 4, 2, 11, 100, true},
		{"negative stride", FormatGray, 4, 2, -1, 100, true},
		{"zero width", FormatGray, 0, 2, 0, 100, true},
		{"negative height", FormatGray, 2, -3, 0, 100, true},
		{"unknown format", Format(42), 2, 2, 0, 100, true},
		{"stride times height wraps", FormatGray, 100, 1 << 30, 1 << 34, 1, true},
		{"stride above int32", FormatGray, 1, 1, 1 << 31, 1 << 32, true},
		{"height above int32", FormatGray, 1, 1 << 31, 0, 1 << 32, true},
		{"row bytes above int32", FormatRGBA, 1 << 29, 1, 0, 1 << 32, true},
		{"int32 limits", FormatGray, 1, 2, 1<<31 - 1, 1 << 32, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.format, tt.w, tt.h, tt.stride, tt.bufLen)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidArgument))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestToGray(t *testing.T) {
	// One white pixel followed by one pure red pixel, in every colour layout.
	white, red := byte(255), byte((255*weightR)>>8)
	tests := []struct {
		format Format
		pix    []byte
	}{
		{FormatRGB, []byte{255, 255, 255, 255, 0, 0}},
		{FormatBGR, []byte{255, 255, 255, 0, 0, 255}},
		{FormatRGBA, []byte{255, 255, 255, 255, 255, 0, 0, 9}},
		{FormatBGRA, []byte{255, 255, 255, 255, 0, 0, 255, 9}},
		{FormatARGB, []byte{255, 255, 255, 255, 9, 255, 0, 0}},
		{FormatABGR, []byte{255, 255, 255, 255, 9, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			dst := make([]byte, 2)
			ToGray(dst, tt.pix, tt.format, 2, 1, 0)
			assert.Equal(t, []byte{white, red}, dst)
		})
	}
}

func TestToGrayHonoursStride(t *testing.T) {
	pix := []byte{
		1, 2, 0xEE, 0xEE,
		3, 4, 0xEE, 0xEE,
	}
	dst := make([]byte, 4)
	ToGray(dst, pix, FormatGray, 2, 2, 4)
	assert.Equal(t, []byte{1, 2, 3, 4}, dst)

	img := GrayImage(dst, 2, 2)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, uint8(4), img.GrayAt(1, 1).Y)
}
