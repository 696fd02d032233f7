package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrbridge/internal/testutil"
	"github.com/MeKo-Tech/qrbridge/qrcode"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
		wantErr  bool
	}{
		{"empty", "", nil, false},
		{"blank", "   ", nil, false},
		{"single page", "3", []int{3}, false},
		{"range", "1-4", []int{1, 2, 3, 4}, false},
		{"list", "1,3,5", []int{1, 3, 5}, false},
		{"mixed with spaces", "1 - 2, 5", []int{1, 2, 5}, false},
		{"reversed range", "5-2", nil, true},
		{"zero page", "0", nil, true},
		{"zero start", "0-3", nil, true},
		{"not a number", "abc", nil, true},
		{"bad range", "1-2-3", nil, true},
		{"bad end", "1-x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePageRange(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParsePageFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		base     string
		page     int
		wantErr  bool
	}{
		{"doc_1_Im0.png", "doc", 1, false},
		{"doc_012_Im3.jpg", "doc", 12, false},
		{"my_doc_2_Im1.png", "my_doc", 2, false},
		{"page_4_image_1.png", "doc", 4, false},
		{"other_1_Im0.png", "doc", 0, true},
		{"doc_x_Im0.png", "doc", 0, true},
		{"doc_1.png", "doc", 0, true},
		{"doc_0_Im0.png", "doc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			page, err := parsePageFromFilename(tt.filename, tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, page)
		})
	}
}

func TestCollectExtractedImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"doc_2_Im0.png", "doc_1_Im1.png", "doc_1_Im0.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "doc_3_sub"), 0o750))

	images, err := collectExtractedImages(dir, "doc")
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, ExtractedImage{Page: 1, Index: 1, Path: filepath.Join(dir, "doc_1_Im0.png")}, images[0])
	assert.Equal(t, ExtractedImage{Page: 1, Index: 2, Path: filepath.Join(dir, "doc_1_Im1.png")}, images[1])
	assert.Equal(t, ExtractedImage{Page: 2, Index: 1, Path: filepath.Join(dir, "doc_2_Im0.png")}, images[2])
}

func TestDocumentResultTexts(t *testing.T) {
	doc := DocumentResult{Pages: []PageResult{
		{PageNumber: 1, Images: []ImageResult{
			{ImageIndex: 1, Result: qrcode.Report{Payloads: []qrcode.Payload{{Text: "a"}, {Text: "b"}}}},
		}},
		{PageNumber: 3, Images: []ImageResult{
			{ImageIndex: 1, Result: qrcode.Report{}},
			{ImageIndex: 2, Result: qrcode.Report{Payloads: []qrcode.Payload{{Text: "c"}}}},
		}},
	}}
	assert.Equal(t, []string{"a", "b", "c"}, doc.Texts())
}

func TestScan_MissingFile(t *testing.T) {
	det, err := qrcode.New()
	require.NoError(t, err)
	defer det.Close()

	_, err = Scan(context.Background(), det, filepath.Join(t.TempDir(), "missing.pdf"), Options{})
	assert.Error(t, err)
}

func TestScan_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a pdf"), 0o600))

	det, err := qrcode.New()
	require.NoError(t, err)
	defer det.Close()

	_, err = Scan(context.Background(), det, path, Options{})
	assert.Error(t, err)
}

func TestScan_InvalidPageRange(t *testing.T) {
	path := writeQRDocument(t, "range")

	det, err := qrcode.New()
	require.NoError(t, err)
	defer det.Close()

	_, err = Scan(context.Background(), det, path, Options{Pages: "3-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page range")
}

func TestScan_DecodesEmbeddedQRCode(t *testing.T) {
	path := writeQRDocument(t, "https://example.com/invoice/42")

	det, err := qrcode.New()
	require.NoError(t, err)
	defer det.Close()

	doc, err := Scan(context.Background(), det, path, Options{})
	require.NoError(t, err)

	assert.Equal(t, path, doc.Filename)
	assert.Equal(t, 1, doc.TotalPages)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 1, doc.Pages[0].PageNumber)
	require.NotEmpty(t, doc.Pages[0].Images)
	assert.True(t, doc.Pages[0].Images[0].Result.OK)
	assert.Equal(t, []string{"https://example.com/invoice/42"}, doc.Texts())
	assert.GreaterOrEqual(t, doc.Processing.TotalMs, doc.Processing.ExtractionMs)
}

func TestScan_CancelledContext(t *testing.T) {
	path := writeQRDocument(t, "cancelled")

	det, err := qrcode.New()
	require.NoError(t, err)
	defer det.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Scan(ctx, det, path, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

// writeQRDocument builds a one page PDF holding a single QR code image.
func writeQRDocument(t *testing.T, text string) string {
	t.Helper()
	return testutil.WriteQRPDF(t, t.TempDir(), "document.pdf", text)
}
