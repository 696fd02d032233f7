package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/qrbridge/internal/common"
	"github.com/MeKo-Tech/qrbridge/qrcode"
)

// PathDetector decodes QR codes from an image file.
type PathDetector interface {
	DetectPath(path string) qrcode.Result
}

// Options controls which pages are scanned.
type Options struct {
	Pages    string
	Password string
}

// ImageResult is the detection outcome for one embedded image.
type ImageResult struct {
	ImageIndex int           `json:"image_index" yaml:"image_index"`
	Result     qrcode.Report `json:"result" yaml:"result"`
}

// PageResult groups the images of one page.
type PageResult struct {
	PageNumber int           `json:"page_number" yaml:"page_number"`
	Images     []ImageResult `json:"images" yaml:"images"`
}

// DocumentResult is the outcome of scanning a PDF.
type DocumentResult struct {
	Filename   string       `json:"filename" yaml:"filename"`
	TotalPages int          `json:"total_pages" yaml:"total_pages"`
	Pages      []PageResult `json:"pages" yaml:"pages"`
	Processing Timing       `json:"processing" yaml:"processing"`
}

// Timing records per-stage durations in milliseconds.
type Timing struct {
	ExtractionMs float64 `json:"extraction_ms" yaml:"extraction_ms"`
	DetectionMs  float64 `json:"detection_ms" yaml:"detection_ms"`
	TotalMs      float64 `json:"total_ms" yaml:"total_ms"`
}

// Texts returns all decoded payload texts in page order.
func (d *DocumentResult) Texts() []string {
	var texts []string
	for _, page := range d.Pages {
		for _, img := range page.Images {
			for _, p := range img.Result.Payloads {
				texts = append(texts, p.Text)
			}
		}
	}
	return texts
}

// Scan extracts the embedded images of filename and runs det on each one.
// Images that fail to decode are reported with their error code; only
// document level problems return an error.
func Scan(ctx context.Context, det PathDetector, filename string, opts Options) (*DocumentResult, error) {
	total := common.NewNamedTimer("pdf scan")

	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", filename, err)
	}

	pageCount, err := PageCount(filename, opts.Password)
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "qrbridge-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	extract := common.NewNamedTimer("pdf extraction")
	images, err := ExtractImages(filename, opts.Pages, opts.Password, tempDir)
	extract.Stop()
	if err != nil {
		return nil, err
	}

	detect := common.NewNamedTimer("pdf detection")
	doc := &DocumentResult{Filename: filename, TotalPages: pageCount, Pages: []PageResult{}}
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n := len(doc.Pages); n == 0 || doc.Pages[n-1].PageNumber != img.Page {
			doc.Pages = append(doc.Pages, PageResult{PageNumber: img.Page})
		}
		res := det.DetectPath(img.Path)
		page := &doc.Pages[len(doc.Pages)-1]
		page.Images = append(page.Images, ImageResult{ImageIndex: img.Index, Result: res.Report()})
	}
	detect.Stop()
	total.Stop()

	doc.Processing = Timing{
		ExtractionMs: extract.Milliseconds(),
		DetectionMs:  detect.Milliseconds(),
		TotalMs:      total.Milliseconds(),
	}
	slog.Debug("PDF scanned",
		"file", filename,
		"pages", pageCount,
		"images", len(images),
		"duration_ms", doc.Processing.TotalMs)
	return doc, nil
}
