// Package pdf extracts embedded images from PDF documents and scans them for
// QR codes.
package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractedImage is an image file written by ExtractImages.
type ExtractedImage struct {
	Page  int
	Index int
	Path  string
}

// ExtractImages writes every embedded image of the selected pages into dir
// and returns them ordered by page and then by file name. An empty pageRange
// selects all pages. The password, if set, is used as both user and owner
// password.
func ExtractImages(filename, pageRange, password, dir string) ([]ExtractedImage, error) {
	pageNumbers, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	var pageStrings []string
	if len(pageNumbers) > 0 {
		pageStrings = make([]string, len(pageNumbers))
		for i, pageNum := range pageNumbers {
			pageStrings[i] = strconv.Itoa(pageNum)
		}
	}

	if err := api.ExtractImagesFile(filename, dir, pageStrings, configuration(password)); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	images, err := collectExtractedImages(dir, documentBase(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to collect extracted images: %w", err)
	}
	return images, nil
}

// PageCount returns the number of pages of the document.
func PageCount(filename, password string) (int, error) {
	f, err := os.Open(filename) //nolint:gosec // G304: reading a user-provided PDF path is expected
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	n, err := api.PageCount(f, configuration(password))
	if err != nil {
		return 0, fmt.Errorf("failed to read page count: %w", err)
	}
	return n, nil
}

func configuration(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	return conf
}

func documentBase(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// collectExtractedImages lists the image files in dir and assigns page
// numbers and per-page indices.
func collectExtractedImages(dir, base string) ([]ExtractedImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []ExtractedImage
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pageNum, err := parsePageFromFilename(entry.Name(), base)
		if err != nil {
			continue
		}
		images = append(images, ExtractedImage{Page: pageNum, Path: filepath.Join(dir, entry.Name())})
	}

	sort.SliceStable(images, func(i, j int) bool {
		if images[i].Page != images[j].Page {
			return images[i].Page < images[j].Page
		}
		return images[i].Path < images[j].Path
	})

	index := 0
	for i := range images {
		if i > 0 && images[i].Page != images[i-1].Page {
			index = 0
		}
		index++
		images[i].Index = index
	}
	return images, nil
}

// parsePageFromFilename extracts the page number from an extracted image name.
// pdfcpu writes <base>_<page>_<name>.<ext> with a zero padded page; the
// page_<page>_... form is accepted as well.
func parsePageFromFilename(filename, base string) (int, error) {
	var rest string
	switch {
	case base != "" && strings.HasPrefix(filename, base+"_"):
		rest = strings.TrimPrefix(filename, base+"_")
	case strings.HasPrefix(filename, "page_"):
		rest = strings.TrimPrefix(filename, "page_")
	default:
		return 0, errors.New("not a page file")
	}

	token, _, found := strings.Cut(rest, "_")
	if !found {
		return 0, errors.New("invalid filename format")
	}
	pageNum, err := strconv.Atoi(token)
	if err != nil || pageNum < 1 {
		return 0, errors.New("invalid page number")
	}
	return pageNum, nil
}

// parsePageRange parses a page range string like "1-5" or "1,3,5".
func parsePageRange(pageRange string) ([]int, error) {
	if strings.TrimSpace(pageRange) == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	return pages, nil
}

// parseRangeToken parses either a single page token (e.g., "3") or a range token (e.g., "1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start < 1 {
			return nil, fmt.Errorf("invalid start page: %d", start)
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	if page < 1 {
		return nil, fmt.Errorf("invalid page number: %d", page)
	}
	return []int{page}, nil
}
