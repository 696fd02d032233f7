package batch

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/qrbridge/qrcode"
)

type batchDocument struct {
	Files  []Item `json:"files" yaml:"files"`
	Failed int    `json:"failed" yaml:"failed"`
}

// formatBatchResults formats the items in the specified format.
func formatBatchResults(items []Item, format string) (string, error) {
	doc := batchDocument{Files: items}
	if doc.Files == nil {
		doc.Files = []Item{}
	}
	for _, item := range items {
		if !item.Result.OK {
			doc.Failed++
		}
	}

	switch format {
	case "json":
		bts, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", err
		}
		return string(bts) + "\n", nil
	case "yaml":
		bts, err := yaml.Marshal(doc)
		return string(bts), err
	case "", "text":
		return formatText(items), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatText renders one block per file.
func formatText(items []Item) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.File)
		b.WriteString(": ")
		b.WriteString(FormatReport(item.Result))
	}
	return b.String()
}

// FormatReport renders a single result as indented text lines.
func FormatReport(r qrcode.Report) string {
	var b strings.Builder
	switch {
	case !r.OK:
		fmt.Fprintf(&b, "error %s (%d)\n", r.Code, r.CodeValue)
	case len(r.Payloads) == 0:
		b.WriteString("no QR code found\n")
	default:
		fmt.Fprintf(&b, "%d QR code(s)\n", len(r.Payloads))
		for i, p := range r.Payloads {
			fmt.Fprintf(&b, "  #%d %q%s\n", i+1, p.Text, formatPoints(p.Points))
		}
	}
	return b.String()
}

func formatPoints(points []qrcode.Point) string {
	if len(points) == 0 {
		return ""
	}
	parts := make([]string, len(points))
	for i, pt := range points {
		parts[i] = fmt.Sprintf("(%g,%g)", pt.X, pt.Y)
	}
	return " at " + strings.Join(parts, " ")
}
