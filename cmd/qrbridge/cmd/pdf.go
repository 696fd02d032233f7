package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/qrbridge/internal/batch"
	"github.com/MeKo-Tech/qrbridge/internal/pdf"
)

func newPDFCommand(a *app) *cobra.Command {
	pdfCmd := &cobra.Command{
		Use:   "pdf [file...]",
		Short: "Decode QR codes in images embedded in PDF files",
		Long: `Extract the images embedded in PDF pages and decode QR codes in them.

Works with scanned documents, tickets and invoices that carry QR codes as
embedded raster images.

Examples:
  qrbridge pdf invoice.pdf
  qrbridge pdf *.pdf --format json
  qrbridge pdf scan.pdf --pages 1-3,5 --password secret`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPDF(cmd, args)
		},
	}

	f := pdfCmd.Flags()
	f.StringP("format", "f", "text", "output format (text, json, yaml)")
	f.StringP("output", "o", "", "output file (default: stdout)")
	f.String("pages", "", "page range to process (e.g., '1-5', '1,3,5')")
	f.StringP("password", "p", "", "password for encrypted PDFs")
	return pdfCmd
}

func (a *app) runPDF(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}
	cfg := a.config()

	format := stringFlag(cmd, "format", cfg.Output.Format)
	if err := validateFormat(format); err != nil {
		return err
	}
	outputFile := stringFlag(cmd, "output", cfg.Output.File)
	pages, _ := cmd.Flags().GetString("pages")
	password, _ := cmd.Flags().GetString("password")

	det, err := a.openDetector(nil)
	if err != nil {
		return err
	}
	defer func() { _ = det.Close() }()

	docs := make([]*pdf.DocumentResult, 0, len(args))
	for _, file := range args {
		doc, err := pdf.Scan(cmd.Context(), det, file, pdf.Options{Pages: pages, Password: password})
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", file, err)
		}
		docs = append(docs, doc)
	}

	output, err := formatDocuments(docs, format)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), outputFile, output)
}

func formatDocuments(docs []*pdf.DocumentResult, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case "yaml":
		data, err := yaml.Marshal(docs)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return formatDocumentsText(docs), nil
	}
}

func formatDocumentsText(docs []*pdf.DocumentResult) string {
	var b strings.Builder
	for _, doc := range docs {
		fmt.Fprintf(&b, "%s: %d page(s)\n", doc.Filename, doc.TotalPages)
		if len(doc.Pages) == 0 {
			b.WriteString("  no embedded images\n")
			continue
		}
		for _, page := range doc.Pages {
			for _, img := range page.Images {
				fmt.Fprintf(&b, "  page %d image %d: %s", page.PageNumber, img.ImageIndex, batch.FormatReport(img.Result))
			}
		}
	}
	return b.String()
}

func writeOutput(w io.Writer, outputFile, output string) error {
	if outputFile == "" {
		_, err := fmt.Fprint(w, output)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
