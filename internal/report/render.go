package report

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"docaudit/internal/models"
)

// PDFRenderer writes the findings and report text into a PDF artifact.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render writes the report artifact at outputPath. The model's markdown is
// flattened to plain text through goldmark before it goes on the page.
func (r *PDFRenderer) Render(findings []models.Finding, report, outputPath string) error {
	body, err := markdownToText(report)
	if err != nil {
		return fmt.Errorf("failed to convert report markdown: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont(models.ReportFont, "B", 16)
	pdf.MultiCell(0, 10, models.ReportTitle, "", "C", false)
	pdf.Ln(4)

	pdf.SetFont(models.ReportFont, "B", 12)
	pdf.MultiCell(0, 8, "Detected Errors", "", "", false)
	pdf.SetFont(models.ReportFont, "", 11)
	pdf.MultiCell(0, 7, FormatFindings(findings), "", "", false)
	pdf.Ln(4)

	pdf.SetFont(models.ReportFont, "B", 12)
	pdf.MultiCell(0, 8, "Remediation Report", "", "", false)
	pdf.SetFont(models.ReportFont, "", 11)
	pdf.MultiCell(0, 7, body, "", "", false)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to write report pdf: %w", err)
	}
	return nil
}

var (
	blockEndRe = regexp.MustCompile(`</(p|h[1-6]|li|ul|ol|blockquote|pre|tr)>|<br\s*/?>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	blankRe    = regexp.MustCompile(`\n{3,}`)
)

// markdownToText renders markdown to HTML with goldmark, then strips the
// markup while keeping block boundaries as line breaks.
func markdownToText(md string) (string, error) {
	conv := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := conv.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	text := blockEndRe.ReplaceAllString(buf.String(), "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = blankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}
