// Package extract pulls plain text out of uploaded documents. One function
// per supported format; everything funnels through the same whitespace
// cleanup so the chunker sees uniform input.
package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"docaudit/internal/models"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// SupportedExt reports whether files with the given extension (including the
// leading dot, any case) can be extracted.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".pptx", ".xlsx", ".ods", ".txt":
		return true
	}
	return false
}

// Text extracts the full plain text of the document at filePath. The empty
// string with a nil error means the file was readable but contained no
// extractable text; callers treat that as "no content".
func Text(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = pdfText(filePath)
	case ".docx":
		text, err = docxText(filePath)
	case ".pptx":
		text, err = pptxText(filePath)
	case ".xlsx":
		text, err = xlsxText(filePath)
	case ".ods":
		text, err = odsText(filePath)
	case ".txt":
		text, err = txtText(filePath)
	default:
		return "", fmt.Errorf("%w: unsupported file format %q", models.ErrInvalidInput, ext)
	}
	if err != nil {
		// A file we cannot parse is a bad upload, not a server fault.
		return "", fmt.Errorf("%w: no content could be extracted: %v", models.ErrInvalidInput, err)
	}
	return CleanText(text), nil
}

// CleanText collapses runs of whitespace into single spaces and trims the
// ends, mirroring what the chunker expects.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func pdfText(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	return text.String(), nil
}

func docxText(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return r.Editable().GetContent(), nil
}

func pptxText(filePath string) (string, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		text.WriteString(textFromXML(string(data)))
		text.WriteString("\n")
	}
	return text.String(), nil
}

func xlsxText(filePath string) (string, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, sheet := range f.Sheets {
		text.WriteString(sheet.Name + "\n")
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}

func odsText(filePath string) (string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		text.WriteString(sheetName + "\n")
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}

func txtText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// textFromXML pulls the text runs (<a:t> elements) out of a slide's XML.
func textFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}
