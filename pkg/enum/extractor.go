package enum

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractedContent is one text segment pulled out of a document, named by
// its location inside the container (e.g. "xl/sharedStrings.xml").
type ExtractedContent struct {
	Name    string
	Content []byte
}

// CanExtract reports whether ExtractText supports the file at path, judged
// by extension.
func CanExtract(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".docx", ".pdf":
		return true
	}
	return false
}

// ExtractText extracts text segments from a supported document format.
// Spreadsheets and word processor files are OOXML zip containers; their
// text lives in well-known XML members. PDFs go through ledongthuc/pdf.
func ExtractText(path string, content []byte) ([]ExtractedContent, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".xlsx":
		return extractZipXML(content, isXLSXTextMember)
	case ".docx":
		return extractZipXML(content, isDOCXTextMember)
	case ".pdf":
		return extractPDF(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// isXLSXTextMember selects the zip members of an xlsx file that carry cell
// text: the shared string table plus the per-sheet XML.
func isXLSXTextMember(name string) bool {
	if name == "xl/sharedStrings.xml" {
		return true
	}
	return strings.HasPrefix(name, "xl/worksheets/sheet") && strings.HasSuffix(name, ".xml")
}

// isDOCXTextMember selects the document body of a docx file.
func isDOCXTextMember(name string) bool {
	return name == "word/document.xml"
}

// extractZipXML opens content as a zip archive and collects the text nodes
// of every member accepted by want. Unreadable members are skipped rather
// than failing the whole document.
func extractZipXML(content []byte, want func(name string) bool) ([]ExtractedContent, error) {
	reader := bytes.NewReader(content)
	zipReader, err := zip.NewReader(reader, int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open document as zip: %w", err)
	}

	var results []ExtractedContent
	for _, file := range zipReader.File {
		if !want(file.Name) {
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

		text := extractXMLText(data)
		if len(text) > 0 {
			results = append(results, ExtractedContent{
				Name:    file.Name,
				Content: []byte(text),
			})
		}
	}

	return results, nil
}

// extractPDF extracts the plain text of every page. ledongthuc/pdf wants a
// file on disk, so the content is staged through a temp file.
func extractPDF(content []byte) ([]ExtractedContent, error) {
	tmpFile, err := os.CreateTemp("", "pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := tmpFile.Write(content); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	f, r, err := pdf.Open(tmpFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var text strings.Builder
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Extract what we can from the remaining pages.
			continue
		}

		text.WriteString(pageText)
		text.WriteString("\n")
	}

	extracted := text.String()
	if len(strings.TrimSpace(extracted)) == 0 {
		return nil, nil
	}

	return []ExtractedContent{
		{
			Name:    "content",
			Content: []byte(extracted),
		},
	}, nil
}

// extractXMLText collects the character data of an XML document into a
// single space-separated string.
func extractXMLText(data []byte) string {
	var text strings.Builder
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.CharData:
			content := string(t)
			if strings.TrimSpace(content) != "" {
				if text.Len() > 0 {
					text.WriteString(" ")
				}
				text.WriteString(cleanText(content))
			}
		}
	}

	return text.String()
}

// cleanText collapses whitespace runs and drops non-printable characters.
func cleanText(s string) string {
	var result strings.Builder
	lastSpace := false

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				result.WriteRune(' ')
				lastSpace = true
			}
		} else if unicode.IsPrint(r) {
			result.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}
