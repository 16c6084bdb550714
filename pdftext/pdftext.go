// Package pdftext validates and extracts text from PDF files. PDF is
// the only document type the library accepts; everything else is
// rejected by magic-number sniff before any collaborator is touched.
package pdftext

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfMagic is the byte signature every PDF starts with.
var pdfMagic = []byte("%PDF-")

// Page holds the extracted text of a single PDF page.
type Page struct {
	Number int
	Text   string
}

// IsPDF reports whether the file at path starts with the PDF signature.
// Unreadable files are simply not PDFs.
func IsPDF(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	n, _ := f.Read(head)
	return bytes.Equal(head[:n], pdfMagic)
}

// Extract pulls the plain text of every page. Pages whose content
// cannot be decoded come back empty rather than failing the document.
func Extract(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// Excerpt joins page text into a single string capped at maxRunes,
// for feeding a model prompt.
func Excerpt(pages []Page, maxRunes int) string {
	var sb strings.Builder
	for _, p := range pages {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Text)
	}
	runes := []rune(sb.String())
	if len(runes) > maxRunes {
		runes = runes[:maxRunes]
	}
	return string(runes)
}
