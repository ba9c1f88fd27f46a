package loader

import (
	"fmt"
	"path/filepath"

	"github.com/ledongthuc/pdf"
)

// loadPDF extracts plain text from a PDF, one Document per non-empty page.
func loadPDF(path string) ([]Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	source := filepath.Base(path)

	var docs []Document
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if text == "" {
			continue
		}
		docs = append(docs, Document{
			Source: source,
			Path:   path,
			Page:   i,
			Text:   text,
			Type:   TypePDF,
		})
	}
	return docs, nil
}
