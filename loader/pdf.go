package loader

import (
	"strings"

	"paperchat/types"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ExtractPages returns one Page per physical PDF page, in document order.
// Image-only pages yield an empty Text, which is valid output. A file that
// does not parse as a PDF fails with *types.ExtractionError. The source file
// is only read, never mutated.
func ExtractPages(path string) ([]types.Page, error) {
	if err := api.ValidateFile(path, nil); err != nil {
		return nil, &types.ExtractionError{Path: path, Err: err}
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &types.ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]types.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		text := ""
		if !page.V.IsNull() {
			// Per-page extraction failures (missing font maps, vector-only
			// pages) degrade to an empty page instead of failing the document.
			if t, err := page.GetPlainText(nil); err == nil {
				text = normalizeText(t)
			}
		}
		pages = append(pages, types.Page{Number: i, Text: text})
	}
	return pages, nil
}

// FullText joins page texts for summary input.
func FullText(pages []types.Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
