package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/lingodoc/lingodoc/internal"
)

// extractPDF validates the file and pulls text rows page by page. Each
// visual row becomes a paragraph unit; row order follows reading order
// within the page.
func extractPDF(path string) ([]internal.TextUnit, error) {
	if err := api.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("pdf validation failed: %v", err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open pdf: %v", err)
	}
	defer f.Close()

	var units []internal.TextUnit
	paragraph := 0

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil || len(rows) == 0 {
			// Some PDFs carry no per-row position data; fall back to the
			// page's plain text split on blank lines.
			content, perr := page.GetPlainText(nil)
			if perr != nil || strings.TrimSpace(content) == "" {
				continue
			}
			for _, para := range splitParagraphs(content) {
				units = append(units, paragraphUnit(paragraph, para))
				paragraph++
			}
			continue
		}

		for _, row := range rows {
			var b strings.Builder
			for _, text := range row.Content {
				b.WriteString(text.S)
			}
			line := strings.TrimSpace(b.String())
			if line == "" {
				continue
			}
			units = append(units, paragraphUnit(paragraph, line))
			paragraph++
		}
	}

	return units, nil
}

func paragraphUnit(index int, text string) internal.TextUnit {
	return internal.TextUnit{
		Ref:  internal.SourceRef{Kind: internal.RefParagraph, Paragraph: index},
		Text: text,
	}
}
