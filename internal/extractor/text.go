package extractor

import (
	"os"
	"strings"

	"github.com/lingodoc/lingodoc/internal"
)

// extractPlainText splits the file into paragraphs on blank lines. Lines
// within a paragraph are joined with single spaces.
func extractPlainText(path string) ([]internal.TextUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var units []internal.TextUnit
	for i, para := range splitParagraphs(string(data)) {
		units = append(units, paragraphUnit(i, para))
	}
	return units, nil
}

// extractMarkdown treats pipe-table rows as table cells with row/column
// provenance and everything else as blank-line-separated paragraphs.
// Heading markers and emphasis are left in place; translation backends
// handle them as ordinary text.
func extractMarkdown(path string) ([]internal.TextUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var units []internal.TextUnit
	paragraph := 0
	tableRow := 0
	var pending []string

	flushParagraph := func() {
		if len(pending) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(pending, " "))
		pending = nil
		if text == "" {
			return
		}
		units = append(units, paragraphUnit(paragraph, text))
		paragraph++
	}

	for _, rawLine := range strings.Split(normalizeNewlines(string(data)), "\n") {
		line := strings.TrimSpace(rawLine)

		switch {
		case line == "":
			flushParagraph()

		case isTableRow(line):
			flushParagraph()
			if isTableSeparator(line) {
				continue
			}
			for col, cell := range splitTableCells(line) {
				if cell == "" {
					continue
				}
				units = append(units, internal.TextUnit{
					Ref: internal.SourceRef{
						Kind: internal.RefTableCell,
						Row:  tableRow,
						Col:  col,
					},
					Text: cell,
				})
			}
			tableRow++

		default:
			pending = append(pending, line)
		}
	}
	flushParagraph()

	return units, nil
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, block := range strings.Split(normalizeNewlines(text), "\n\n") {
		lines := strings.Fields(strings.ReplaceAll(block, "\n", " "))
		if len(lines) == 0 {
			continue
		}
		paragraphs = append(paragraphs, strings.Join(lines, " "))
	}
	return paragraphs
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

func isTableRow(line string) bool {
	return strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") && len(line) > 1
}

// isTableSeparator matches the |---|:---:| delimiter row under a header.
func isTableSeparator(line string) bool {
	inner := strings.Trim(line, "|")
	for _, cell := range strings.Split(inner, "|") {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			return false
		}
		for _, r := range cell {
			if r != '-' && r != ':' {
				return false
			}
		}
	}
	return true
}

func splitTableCells(line string) []string {
	inner := strings.Trim(line, "|")
	cells := strings.Split(inner, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}
