// Package formatter writes the bilingual output documents of a
// translation job: Markdown renditions in a side-by-side or interleaved
// layout, a translations-only rendition, and the per-job report.
package formatter

import (
	"fmt"
	"os"
	"strings"

	"github.com/lingodoc/lingodoc/internal"
)

// Layout selects how original and translated text are arranged.
type Layout string

const (
	LayoutSideBySide  Layout = "side-by-side"
	LayoutInterleaved Layout = "interleaved"
)

// ParseLayout validates a user-supplied layout name.
func ParseLayout(name string) (Layout, error) {
	switch Layout(name) {
	case LayoutSideBySide, LayoutInterleaved:
		return Layout(name), nil
	case "":
		return LayoutSideBySide, nil
	default:
		return "", fmt.Errorf("%w: unknown layout %q", internal.ErrConfig, name)
	}
}

// WriteBilingual writes a Markdown document pairing each original with its
// translation. The two slices must be the same length; a mismatch means an
// upstream bug lost or duplicated a unit, and the document is not written.
func WriteBilingual(originals, translations []string, layout Layout, title, path string) error {
	if len(originals) != len(translations) {
		return fmt.Errorf("%w: %d originals but %d translations", internal.ErrFormat, len(originals), len(translations))
	}

	var doc string
	switch layout {
	case LayoutInterleaved:
		doc = renderInterleaved(originals, translations, title)
	default:
		doc = renderSideBySide(originals, translations, title)
	}

	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", internal.ErrFormat, path, err)
	}
	return nil
}

// WriteTranslationsOnly writes just the translated text, one paragraph per
// unit, replacing nothing on disk but the given path.
func WriteTranslationsOnly(translations []string, title, path string) error {
	var b strings.Builder
	writeTitle(&b, title)
	for _, text := range translations {
		if strings.TrimSpace(text) == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", internal.ErrFormat, path, err)
	}
	return nil
}

func writeTitle(b *strings.Builder, title string) {
	if title == "" {
		return
	}
	b.WriteString("# ")
	b.WriteString(title)
	b.WriteString("\n\n")
}

func renderSideBySide(originals, translations []string, title string) string {
	var b strings.Builder
	writeTitle(&b, title)
	b.WriteString("| Original | Translation |\n")
	b.WriteString("|---|---|\n")

	for i := range originals {
		orig := strings.TrimSpace(originals[i])
		trans := strings.TrimSpace(translations[i])
		if orig == "" && trans == "" {
			continue
		}
		b.WriteString("| ")
		b.WriteString(escapeCell(orig))
		b.WriteString(" | ")
		b.WriteString(escapeCell(trans))
		b.WriteString(" |\n")
	}
	return b.String()
}

func renderInterleaved(originals, translations []string, title string) string {
	var b strings.Builder
	writeTitle(&b, title)

	section := 0
	for i := range originals {
		orig := strings.TrimSpace(originals[i])
		trans := strings.TrimSpace(translations[i])
		if orig == "" && trans == "" {
			continue
		}
		section++
		fmt.Fprintf(&b, "## %d\n\n", section)
		fmt.Fprintf(&b, "**Original:** %s\n\n", orig)
		fmt.Fprintf(&b, "**Translation:** %s\n\n", trans)
		b.WriteString("---\n\n")
	}
	return b.String()
}

// escapeCell keeps cell text from breaking the pipe table.
func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return text
}
