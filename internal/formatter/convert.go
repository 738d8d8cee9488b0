package formatter

import (
	"fmt"
	"os"

	"github.com/lingodoc/lingodoc/internal"
	"github.com/lingodoc/lingodoc/internal/markdown"
)

// WriteHTML renders a previously written Markdown document as a standalone
// HTML page next to it.
func WriteHTML(mdPath, htmlPath, title string) error {
	md, err := os.ReadFile(mdPath)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", internal.ErrFormat, mdPath, err)
	}
	doc := markdown.ToDocument(title, md)
	if err := os.WriteFile(htmlPath, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", internal.ErrFormat, htmlPath, err)
	}
	return nil
}
