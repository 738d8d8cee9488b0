// Package markdown renders Markdown output documents as standalone HTML.
package markdown

import (
	"fmt"
	"html"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func ToHTML(md []byte) string {
	opts := mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	}
	renderer := mdhtml.NewRenderer(opts)
	ext := parser.CommonExtensions | parser.Attributes
	p := parser.NewWithExtensions(ext)
	doc := p.Parse(md)
	return string(markdown.Render(doc, renderer))
}

// documentStyle keeps side-by-side translation tables readable: equal
// column widths and top-aligned cells.
const documentStyle = `body { font-family: Georgia, serif; max-width: 60em; margin: 2em auto; padding: 0 1em; line-height: 1.6; }
table { border-collapse: collapse; width: 100%; table-layout: fixed; }
th, td { border: 1px solid #ccc; padding: 0.5em 0.75em; vertical-align: top; }
th { background: #f5f5f5; text-align: left; }
hr { border: none; border-top: 1px solid #ddd; margin: 1.5em 0; }`

// ToDocument renders md as a complete HTML page with the given title.
func ToDocument(title string, md []byte) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s
</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), documentStyle, ToHTML(md))
}
