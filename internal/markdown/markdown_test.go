package markdown

import (
	"strings"
	"testing"
)

func TestToHTMLRendersTable(t *testing.T) {
	md := "| Original | Translation |\n|---|---|\n| Hello | Привіт |\n"
	got := ToHTML([]byte(md))

	if !strings.Contains(got, "<table>") {
		t.Errorf("expected a table, got %q", got)
	}
	if !strings.Contains(got, "Привіт") {
		t.Errorf("cell content missing from %q", got)
	}
}

func TestToDocument(t *testing.T) {
	got := ToDocument("report & notes", []byte("# Heading"))

	if !strings.Contains(got, "<!DOCTYPE html>") {
		t.Error("expected a full document")
	}
	if !strings.Contains(got, "<title>report &amp; notes</title>") {
		t.Errorf("title not escaped: %q", got)
	}
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading") {
		t.Errorf("body content missing from %q", got)
	}
}

func TestToHTMLEscapesRawText(t *testing.T) {
	got := ToHTML([]byte("a < b & c"))
	if !strings.Contains(got, "&lt;") || !strings.Contains(got, "&amp;") {
		t.Errorf("expected escaped entities, got %q", got)
	}
}
