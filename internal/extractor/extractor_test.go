package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lingodoc/lingodoc/internal"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	return New(t.TempDir(), zerolog.Nop())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_PlainTextParagraphs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "First paragraph\nspans two lines.\n\nSecond paragraph.\n")

	x := newTestExtractor(t)
	e, err := x.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer e.Cleanup()

	if len(e.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(e.Units))
	}
	if e.Units[0].Text != "First paragraph spans two lines." {
		t.Errorf("unexpected first unit: %q", e.Units[0].Text)
	}
	if e.Units[1].Ref.Paragraph != 1 {
		t.Errorf("expected paragraph index 1, got %d", e.Units[1].Ref.Paragraph)
	}
}

func TestExtract_MarkdownTableCells(t *testing.T) {
	dir := t.TempDir()
	content := "Intro paragraph.\n\n| Name | Role |\n|------|------|\n| Ada | Engineer |\n"
	path := writeFile(t, dir, "doc.md", content)

	x := newTestExtractor(t)
	e, err := x.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer e.Cleanup()

	// 1 paragraph + 2 header cells + 2 body cells.
	if len(e.Units) != 5 {
		t.Fatalf("expected 5 units, got %d: %+v", len(e.Units), e.Units)
	}
	if e.Units[0].Ref.Kind != internal.RefParagraph {
		t.Error("first unit should be a paragraph")
	}

	cell := e.Units[3]
	if cell.Ref.Kind != internal.RefTableCell || cell.Ref.Row != 1 || cell.Ref.Col != 0 {
		t.Errorf("unexpected cell ref: %+v", cell.Ref)
	}
	if cell.Text != "Ada" {
		t.Errorf("expected cell text 'Ada', got %q", cell.Text)
	}
}

func TestExtract_UnitOrderPreserved(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "one\n\ntwo\n\nthree\n")

	x := newTestExtractor(t)
	e, err := x.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer e.Cleanup()

	want := []string{"one", "two", "three"}
	for i, u := range e.Units {
		if u.Text != want[i] {
			t.Errorf("unit %d: expected %q, got %q", i, want[i], u.Text)
		}
	}
}

func TestExtract_MissingFile(t *testing.T) {
	x := newTestExtractor(t)
	_, err := x.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, internal.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "  \n\n\t\n")

	x := newTestExtractor(t)
	_, err := x.Extract(context.Background(), path)
	if !errors.Is(err, internal.ErrParse) {
		t.Errorf("expected ErrParse for empty document, got %v", err)
	}
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.xyz", "content")

	x := newTestExtractor(t)
	_, err := x.Extract(context.Background(), path)
	if !errors.Is(err, internal.ErrParse) {
		t.Errorf("expected ErrParse for unsupported extension, got %v", err)
	}
}

func TestExtract_CorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.pdf", "this is not a pdf")

	x := newTestExtractor(t)
	_, err := x.Extract(context.Background(), path)
	if !errors.Is(err, internal.ErrParse) {
		t.Errorf("expected ErrParse for corrupt pdf, got %v", err)
	}
}

func TestExtract_ScratchArtifactLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "Scratch artifact test.\n")

	x := newTestExtractor(t)
	e, err := x.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.ScratchPath == "" {
		t.Fatal("expected scratch artifact path")
	}
	if _, err := os.Stat(e.ScratchPath); err != nil {
		t.Fatalf("scratch artifact should exist: %v", err)
	}

	scratch := e.ScratchPath
	e.Cleanup()
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Error("scratch artifact should be removed by Cleanup")
	}
	// Second Cleanup is a no-op.
	e.Cleanup()
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x := newTestExtractor(t)
	_, err := x.Extract(ctx, "whatever.txt")
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}
