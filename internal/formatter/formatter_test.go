package formatter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lingodoc/lingodoc/internal"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestWriteBilingualSideBySide(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	originals := []string{"Hello", "", "World"}
	translations := []string{"Привіт", "", "Світ"}

	if err := WriteBilingual(originals, translations, LayoutSideBySide, "Doc", path); err != nil {
		t.Fatalf("WriteBilingual: %v", err)
	}

	got := readFile(t, path)
	if !strings.Contains(got, "# Doc") {
		t.Error("title missing")
	}
	if !strings.Contains(got, "| Original | Translation |") {
		t.Error("header row missing")
	}
	// The both-empty pair is skipped: header + separator + 2 content rows.
	lines := strings.Split(strings.TrimSpace(got), "\n")
	rows := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "| ") {
			rows++
		}
	}
	if rows != 3 { // header + 2 content rows
		t.Errorf("expected 3 pipe rows, got %d in:\n%s", rows, got)
	}
	if !strings.Contains(got, "| Hello | Привіт |") {
		t.Errorf("pair missing from:\n%s", got)
	}
}

func TestWriteBilingualEscapesCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := WriteBilingual([]string{"a|b\nc"}, []string{"x"}, LayoutSideBySide, "", path); err != nil {
		t.Fatalf("WriteBilingual: %v", err)
	}
	got := readFile(t, path)
	if !strings.Contains(got, `a\|b c`) {
		t.Errorf("cell not escaped:\n%s", got)
	}
}

func TestWriteBilingualLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	err := WriteBilingual([]string{"a", "b"}, []string{"x"}, LayoutSideBySide, "", path)
	if err == nil {
		t.Fatal("expected error on length mismatch")
	}
	if !errors.Is(err, internal.ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("document must not be written on mismatch")
	}
}

func TestWriteBilingualInterleaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := WriteBilingual([]string{"Hello", "Bye"}, []string{"Привіт", "Бувай"}, LayoutInterleaved, "", path); err != nil {
		t.Fatalf("WriteBilingual: %v", err)
	}

	got := readFile(t, path)
	for _, want := range []string{"## 1", "## 2", "**Original:** Hello", "**Translation:** Привіт", "---"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestWriteTranslationsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := WriteTranslationsOnly([]string{"Привіт", "", "Світ"}, "", path); err != nil {
		t.Fatalf("WriteTranslationsOnly: %v", err)
	}
	got := readFile(t, path)
	if !strings.Contains(got, "Привіт\n\nСвіт") {
		t.Errorf("unexpected content:\n%s", got)
	}
}

func TestParseLayout(t *testing.T) {
	if l, err := ParseLayout(""); err != nil || l != LayoutSideBySide {
		t.Errorf("empty layout should default to side-by-side, got %v %v", l, err)
	}
	if _, err := ParseLayout("diagonal"); !errors.Is(err, internal.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	data := ReportData{
		Result: internal.ProcessingResult{
			Success:         true,
			InputFile:       "/in/doc.pdf",
			OutputFiles:     []string{"/out/doc_bilingual.md"},
			Elapsed:         3 * time.Second,
			OriginalUnits:   10,
			TranslatedUnits: 9,
			FailedUnits:     1,
			Provider:        "deepseek",
			Timestamp:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		SourceLang:   "en",
		TargetLang:   "uk",
		SourceChars:  1000,
		TargetChars:  1200,
		FailedChunks: []string{"the stubborn chunk"},
	}

	if err := WriteReport(data, path); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	got := readFile(t, path)
	for _, want := range []string{
		"**Provider:** deepseek",
		"en → uk",
		"**Status:** completed",
		"| Chunks | 10 |",
		"| Failed | 1 |",
		"| Success rate | 90.0% |",
		"| Length ratio | 1.20 |",
		"/out/doc_bilingual.md",
		"the stubborn chunk",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestWriteReportFailedJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	data := ReportData{
		Result: internal.ProcessingResult{
			Success:   false,
			InputFile: "/in/doc.pdf",
			Provider:  "local",
			Error:     "translation backend unavailable",
		},
		TargetLang: "uk",
	}

	if err := WriteReport(data, path); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	got := readFile(t, path)
	if !strings.Contains(got, "**Status:** failed") {
		t.Error("expected failed status")
	}
	if !strings.Contains(got, "translation backend unavailable") {
		t.Error("expected error section")
	}
	if !strings.Contains(got, "auto → uk") {
		t.Error("empty source language should render as auto")
	}
}

func TestWriteBatchReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.md")
	results := []internal.ProcessingResult{
		{Success: true, InputFile: "/in/a.md", OriginalUnits: 4, Elapsed: time.Second},
		{Success: false, InputFile: "/in/b.md", Error: "unreadable input"},
	}

	if err := WriteBatchReport(results, path); err != nil {
		t.Fatalf("WriteBatchReport: %v", err)
	}
	got := readFile(t, path)
	for _, want := range []string{
		"**Files:** 2", "**Succeeded:** 1", "**Failed:** 1",
		"| a.md | completed |", "| b.md | failed |",
		"**b.md:** unreadable input",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("batch report missing %q:\n%s", want, got)
		}
	}
}

func TestWriteHTML(t *testing.T) {
	dir := t.TempDir()
	mdPath := filepath.Join(dir, "doc.md")
	htmlPath := filepath.Join(dir, "doc.html")
	if err := os.WriteFile(mdPath, []byte("# Title\n\n| A | B |\n|---|---|\n| x | y |\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteHTML(mdPath, htmlPath, "Doc"); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	got := readFile(t, htmlPath)
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<title>Doc</title>") {
		t.Errorf("unexpected HTML:\n%s", got)
	}

	if err := WriteHTML(filepath.Join(dir, "missing.md"), htmlPath, "Doc"); !errors.Is(err, internal.ErrFormat) {
		t.Errorf("expected ErrFormat for missing source, got %v", err)
	}
}
