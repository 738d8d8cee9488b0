package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lingodoc/lingodoc/internal"
)

// ReportData carries what the per-job report shows beyond the result
// itself.
type ReportData struct {
	Result       internal.ProcessingResult
	SourceLang   string
	TargetLang   string
	SourceChars  int
	TargetChars  int
	FailedChunks []string
}

// WriteReport writes the Markdown processing report for one job. The
// report is written on success and on failure alike.
func WriteReport(data ReportData, path string) error {
	res := data.Result

	var b strings.Builder
	fmt.Fprintf(&b, "# Translation Report\n\n")
	fmt.Fprintf(&b, "- **Input:** %s\n", res.InputFile)
	fmt.Fprintf(&b, "- **Date:** %s\n", res.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Provider:** %s\n", res.Provider)
	fmt.Fprintf(&b, "- **Languages:** %s → %s\n", orAuto(data.SourceLang), data.TargetLang)
	fmt.Fprintf(&b, "- **Status:** %s\n", statusWord(res.Success))
	fmt.Fprintf(&b, "- **Duration:** %s\n\n", res.Elapsed.Round(time.Millisecond))

	fmt.Fprintf(&b, "## Units\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Chunks | %d |\n", res.OriginalUnits)
	fmt.Fprintf(&b, "| Translated | %d |\n", res.TranslatedUnits)
	fmt.Fprintf(&b, "| Failed | %d |\n", res.FailedUnits)
	if res.OriginalUnits > 0 {
		fmt.Fprintf(&b, "| Success rate | %.1f%% |\n", 100*float64(res.TranslatedUnits)/float64(res.OriginalUnits))
	}
	fmt.Fprintf(&b, "| Source characters | %d |\n", data.SourceChars)
	fmt.Fprintf(&b, "| Target characters | %d |\n", data.TargetChars)
	if data.SourceChars > 0 {
		fmt.Fprintf(&b, "| Length ratio | %.2f |\n", float64(data.TargetChars)/float64(data.SourceChars))
	}
	b.WriteString("\n")

	if len(res.OutputFiles) > 0 {
		fmt.Fprintf(&b, "## Output Files\n\n")
		for _, f := range res.OutputFiles {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}

	if len(data.FailedChunks) > 0 {
		fmt.Fprintf(&b, "## Failed Chunks\n\n")
		for _, chunk := range data.FailedChunks {
			fmt.Fprintf(&b, "- %s\n", truncate(chunk, 120))
		}
		b.WriteString("\n")
	}

	if res.Error != "" {
		fmt.Fprintf(&b, "## Error\n\n%s\n", res.Error)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: writing report %s: %v", internal.ErrFormat, path, err)
	}
	return nil
}

// WriteBatchReport summarizes a multi-file run.
func WriteBatchReport(results []internal.ProcessingResult, path string) error {
	succeeded := 0
	var total time.Duration
	for _, res := range results {
		if res.Success {
			succeeded++
		}
		total += res.Elapsed
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Batch Summary\n\n")
	fmt.Fprintf(&b, "- **Files:** %d\n", len(results))
	fmt.Fprintf(&b, "- **Succeeded:** %d\n", succeeded)
	fmt.Fprintf(&b, "- **Failed:** %d\n", len(results)-succeeded)
	fmt.Fprintf(&b, "- **Total duration:** %s\n\n", total.Round(time.Millisecond))

	fmt.Fprintf(&b, "| File | Status | Chunks | Failed | Duration |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	for _, res := range results {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n",
			filepath.Base(res.InputFile), statusWord(res.Success),
			res.OriginalUnits, res.FailedUnits, res.Elapsed.Round(time.Millisecond))
	}

	for _, res := range results {
		if !res.Success && res.Error != "" {
			fmt.Fprintf(&b, "\n**%s:** %s\n", filepath.Base(res.InputFile), res.Error)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: writing batch report %s: %v", internal.ErrFormat, path, err)
	}
	return nil
}

func statusWord(success bool) string {
	if success {
		return "completed"
	}
	return "failed"
}

func orAuto(lang string) string {
	if lang == "" {
		return "auto"
	}
	return lang
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
