// Package extractor converts source documents into ordered sequences of
// text-bearing units with positional metadata. PDF, Markdown, and plain
// text inputs are supported; the extracted unit sequence is also
// materialized on disk as a JSON scratch artifact whose lifetime is owned
// by the caller.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lingodoc/lingodoc/internal"
)

// Extraction is the result of one extraction run. ScratchPath points to the
// intermediate JSON representation; callers remove it via Cleanup unless
// scratch retention is configured.
type Extraction struct {
	Units       []internal.TextUnit `json:"units"`
	SourceFile  string              `json:"source_file"`
	ScratchPath string              `json:"-"`
}

// Cleanup removes the scratch artifact. Safe to call more than once.
func (e *Extraction) Cleanup() {
	if e == nil || e.ScratchPath == "" {
		return
	}
	_ = os.Remove(e.ScratchPath)
	e.ScratchPath = ""
}

// Extractor parses source documents. The zero value is not usable; use New.
type Extractor struct {
	scratchDir string
	log        zerolog.Logger
}

// New returns an extractor writing scratch artifacts under scratchDir
// (the system temp directory when empty).
func New(scratchDir string, log zerolog.Logger) *Extractor {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &Extractor{scratchDir: scratchDir, log: log}
}

// Extract parses the document at path into an ordered unit sequence.
// Unreadable, corrupt, or empty-text sources fail with an error wrapping
// internal.ErrParse.
func (x *Extractor) Extract(ctx context.Context, path string) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internal.ErrParse, path, err)
	}

	var units []internal.TextUnit
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		units, err = extractPDF(path)
	case ".md", ".markdown":
		units, err = extractMarkdown(path)
	case ".txt":
		units, err = extractPlainText(path)
	default:
		return nil, fmt.Errorf("%w: unsupported input format %q", internal.ErrParse, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internal.ErrParse, path, err)
	}

	units = dropEmpty(units)
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: no extractable text in %s", internal.ErrParse, path)
	}

	extraction := &Extraction{Units: units, SourceFile: path}
	if scratch, werr := x.writeScratch(extraction); werr != nil {
		x.log.Warn().Err(werr).Msg("could not write scratch artifact")
	} else {
		extraction.ScratchPath = scratch
	}

	x.log.Info().
		Str("input", path).
		Int("units", len(units)).
		Msg("extraction complete")

	return extraction, nil
}

// writeScratch materializes the unit sequence as a JSON document, the
// structured intermediate representation of the source.
func (x *Extractor) writeScratch(e *Extraction) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(e.SourceFile), filepath.Ext(e.SourceFile))
	f, err := os.CreateTemp(x.scratchDir, stem+"-*.units.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func dropEmpty(units []internal.TextUnit) []internal.TextUnit {
	out := units[:0]
	for _, u := range units {
		if strings.TrimSpace(u.Text) != "" {
			out = append(out, u)
		}
	}
	return out
}
