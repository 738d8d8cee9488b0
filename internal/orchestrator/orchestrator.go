// Package orchestrator drives a document through the full pipeline:
// extraction, chunking, translation, formatting, and reporting. Jobs move
// through the stages starting, parsing, extracting, translating,
// formatting, and end in completed or failed.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lingodoc/lingodoc/internal"
	"github.com/lingodoc/lingodoc/internal/chunker"
	"github.com/lingodoc/lingodoc/internal/detector"
	"github.com/lingodoc/lingodoc/internal/extractor"
	"github.com/lingodoc/lingodoc/internal/formatter"
	"github.com/lingodoc/lingodoc/internal/logging"
	"github.com/lingodoc/lingodoc/internal/progress"
	"github.com/lingodoc/lingodoc/internal/store"
	"github.com/lingodoc/lingodoc/internal/translator"
)

// Orchestrator runs processing jobs against one configured backend.
type Orchestrator struct {
	cfg     Config
	backend translator.Backend
	ext     *extractor.Extractor
	memory  *store.Store
	tracker *progress.Tracker
	log     zerolog.Logger

	// The detector is expensive to build and shared by concurrent jobs.
	detOnce sync.Once
	det     *detector.Detector
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithTracker publishes per-job progress to t.
func WithTracker(t *progress.Tracker) Option {
	return func(o *Orchestrator) { o.tracker = t }
}

// WithMemory uses an already opened translation memory store.
func WithMemory(s *store.Store) Option {
	return func(o *Orchestrator) { o.memory = s }
}

// New validates cfg and assembles the pipeline around the given backend.
// When cfg.CacheDBPath is set and no store was injected, the translation
// memory is opened here and closed by Close.
func New(cfg Config, backend translator.Backend, log zerolog.Logger, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:     cfg,
		backend: backend,
		ext:     extractor.New(cfg.ScratchDir, log),
		log:     logging.Component(log, "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.memory == nil && cfg.CacheDBPath != "" {
		mem, err := store.New(cfg.CacheDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening translation memory: %w", err)
		}
		o.memory = mem
	}
	return o, nil
}

// Close releases the translation memory if the orchestrator opened it.
func (o *Orchestrator) Close() error {
	if o.memory != nil {
		return o.memory.Close()
	}
	return nil
}

// ProcessOne runs the whole pipeline for a single file. Failures are
// reported through the result, never through a panic or a partial output
// document; the report is written in both outcomes.
func (o *Orchestrator) ProcessOne(ctx context.Context, path string) internal.ProcessingResult {
	return o.process(ctx, uuid.New().String(), path)
}

// ProcessMany processes the files sequentially. A failed file never stops
// the run. When more than one file was given a batch summary is written to
// the output directory.
func (o *Orchestrator) ProcessMany(ctx context.Context, paths []string) []internal.ProcessingResult {
	results := make([]internal.ProcessingResult, 0, len(paths))
	for i, path := range paths {
		if ctx.Err() != nil {
			results = append(results, internal.ProcessingResult{
				Success:   false,
				InputFile: path,
				Provider:  o.backend.Name(),
				Error:     ctx.Err().Error(),
				Timestamp: time.Now(),
			})
			continue
		}

		results = append(results, o.ProcessOne(ctx, path))

		if i+1 < len(paths) && o.cfg.FileDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(o.cfg.FileDelay):
			}
		}
	}

	if len(paths) > 1 {
		summaryPath := filepath.Join(o.outputDirFor(paths[0]), "batch_summary.md")
		if err := formatter.WriteBatchReport(results, summaryPath); err != nil {
			o.log.Warn().Err(err).Msg("failed to write batch summary")
		}
	}
	return results
}

// ProcessAsync starts the job in the background and returns its ID for
// polling the tracker.
func (o *Orchestrator) ProcessAsync(ctx context.Context, path string) string {
	jobID := uuid.New().String()
	go o.process(ctx, jobID, path)
	return jobID
}

func (o *Orchestrator) process(ctx context.Context, jobID, path string) internal.ProcessingResult {
	start := time.Now()
	log := o.log.With().Str("job", jobID).Str("input", path).Logger()

	result := internal.ProcessingResult{
		InputFile: path,
		Provider:  o.backend.Name(),
		Timestamp: start,
	}

	fail := func(err error) internal.ProcessingResult {
		result.Success = false
		result.Error = err.Error()
		result.Elapsed = time.Since(start)
		log.Error().Err(err).Msg("processing failed")
		o.writeReport(formatter.ReportData{
			Result:     result,
			SourceLang: o.cfg.Translator.SourceLang,
			TargetLang: o.cfg.Translator.TargetLang,
		}, path)
		o.finish(jobID, result)
		return result
	}

	o.setProgress(jobID, progress.StatusStarting, 0, "starting")
	if err := o.backend.IsAvailable(ctx); err != nil {
		return fail(fmt.Errorf("%w: %v", internal.ErrTranslationUnavailable, err))
	}

	// Extraction.
	o.setProgress(jobID, progress.StatusParsing, 10, "reading input")
	extraction, err := o.ext.Extract(ctx, path)
	if err != nil {
		return fail(err)
	}
	if !o.cfg.KeepScratch {
		defer extraction.Cleanup()
	}
	log.Info().Int("units", len(extraction.Units)).Msg("extracted")

	// Chunking.
	o.setProgress(jobID, progress.StatusExtracting, 30, "chunking text")
	chunks := chunker.Chunk(extraction.Units, o.cfg.MinChars, o.cfg.MaxChars)
	if len(chunks) == 0 {
		return fail(fmt.Errorf("%w: no translatable text in %s", internal.ErrParse, path))
	}
	result.OriginalUnits = len(chunks)

	sourceLang := o.resolveSourceLang(extraction.Units, log)

	// Translation.
	o.setProgress(jobID, progress.StatusTranslating, 30, "translating")
	originals := make([]string, len(chunks))
	for i, c := range chunks {
		originals[i] = c.Text
	}
	translations, failedChunks := o.translate(ctx, jobID, sourceLang, originals)

	for _, t := range translations {
		if t.Translated {
			result.TranslatedUnits++
		} else {
			result.FailedUnits++
		}
	}
	log.Info().Int("translated", result.TranslatedUnits).Int("failed", result.FailedUnits).Msg("translation finished")

	// Formatting.
	o.setProgress(jobID, progress.StatusFormatting, 90, "writing output")
	translated := make([]string, len(translations))
	sourceChars, targetChars := 0, 0
	for i, t := range translations {
		translated[i] = t.Text
		sourceChars += len([]rune(originals[i]))
		targetChars += len([]rune(t.Text))
	}

	outputs, err := o.writeOutputs(path, originals, translated)
	if err != nil {
		return fail(err)
	}
	result.OutputFiles = outputs
	result.Success = true
	result.Elapsed = time.Since(start)

	o.writeReport(formatter.ReportData{
		Result:       result,
		SourceLang:   sourceLang,
		TargetLang:   o.cfg.Translator.TargetLang,
		SourceChars:  sourceChars,
		TargetChars:  targetChars,
		FailedChunks: failedChunks,
	}, path)

	if o.memory != nil {
		if err := o.memory.SaveJob(ctx, jobID, result); err != nil {
			log.Warn().Err(err).Msg("failed to record job history")
		}
	}

	o.finish(jobID, result)
	log.Info().Dur("elapsed", result.Elapsed).Msg("processing completed")
	return result
}

// translate runs the chunk texts through the memory and the backend,
// returning per-chunk results and the texts that failed. Progress is
// attributed linearly between 30 and 90 percent.
func (o *Orchestrator) translate(ctx context.Context, jobID, sourceLang string, originals []string) ([]translator.Result, []string) {
	results := make([]translator.Result, len(originals))
	missing := make([]int, 0, len(originals))

	for i, text := range originals {
		if cached, ok := o.lookupMemory(ctx, sourceLang, text); ok {
			results[i] = translator.Result{Text: cached, Translated: true}
			continue
		}
		missing = append(missing, i)
	}

	cachedCount := len(originals) - len(missing)
	if cachedCount > 0 {
		o.log.Debug().Int("hits", cachedCount).Msg("translation memory hits")
	}

	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for i, idx := range missing {
			texts[i] = originals[idx]
		}

		fresh := o.backend.TranslateMany(ctx, texts, func(done, total int) {
			percent := 30 + 60*float64(cachedCount+done)/float64(len(originals))
			o.setProgress(jobID, progress.StatusTranslating, percent,
				fmt.Sprintf("translated %d/%d chunks", cachedCount+done, len(originals)))
		})

		for i, idx := range missing {
			results[idx] = fresh[i]
			if fresh[i].Translated {
				o.saveMemory(ctx, sourceLang, originals[idx], fresh[i].Text)
			}
		}
	}

	var failed []string
	for i, res := range results {
		if !res.Translated {
			failed = append(failed, originals[i])
		}
	}
	return results, failed
}

func (o *Orchestrator) lookupMemory(ctx context.Context, sourceLang, text string) (string, bool) {
	if o.memory == nil {
		return "", false
	}
	cached, ok, err := o.memory.GetCached(ctx, text, sourceLang, o.cfg.Translator.TargetLang)
	if err != nil {
		o.log.Warn().Err(err).Msg("translation memory lookup failed")
		return "", false
	}
	return cached, ok
}

func (o *Orchestrator) saveMemory(ctx context.Context, sourceLang, text, translated string) {
	if o.memory == nil {
		return
	}
	if err := o.memory.Save(ctx, text, sourceLang, o.cfg.Translator.TargetLang, translated, o.backend.Name()); err != nil {
		o.log.Warn().Err(err).Msg("translation memory save failed")
	}
}

// resolveSourceLang detects the document language when the job says auto.
func (o *Orchestrator) resolveSourceLang(units []internal.TextUnit, log zerolog.Logger) string {
	lang := o.cfg.Translator.SourceLang
	if lang != "" && lang != "auto" {
		return lang
	}
	o.detOnce.Do(func() { o.det = detector.New() })
	if code, ok := o.det.DetectUnits(units); ok {
		log.Info().Str("language", code).Msg("detected source language")
		return code
	}
	log.Warn().Msg("source language detection failed, leaving it to the backend")
	return ""
}

func (o *Orchestrator) writeOutputs(inputPath string, originals, translated []string) ([]string, error) {
	outDir := o.outputDirFor(inputPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %v", internal.ErrFormat, err)
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	title := stem
	layout, _ := formatter.ParseLayout(o.cfg.Layout)

	var outputs []string

	// A failed job emits no output documents. Anything already written
	// before the failing step is removed again.
	discard := func(err error) ([]string, error) {
		for _, path := range outputs {
			if rmErr := os.Remove(path); rmErr != nil {
				o.log.Warn().Err(rmErr).Str("output", path).Msg("failed to remove partial output")
			}
		}
		return nil, err
	}

	if o.cfg.wantBilingual() {
		biPath := filepath.Join(outDir, stem+"_bilingual.md")
		if err := formatter.WriteBilingual(originals, translated, layout, title, biPath); err != nil {
			return discard(err)
		}
		outputs = append(outputs, biPath)

		if o.cfg.HTML {
			htmlPath := filepath.Join(outDir, stem+"_bilingual.html")
			if err := formatter.WriteHTML(biPath, htmlPath, title); err != nil {
				return discard(err)
			}
			outputs = append(outputs, htmlPath)
		}
	}

	if o.cfg.wantTranslated() {
		transPath := filepath.Join(outDir, stem+"_translated.md")
		if o.cfg.ReplaceOriginal {
			transPath = filepath.Join(outDir, filepath.Base(inputPath))
		}
		if err := formatter.WriteTranslationsOnly(translated, title, transPath); err != nil {
			return discard(err)
		}
		outputs = append(outputs, transPath)
	}

	return outputs, nil
}

// writeReport is best effort: a report failure never flips the job result.
func (o *Orchestrator) writeReport(data formatter.ReportData, inputPath string) {
	outDir := o.outputDirFor(inputPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		o.log.Warn().Err(err).Msg("failed to create report directory")
		return
	}
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	reportPath := filepath.Join(outDir, stem+"_report.md")
	if err := formatter.WriteReport(data, reportPath); err != nil {
		o.log.Warn().Err(err).Msg("failed to write report")
	}
}

func (o *Orchestrator) outputDirFor(inputPath string) string {
	if o.cfg.OutputDir != "" {
		return o.cfg.OutputDir
	}
	return filepath.Dir(inputPath)
}

func (o *Orchestrator) setProgress(jobID string, status progress.Status, percent float64, message string) {
	if o.tracker != nil {
		o.tracker.Set(jobID, status, percent, message)
	}
}

func (o *Orchestrator) finish(jobID string, result internal.ProcessingResult) {
	if o.tracker != nil {
		o.tracker.Finish(jobID, result)
	}
}
