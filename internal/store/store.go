// Package store persists the translation memory and the job history in a
// local SQLite database. The memory caches chunk translations across runs;
// the history keeps per-file processing results for inspection.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/lingodoc/lingodoc/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		provider TEXT,
		usage_count INTEGER DEFAULT 1,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang)
	);

	CREATE TABLE IF NOT EXISTS processing_jobs (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		output_files TEXT,
		provider TEXT,
		success BOOLEAN NOT NULL,
		original_units INTEGER,
		translated_units INTEGER,
		failed_units INTEGER,
		elapsed_ms INTEGER,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_jobs_created ON processing_jobs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetCached returns the remembered translation for a chunk, bumping its
// usage statistics on a hit.
func (s *Store) GetCached(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	var translated string

	err := s.db.QueryRowContext(ctx,
		`SELECT translated_text FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		normalizeText(sourceText), sourceLang, targetLang).Scan(&translated)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		time.Now(), normalizeText(sourceText), sourceLang, targetLang)

	return translated, true, err
}

// Save remembers a successful chunk translation. An existing entry for the
// same source is replaced.
func (s *Store) Save(ctx context.Context, sourceText, sourceLang, targetLang, translatedText, provider string) error {
	id := fmt.Sprintf("mem_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, source_lang, target_lang, translated_text, provider, usage_count, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, normalizeText(sourceText), sourceLang, targetLang, translatedText, provider, time.Now(), time.Now())
	return err
}

// SaveJob records one file's processing result in the history.
func (s *Store) SaveJob(ctx context.Context, jobID string, result internal.ProcessingResult) error {
	outputs, err := json.Marshal(result.OutputFiles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO processing_jobs (id, input_file, output_files, provider, success, original_units, translated_units, failed_units, elapsed_ms, error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		jobID, result.InputFile, string(outputs), result.Provider, result.Success,
		result.OriginalUnits, result.TranslatedUnits, result.FailedUnits,
		result.Elapsed.Milliseconds(), result.Error, result.Timestamp)
	return err
}

// JobRecord is a row from the processing_jobs table.
type JobRecord struct {
	ID        string
	Result    internal.ProcessingResult
	CreatedAt time.Time
}

// ListJobs returns the most recent job records, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_file, output_files, provider, success, original_units, translated_units, failed_units, elapsed_ms, error, created_at FROM processing_jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var rec JobRecord
		var outputs string
		var elapsedMs int64
		if err := rows.Scan(&rec.ID, &rec.Result.InputFile, &outputs, &rec.Result.Provider,
			&rec.Result.Success, &rec.Result.OriginalUnits, &rec.Result.TranslatedUnits,
			&rec.Result.FailedUnits, &elapsedMs, &rec.Result.Error, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Result.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		rec.Result.Timestamp = rec.CreatedAt
		if outputs != "" {
			_ = json.Unmarshal([]byte(outputs), &rec.Result.OutputFiles)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID             string
	SourceText     string
	SourceLang     string
	TargetLang     string
	TranslatedText string
	Provider       string
	UsageCount     int
	LastUsed       time.Time
}

// ListMemory returns all memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, source_lang, target_lang, translated_text, provider, usage_count, last_used FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.TranslatedText, &e.Provider, &e.UsageCount, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// ClearMemory removes all translation memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CacheStats summarises translation memory usage.
type CacheStats struct {
	TotalEntries int
	TotalUsage   int
	Providers    int
}

func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(usage_count), 0),
			COUNT(DISTINCT provider)
		FROM translation_memory`).Scan(
		&stats.TotalEntries,
		&stats.TotalUsage,
		&stats.Providers,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// that visually identical chunks share one memory entry.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
