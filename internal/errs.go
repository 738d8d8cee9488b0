package internal

import "errors"

// Pipeline error taxonomy. Stage-local failures are wrapped around one of
// these sentinels so the orchestrator (and tests) can classify them with
// errors.Is without string matching.
var (
	// ErrParse marks an unreadable, corrupt, or empty-text source document.
	// Fatal for the job; no partial output is produced.
	ErrParse = errors.New("parse error")

	// ErrTranslationUnavailable marks a backend that could not be
	// constructed, authenticated, or loaded. Fatal for the job.
	ErrTranslationUnavailable = errors.New("translation backend unavailable")

	// ErrFormat marks a failed output assembly. Fatal; completed translation
	// work is discarded rather than partially emitted.
	ErrFormat = errors.New("format error")

	// ErrConfig marks a malformed job configuration, rejected before the
	// pipeline starts.
	ErrConfig = errors.New("invalid configuration")
)
