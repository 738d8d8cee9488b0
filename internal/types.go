package internal

import "time"

// RefKind identifies where in the source document a text unit came from.
type RefKind int

const (
	RefParagraph RefKind = iota
	RefTableCell
)

// SourceRef is the positional provenance of a TextUnit. Paragraph is the
// zero-based paragraph index for RefParagraph units; Row and Col locate
// RefTableCell units within their table.
type SourceRef struct {
	Kind      RefKind `json:"kind"`
	Paragraph int     `json:"paragraph"`
	Row       int     `json:"row"`
	Col       int     `json:"col"`
}

// TextUnit is one translatable piece of source text. Units are immutable
// once extracted; their order within a document is significant and is
// preserved through chunking, translation, and formatting.
type TextUnit struct {
	Ref  SourceRef `json:"ref"`
	Text string    `json:"text"`
}

// Chunk is a translation-sized aggregation or fragment of one or more
// units. OriginLen counts the runes of source text folded into the chunk;
// terminators inserted during sentence splitting are not counted.
type Chunk struct {
	Text      string `json:"text"`
	OriginLen int    `json:"origin_len"`
}

// ProcessingResult summarizes one end-to-end run over one input document.
// It is created once by the orchestrator and immutable afterwards.
type ProcessingResult struct {
	Success         bool          `json:"success"`
	InputFile       string        `json:"input_file"`
	OutputFiles     []string      `json:"output_files"`
	Elapsed         time.Duration `json:"elapsed"`
	OriginalUnits   int           `json:"original_units"`
	TranslatedUnits int           `json:"translated_units"`
	FailedUnits     int           `json:"failed_units"`
	Provider        string        `json:"provider"`
	Error           string        `json:"error,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
}
