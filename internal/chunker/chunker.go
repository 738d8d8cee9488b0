// Package chunker merges and splits extracted text units into
// translation-sized chunks bounded by configured character counts, while
// preserving unit order and sentence boundaries where possible.
package chunker

import (
	"strings"
	"unicode"

	"github.com/lingodoc/lingodoc/internal"
)

// sentence-ending punctuation, narrow and wide forms
var terminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

// Chunk walks the unit sequence in order and produces chunks whose rune
// length stays within [minChars, maxChars] where the content allows it:
//
//   - a unit longer than maxChars is split at sentence boundaries and the
//     fragments greedily repacked (fragments that are themselves longer than
//     maxChars are sliced at fixed rune boundaries);
//   - a unit shorter than minChars is buffered and joined with following
//     short units until the buffer would exceed maxChars;
//   - anything in between is emitted as its own chunk.
//
// Whitespace-only units are skipped. Chunk order equals unit order and no
// unit's text is dropped. When minChars >= maxChars the bounds are
// contradictory and every unit is passed through unchanged.
func Chunk(units []internal.TextUnit, minChars, maxChars int) []internal.Chunk {
	degenerate := minChars >= maxChars

	var chunks []internal.Chunk
	var pending strings.Builder
	pendingOrigin := 0

	flush := func() {
		if pending.Len() == 0 {
			return
		}
		chunks = append(chunks, internal.Chunk{
			Text:      strings.TrimSpace(pending.String()),
			OriginLen: pendingOrigin,
		})
		pending.Reset()
		pendingOrigin = 0
	}

	for _, unit := range units {
		text := strings.TrimSpace(unit.Text)
		if text == "" {
			continue
		}
		length := len([]rune(text))

		switch {
		case degenerate:
			chunks = append(chunks, internal.Chunk{Text: text, OriginLen: length})

		case length > maxChars:
			flush()
			chunks = append(chunks, splitOversized(text, maxChars)...)

		case length < minChars:
			if pending.Len() > 0 && len([]rune(pending.String()))+1+length > maxChars {
				flush()
			}
			if pending.Len() > 0 {
				pending.WriteByte(' ')
			}
			pending.WriteString(text)
			pendingOrigin += length

		default:
			flush()
			chunks = append(chunks, internal.Chunk{Text: text, OriginLen: length})
		}
	}

	flush()
	return chunks
}

// splitOversized breaks text into sentence fragments, re-appends a
// terminator to any fragment lacking one, and greedily packs fragments into
// chunks of at most maxChars runes. A single fragment still longer than
// maxChars is sliced at fixed rune boundaries.
func splitOversized(text string, maxChars int) []internal.Chunk {
	fragments := splitSentences(text)

	var chunks []internal.Chunk
	var current strings.Builder
	currentOrigin := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, internal.Chunk{
			Text:      strings.TrimSpace(current.String()),
			OriginLen: currentOrigin,
		})
		current.Reset()
		currentOrigin = 0
	}

	for _, frag := range fragments {
		fragLen := len([]rune(frag.text))

		if fragLen > maxChars {
			flush()
			for _, slice := range forceSplit(frag.text, maxChars) {
				chunks = append(chunks, internal.Chunk{
					Text:      slice,
					OriginLen: len([]rune(slice)),
				})
			}
			continue
		}

		joined := fragLen
		if current.Len() > 0 {
			joined += len([]rune(current.String())) + 1
		}
		if joined > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(frag.text)
		currentOrigin += frag.originLen
	}

	flush()
	return chunks
}

type fragment struct {
	text      string
	originLen int // runes taken from the source, excluding an inserted terminator
}

// splitSentences cuts text after each sentence terminator, consuming any
// whitespace that follows it. The final fragment gets a terminator appended
// when it lacks one, so every fragment reads as a complete sentence.
func splitSentences(text string) []fragment {
	var fragments []fragment
	var current strings.Builder

	emit := func() {
		frag := strings.TrimSpace(current.String())
		current.Reset()
		if frag == "" {
			return
		}
		f := fragment{text: frag, originLen: len([]rune(frag))}
		last, _ := lastRune(frag)
		if !terminators[last] {
			f.text += "."
		}
		fragments = append(fragments, f)
	}

	for _, r := range text {
		if unicode.IsSpace(r) && current.Len() == 0 {
			continue
		}
		current.WriteRune(r)
		if terminators[r] {
			emit()
		}
	}
	emit()

	return fragments
}

// forceSplit slices text at fixed rune boundaries of at most maxChars,
// dropping slices that trim to nothing.
func forceSplit(text string, maxChars int) []string {
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += maxChars {
		end := i + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		slice := strings.TrimSpace(string(runes[i:end]))
		if slice != "" {
			out = append(out, slice)
		}
	}
	return out
}

func lastRune(s string) (rune, bool) {
	var last rune
	found := false
	for _, r := range s {
		last = r
		found = true
	}
	return last, found
}
