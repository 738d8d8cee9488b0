// Package postprocess strips chat-model artifacts from raw translation
// output. Both the local neural backend and the remote chat backends run
// their responses through Clean before anything downstream sees them.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean normalizes a model response into plain translated text:
// reasoning blocks are removed, leaked instruction prefixes are dropped,
// and a wrapping quote pair is unwrapped. The result is trimmed.
func Clean(text string) string {
	text = stripReasoningBlocks(text)
	text = stripLeadIns(text)
	text = unwrapQuotes(text)
	return strings.TrimSpace(text)
}

// reasoningBlockRe matches complete <think>…</think> style blocks. The tag
// variants are spelled out because RE2 has no backreferences.
var reasoningBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// openReasoningRe matches a reasoning tag that was never closed, which
// happens when the model hits its token ceiling mid-thought.
var openReasoningRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func stripReasoningBlocks(text string) string {
	text = reasoningBlockRe.ReplaceAllString(text, "")
	text = openReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// leadInPatterns match introductory phrases models prepend even when told
// not to. Anchored to the start and requiring a colon to avoid eating
// legitimate content.
var leadInPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:final |translated )?(?:translation|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:final )?(?:translation|translated text)\s*:`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:final |translated )?(?:translation|text)\s*:`),
}

func stripLeadIns(text string) string {
	for _, re := range leadInPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// unwrapQuotes removes a matching pair of outer quotes when the whole text
// is wrapped in one. Supported pairs: "…" '…' «…» and the typographic
// double and single quotes.
func unwrapQuotes(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
