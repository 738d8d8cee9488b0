package translator

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageName resolves a BCP 47 code to its English display name for use
// in instruction prompts ("translate from Ukrainian to Japanese"). Codes
// that do not parse, and the "auto" pseudo-code, fall through to a literal.
func languageName(code string) string {
	if code == "" || code == "auto" {
		return "the source language"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
