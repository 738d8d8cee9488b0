// Package detector resolves the "auto" source language by sampling
// extracted text.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/lingodoc/lingodoc/internal"
)

// sampleBudget caps how many runes DetectUnits feeds the detector.
// Statistical detection plateaus well below this.
const sampleBudget = 2000

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lowercase ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// DetectUnits detects the dominant language of a document from its
// extracted units, sampling from the start until the budget is spent.
func (d *Detector) DetectUnits(units []internal.TextUnit) (string, bool) {
	var sample strings.Builder
	for _, unit := range units {
		if sample.Len() >= sampleBudget {
			break
		}
		if strings.TrimSpace(unit.Text) == "" {
			continue
		}
		if sample.Len() > 0 {
			sample.WriteByte(' ')
		}
		sample.WriteString(unit.Text)
	}
	return d.DetectISO(sample.String())
}
