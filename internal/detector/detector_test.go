package detector

import (
	"testing"

	"github.com/lingodoc/lingodoc/internal"
)

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantCode: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantCode: "en",
			wantOK:   true,
		},
		{
			name:     "ukrainian text",
			text:     "Привіт, це тест українською мовою.",
			wantCode: "uk",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Hallo, das ist ein Test auf Deutsch.",
			wantCode: "de",
			wantOK:   true,
		},
		{
			name:     "french text",
			text:     "Bonjour, ceci est un test en français.",
			wantCode: "fr",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_DetectUnits(t *testing.T) {
	d := New()

	units := []internal.TextUnit{
		{Text: "   "},
		{Text: "Це перший абзац документа."},
		{Text: "Він написаний українською мовою."},
		{Text: "Третій абзац продовжує той самий текст."},
	}

	code, ok := d.DetectUnits(units)
	if !ok {
		t.Fatal("expected detection to succeed")
	}
	if code != "uk" {
		t.Errorf("DetectUnits = %q, want %q", code, "uk")
	}
}

func TestDetector_DetectUnitsEmpty(t *testing.T) {
	d := New()

	if _, ok := d.DetectUnits(nil); ok {
		t.Error("no units should not detect a language")
	}
	if _, ok := d.DetectUnits([]internal.TextUnit{{Text: "  "}}); ok {
		t.Error("whitespace-only units should not detect a language")
	}
}

func TestDetector_ShortText(t *testing.T) {
	d := New()

	// Short text may or may not be detected, just check it doesn't panic
	code, ok := d.DetectISO("Hi")
	_ = code
	_ = ok
}
