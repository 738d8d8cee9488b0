// Package translator defines the uniform translation backend capability
// interface and its interchangeable implementations: a locally served
// neural model, OpenAI-compatible chat-completion providers (a fast and a
// reasoning tier), and Google Cloud Translation.
package translator

import (
	"context"
	"time"
)

// Result is the outcome for a single unit of text. A failed call never
// propagates as an error: Text carries the original input, Translated is
// false, and Err records the cause for reporting.
type Result struct {
	Text       string
	Translated bool
	Err        error
}

// Backend is the capability interface shared by every provider variant.
// TranslateMany preserves input order and length, even when every call
// fails. A nil IsAvailable error means the backend can translate.
type Backend interface {
	Name() string
	TranslateOne(ctx context.Context, text string) Result
	TranslateMany(ctx context.Context, texts []string, onProgress func(done, total int)) []Result
	IsAvailable(ctx context.Context) error
}

// Config carries the translation settings of one job.
type Config struct {
	Provider   string        `mapstructure:"provider" json:"provider"`
	SourceLang string        `mapstructure:"source_lang" json:"source_lang"`
	TargetLang string        `mapstructure:"target_lang" json:"target_lang"`
	Model      string        `mapstructure:"model" json:"model"`
	APIKey     string        `mapstructure:"api_key" json:"api_key"`
	BaseURL    string        `mapstructure:"base_url" json:"base_url"`
	BatchSize  int           `mapstructure:"batch_size" json:"batch_size"`
	Delay      time.Duration `mapstructure:"delay" json:"delay"`
	MaxRetries int           `mapstructure:"max_retries" json:"max_retries"`

	// LocalConfigPath points to the optional JSON configuration of the
	// local model backend (model name, offline preferences, fallbacks).
	LocalConfigPath string `mapstructure:"local_config" json:"local_config"`
}

func (c Config) attempts() int {
	if c.MaxRetries < 1 {
		return 1
	}
	return c.MaxRetries
}

// echo marks count units as untranslated, carrying their original text.
func echo(texts []string, err error) []Result {
	results := make([]Result, len(texts))
	for i, t := range texts {
		results[i] = Result{Text: t, Translated: false, Err: err}
	}
	return results
}

// sleepCtx pauses for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
