package translator

import (
	"context"
	"fmt"
	"os"
	"sync"

	translate "cloud.google.com/go/translate"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleBackend translates through the Google Cloud Translation API. The
// client is created lazily on first use so that listing providers or
// validating configuration never touches the network.
type GoogleBackend struct {
	cfg Config
	log zerolog.Logger

	once    sync.Once
	client  *translate.Client
	initErr error
}

func newGoogleBackend(cfg Config, log zerolog.Logger) *GoogleBackend {
	return &GoogleBackend{
		cfg: cfg,
		log: log.With().Str("backend", "google").Logger(),
	}
}

func (b *GoogleBackend) Name() string { return "google" }

func (b *GoogleBackend) IsAvailable(ctx context.Context) error {
	if b.cfg.APIKey == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		return fmt.Errorf("google backend requires an API key or GOOGLE_APPLICATION_CREDENTIALS")
	}
	return nil
}

func (b *GoogleBackend) ensureClient(ctx context.Context) (*translate.Client, error) {
	b.once.Do(func() {
		opts := []option.ClientOption{}
		if b.cfg.APIKey != "" {
			opts = append(opts, option.WithAPIKey(b.cfg.APIKey))
		}
		b.client, b.initErr = translate.NewClient(ctx, opts...)
	})
	return b.client, b.initErr
}

func (b *GoogleBackend) TranslateOne(ctx context.Context, text string) Result {
	client, err := b.ensureClient(ctx)
	if err != nil {
		return Result{Text: text, Translated: false, Err: fmt.Errorf("failed to create client: %w", err)}
	}

	targetTag, err := language.Parse(b.cfg.TargetLang)
	if err != nil {
		return Result{Text: text, Translated: false, Err: fmt.Errorf("invalid target language %q: %w", b.cfg.TargetLang, err)}
	}

	var opts *translate.Options
	if b.cfg.SourceLang != "" && b.cfg.SourceLang != "auto" {
		sourceTag, perr := language.Parse(b.cfg.SourceLang)
		if perr == nil {
			opts = &translate.Options{Source: sourceTag}
		}
	}

	var lastErr error
	for attempt := 0; attempt < b.cfg.attempts(); attempt++ {
		if attempt > 0 {
			sleepCtx(ctx, b.cfg.Delay)
		}
		translations, terr := client.Translate(ctx, []string{text}, targetTag, opts)
		if terr == nil && len(translations) > 0 {
			return Result{Text: translations[0].Text, Translated: true}
		}
		if terr != nil {
			lastErr = terr
		} else {
			lastErr = fmt.Errorf("no translation returned")
		}
		if ctx.Err() != nil {
			break
		}
	}

	b.log.Warn().Err(lastErr).Msg("google translation failed, echoing original")
	return Result{Text: text, Translated: false, Err: lastErr}
}

func (b *GoogleBackend) TranslateMany(ctx context.Context, texts []string, onProgress func(done, total int)) []Result {
	if err := b.IsAvailable(ctx); err != nil {
		return echo(texts, err)
	}

	results := make([]Result, 0, len(texts))
	for i, text := range texts {
		if ctx.Err() != nil {
			results = append(results, echo(texts[i:], ctx.Err())...)
			return results
		}
		results = append(results, b.TranslateOne(ctx, text))
		if onProgress != nil {
			onProgress(len(results), len(texts))
		}
		if i+1 < len(texts) {
			sleepCtx(ctx, b.cfg.Delay)
		}
	}
	return results
}

// Close releases the underlying API client if one was created.
func (b *GoogleBackend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}
