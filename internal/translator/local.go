package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lingodoc/lingodoc/internal/postprocess"
)

// DefaultLocalBaseURL is the local inference server endpoint.
const DefaultLocalBaseURL = "http://localhost:11434"

// LocalBackend translates through a locally served neural model. The model
// is loaded lazily on first use: construction is cheap so jobs that never
// translate pay nothing. Loading walks a fixed fallback ladder: model
// already in the server's local store, network pull of the primary model,
// network pull with the relaxed (insecure) option, then each configured
// fallback model. Exhausting every stage leaves this instance permanently
// unavailable; translate calls then echo their input.
type LocalBackend struct {
	cfg    Config
	local  LocalModelConfig
	client *http.Client
	log    zerolog.Logger

	mu     sync.Mutex
	model  string // model confirmed loadable, empty until ready
	failed bool
}

func newLocalBackend(cfg Config, log zerolog.Logger) *LocalBackend {
	local := loadLocalModelConfig(cfg.LocalConfigPath)
	if cfg.Model != "" {
		local.ModelName = cfg.Model
	}
	return &LocalBackend{
		cfg:    cfg,
		local:  local,
		client: &http.Client{Timeout: 10 * time.Minute},
		log:    log.With().Str("backend", "local").Logger(),
	}
}

func (b *LocalBackend) Name() string { return "local" }

// IsAvailable triggers lazy loading and reports whether a model is ready.
func (b *LocalBackend) IsAvailable(ctx context.Context) error {
	return b.ensureModel(ctx)
}

func (b *LocalBackend) TranslateOne(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Text: text, Translated: false}
	}
	if err := b.ensureModel(ctx); err != nil {
		return Result{Text: text, Translated: false, Err: err}
	}

	var lastErr error
	for attempt := 0; attempt < b.cfg.attempts(); attempt++ {
		if attempt > 0 {
			sleepCtx(ctx, b.cfg.Delay)
		}
		translated, err := b.generate(ctx, text)
		if err == nil {
			return Result{Text: translated, Translated: true}
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	b.log.Warn().Err(lastErr).Msg("local translation failed, echoing original")
	return Result{Text: text, Translated: false, Err: lastErr}
}

func (b *LocalBackend) TranslateMany(ctx context.Context, texts []string, onProgress func(done, total int)) []Result {
	if err := b.ensureModel(ctx); err != nil {
		return echo(texts, err)
	}

	// The local model is CPU and memory bound; stay conservative.
	batchSize := dynamicBatchSize(texts, b.cfg.BatchSize, 1.5, 15000, 5)
	b.log.Debug().Int("batch_size", batchSize).Int("texts", len(texts)).Msg("dynamic batch size computed")

	results := make([]Result, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		for i, text := range texts[start:end] {
			if ctx.Err() != nil {
				results = append(results, echo(texts[start+i:], ctx.Err())...)
				return results
			}
			results = append(results, b.TranslateOne(ctx, text))
			if onProgress != nil {
				onProgress(len(results), len(texts))
			}
			if start+i+1 < len(texts) {
				sleepCtx(ctx, b.cfg.Delay)
			}
		}
	}
	return results
}

// ensureModel performs the staged model loading. It is idempotent: once a
// model is ready (or every stage has failed) subsequent calls return
// immediately.
func (b *LocalBackend) ensureModel(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.model != "" {
		return nil
	}
	if b.failed {
		return fmt.Errorf("local backend permanently unavailable: all model loading stages failed")
	}

	candidates := append([]string{b.local.ModelName}, b.local.FallbackModels...)
	for i, model := range candidates {
		if model == "" {
			continue
		}
		if b.tryLoad(ctx, model, i == 0) {
			b.model = model
			b.log.Info().Str("model", model).Msg("local model ready")
			return nil
		}
		if ctx.Err() != nil {
			// Do not mark the backend dead on cancellation; the next job
			// may still succeed.
			return ctx.Err()
		}
	}

	b.failed = true
	b.log.Error().Str("config", b.local.String()).Msg("all model loading stages failed")
	return fmt.Errorf("local backend permanently unavailable: all model loading stages failed")
}

// tryLoad walks the loading stages for one model. The relaxed (insecure)
// pull and the online stages are skipped for fallback models unless the
// configuration allows going online at all.
func (b *LocalBackend) tryLoad(ctx context.Context, model string, primary bool) bool {
	if b.local.OfflineMode.PreferLocalFiles {
		if b.modelInLocalStore(ctx, model) {
			b.log.Info().Str("model", model).Msg("model found in local store")
			return true
		}
		b.log.Warn().Str("model", model).Msg("model not in local store")
		if !b.local.OfflineMode.FallbackToOnline {
			return false
		}
	}

	if err := b.pullModel(ctx, model, false); err == nil {
		b.log.Info().Str("model", model).Msg("model pulled")
		return true
	} else {
		b.log.Warn().Str("model", model).Err(err).Msg("model pull failed")
	}

	if primary {
		if err := b.pullModel(ctx, model, true); err == nil {
			b.log.Info().Str("model", model).Msg("model pulled via relaxed path")
			return true
		} else {
			b.log.Warn().Str("model", model).Err(err).Msg("relaxed pull failed")
		}
	}

	return false
}

func (b *LocalBackend) baseURL() string {
	if b.cfg.BaseURL != "" {
		return strings.TrimRight(b.cfg.BaseURL, "/")
	}
	if b.local.BaseURL != "" {
		return strings.TrimRight(b.local.BaseURL, "/")
	}
	return DefaultLocalBaseURL
}

func (b *LocalBackend) modelInLocalStore(ctx context.Context, model string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL()+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	for _, m := range tags.Models {
		if m.Name == model || strings.TrimSuffix(m.Name, ":latest") == model {
			return true
		}
	}
	return false
}

func (b *LocalBackend) pullModel(ctx context.Context, model string, insecure bool) error {
	payload := map[string]any{
		"name":   model,
		"stream": false,
	}
	if insecure {
		payload["insecure"] = true
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL()+"/api/pull", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pull returned status %d", resp.StatusCode)
	}

	var status struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return err
	}
	if status.Error != "" {
		return fmt.Errorf("pull failed: %s", status.Error)
	}
	return nil
}

type generateRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Stream  bool   `json:"stream"`
	Options struct {
		NumThread int `json:"num_thread,omitempty"`
	} `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (b *LocalBackend) generate(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following text from %s to %s.
Only respond with the translation, nothing else.

Text: %s

Translation:`, languageName(b.cfg.SourceLang), languageName(b.cfg.TargetLang), text)

	reqBody := generateRequest{
		Model:  b.model,
		Prompt: prompt,
		Stream: false,
	}
	reqBody.Options.NumThread = b.local.NumThread

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL()+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	cleaned := postprocess.Clean(parsed.Response)
	if cleaned == "" {
		return "", fmt.Errorf("blank translation returned")
	}
	return cleaned, nil
}
