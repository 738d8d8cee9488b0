package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lingodoc/lingodoc/internal/postprocess"
)

// DefaultChatBaseURL is the DeepSeek OpenAI-compatible endpoint.
const DefaultChatBaseURL = "https://api.deepseek.com"

// chatProfile captures what differs between the fast and the reasoning
// tier: prompt verbosity, token ceilings, batch-size constants, and pacing
// floors.
type chatProfile struct {
	name          string
	defaultModel  string
	system        string
	buildPrompt   func(sourceLang, targetLang, text string) string
	temperature   float64
	maxTokens     int
	tokensPerChar float64
	tokenBudget   int
	hardCap       int
	minDelay      time.Duration
	batchPause    float64 // multiplier of the configured delay, applied between batches
}

var fastProfile = chatProfile{
	name:         "deepseek",
	defaultModel: "deepseek-chat",
	system:       "You are a professional translation assistant. You translate text accurately and preserve its formatting.",
	buildPrompt: func(sourceLang, targetLang, text string) string {
		return fmt.Sprintf(
			"Translate the following text from %s to %s. Preserve the original formatting and meaning. Respond with the translation only.\n\n%s",
			languageName(sourceLang), languageName(targetLang), text)
	},
	temperature:   0.3,
	maxTokens:     2000,
	tokensPerChar: 1.8,
	tokenBudget:   12000,
	hardCap:       15,
	minDelay:      0,
	batchPause:    0.5,
}

var reasonerProfile = chatProfile{
	name:         "deepseek-reasoner",
	defaultModel: "deepseek-reasoner",
	system:       "You are a professional translation expert with deep reasoning ability. You analyze meaning, context, and cultural background before producing an accurate, fluent, natural translation.",
	buildPrompt: func(sourceLang, targetLang, text string) string {
		return fmt.Sprintf(`As a professional translation expert, analyze the text below carefully and produce a high-quality translation.

Source language: %s
Target language: %s

Follow these steps:
1. Understand the core meaning, context, and tone of the original
2. Identify terminology, idioms, and culture-specific expressions
3. Consider the conventions of the target language
4. Ensure accuracy, fluency, and naturalness
5. Preserve the original formatting and structure

Text:
%s

Provide the final translation only:`,
			languageName(sourceLang), languageName(targetLang), text)
	},
	temperature:   0.1,
	maxTokens:     6000,
	tokensPerChar: 2.5,
	tokenBudget:   8000,
	hardCap:       5,
	minDelay:      2 * time.Second,
	batchPause:    1.5,
}

// ChatBackend translates through an OpenAI-compatible chat completions API.
type ChatBackend struct {
	cfg     Config
	profile chatProfile
	client  *http.Client
	log     zerolog.Logger
}

func newChatBackend(cfg Config, profile chatProfile, log zerolog.Logger) *ChatBackend {
	return &ChatBackend{
		cfg:     cfg,
		profile: profile,
		client:  &http.Client{Timeout: 120 * time.Second},
		log:     log.With().Str("backend", profile.name).Logger(),
	}
}

func (b *ChatBackend) Name() string { return b.profile.name }

// IsAvailable reflects credential presence; no network probe is made.
func (b *ChatBackend) IsAvailable(ctx context.Context) error {
	if strings.TrimSpace(b.cfg.APIKey) == "" {
		return fmt.Errorf("%s: API key not configured", b.profile.name)
	}
	return nil
}

func (b *ChatBackend) TranslateOne(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Text: text, Translated: false}
	}

	var lastErr error
	for attempt := 0; attempt < b.cfg.attempts(); attempt++ {
		if attempt > 0 {
			sleepCtx(ctx, b.delay())
		}
		translated, err := b.complete(ctx, text)
		if err == nil {
			return Result{Text: translated, Translated: true}
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	b.log.Warn().Err(lastErr).Msg("translation call failed, echoing original")
	return Result{Text: text, Translated: false, Err: lastErr}
}

func (b *ChatBackend) TranslateMany(ctx context.Context, texts []string, onProgress func(done, total int)) []Result {
	if err := b.IsAvailable(ctx); err != nil {
		return echo(texts, err)
	}

	batchSize := dynamicBatchSize(texts, b.cfg.BatchSize, b.profile.tokensPerChar, b.profile.tokenBudget, b.profile.hardCap)
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
				sleepCtx(ctx, b.delay())
			}
		}

		if end < len(texts) {
			sleepCtx(ctx, time.Duration(float64(b.cfg.Delay)*b.profile.batchPause))
		}
	}
	return results
}

// delay applies the profile's floor to the configured inter-call delay.
func (b *ChatBackend) delay() time.Duration {
	if b.cfg.Delay < b.profile.minDelay {
		return b.profile.minDelay
	}
	return b.cfg.Delay
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (b *ChatBackend) complete(ctx context.Context, text string) (string, error) {
	model := b.cfg.Model
	if model == "" {
		model = b.profile.defaultModel
	}

	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: b.profile.system},
			{Role: "user", Content: b.profile.buildPrompt(b.cfg.SourceLang, b.cfg.TargetLang, text)},
		},
		Temperature: b.profile.temperature,
		MaxTokens:   b.profile.maxTokens,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint(), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	cleaned := postprocess.Clean(parsed.Choices[0].Message.Content)
	if cleaned == "" {
		return "", fmt.Errorf("blank translation returned")
	}
	return cleaned, nil
}

func (b *ChatBackend) endpoint() string {
	base := strings.TrimRight(b.cfg.BaseURL, "/")
	if base == "" {
		base = DefaultChatBaseURL
	}
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}
