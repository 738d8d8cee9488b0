/*
Copyright © 2025 The lingodoc authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lingodoc/lingodoc/internal/orchestrator"
	"github.com/lingodoc/lingodoc/internal/progress"
	"github.com/lingodoc/lingodoc/internal/translator"
)

var (
	inputFiles []string
	sourceLang string
	targetLang string

	provider    string
	model       string
	apiKey      string
	baseURL     string
	localConfig string

	batchSize  int
	delay      time.Duration
	maxRetries int

	minChars int
	maxChars int

	outputFormat    string
	outputLayout    string
	htmlOutput      bool
	replaceOriginal bool

	outputDir   string
	scratchDir  string
	keepScratch bool

	cacheDBPath string
	noCache     bool
	fileDelay   time.Duration

	async bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Translate documents into bilingual output",
	Long: `Extracts text from the input documents, translates it chunk by chunk,
and writes bilingual Markdown output together with a processing report.

Examples:
  lingodoc process -i book.pdf -t uk
  lingodoc process -i a.md -i b.md -t de --provider deepseek-reasoner
  lingodoc process -i notes.txt -t fr --provider local --format both --html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(inputFiles) == 0 {
			return fmt.Errorf("at least one input file is required")
		}

		cfg := buildConfig()
		if cfg.CacheDBPath != "" {
			if err := ensureParentDir(cfg.CacheDBPath); err != nil {
				return fmt.Errorf("preparing cache directory: %w", err)
			}
		}
		backend, err := translator.New(cfg.Translator, logger)
		if err != nil {
			return err
		}

		tracker := progress.NewTracker()
		orch, err := orchestrator.New(cfg, backend, logger, orchestrator.WithTracker(tracker))
		if err != nil {
			return err
		}
		defer orch.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if async && len(inputFiles) == 1 {
			return runAsync(ctx, orch, tracker)
		}

		results := orch.ProcessMany(ctx, inputFiles)

		failed := 0
		for _, res := range results {
			if res.Success {
				fmt.Printf("OK   %s (%d chunks, %d failed, %s)\n",
					res.InputFile, res.OriginalUnits, res.FailedUnits, res.Elapsed.Round(time.Millisecond))
				for _, out := range res.OutputFiles {
					fmt.Printf("     -> %s\n", out)
				}
			} else {
				failed++
				fmt.Printf("FAIL %s: %s\n", res.InputFile, res.Error)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}

// runAsync demonstrates the tracked mode: the job runs in the background
// while its state is polled.
func runAsync(ctx context.Context, orch *orchestrator.Orchestrator, tracker *progress.Tracker) error {
	jobID := orch.ProcessAsync(ctx, inputFiles[0])
	fmt.Printf("job %s started\n", jobID)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			state, ok := tracker.Get(jobID)
			if !ok {
				continue
			}
			fmt.Printf("  %-12s %5.1f%%  %s\n", state.Status, state.Percent, state.Message)
			if state.Status.Terminal() {
				if state.Status == progress.StatusFailed {
					return fmt.Errorf("job failed: %s", state.Message)
				}
				return nil
			}
		}
	}
}

func buildConfig() orchestrator.Config {
	cfg := orchestrator.Config{
		Translator: translator.Config{
			Provider:        provider,
			SourceLang:      sourceLang,
			TargetLang:      targetLang,
			Model:           model,
			APIKey:          resolveAPIKey(),
			BaseURL:         baseURL,
			BatchSize:       batchSize,
			Delay:           delay,
			MaxRetries:      maxRetries,
			LocalConfigPath: localConfig,
		},
		MinChars:        minChars,
		MaxChars:        maxChars,
		Format:          outputFormat,
		Layout:          outputLayout,
		HTML:            htmlOutput,
		ReplaceOriginal: replaceOriginal,
		OutputDir:       outputDir,
		ScratchDir:      scratchDir,
		KeepScratch:     keepScratch,
		FileDelay:       fileDelay,
	}
	if !noCache {
		cfg.CacheDBPath = cacheDBPath
	}
	return cfg
}

// resolveAPIKey falls back to the conventional environment variables of
// the selected provider.
func resolveAPIKey() string {
	if apiKey != "" {
		return apiKey
	}
	switch provider {
	case "deepseek", "deepseek-reasoner", "reasoner", "":
		return os.Getenv("DEEPSEEK_API_KEY")
	case "google":
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringSliceVarP(&inputFiles, "input", "i", nil, "input file (repeatable)")
	processCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "source language code, or auto")
	processCmd.Flags().StringVarP(&targetLang, "target", "t", "", "target language code (required)")
	_ = processCmd.MarkFlagRequired("target")

	processCmd.Flags().StringVar(&provider, "provider", "deepseek", "translation provider (local, deepseek, deepseek-reasoner, google)")
	processCmd.Flags().StringVar(&model, "model", "", "override the provider's default model")
	processCmd.Flags().StringVar(&apiKey, "api-key", "", "provider API key (defaults to the provider's environment variable)")
	processCmd.Flags().StringVar(&baseURL, "base-url", "", "override the provider endpoint")
	processCmd.Flags().StringVar(&localConfig, "local-config", "", "JSON configuration for the local provider")

	processCmd.Flags().IntVar(&batchSize, "batch-size", 0, "batch size ceiling (0 = provider default)")
	processCmd.Flags().DurationVar(&delay, "delay", time.Second, "pause between translation calls")
	processCmd.Flags().IntVar(&maxRetries, "retries", 3, "attempts per chunk")

	processCmd.Flags().IntVar(&minChars, "min-chars", orchestrator.DefaultMinChars, "minimum chunk size in characters")
	processCmd.Flags().IntVar(&maxChars, "max-chars", orchestrator.DefaultMaxChars, "maximum chunk size in characters")

	processCmd.Flags().StringVar(&outputFormat, "format", orchestrator.FormatBilingual, "output format (bilingual, translated, both)")
	processCmd.Flags().StringVar(&outputLayout, "layout", "side-by-side", "bilingual layout (side-by-side, interleaved)")
	processCmd.Flags().BoolVar(&htmlOutput, "html", false, "also render the bilingual document as HTML")
	processCmd.Flags().BoolVar(&replaceOriginal, "replace-original", false, "write the translated text under the original file name")

	processCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (defaults to the input's directory)")
	processCmd.Flags().StringVar(&scratchDir, "scratch-dir", "", "directory for scratch artifacts (defaults to the system temp dir)")
	processCmd.Flags().BoolVar(&keepScratch, "keep-scratch", false, "keep extraction scratch artifacts")

	processCmd.Flags().StringVar(&cacheDBPath, "cache", defaultCacheDBPath(), "translation memory database")
	processCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the translation memory")
	processCmd.Flags().DurationVar(&fileDelay, "file-delay", 0, "pause between files in a multi-file run")

	processCmd.Flags().BoolVar(&async, "async", false, "run a single file in the background and poll its progress")
}
