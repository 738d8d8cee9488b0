package orchestrator

import (
	"fmt"
	"time"

	"github.com/lingodoc/lingodoc/internal"
	"github.com/lingodoc/lingodoc/internal/formatter"
	"github.com/lingodoc/lingodoc/internal/translator"
)

// Output format names accepted by Config.Format.
const (
	FormatBilingual  = "bilingual"
	FormatTranslated = "translated"
	FormatBoth       = "both"
)

// Defaults for the chunking window.
const (
	DefaultMinChars = 200
	DefaultMaxChars = 1500
)

// Config describes one processing job: which backend translates, how text
// is chunked, and which output documents are written.
type Config struct {
	Translator translator.Config `mapstructure:"translator"`

	MinChars int `mapstructure:"min_chars"`
	MaxChars int `mapstructure:"max_chars"`

	Format          string `mapstructure:"format"`
	Layout          string `mapstructure:"layout"`
	HTML            bool   `mapstructure:"html"`
	ReplaceOriginal bool   `mapstructure:"replace_original"`

	OutputDir   string `mapstructure:"output_dir"`
	ScratchDir  string `mapstructure:"scratch_dir"`
	KeepScratch bool   `mapstructure:"keep_scratch"`

	// CacheDBPath enables the translation memory when non-empty.
	CacheDBPath string `mapstructure:"cache_db"`

	// FileDelay paces a multi-file run.
	FileDelay time.Duration `mapstructure:"file_delay"`
}

// Validate fills defaults and rejects settings the pipeline cannot run
// with. minChars >= maxChars is allowed; the chunker degrades to
// passthrough in that case.
func (c *Config) Validate() error {
	if c.Translator.TargetLang == "" {
		return fmt.Errorf("%w: target language is required", internal.ErrConfig)
	}
	if c.MinChars == 0 {
		c.MinChars = DefaultMinChars
	}
	if c.MaxChars == 0 {
		c.MaxChars = DefaultMaxChars
	}
	if c.MinChars < 0 || c.MaxChars <= 0 {
		return fmt.Errorf("%w: chunk bounds must be positive", internal.ErrConfig)
	}

	switch c.Format {
	case "":
		c.Format = FormatBilingual
	case FormatBilingual, FormatTranslated, FormatBoth:
	default:
		return fmt.Errorf("%w: unknown format %q", internal.ErrConfig, c.Format)
	}

	if _, err := formatter.ParseLayout(c.Layout); err != nil {
		return err
	}
	return nil
}

func (c *Config) wantBilingual() bool {
	return c.Format == FormatBilingual || c.Format == FormatBoth
}

func (c *Config) wantTranslated() bool {
	return c.Format == FormatTranslated || c.Format == FormatBoth || c.ReplaceOriginal
}
