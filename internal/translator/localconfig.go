package translator

import (
	"fmt"

	"github.com/spf13/viper"
)

// DefaultLocalModel is the multilingual model used when no configuration
// names one.
const DefaultLocalModel = "aya:8b"

// LocalModelConfig mirrors the optional JSON configuration file of the
// local backend: which model to serve, how to treat the local model store
// versus the network, and which models to fall back to.
type LocalModelConfig struct {
	ModelName string `mapstructure:"model_name"`
	BaseURL   string `mapstructure:"base_url"`
	NumThread int    `mapstructure:"num_thread"`

	OfflineMode struct {
		PreferLocalFiles bool `mapstructure:"prefer_local_files"`
		FallbackToOnline bool `mapstructure:"fallback_to_online"`
	} `mapstructure:"offline_mode"`

	FallbackModels []string `mapstructure:"fallback_models"`
}

// defaultLocalModelConfig matches the behavior of a missing config file:
// prefer what is already on disk, fetch when it is not.
func defaultLocalModelConfig() LocalModelConfig {
	cfg := LocalModelConfig{ModelName: DefaultLocalModel}
	cfg.OfflineMode.PreferLocalFiles = true
	cfg.OfflineMode.FallbackToOnline = true
	return cfg
}

// loadLocalModelConfig reads the JSON configuration at path. A missing or
// unreadable file yields the defaults rather than an error; the local
// backend must stay constructible without configuration.
func loadLocalModelConfig(path string) LocalModelConfig {
	cfg := defaultLocalModelConfig()
	if path == "" {
		return cfg
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return cfg
	}

	sub := v.Sub("local_model")
	if sub == nil {
		sub = v
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return defaultLocalModelConfig()
	}
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultLocalModel
	}
	return cfg
}

func (c LocalModelConfig) String() string {
	return fmt.Sprintf("model=%s prefer_local=%v fallback_online=%v fallbacks=%d",
		c.ModelName, c.OfflineMode.PreferLocalFiles, c.OfflineMode.FallbackToOnline, len(c.FallbackModels))
}
