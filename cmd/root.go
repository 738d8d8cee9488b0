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
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lingodoc/lingodoc/internal/logging"
)

var version = "0.3.0"

var (
	logLevel   string
	prettyLogs bool

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lingodoc",
	Short: "Document translation pipeline",
	Long: `Translates documents (PDF, Markdown, plain text) through a configurable
backend and produces bilingual output documents and processing reports.

Supported providers: local (self-hosted model), deepseek, deepseek-reasoner,
google.

Use "lingodoc process --help" for processing options.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(logLevel, prettyLogs)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// API keys live in the environment; a .env file is a convenience.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "human-readable log output")
}
