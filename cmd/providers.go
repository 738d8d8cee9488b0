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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lingodoc/lingodoc/internal/translator"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List translation providers and their availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tSTATUS")
		for _, name := range translator.Providers() {
			cfg := translator.Config{Provider: name, TargetLang: "en", APIKey: resolveProviderKey(name)}
			backend, err := translator.New(cfg, logger)
			if err != nil {
				fmt.Fprintf(w, "%s\terror: %v\n", name, err)
				continue
			}
			if err := backend.IsAvailable(ctx); err != nil {
				fmt.Fprintf(w, "%s\tunavailable: %v\n", name, err)
				continue
			}
			fmt.Fprintf(w, "%s\tavailable\n", name)
		}
		return w.Flush()
	},
}

func resolveProviderKey(name string) string {
	switch name {
	case "deepseek", "deepseek-reasoner":
		return os.Getenv("DEEPSEEK_API_KEY")
	case "google":
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
