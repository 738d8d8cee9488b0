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

	"github.com/spf13/cobra"

	"github.com/lingodoc/lingodoc/internal/store"
)

var memoryDBPath string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the translation memory",
	Long:  `List, inspect, and clear the SQLite translation memory.`,
}

func openMemory() (*store.Store, error) {
	if err := ensureParentDir(memoryDBPath); err != nil {
		return nil, err
	}
	db, err := store.New(memoryDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all translation memory entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMemory()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListMemory(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No entries in translation memory.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tTARGET\tPROVIDER\tUSED\tLAST USED\tTEXT")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				e.SourceLang, e.TargetLang, e.Provider,
				e.UsageCount, e.LastUsed.Format("2006-01-02 15:04"),
				truncateText(e.SourceText, 40))
		}
		return w.Flush()
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show translation memory statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMemory()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Total entries: %d\n", stats.TotalEntries)
		fmt.Printf("Total usage:   %d\n", stats.TotalUsage)
		fmt.Printf("Providers:     %d\n", stats.Providers)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all entries from the translation memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMemory()
		if err != nil {
			return err
		}
		defer db.Close()

		removed, err := db.ClearMemory(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear memory: %w", err)
		}
		fmt.Printf("Removed %d entries.\n", removed)
		return nil
	},
}

var cacheHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent processing jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMemory()
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.ListJobs(context.Background(), 20)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No processing jobs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tINPUT\tPROVIDER\tSTATUS\tCHUNKS\tFAILED\tELAPSED")
		for _, rec := range records {
			status := "ok"
			if !rec.Result.Success {
				status = "failed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"),
				truncateText(rec.Result.InputFile, 40),
				rec.Result.Provider, status,
				rec.Result.OriginalUnits, rec.Result.FailedUnits,
				rec.Result.Elapsed)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cacheStatsCmd, cacheClearCmd, cacheHistoryCmd)

	cacheCmd.PersistentFlags().StringVar(&memoryDBPath, "db", defaultCacheDBPath(), "path to the translation memory database")
}
