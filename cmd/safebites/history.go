// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/safebites/internal/history"
	"github.com/pdiddy/safebites/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, search, and export past checks",
	Long: `History keeps every verdict from scan and search in a local SQLite
database with full-text search over product names.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List recent checks, optionally filtered",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := historyOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	entries, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistoryOutput(entries, jsonOutput)
}

func formatHistoryOutput(entries []history.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []history.Entry{}
		}
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No checks found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-16s  %-8s  %-8s  %-32s  %s\n",
		"Checked", "Source", "Status", "Product", "Allergens")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 96))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-16s  %-8s  %-8s  %-32s  %s\n",
			e.CheckedAt.Local().Format("2006-01-02 15:04"), e.Source, e.Status,
			truncate(e.ProductName, 32), truncate(e.Allergens, 30))
	}
	fmt.Fprintf(os.Stdout, "\n%d checks\n", len(entries))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export checks to YAML or JSON",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := historyOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), opts)
	case "json":
		path, err = store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- clear subcommand ---

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := historyStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Clear(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d checks.\n", n)
		return nil
	},
}

// --- shared helpers ---

func historyStore() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.NewStore(cfg.History)
}

func historyOptsFromFlags(cmd *cobra.Command, args []string) (history.QueryOptions, error) {
	status, _ := cmd.Flags().GetString("status")
	source, _ := cmd.Flags().GetString("source")
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := history.QueryOptions{
		Query:      strings.Join(args, " "),
		MaxResults: limit,
	}

	switch types.VerdictStatus(status) {
	case "", types.StatusSafe, types.StatusNotSafe:
		opts.Status = types.VerdictStatus(status)
	default:
		return opts, fmt.Errorf("unknown status %q: use %s or %s", status, types.StatusSafe, types.StatusNotSafe)
	}
	switch types.CandidateSource(source) {
	case "", types.SourceScan, types.SourceCatalog:
		opts.Source = types.CandidateSource(source)
	default:
		return opts, fmt.Errorf("unknown source %q: use %s or %s", source, types.SourceScan, types.SourceCatalog)
	}
	if since > 0 {
		opts.Since = time.Now().Add(-since)
	}
	return opts, nil
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("status", "", "filter by verdict: safe or not-safe")
		c.Flags().String("source", "", "filter by source: scan or catalog")
		c.Flags().Duration("since", 0, "only checks newer than this (e.g. 72h)")
	}
	historyListCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output results as JSON")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd, historyExportCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
