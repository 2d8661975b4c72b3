// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/safebites/internal/matcher"
	"github.com/pdiddy/safebites/internal/pipeline"
)

var searchCmd = &cobra.Command{
	Use:   "search [QUERY...]",
	Short: "Search the product catalog and check a product",
	Long: `Search matches the query against product names in the catalog, ignoring
case, and lists up to matcher.max_results products in catalog order.

Pass --pick with a product ID to check that product against your allergies.
The catalog is built in unless catalog.path names a YAML or JSON file.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	pick, _ := cmd.Flags().GetInt("pick")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" && pick == 0 {
		return fmt.Errorf("search query or --pick required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	sess, err := sessionStore(cfg)
	if err != nil {
		return err
	}

	committed := make(chan struct{}, 1)
	base := progress(verbose)
	deps := pipeline.Deps{
		Resolver: newResolver(cfg),
		Profile:  sess,
		Observer: pipeline.Funcs{
			OnState: func(s pipeline.State) {
				base.StateChanged(s)
				if st, ok := s.(pipeline.Searching); ok && !st.Pending {
					select {
					case committed <- struct{}{}:
					default:
					}
				}
			},
			OnNotice: base.Noticed,
		},
		Log: os.Stderr,
	}
	if h := openHistory(cfg, noHistory || pick == 0); h != nil {
		defer h.Close()
		deps.Recorder = h
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	screen := pipeline.NewSearchScreen(cat, deps,
		matcher.WithQuietPeriod(cfg.Matcher.QuietPeriod),
		matcher.WithLimit(cfg.Matcher.MaxResults),
	)
	defer screen.Close()

	if strings.TrimSpace(query) != "" {
		if err := screen.Type(query); err != nil {
			return err
		}
		select {
		case <-committed:
		case <-time.After(cfg.Matcher.QuietPeriod + 5*time.Second):
			return fmt.Errorf("search did not complete")
		case <-ctx.Done():
			return ctx.Err()
		}
		if pick == 0 {
			return printProducts(os.Stdout, screen.Results(), jsonOutput)
		}
		if !jsonOutput {
			printProducts(os.Stderr, screen.Results(), false)
		}
	}

	cand, err := screen.Pick(pick)
	if err != nil {
		return err
	}
	v, err := screen.Check(ctx)
	if err != nil {
		return err
	}
	return printVerdict(os.Stdout, cand, v, jsonOutput)
}

func init() {
	searchCmd.Flags().Int("pick", 0, "check the product with this catalog ID")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().BoolP("verbose", "v", false, "print each pipeline state")
	searchCmd.Flags().Bool("no-history", false, "do not record the verdict")

	rootCmd.AddCommand(searchCmd)
}
