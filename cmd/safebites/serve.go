// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/safebites/internal/backend"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference allergy-check service",
	Long: `Serve runs the allergy-check service that scan and search talk to.

The product dataset is a CSV with a ProductName column and 0/1 columns
ContainsCrustacean, ContainsMilk, ContainsEgg, ContainsFish, ContainsNut,
ContainsSoy and ContainsSulphite. When --dataset is given the product table
is replaced on startup; otherwise the products already in the database are
served. User accounts persist in the same database.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := backend.OpenStore(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Dataset != "" {
		records, err := backend.LoadCSV(cfg.Server.Dataset)
		if err != nil {
			return err
		}
		if err := store.Import(ctx, records); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "imported %d products from %s\n", len(records), cfg.Server.Dataset)
	}

	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(os.Stderr, "warning: product table is empty; every lookup will answer 404")
	}

	srv := backend.NewServer(store, cfg.Server.FuzzyThreshold, os.Stderr)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :7000)")
	serveCmd.Flags().String("dataset", "", "product dataset CSV to import")
	serveCmd.Flags().String("db", "", "SQLite database path (default safebites.db)")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.dataset", serveCmd.Flags().Lookup("dataset"))
	viper.BindPFlag("server.db_path", serveCmd.Flags().Lookup("db"))

	rootCmd.AddCommand(serveCmd)
}
