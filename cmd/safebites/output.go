// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/safebites/internal/pipeline"
	"github.com/pdiddy/safebites/pkg/types"
)

// verdictOutput is the JSON form of a check result.
type verdictOutput struct {
	Candidate   string `json:"candidate"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	Label       string `json:"label"`
	ProductName string `json:"product_name"`
	Allergens   string `json:"allergens"`
}

func printVerdict(w io.Writer, cand types.Candidate, v types.Verdict, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(verdictOutput{
			Candidate:   cand.ProductName,
			Source:      string(cand.Source),
			Status:      string(v.Status),
			Label:       v.Label(),
			ProductName: v.ProductName,
			Allergens:   v.Allergens,
		})
	}

	fmt.Fprintf(w, "%s\n", v.Label())
	fmt.Fprintf(w, "  Product:   %s\n", v.ProductName)
	if v.Allergens != "" {
		fmt.Fprintf(w, "  Allergens: %s\n", v.Allergens)
	}
	return nil
}

func printProducts(w io.Writer, products []types.Product, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if products == nil {
			products = []types.Product{}
		}
		return enc.Encode(products)
	}

	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return nil
	}
	fmt.Fprintf(w, "%-6s  %s\n", "ID", "Name")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, p := range products {
		fmt.Fprintf(w, "%-6d  %s\n", p.ID, p.Name)
	}
	return nil
}

// progress prints each state change and notice to stderr when verbose.
func progress(verbose bool) pipeline.Observer {
	return pipeline.Funcs{
		OnState: func(s pipeline.State) {
			if verbose {
				fmt.Fprintf(os.Stderr, "state: %s\n", s.Kind())
			}
		},
		OnNotice: func(n pipeline.Notice) {
			fmt.Fprintf(os.Stderr, "%s\n", n.Message)
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
