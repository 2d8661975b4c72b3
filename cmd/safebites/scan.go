// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/safebites/internal/pipeline"
)

var scanCmd = &cobra.Command{
	Use:   "scan IMAGE",
	Short: "Check a product from a photo of its label",
	Long: `Scan reads the text on a product label, keeps the largest line of text
as the product name, and checks that product against your allergies.

Recognition uses the hosted OCR provider by default (credentials in
.secrets/ocr-username and .secrets/ocr-api-key) or Tesseract when
ocr.engine is "tesseract".`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	originFlag, _ := cmd.Flags().GetString("origin")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	origin, err := pipeline.ParseOrigin(originFlag)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rec, err := newRecognizer(cfg)
	if err != nil {
		return err
	}
	sess, err := sessionStore(cfg)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Resolver: newResolver(cfg),
		Profile:  sess,
		Observer: progress(verbose),
		Log:      os.Stderr,
	}
	if h := openHistory(cfg, noHistory); h != nil {
		defer h.Close()
		deps.Recorder = h
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	screen := pipeline.NewScanScreen(pipeline.FileSource{Path: args[0]}, rec, deps)
	defer screen.Close()

	if err := screen.SelectImage(ctx, origin); err != nil {
		return err
	}
	text, err := screen.DetectText(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Detected: %s\n", text)

	v, err := screen.Check(ctx)
	if err != nil {
		return err
	}
	st, ok := screen.State().(pipeline.Resolved)
	if !ok {
		return fmt.Errorf("check did not complete")
	}
	return printVerdict(os.Stdout, st.Candidate, v, jsonOutput)
}

func init() {
	scanCmd.Flags().String("origin", "gallery", "image origin: camera or gallery")
	scanCmd.Flags().Bool("json", false, "output the verdict as JSON")
	scanCmd.Flags().BoolP("verbose", "v", false, "print each pipeline state")
	scanCmd.Flags().Bool("no-history", false, "do not record the verdict")

	rootCmd.AddCommand(scanCmd)
}
