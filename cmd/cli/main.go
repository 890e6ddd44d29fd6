package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/malawibank/analyzer/internal/analyzer"
	"github.com/malawibank/analyzer/internal/config"
	"github.com/malawibank/analyzer/internal/export"
	"github.com/malawibank/analyzer/internal/insights"
	"github.com/malawibank/analyzer/internal/logger"
	"github.com/malawibank/analyzer/internal/pipeline"
	"github.com/malawibank/analyzer/internal/store"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "history":
		runHistory(log)
	case "export":
		runExport(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("MalawiBank Analyzer CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Analyze a local bank statement and save the result")
	fmt.Println("  history   List saved analyses")
	fmt.Println("  export    Write a saved analysis as CSV")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func openHistory(log zerolog.Logger) (*store.HistoryRepo, *config.Config) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	kv, err := store.NewFileKV(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to open data store")
	}
	return store.NewHistoryRepo(kv), cfg
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to the statement (PDF, JPEG, PNG or WebP)")
	userID := fs.String("user", "local", "User ID to file the result under")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read statement file")
	}

	mimeType := mime.TypeByExtension(filepath.Ext(*filePath))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	history, cfg := openHistory(log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	analyzerService, err := analyzer.New(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create analyzer")
	}
	insightsService, err := insights.New(ctx, cfg.GeminiModel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create insights service")
	}

	orch := pipeline.New(analyzerService, insightsService, history, nil, nil, log)

	log.Info().Str("file", *filePath).Str("mime", mimeType).Msg("Starting analysis")

	item, err := orch.Analyze(ctx, *userID, filepath.Base(*filePath), mimeType, data)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	fmt.Println(item.Result.MarkdownReport)
	fmt.Printf("\nScore: %d/100 (%s)\n", item.Result.FinancialScore, item.Result.FinancialRank)
	fmt.Printf("Saved as %s\n", item.ID)
}

func runHistory(log zerolog.Logger) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	userID := fs.String("user", "local", "User ID to list")
	fs.Parse(os.Args[2:])

	history, _ := openHistory(log)

	items, err := history.List(*userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list history")
	}

	if len(items) == 0 {
		fmt.Println("No saved analyses.")
		return
	}

	fmt.Printf("=== Saved Analyses (%d) ===\n", len(items))
	for i, it := range items {
		fmt.Printf("\n%d. %s\n", i+1, it.FileName)
		fmt.Printf("   ID:    %s\n", it.ID)
		fmt.Printf("   Date:  %s\n", it.Timestamp.Format(time.RFC3339))
		fmt.Printf("   Score: %d/100 (%s)\n", it.Result.FinancialScore, it.Result.FinancialRank)
	}
	fmt.Println()
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	userID := fs.String("user", "local", "User ID owning the analysis")
	itemID := fs.String("id", "", "Analysis ID to export")
	outPath := fs.String("out", "", "Output path (defaults to stdout)")
	fs.Parse(os.Args[2:])

	if *itemID == "" {
		log.Fatal().Msg("Error: --id is required")
	}

	history, _ := openHistory(log)

	item, found, err := history.Find(*userID, *itemID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load analysis")
	}
	if !found {
		log.Fatal().Str("id", *itemID).Msg("Analysis not found")
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteSummary(out, &item.Result); err != nil {
		log.Fatal().Err(err).Msg("CSV export failed")
	}
	if *outPath != "" {
		fmt.Printf("Wrote %s\n", *outPath)
	}
}
