package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/meltforce/repforge/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "RepForge server URL (e.g. https://repforge.tail1234.ts.net)")
	catalogPath := flag.String("path", "", "directory containing exercise catalog CSV files")
	apiKey := flag.String("api-key", os.Getenv("REPFORGE_AUTH_API_KEY"), "ingest API key (default $REPFORGE_AUTH_API_KEY)")
	stateDir := flag.String("state-dir", "", "upload state directory (default ~/.repforge)")
	dryRun := flag.Bool("dry-run", false, "list changed files but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repforge-catalog", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *catalogPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repforge-catalog -server <URL> -path <catalog dir> [-api-key KEY] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !*dryRun && (*serverURL == "" || *apiKey == "") {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*catalogPath)
	if err != nil || !info.IsDir() {
		log.Error("catalog directory not found", "path", *catalogPath)
		os.Exit(1)
	}

	// Open state database
	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".repforge")
	}
	state, err := upload.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode: changed files are listed but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader := upload.New(upload.NewClient(*serverURL, *apiKey), state, *catalogPath, *dryRun, log)
	stats, err := uploader.Run(ctx)
	printStats(stats)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	if stats.FilesErrored > 0 {
		os.Exit(1)
	}
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Catalog Upload Summary ===")
	fmt.Printf("  Files total:        %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:     %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:      %d (unchanged)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:      %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Exercises received: %d\n", stats.ExercisesReceived)
	fmt.Printf("  Exercises upserted: %d\n", stats.ExercisesUpserted)
	fmt.Println()
}
