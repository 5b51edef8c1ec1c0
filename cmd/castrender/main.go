package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"castkit/internal/batch"
	"castkit/internal/cast"
	"castkit/internal/config"
	"castkit/internal/filter"
	"castkit/internal/texture"
	"castkit/internal/viewmatrix"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json or .yaml config file")
	inputDir := flag.String("input", "", "Directory searched for .cast files (default: .)")
	textureDir := flag.String("textures", "", "Texture directory (default: input directory)")
	outputDir := flag.String("output", "", "Output directory (default: <input>/renders)")
	camera := flag.String("camera", "", "Camera preset: "+strings.Join(viewmatrix.Presets(), ", "))
	size := flag.Int("size", 0, "Output image size in pixels (default: 256)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	strict := flag.Bool("strict", false, "Fail files whose node lengths disagree with their contents")
	testN := flag.Int("test", 0, "Render only the first N files")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		InputDir:   *inputDir,
		TextureDir: *textureDir,
		OutputDir:  *outputDir,
		Camera:     *camera,
		Size:       *size,
		Workers:    *workers,
		Strict:     *strict,
	})

	cam := cfg.CameraSettings()
	if _, err := cam.ViewMatrix(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	meshFilter, err := filter.New(cfg.ExcludeMeshes, cfg.MinComponentVerts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	files, err := batch.Discover(cfg.InputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning %s: %v\n", cfg.InputDir, err)
		os.Exit(1)
	}

	// Limit for testing
	if *testN > 0 && *testN < len(files) {
		files = files[:*testN]
	}

	if len(files) == 0 {
		fmt.Println("No cast files to render.")
		os.Exit(0)
	}

	// Build texture index
	texIndex := texture.BuildIndex(cfg.TextureDir)
	texCache := texture.NewCache(texIndex, logger)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	fmt.Printf("Cast renderer, camera %s\n", cam.Preset)
	fmt.Printf("Files: %d, Workers: %d\n", len(files), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	results := batch.Run(ctx, batch.Config{
		InputDir:        cfg.InputDir,
		OutputDir:       cfg.OutputDir,
		Decoder:         &cast.Decoder{Strict: cfg.Strict, Logger: logger},
		Textures:        texCache,
		Filter:          meshFilter,
		Camera:          cam,
		RenderSize:      cfg.RenderSize,
		Supersample:     cfg.Supersample,
		FillRatio:       cfg.FillRatio,
		MinClusterRatio: cfg.MinClusterRatio,
		Workers:         cfg.Workers,
		Progress:        batch.ProgressWriter(os.Stdout),
		Logger:          logger,
	}, files)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, images := 0, 0
	var failures []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			images += len(r.Renders)
		} else {
			failures = append(failures, r)
		}
	}

	fmt.Printf("Rendered: %d/%d files, %d images\n", success, len(files), images)

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failures))
		for _, r := range failures[:min(20, len(failures))] {
			fmt.Printf("  %s: %s\n", r.File, r.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failures) > 0 {
		os.Exit(1)
	}
}
